package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorClaims is the JWT payload carried by every authenticated request. The
// identity provider that mints these tokens is outside this service; we only
// verify and translate them into a domain Actor.
type ActorClaims struct {
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth verifies the bearer token and stores the resolved Actor in the
// request context.
func RequireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			actor, err := actorFromToken(parts[1], secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor returns the Actor placed in the context by RequireAuth
func GetActor(ctx context.Context) domain.Actor {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok {
		panic("actor not found in context - RequireAuth middleware not applied?")
	}
	return actor
}

func actorFromToken(tokenString string, secret []byte) (domain.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if !token.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	role, ok := domain.ParseActorRole(claims.Role)
	if !ok {
		return domain.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	actor := domain.Actor{ID: actorID, Role: role}
	if claims.BranchID != "" {
		branchID, err := uuid.Parse(claims.BranchID)
		if err != nil {
			return domain.Actor{}, fmt.Errorf("invalid branch_id claim: %w", err)
		}
		actor.BranchID = &branchID
	}
	return actor, nil
}
