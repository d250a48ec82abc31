package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// fundRepository implements domain.FundStore
type fundRepository struct {
	db *DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *DB) domain.FundStore {
	return &fundRepository{db: db}
}

// GetByID retrieves a fund by its ID
func (r *fundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fund, error) {
	query := `
		SELECT id, name, balance, status, created_at, updated_at
		FROM funds
		WHERE id = $1
	`
	fund, err := scanFund(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get fund by ID: %w", mapError(err))
	}
	return fund, nil
}

// GetByName retrieves a fund by its unique name
func (r *fundRepository) GetByName(ctx context.Context, name string) (*domain.Fund, error) {
	query := `
		SELECT id, name, balance, status, created_at, updated_at
		FROM funds
		WHERE name = $1
	`
	fund, err := scanFund(r.db.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("failed to get fund by name: %w", mapError(err))
	}
	return fund, nil
}

// Create creates a new fund
func (r *fundRepository) Create(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO funds (id, name, balance, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		fund.ID,
		fund.Name,
		fund.Balance.String(),
		string(fund.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create fund: %w", mapError(err))
	}
	return nil
}

// AtomicApply applies every delta in one serializable transaction. Rows are
// locked with FOR UPDATE in a fixed order so two concurrent applies touching
// the same funds cannot deadlock, and a guarded debit that would drive a
// balance negative rolls the whole transaction back.
func (r *fundRepository) AtomicApply(ctx context.Context, deltas []domain.FundDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	ordered := make([]domain.FundDelta, len(deltas))
	copy(ordered, deltas)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].FundID.String() < ordered[j].FundID.String()
	})

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin apply transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, delta := range ordered {
		var balanceStr string
		err := tx.QueryRow(ctx,
			`SELECT balance FROM funds WHERE id = $1 FOR UPDATE`,
			delta.FundID,
		).Scan(&balanceStr)
		if err != nil {
			return fmt.Errorf("failed to lock fund %s: %w", delta.FundID, mapError(err))
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return fmt.Errorf("failed to parse balance of fund %s: %w", delta.FundID, err)
		}

		newBalance := balance.Add(delta.Amount)
		if delta.EnforceNonNegative && newBalance.IsNegative() {
			return fmt.Errorf("fund %s: %w", delta.FundID, domain.ErrInsufficientFunds)
		}

		_, err = tx.Exec(ctx,
			`UPDATE funds SET balance = $1, updated_at = NOW() WHERE id = $2`,
			newBalance.String(), delta.FundID,
		)
		if err != nil {
			return fmt.Errorf("failed to update fund %s: %w", delta.FundID, mapError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit apply: %w", mapError(err))
	}
	return nil
}

func scanFund(row pgx.Row) (*domain.Fund, error) {
	var fund domain.Fund
	var balanceStr string

	err := row.Scan(
		&fund.ID,
		&fund.Name,
		&balanceStr,
		&fund.Status,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	fund.Balance = balance
	return &fund, nil
}
