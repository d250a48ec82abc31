package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

// auditRepository implements domain.AuditSink on an append-only table
type auditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *DB) domain.AuditSink {
	return &auditRepository{db: db}
}

// Record appends one audit row. Callers treat failures as non-fatal.
func (r *auditRepository) Record(ctx context.Context, action string, actorID uuid.UUID, entityType string, entityID uuid.UUID) error {
	query := `
		INSERT INTO audit_log (id, action, actor_id, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, uuid.New(), action, actorID, entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}
