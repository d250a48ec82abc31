// Package audit provides AuditSink implementations. The postgres-backed sink
// lives with the other repositories; this one just writes structured log
// lines for environments without a database audit trail.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

// LogSink implements domain.AuditSink by emitting one log record per event
type LogSink struct {
	Log *slog.Logger
}

// NewLogSink creates an audit sink that only logs
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{Log: log}
}

func (s *LogSink) Record(ctx context.Context, action string, actorID uuid.UUID, entityType string, entityID uuid.UUID) error {
	s.Log.Info("audit",
		slog.String("action", action),
		slog.String("actor_id", actorID.String()),
		slog.String("entity_type", entityType),
		slog.String("entity_id", entityID.String()))
	return nil
}

var _ domain.AuditSink = (*LogSink)(nil)
