package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
)

// ReleaseService guards the final payout of a completed transfer. The only
// transition it performs is COMPLETED -> RELEASED, gated by the receiver
// identity and the one-time passcode. No fund balance changes here; the
// accounting already happened during settlement.
type ReleaseService struct {
	TransferStore domain.TransferRecordStore
	Notifier      domain.Notifier
	Audit         domain.AuditSink
	Log           *slog.Logger
}

// NewReleaseService creates a new ReleaseService instance
func NewReleaseService(
	transferStore domain.TransferRecordStore,
	notifier domain.Notifier,
	audit domain.AuditSink,
	log *slog.Logger,
) *ReleaseService {
	return &ReleaseService{
		TransferStore: transferStore,
		Notifier:      notifier,
		Audit:         audit,
		Log:           log,
	}
}

// Release finalizes a completed transfer. The claimed receiver must match the
// recorded one and the supplied passcode must match exactly, with no
// normalization. The status flip is a compare-and-set on COMPLETED so a racing
// duplicate release loses with ErrConflict.
func (s *ReleaseService) Release(ctx context.Context, actor domain.Actor, transferID uuid.UUID, suppliedPasscode string, claimedReceiverID uuid.UUID) (*domain.TransferRecord, error) {
	record, err := s.TransferStore.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("transfer %s: %w", transferID, err)
	}

	if record.ReceiverID != claimedReceiverID {
		return nil, fmt.Errorf("%w: receiver mismatch for transfer %s", domain.ErrInvalidTransaction, transferID)
	}
	if !record.Releasable() {
		return nil, fmt.Errorf("%w: transfer %s is %s, only COMPLETED transfers can be released",
			domain.ErrInvalidTransaction, transferID, record.Status)
	}
	if record.ReleasePasscode != suppliedPasscode {
		return nil, fmt.Errorf("%w: invalid release passcode for transfer %s", domain.ErrInvalidTransaction, transferID)
	}

	if err := s.TransferStore.UpdateStatus(ctx, record.ID, domain.TransferStatusCompleted, domain.TransferStatusReleased); err != nil {
		return nil, fmt.Errorf("release transfer %s: %w", transferID, err)
	}
	record.Status = domain.TransferStatusReleased

	s.notifyReleased(ctx, record)

	if err := s.Audit.Record(ctx, "RELEASE_TRANSFER", actor.ID, "transaction", record.ID); err != nil {
		s.Log.Error("audit sink failed",
			slog.String("action", "RELEASE_TRANSFER"),
			slog.String("transfer_id", record.ID.String()),
			slog.String("error", err.Error()))
	}

	return record, nil
}

// View renders a transfer record for a viewer. Viewers affiliated with the
// receiving branch must never see the passcode; everyone else sees it as
// stored.
func (s *ReleaseService) View(ctx context.Context, actor domain.Actor, transferID uuid.UUID) (*domain.TransferRecord, error) {
	record, err := s.TransferStore.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("transfer %s: %w", transferID, err)
	}

	view := *record
	if actor.AffiliatedWith(record.ReceiverBranchID) {
		view.ReleasePasscode = ""
	}
	return &view, nil
}

// notifyReleased confirms the payout to the sender. Delivery is best-effort.
func (s *ReleaseService) notifyReleased(ctx context.Context, record *domain.TransferRecord) {
	body := fmt.Sprintf(
		"Your money transfer has been released to the receiver. Transaction ID: %s, Amount: %s %s.",
		record.ID, record.GrossAmount, record.SourceCurrency)
	if err := s.Notifier.EmailSender(ctx, record.SenderID, "Money Transfer Released", body); err != nil {
		s.Log.Error("release confirmation email failed",
			slog.String("transfer_id", record.ID.String()),
			slog.String("error", err.Error()))
	}
}
