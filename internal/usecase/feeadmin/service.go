package feeadmin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// FeeAdminService administers the (branch, scope) commission rate grid.
// Authorization is decided by the pure domain rule, not here.
type FeeAdminService struct {
	RateStore   domain.CommissionRateStore
	BranchStore domain.BranchStore
	Audit       domain.AuditSink
	Log         *slog.Logger
}

// NewFeeAdminService creates a new FeeAdminService instance
func NewFeeAdminService(
	rateStore domain.CommissionRateStore,
	branchStore domain.BranchStore,
	audit domain.AuditSink,
	log *slog.Logger,
) *FeeAdminService {
	return &FeeAdminService{
		RateStore:   rateStore,
		BranchStore: branchStore,
		Audit:       audit,
		Log:         log,
	}
}

// UpdateRate changes the rate value of an existing (branch, scope) row.
// There is no create-on-demand: updating an unconfigured pair fails with
// ErrNotFound so a typo in branch or scope cannot silently mint a new rate.
func (s *FeeAdminService) UpdateRate(ctx context.Context, actor domain.Actor, branchID uuid.UUID, scope domain.CommissionScope, rate decimal.Decimal) (*domain.CommissionRate, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: unknown commission scope %q", domain.ErrInvalidTransaction, scope)
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("%w: rate value cannot be negative", domain.ErrInvalidTransaction)
	}
	if !actor.CanModifyRate(branchID, scope) {
		return nil, fmt.Errorf("%w: actor %s may not modify %s for branch %s",
			domain.ErrUnauthorized, actor.ID, scope, branchID)
	}

	if _, err := s.BranchStore.GetByID(ctx, branchID); err != nil {
		return nil, fmt.Errorf("branch %s: %w", branchID, err)
	}

	updated, err := s.RateStore.Update(ctx, branchID, scope, rate)
	if err != nil {
		return nil, fmt.Errorf("update rate %s/%s: %w", branchID, scope, err)
	}

	if err := s.Audit.Record(ctx, "UPDATE_COMMISSION_RATE", actor.ID, "commission_rate", updated.ID); err != nil {
		s.Log.Error("audit sink failed",
			slog.String("action", "UPDATE_COMMISSION_RATE"),
			slog.String("rate_id", updated.ID.String()),
			slog.String("error", err.Error()))
	}

	return updated, nil
}

// GetRate returns the configured rate for a (branch, scope) pair, with
// ErrNotFound for unconfigured pairs.
func (s *FeeAdminService) GetRate(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope) (*domain.CommissionRate, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: unknown commission scope %q", domain.ErrInvalidTransaction, scope)
	}
	rate, err := s.RateStore.Lookup(ctx, branchID, scope)
	if err != nil {
		return nil, fmt.Errorf("rate %s/%s: %w", branchID, scope, err)
	}
	return rate, nil
}

// ListBranchRates returns every configured rate for a branch.
func (s *FeeAdminService) ListBranchRates(ctx context.Context, branchID uuid.UUID) ([]*domain.CommissionRate, error) {
	if _, err := s.BranchStore.GetByID(ctx, branchID); err != nil {
		return nil, fmt.Errorf("branch %s: %w", branchID, err)
	}
	rates, err := s.RateStore.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("list rates for branch %s: %w", branchID, err)
	}
	return rates, nil
}
