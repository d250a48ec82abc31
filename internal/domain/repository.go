package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyStore defines the interface for currency persistence operations.
// The core reads currencies; only the rates service writes them.
type CurrencyStore interface {
	// GetActiveByCode retrieves an active currency by its code.
	// Returns ErrNotFound for unknown or inactive codes.
	GetActiveByCode(ctx context.Context, code string) (*Currency, error)

	// List retrieves all currencies
	List(ctx context.Context) ([]*Currency, error)

	// Upsert creates or updates a currency by code
	Upsert(ctx context.Context, currency *Currency) error
}

// BranchStore defines the interface for branch lookups
type BranchStore interface {
	// GetByID retrieves a branch by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Branch, error)

	// GetPlatformBranch retrieves the designated platform/admin branch
	GetPlatformBranch(ctx context.Context) (*Branch, error)

	// Create creates a new branch
	Create(ctx context.Context, branch *Branch) error
}

// FundStore defines the interface for fund persistence operations
type FundStore interface {
	// GetByID retrieves a fund by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Fund, error)

	// GetByName retrieves a fund by its unique name
	GetByName(ctx context.Context, name string) (*Fund, error)

	// Create creates a new fund
	Create(ctx context.Context, fund *Fund) error

	// AtomicApply applies every delta as a single atomic unit: all balances
	// change or none do, isolated against any concurrent apply touching the
	// same funds. Returns ErrInsufficientFunds when a guarded delta would
	// drive a balance negative, ErrConflict when a concurrent mutation wins
	// the race, ErrNotFound when a fund is missing.
	AtomicApply(ctx context.Context, deltas []FundDelta) error
}

// CommissionRateStore defines the interface for (branch, scope) commission rates
type CommissionRateStore interface {
	// Lookup retrieves the rate for a (branch, scope) pair.
	// Returns ErrNotFound when no rate is configured, so callers can
	// distinguish "not configured" from "configured as zero".
	Lookup(ctx context.Context, branchID uuid.UUID, scope CommissionScope) (*CommissionRate, error)

	// ListByBranch retrieves all configured rates for a branch
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*CommissionRate, error)

	// Update persists a new rate value for an existing (branch, scope) row.
	// There is no create-on-demand: ErrNotFound when the row is absent.
	Update(ctx context.Context, branchID uuid.UUID, scope CommissionScope, rate decimal.Decimal) (*CommissionRate, error)

	// Create creates a commission rate row (seeding/administration only)
	Create(ctx context.Context, rate *CommissionRate) error
}

// BranchFeeRateStore defines the interface for the legacy per-branch fee rates
type BranchFeeRateStore interface {
	// GetByBranch retrieves the legacy fee rate row for a branch.
	// Returns ErrNotFound when the branch has none configured.
	GetByBranch(ctx context.Context, branchID uuid.UUID) (*BranchFeeRate, error)

	// Create creates a legacy fee rate row
	Create(ctx context.Context, rate *BranchFeeRate) error
}

// TransferRecordStore defines the interface for transfer record persistence
type TransferRecordStore interface {
	// Save persists a new transfer record
	Save(ctx context.Context, record *TransferRecord) error

	// GetByID retrieves a transfer record by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*TransferRecord, error)

	// UpdateStatus transitions a record from one status to another as an
	// atomic compare-and-set. Returns ErrConflict when the record is no
	// longer in the expected "from" status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to TransferStatus) error
}

// Notifier delivers side-channel messages. Delivery is fire-and-forget from
// the core's point of view; implementations live in the adapter layer.
type Notifier interface {
	// AlertBranch sends an internal alert to a branch. The message must never
	// contain a release passcode.
	AlertBranch(ctx context.Context, branchID uuid.UUID, message string) error

	// EmailSender emails a sender; the message may carry the passcode
	EmailSender(ctx context.Context, senderID uuid.UUID, subject, message string) error

	// SMSSender texts a sender; the message may carry the passcode
	SMSSender(ctx context.Context, senderID uuid.UUID, message string) error
}

// AuditSink records audit events best-effort. A sink failure must never fail
// the operation being audited; callers log and swallow it.
type AuditSink interface {
	Record(ctx context.Context, action string, actorID uuid.UUID, entityType string, entityID uuid.UUID) error
}

// RateSource is the external rate provider consulted by the rates service.
// It may fail or hang; callers bound it with a timeout and fall back to a
// static table.
type RateSource interface {
	Rate(ctx context.Context, code string) (*RateQuote, error)
}
