package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus represents the lifecycle state of a transfer record
type TransferStatus string

const (
	// TransferStatusPending and TransferStatusFailed are transient bookkeeping
	// states used only by the simple legacy transfer path; the comprehensive
	// settlement path records COMPLETED directly or nothing at all.
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
	TransferStatusReleased  TransferStatus = "RELEASED"
)

// FeeBreakdown carries the four fee components of one transfer plus the
// USD-equivalent they were priced on. Each component is already rounded to
// 2 decimals; TotalFee is the exact sum of the rounded components so the
// ledger identity stays exact.
type FeeBreakdown struct {
	PlatformBaseFee        decimal.Decimal
	PlatformExchangeProfit decimal.Decimal
	SendingBranchFee       decimal.Decimal
	ReceivingBranchFee     decimal.Decimal
	USDEquivalent          decimal.Decimal
}

// TotalFee returns the sum of the four rounded fee components.
func (f FeeBreakdown) TotalFee() decimal.Decimal {
	return f.PlatformBaseFee.
		Add(f.PlatformExchangeProfit).
		Add(f.SendingBranchFee).
		Add(f.ReceivingBranchFee)
}

// PlatformTotal returns the portion of the fees credited to the platform fund.
func (f FeeBreakdown) PlatformTotal() decimal.Decimal {
	return f.PlatformBaseFee.Add(f.PlatformExchangeProfit)
}

// TransferRecord is the immutable transaction entity produced by a settlement.
// The only permitted mutation is the COMPLETED -> RELEASED status transition
// performed by the release gate.
type TransferRecord struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	FundID     uuid.UUID

	// GrossAmount is in the source currency's own unit
	GrossAmount         decimal.Decimal
	SourceCurrency      string
	DestinationCurrency string
	USDEquivalent       decimal.Decimal
	ExchangeRate        decimal.Decimal

	PlatformBaseFee        decimal.Decimal
	PlatformExchangeProfit decimal.Decimal
	SendingBranchFee       decimal.Decimal
	ReceivingBranchFee     decimal.Decimal
	TotalFee               decimal.Decimal

	SenderBranchID   uuid.UUID
	ReceiverBranchID uuid.UUID

	Status TransferStatus
	// ReleasePasscode is the one-time 6-digit code authorizing final payout.
	// Present once the record is COMPLETED; never shown to the receiving branch.
	ReleasePasscode string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the transfer record adheres to domain rules
func (t *TransferRecord) Validate() error {
	if t.SenderID == t.ReceiverID {
		return errors.New("sender and receiver cannot be the same")
	}
	if t.GrossAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("gross amount must be positive")
	}
	if t.SourceCurrency == "" || t.DestinationCurrency == "" {
		return errors.New("source and destination currencies are required")
	}
	return nil
}

// Releasable reports whether the record is in the single state the release
// gate accepts.
func (t *TransferRecord) Releasable() bool {
	return t.Status == TransferStatusCompleted
}
