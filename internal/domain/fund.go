package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundStatus represents the status of a fund
type FundStatus string

const (
	FundStatusActive   FundStatus = "ACTIVE"
	FundStatusInactive FundStatus = "INACTIVE"
)

// PlatformFundName is the fund collecting platform fees.
const PlatformFundName = "Platform Fund"

// BranchFundStartingBalance is the working balance a lazily created settlement
// fund opens with. Branch settlement funds are internal clearing accounts, not
// client wallets, so they start funded rather than at zero.
var BranchFundStartingBalance = decimal.RequireFromString("1000000.00")

// Fund represents a balance ledger: a client-held fund, a branch settlement
// fund, or the single platform fund. Balances are mutated exclusively through
// FundStore.AtomicApply.
type Fund struct {
	ID      uuid.UUID
	Name    string
	Balance decimal.Decimal
	Status  FundStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the fund adheres to domain rules
func (f *Fund) Validate() error {
	if f.Name == "" {
		return errors.New("fund name cannot be empty")
	}
	if f.Status != FundStatusActive && f.Status != FundStatusInactive {
		return errors.New("fund status must be ACTIVE or INACTIVE")
	}
	return nil
}

// IsActive reports whether the fund may participate in a transfer.
func (f *Fund) IsActive() bool {
	return f.Status == FundStatusActive
}

// FundDelta is one signed balance mutation inside an atomic apply.
// EnforceNonNegative guards client funds: the apply fails with
// ErrInsufficientFunds if the debit would drive the balance below zero.
// Branch settlement funds may run negative (inter-branch debt), so their
// deltas leave it unset.
type FundDelta struct {
	FundID             uuid.UUID
	Amount             decimal.Decimal
	EnforceNonNegative bool
}

// NewBranchFund builds a lazily created settlement fund with the conventional
// starting balance.
func NewBranchFund(name string) *Fund {
	return &Fund{
		ID:      uuid.New(),
		Name:    name,
		Balance: BranchFundStartingBalance,
		Status:  FundStatusActive,
	}
}
