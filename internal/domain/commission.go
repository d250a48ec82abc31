package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionScope is the fee category a (branch, scope) commission rate prices.
type CommissionScope string

const (
	ScopePlatformBaseFee        CommissionScope = "PLATFORM_BASE_FEE"
	ScopePlatformExchangeProfit CommissionScope = "PLATFORM_EXCHANGE_PROFIT"
	ScopeSendingBranchFee       CommissionScope = "SENDING_BRANCH_FEE"
	ScopeReceivingBranchFee     CommissionScope = "RECEIVING_BRANCH_FEE"
)

// Valid reports whether the scope is one of the four known fee categories.
func (s CommissionScope) Valid() bool {
	switch s {
	case ScopePlatformBaseFee, ScopePlatformExchangeProfit, ScopeSendingBranchFee, ScopeReceivingBranchFee:
		return true
	}
	return false
}

// CommissionRate prices one fee scope for one branch, in currency units per
// 1000 USD-equivalent. Unique per (branch, scope) pair.
type CommissionRate struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Scope     CommissionScope
	RateValue decimal.Decimal
}

// Validate ensures the commission rate adheres to domain rules
func (r *CommissionRate) Validate() error {
	if !r.Scope.Valid() {
		return errors.New("unknown commission scope")
	}
	if r.RateValue.IsNegative() {
		return errors.New("rate value cannot be negative")
	}
	return nil
}

// BranchFeeRate is the legacy per-branch fee configuration, kept alongside the
// commission-rate grid. Its defaults (1.00 sending / 4.00 receiving) differ
// from the commission-rate fallbacks and both paths stay independent.
type BranchFeeRate struct {
	ID                      uuid.UUID
	BranchID                uuid.UUID
	SendingPerThousandUSD   decimal.Decimal
	ReceivingPerThousandUSD decimal.Decimal
}
