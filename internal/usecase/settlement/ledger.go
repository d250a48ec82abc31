package settlement

import (
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerSet groups the four balance ledgers one transfer touches. Its deltas
// are applied through FundStore.AtomicApply as a single unit: all four change
// or none do.
type LedgerSet struct {
	ClientFund         *domain.Fund
	SenderBranchFund   *domain.Fund
	PlatformFund       *domain.Fund
	ReceiverBranchFund *domain.Fund
}

// Deltas builds the four balance mutations of a settlement:
//
//	client             -(gross amount + total fee)   in source-currency units
//	sender branch      -(USD equivalent + total fee) the point of cash collection
//	platform           +(platform base fee + exchange profit)
//	receiver branch    +USD equivalent               its fee came out of the sender branch
//
// The client debit is guarded against going negative; branch settlement funds
// are clearing accounts and may run into debt.
func (l *LedgerSet) Deltas(grossAmount decimal.Decimal, breakdown domain.FeeBreakdown) []domain.FundDelta {
	totalFee := breakdown.TotalFee()
	return []domain.FundDelta{
		{
			FundID:             l.ClientFund.ID,
			Amount:             grossAmount.Add(totalFee).Neg(),
			EnforceNonNegative: true,
		},
		{
			FundID: l.SenderBranchFund.ID,
			Amount: breakdown.USDEquivalent.Add(totalFee).Neg(),
		},
		{
			FundID: l.PlatformFund.ID,
			Amount: breakdown.PlatformTotal(),
		},
		{
			FundID: l.ReceiverBranchFund.ID,
			Amount: breakdown.USDEquivalent,
		},
	}
}
