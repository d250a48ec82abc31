package feeschedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Commission-rate fallbacks, per 1000 USD-equivalent units. They apply only
// when no rate row is configured for the (branch, scope) pair; a configured
// zero rate is honored as zero.
var (
	DefaultPlatformBaseFee        = decimal.RequireFromString("1.50")
	DefaultPlatformExchangeProfit = decimal.RequireFromString("1.50")
	DefaultSendingBranchFee       = decimal.RequireFromString("1.50")
	DefaultReceivingBranchFee     = decimal.RequireFromString("4.00")
)

// Legacy per-branch fee fallbacks. Intentionally different from the
// commission-rate fallbacks above; both paths are exercised independently.
var (
	LegacyPlatformBaseFeePerThousand  = decimal.RequireFromString("1.50")
	LegacyDefaultSendingPerThousand   = decimal.RequireFromString("1.00")
	LegacyDefaultReceivingPerThousand = decimal.RequireFromString("4.00")
)

const feeScale = 2

var thousand = decimal.NewFromInt(1000)

// FeeScheduleService computes the four tiered fee components of a transfer
// from its USD-equivalent amount.
type FeeScheduleService struct {
	CommissionRateStore domain.CommissionRateStore
	BranchFeeRateStore  domain.BranchFeeRateStore
}

// NewFeeScheduleService creates a new FeeScheduleService instance
func NewFeeScheduleService(
	commissionRateStore domain.CommissionRateStore,
	branchFeeRateStore domain.BranchFeeRateStore,
) *FeeScheduleService {
	return &FeeScheduleService{
		CommissionRateStore: commissionRateStore,
		BranchFeeRateStore:  branchFeeRateStore,
	}
}

// ThousandUSDUnits returns ceil(usd / 1000): the fee-pricing granularity.
// A partial thousand counts as a full unit, so 1000.01 USD prices as 2 units.
func ThousandUSDUnits(usd decimal.Decimal) decimal.Decimal {
	if usd.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	units, remainder := usd.QuoRem(thousand, 0)
	if remainder.IsPositive() {
		units = units.Add(decimal.NewFromInt(1))
	}
	return units
}

// ComputeFees computes the full fee breakdown for a transfer:
//   - platform base fee, always applied
//   - platform exchange profit, only when source and destination currencies differ
//   - sending branch fee and receiving branch fee
//
// Every component is units * rate(branch, scope), rounded to 2 decimals
// half-up. A missing rate row falls back to the documented default; the total
// is the exact sum of the four rounded components.
func (s *FeeScheduleService) ComputeFees(
	ctx context.Context,
	usdEquivalent decimal.Decimal,
	sourceCurrency, destinationCurrency string,
	sendingBranchID, receivingBranchID, platformBranchID uuid.UUID,
) (domain.FeeBreakdown, error) {
	units := ThousandUSDUnits(usdEquivalent)

	platformBase, err := s.componentFee(ctx, units, platformBranchID, domain.ScopePlatformBaseFee, DefaultPlatformBaseFee)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}

	exchangeProfit := decimal.Zero.Round(feeScale)
	if sourceCurrency != destinationCurrency {
		exchangeProfit, err = s.componentFee(ctx, units, platformBranchID, domain.ScopePlatformExchangeProfit, DefaultPlatformExchangeProfit)
		if err != nil {
			return domain.FeeBreakdown{}, err
		}
	}

	sendingFee, err := s.componentFee(ctx, units, sendingBranchID, domain.ScopeSendingBranchFee, DefaultSendingBranchFee)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}

	receivingFee, err := s.componentFee(ctx, units, receivingBranchID, domain.ScopeReceivingBranchFee, DefaultReceivingBranchFee)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}

	return domain.FeeBreakdown{
		PlatformBaseFee:        platformBase,
		PlatformExchangeProfit: exchangeProfit,
		SendingBranchFee:       sendingFee,
		ReceivingBranchFee:     receivingFee,
		USDEquivalent:          usdEquivalent,
	}, nil
}

// componentFee prices one scope: units * configured rate, defaulting only on a
// genuine lookup miss.
func (s *FeeScheduleService) componentFee(
	ctx context.Context,
	units decimal.Decimal,
	branchID uuid.UUID,
	scope domain.CommissionScope,
	fallback decimal.Decimal,
) (decimal.Decimal, error) {
	rate := fallback
	configured, err := s.CommissionRateStore.Lookup(ctx, branchID, scope)
	switch {
	case err == nil:
		rate = configured.RateValue
	case errors.Is(err, domain.ErrNotFound):
		// not configured: the documented default applies
	default:
		return decimal.Zero, fmt.Errorf("lookup %s rate: %w", scope, err)
	}
	return units.Mul(rate).Round(feeScale), nil
}

// LegacySendingBranchFee prices the sending side on the legacy per-branch fee
// table (default 1.00 per 1000 USD-equivalent).
func (s *FeeScheduleService) LegacySendingBranchFee(ctx context.Context, usdEquivalent decimal.Decimal, sendingBranchID uuid.UUID) (decimal.Decimal, error) {
	units := ThousandUSDUnits(usdEquivalent)
	rate := LegacyDefaultSendingPerThousand
	configured, err := s.BranchFeeRateStore.GetByBranch(ctx, sendingBranchID)
	switch {
	case err == nil:
		rate = configured.SendingPerThousandUSD
	case errors.Is(err, domain.ErrNotFound):
	default:
		return decimal.Zero, fmt.Errorf("lookup legacy sending rate: %w", err)
	}
	return units.Mul(rate).Round(feeScale), nil
}

// LegacyReceivingBranchFee prices the receiving side on the legacy per-branch
// fee table (default 4.00 per 1000 USD-equivalent).
func (s *FeeScheduleService) LegacyReceivingBranchFee(ctx context.Context, usdEquivalent decimal.Decimal, receivingBranchID uuid.UUID) (decimal.Decimal, error) {
	units := ThousandUSDUnits(usdEquivalent)
	rate := LegacyDefaultReceivingPerThousand
	configured, err := s.BranchFeeRateStore.GetByBranch(ctx, receivingBranchID)
	switch {
	case err == nil:
		rate = configured.ReceivingPerThousandUSD
	case errors.Is(err, domain.ErrNotFound):
	default:
		return decimal.Zero, fmt.Errorf("lookup legacy receiving rate: %w", err)
	}
	return units.Mul(rate).Round(feeScale), nil
}

// LegacyPlatformBaseFee prices the platform side on the legacy flat constant.
func (s *FeeScheduleService) LegacyPlatformBaseFee(usdEquivalent decimal.Decimal) decimal.Decimal {
	return ThousandUSDUnits(usdEquivalent).Mul(LegacyPlatformBaseFeePerThousand).Round(feeScale)
}
