package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Fixed UUIDs for system branches so repeated deployments converge on the
// same rows
var (
	SYS_PLATFORM_BRANCH = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	SYS_BRANCH_A        = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	SYS_BRANCH_B        = uuid.MustParse("00000000-0000-0000-0000-000000000003")
)

// SystemSeeder brings a fresh database to a working baseline: the reference
// currencies, the platform and sample branches, the commission rate grid, the
// legacy fee rates and a client fund. Every step is idempotent.
type SystemSeeder struct {
	Currencies  domain.CurrencyStore
	Branches    domain.BranchStore
	Funds       domain.FundStore
	Rates       domain.CommissionRateStore
	LegacyRates domain.BranchFeeRateStore
	Log         *slog.Logger
}

// NewSystemSeeder creates a new SystemSeeder instance
func NewSystemSeeder(
	currencies domain.CurrencyStore,
	branches domain.BranchStore,
	funds domain.FundStore,
	rates domain.CommissionRateStore,
	legacyRates domain.BranchFeeRateStore,
	log *slog.Logger,
) *SystemSeeder {
	return &SystemSeeder{
		Currencies:  currencies,
		Branches:    branches,
		Funds:       funds,
		Rates:       rates,
		LegacyRates: legacyRates,
		Log:         log,
	}
}

// Seed ensures all baseline rows exist, creating only what is missing
func (s *SystemSeeder) Seed(ctx context.Context) error {
	if err := s.seedCurrencies(ctx); err != nil {
		return fmt.Errorf("seed currencies: %w", err)
	}
	if err := s.seedBranches(ctx); err != nil {
		return fmt.Errorf("seed branches: %w", err)
	}
	if err := s.seedCommissionRates(ctx); err != nil {
		return fmt.Errorf("seed commission rates: %w", err)
	}
	if err := s.seedLegacyRates(ctx); err != nil {
		return fmt.Errorf("seed legacy fee rates: %w", err)
	}
	if err := s.seedFunds(ctx); err != nil {
		return fmt.Errorf("seed funds: %w", err)
	}
	s.Log.Info("system seed complete")
	return nil
}

func (s *SystemSeeder) seedCurrencies(ctx context.Context) error {
	currencies := []*domain.Currency{
		{
			Code:              domain.USDCode,
			Name:              "US Dollar",
			ExchangeRateToUSD: decimal.NewFromInt(1),
			ForexBuyingToUSD:  decimal.NewFromInt(1),
			ForexSellingToUSD: decimal.NewFromInt(1),
			Symbol:            "$",
		},
		{
			Code:              "TL",
			Name:              "Turkish Lira",
			ExchangeRateToUSD: decimal.RequireFromString("0.0241"),
			ForexBuyingToUSD:  decimal.RequireFromString("0.0241"),
			ForexSellingToUSD: decimal.RequireFromString("0.0243"),
			Symbol:            "₺",
		},
		{
			Code:              "EUR",
			Name:              "Euro",
			ExchangeRateToUSD: decimal.RequireFromString("1.08"),
			ForexBuyingToUSD:  decimal.RequireFromString("1.08"),
			ForexSellingToUSD: decimal.RequireFromString("1.09"),
			Symbol:            "€",
		},
		{
			Code:              "GBP",
			Name:              "British Pound",
			ExchangeRateToUSD: decimal.RequireFromString("1.25"),
			ForexBuyingToUSD:  decimal.RequireFromString("1.24"),
			ForexSellingToUSD: decimal.RequireFromString("1.26"),
			Symbol:            "£",
		},
	}

	for _, currency := range currencies {
		if _, err := s.Currencies.GetActiveByCode(ctx, currency.Code); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		currency.ID = uuid.New()
		currency.Active = true
		currency.SourceAPI = "seed"
		currency.CreatedAt = time.Now()
		currency.UpdatedAt = currency.CreatedAt
		if err := currency.Validate(); err != nil {
			return err
		}
		if err := s.Currencies.Upsert(ctx, currency); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSeeder) seedBranches(ctx context.Context) error {
	branches := []*domain.Branch{
		{ID: SYS_PLATFORM_BRANCH, Name: domain.PlatformBranchName},
		{ID: SYS_BRANCH_A, Name: "BRANCH_A"},
		{ID: SYS_BRANCH_B, Name: "BRANCH_B"},
	}
	for _, branch := range branches {
		if _, err := s.Branches.GetByID(ctx, branch.ID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := s.Branches.Create(ctx, branch); err != nil {
			return err
		}
	}
	return nil
}

// seedCommissionRates configures the full (branch, scope) grid so no lookup
// has to fall back to the hard-coded defaults in normal operation.
func (s *SystemSeeder) seedCommissionRates(ctx context.Context) error {
	grid := []struct {
		branchID uuid.UUID
		scope    domain.CommissionScope
		rate     string
	}{
		{SYS_PLATFORM_BRANCH, domain.ScopePlatformBaseFee, "1.50"},
		{SYS_PLATFORM_BRANCH, domain.ScopePlatformExchangeProfit, "1.50"},
		{SYS_BRANCH_A, domain.ScopeSendingBranchFee, "1.50"},
		{SYS_BRANCH_A, domain.ScopeReceivingBranchFee, "4.00"},
		{SYS_BRANCH_B, domain.ScopeSendingBranchFee, "1.50"},
		{SYS_BRANCH_B, domain.ScopeReceivingBranchFee, "4.00"},
	}

	for _, entry := range grid {
		if _, err := s.Rates.Lookup(ctx, entry.branchID, entry.scope); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		rate := &domain.CommissionRate{
			ID:        uuid.New(),
			BranchID:  entry.branchID,
			Scope:     entry.scope,
			RateValue: decimal.RequireFromString(entry.rate),
		}
		if err := rate.Validate(); err != nil {
			return err
		}
		if err := s.Rates.Create(ctx, rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSeeder) seedLegacyRates(ctx context.Context) error {
	for _, branchID := range []uuid.UUID{SYS_BRANCH_A, SYS_BRANCH_B} {
		if _, err := s.LegacyRates.GetByBranch(ctx, branchID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		rate := &domain.BranchFeeRate{
			ID:                      uuid.New(),
			BranchID:                branchID,
			SendingPerThousandUSD:   decimal.RequireFromString("1.00"),
			ReceivingPerThousandUSD: decimal.RequireFromString("4.00"),
		}
		if err := s.LegacyRates.Create(ctx, rate); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSeeder) seedFunds(ctx context.Context) error {
	names := []string{
		domain.PlatformFundName,
		"BRANCH_A Fund",
		"BRANCH_B Fund",
		"General Fund",
	}
	for _, name := range names {
		if _, err := s.Funds.GetByName(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := s.Funds.Create(ctx, domain.NewBranchFund(name)); err != nil {
			return err
		}
	}
	return nil
}
