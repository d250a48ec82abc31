package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultFetchTimeout bounds one call to the external rate provider.
const DefaultFetchTimeout = 3 * time.Second

// staticRates is the deterministic fallback table used whenever the external
// provider fails, hangs past the timeout or knows nothing about the code.
var staticRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"TL":  decimal.RequireFromString("0.0241"),
	"EUR": decimal.RequireFromString("1.08"),
	"GBP": decimal.RequireFromString("1.25"),
}

// RateService quotes exchange rates against USD, consulting the external
// provider first and degrading to the static table on any failure. Provider
// trouble never propagates to callers.
type RateService struct {
	Source        domain.RateSource
	CurrencyStore domain.CurrencyStore
	FetchTimeout  time.Duration
	Log           *slog.Logger
}

// NewRateService creates a new RateService instance
func NewRateService(source domain.RateSource, currencyStore domain.CurrencyStore, log *slog.Logger) *RateService {
	return &RateService{
		Source:        source,
		CurrencyStore: currencyStore,
		FetchTimeout:  DefaultFetchTimeout,
		Log:           log,
	}
}

// Quote returns the provider's quote for one currency, or the static fallback
// when the provider fails or returns garbage. The returned quote always has a
// positive mid rate.
func (s *RateService) Quote(ctx context.Context, code string) *domain.RateQuote {
	quote, _ := s.fetch(ctx, code)
	return quote
}

// RefreshCurrency fetches a fresh quote and upserts it into the currency
// store. Manual currencies are left alone.
func (s *RateService) RefreshCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	existing, err := s.CurrencyStore.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("currency %s: %w", code, err)
	}
	if existing.Manual {
		return existing, nil
	}

	quote, fromProvider := s.fetch(ctx, code)

	existing.ExchangeRateToUSD = quote.Mid
	if quote.Buying.IsPositive() {
		existing.ForexBuyingToUSD = quote.Buying
	}
	if quote.Selling.IsPositive() {
		existing.ForexSellingToUSD = quote.Selling
	}
	if fromProvider {
		existing.SourceAPI = "external"
	} else {
		existing.SourceAPI = "static"
	}
	existing.UpdatedAt = time.Now()

	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("refreshed currency %s: %w", code, err)
	}
	if err := s.CurrencyStore.Upsert(ctx, existing); err != nil {
		return nil, fmt.Errorf("upsert currency %s: %w", code, err)
	}
	return existing, nil
}

// fetch consults the provider under the configured timeout and reports whether
// the quote actually came from it.
func (s *RateService) fetch(ctx context.Context, code string) (*domain.RateQuote, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.FetchTimeout)
	defer cancel()

	quote, err := s.Source.Rate(fetchCtx, code)
	if err == nil && quote != nil && quote.Mid.IsPositive() {
		return quote, true
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.Log.Warn("rate provider failed, using static rate",
			slog.String("currency", code),
			slog.String("error", err.Error()))
	}
	return s.staticQuote(code), false
}

func (s *RateService) staticQuote(code string) *domain.RateQuote {
	mid, ok := staticRates[code]
	if !ok {
		mid = decimal.NewFromInt(1)
		s.Log.Warn("no static rate for currency, defaulting to parity",
			slog.String("currency", code))
	}
	return &domain.RateQuote{Code: code, Mid: mid}
}
