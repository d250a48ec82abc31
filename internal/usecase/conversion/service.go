package conversion

import (
	"context"
	"fmt"

	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultMargin is the forex margin fraction applied on both legs of a
// conversion when no explicit margin is configured.
var DefaultMargin = decimal.RequireFromString("0.0015")

const (
	usdScale   = 8 // intermediate USD amounts keep 8 fractional digits
	finalScale = 2 // presented currency amounts keep 2 fractional digits
)

// ConversionService converts amounts between currencies through the USD pivot,
// applying the forex margin to the buying and selling legs.
type ConversionService struct {
	CurrencyStore domain.CurrencyStore
	Margin        decimal.Decimal
}

// NewConversionService creates a ConversionService with the default margin.
// Assign Margin directly for a custom fraction; zero disables the margin.
func NewConversionService(currencyStore domain.CurrencyStore) *ConversionService {
	return &ConversionService{
		CurrencyStore: currencyStore,
		Margin:        DefaultMargin,
	}
}

// Convert converts amount from one currency to another.
// Same-currency conversion is the identity: the amount comes back unchanged
// and no margin is applied. Otherwise the amount goes to USD on the source
// currency's buying rate minus margin, then to the target currency on its
// selling rate plus margin. The result is presented at 2 decimals, half-up.
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}

	fromCurrency, err := s.lookup(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	toCurrency, err := s.lookup(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}

	usd := s.toUSDWithMargin(amount, fromCurrency)
	result := s.fromUSDWithMargin(usd, toCurrency)
	return result.Round(finalScale), nil
}

// ToUSD converts an amount to its USD equivalent on the official mid rate,
// with no margin and no rounding. Fee pricing and cross-branch accounting
// use this exact product.
func (s *ConversionService) ToUSD(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	if code == domain.USDCode {
		return amount, nil
	}
	currency, err := s.lookup(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(currency.ExchangeRateToUSD), nil
}

// OfficialRate returns the un-margined mid rate between two currencies,
// queryable independently for audit and display.
func (s *ConversionService) OfficialRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}
	fromCurrency, err := s.lookup(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	toCurrency, err := s.lookup(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return fromCurrency.ExchangeRateToUSD.DivRound(toCurrency.ExchangeRateToUSD, usdScale), nil
}

// AppliedRate returns the margined rate a conversion actually uses.
func (s *ConversionService) AppliedRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return decimal.NewFromInt(1), nil
	}

	one := decimal.NewFromInt(1)

	// A -> USD: buying rate minus margin
	if toCode == domain.USDCode {
		fromCurrency, err := s.lookup(ctx, fromCode)
		if err != nil {
			return decimal.Zero, err
		}
		return fromCurrency.BuyingRate().Mul(one.Sub(s.Margin)), nil
	}

	// USD -> B: inverse of selling rate plus margin
	if fromCode == domain.USDCode {
		toCurrency, err := s.lookup(ctx, toCode)
		if err != nil {
			return decimal.Zero, err
		}
		return one.DivRound(toCurrency.SellingRate().Mul(one.Add(s.Margin)), usdScale), nil
	}

	// A -> B: through USD, margin on both legs
	fromCurrency, err := s.lookup(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	toCurrency, err := s.lookup(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	adjustedBuying := fromCurrency.BuyingRate().Mul(one.Sub(s.Margin))
	adjustedSelling := toCurrency.SellingRate().Mul(one.Add(s.Margin))
	return adjustedBuying.DivRound(adjustedSelling, usdScale), nil
}

// toUSDWithMargin applies the buying rate minus margin for the inbound leg.
func (s *ConversionService) toUSDWithMargin(amount decimal.Decimal, from *domain.Currency) decimal.Decimal {
	if from.Code == domain.USDCode {
		return amount
	}
	adjusted := from.BuyingRate().Mul(decimal.NewFromInt(1).Sub(s.Margin))
	return amount.Mul(adjusted).Round(usdScale)
}

// fromUSDWithMargin applies the selling rate plus margin for the outbound leg.
func (s *ConversionService) fromUSDWithMargin(usd decimal.Decimal, to *domain.Currency) decimal.Decimal {
	if to.Code == domain.USDCode {
		return usd
	}
	adjusted := to.SellingRate().Mul(decimal.NewFromInt(1).Add(s.Margin))
	return usd.DivRound(adjusted, usdScale)
}

func (s *ConversionService) lookup(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.CurrencyStore.GetActiveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("currency %s: %w", code, err)
	}
	return currency, nil
}
