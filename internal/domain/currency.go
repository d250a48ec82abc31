package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// USDCode is the pivot currency for all cross-currency accounting.
const USDCode = "USD"

// Currency represents a currency entity in the domain layer
// All rates are expressed against 1 USD.
type Currency struct {
	ID   uuid.UUID
	Code string // e.g. USD, EUR, TL
	Name string

	// ExchangeRateToUSD is the official mid rate (1.0 for USD itself)
	ExchangeRateToUSD decimal.Decimal
	// ForexBuyingToUSD is used when a branch buys this currency from a client (inbound)
	ForexBuyingToUSD decimal.Decimal
	// ForexSellingToUSD is used when a branch sells this currency to a client (outbound)
	ForexSellingToUSD decimal.Decimal

	Symbol    string
	Active    bool
	Manual    bool   // rate managed by hand, the rates service must not overwrite it
	SourceAPI string // which provider last updated the rate

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate ensures the currency adheres to domain rules
func (c *Currency) Validate() error {
	if c.Code == "" {
		return errors.New("currency code cannot be empty")
	}
	if c.ExchangeRateToUSD.LessThanOrEqual(decimal.Zero) {
		return errors.New("exchange rate to USD must be positive")
	}
	if c.Code == USDCode && !c.ExchangeRateToUSD.Equal(decimal.NewFromInt(1)) {
		return errors.New("USD mid rate must be exactly 1")
	}
	return nil
}

// BuyingRate returns the forex buying rate, falling back to the official mid
// rate when no explicit spread is recorded.
func (c *Currency) BuyingRate() decimal.Decimal {
	if c.ForexBuyingToUSD.IsPositive() {
		return c.ForexBuyingToUSD
	}
	return c.ExchangeRateToUSD
}

// SellingRate returns the forex selling rate, falling back to the official mid
// rate when no explicit spread is recorded.
func (c *Currency) SellingRate() decimal.Decimal {
	if c.ForexSellingToUSD.IsPositive() {
		return c.ForexSellingToUSD
	}
	return c.ExchangeRateToUSD
}

// RateQuote is the answer of an external rate provider for one currency,
// everything expressed against USD.
type RateQuote struct {
	Code    string
	Mid     decimal.Decimal
	Buying  decimal.Decimal
	Selling decimal.Decimal
}
