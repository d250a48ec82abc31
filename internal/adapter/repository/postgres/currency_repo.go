package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// currencyRepository implements domain.CurrencyStore
type currencyRepository struct {
	db *DB
}

// NewCurrencyRepository creates a new currency repository
func NewCurrencyRepository(db *DB) domain.CurrencyStore {
	return &currencyRepository{db: db}
}

const currencyColumns = `
	id, code, name, exchange_rate_to_usd, forex_buying_to_usd,
	forex_selling_to_usd, symbol, active, manual, source_api,
	created_at, updated_at
`

// GetActiveByCode retrieves an active currency by its code
func (r *currencyRepository) GetActiveByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE code = $1 AND active = TRUE
	`
	currency, err := scanCurrency(r.db.QueryRow(ctx, query, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get currency %s: %w", code, mapError(err))
	}
	return currency, nil
}

// List retrieves all currencies
func (r *currencyRepository) List(ctx context.Context) ([]*domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		ORDER BY code
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []*domain.Currency
	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, currency)
	}
	return currencies, rows.Err()
}

// Upsert creates or updates a currency by code
func (r *currencyRepository) Upsert(ctx context.Context, currency *domain.Currency) error {
	query := `
		INSERT INTO currencies (
			id, code, name, exchange_rate_to_usd, forex_buying_to_usd,
			forex_selling_to_usd, symbol, active, manual, source_api
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			exchange_rate_to_usd = EXCLUDED.exchange_rate_to_usd,
			forex_buying_to_usd = EXCLUDED.forex_buying_to_usd,
			forex_selling_to_usd = EXCLUDED.forex_selling_to_usd,
			symbol = EXCLUDED.symbol,
			active = EXCLUDED.active,
			manual = EXCLUDED.manual,
			source_api = EXCLUDED.source_api,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		currency.ID,
		currency.Code,
		currency.Name,
		currency.ExchangeRateToUSD.String(),
		currency.ForexBuyingToUSD.String(),
		currency.ForexSellingToUSD.String(),
		currency.Symbol,
		currency.Active,
		currency.Manual,
		currency.SourceAPI,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert currency %s: %w", currency.Code, mapError(err))
	}
	return nil
}

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var currency domain.Currency
	var midStr, buyingStr, sellingStr string

	err := row.Scan(
		&currency.ID,
		&currency.Code,
		&currency.Name,
		&midStr,
		&buyingStr,
		&sellingStr,
		&currency.Symbol,
		&currency.Active,
		&currency.Manual,
		&currency.SourceAPI,
		&currency.CreatedAt,
		&currency.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currency.ExchangeRateToUSD, err = decimal.NewFromString(midStr); err != nil {
		return nil, fmt.Errorf("failed to parse exchange_rate_to_usd: %w", err)
	}
	if currency.ForexBuyingToUSD, err = decimal.NewFromString(buyingStr); err != nil {
		return nil, fmt.Errorf("failed to parse forex_buying_to_usd: %w", err)
	}
	if currency.ForexSellingToUSD, err = decimal.NewFromString(sellingStr); err != nil {
		return nil, fmt.Errorf("failed to parse forex_selling_to_usd: %w", err)
	}
	return &currency, nil
}
