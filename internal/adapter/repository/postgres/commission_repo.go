package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// commissionRateRepository implements domain.CommissionRateStore
type commissionRateRepository struct {
	db *DB
}

// NewCommissionRateRepository creates a new commission rate repository
func NewCommissionRateRepository(db *DB) domain.CommissionRateStore {
	return &commissionRateRepository{db: db}
}

// Lookup retrieves the rate for a (branch, scope) pair
func (r *commissionRateRepository) Lookup(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope) (*domain.CommissionRate, error) {
	query := `
		SELECT id, branch_id, scope, rate_value
		FROM commission_rates
		WHERE branch_id = $1 AND scope = $2
	`
	rate, err := scanCommissionRate(r.db.QueryRow(ctx, query, branchID, string(scope)))
	if err != nil {
		return nil, fmt.Errorf("failed to lookup rate %s/%s: %w", branchID, scope, mapError(err))
	}
	return rate, nil
}

// ListByBranch retrieves all configured rates for a branch
func (r *commissionRateRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*domain.CommissionRate, error) {
	query := `
		SELECT id, branch_id, scope, rate_value
		FROM commission_rates
		WHERE branch_id = $1
		ORDER BY scope
	`
	rows, err := r.db.Query(ctx, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates for branch %s: %w", branchID, err)
	}
	defer rows.Close()

	var rates []*domain.CommissionRate
	for rows.Next() {
		rate, err := scanCommissionRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// Update persists a new rate value for an existing (branch, scope) row
func (r *commissionRateRepository) Update(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope, rate decimal.Decimal) (*domain.CommissionRate, error) {
	query := `
		UPDATE commission_rates
		SET rate_value = $1
		WHERE branch_id = $2 AND scope = $3
		RETURNING id, branch_id, scope, rate_value
	`
	updated, err := scanCommissionRate(r.db.QueryRow(ctx, query, rate.String(), branchID, string(scope)))
	if err != nil {
		return nil, fmt.Errorf("failed to update rate %s/%s: %w", branchID, scope, mapError(err))
	}
	return updated, nil
}

// Create creates a commission rate row
func (r *commissionRateRepository) Create(ctx context.Context, rate *domain.CommissionRate) error {
	query := `
		INSERT INTO commission_rates (id, branch_id, scope, rate_value)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		rate.ID,
		rate.BranchID,
		string(rate.Scope),
		rate.RateValue.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create commission rate: %w", mapError(err))
	}
	return nil
}

func scanCommissionRate(row pgx.Row) (*domain.CommissionRate, error) {
	var rate domain.CommissionRate
	var valueStr string

	err := row.Scan(&rate.ID, &rate.BranchID, &rate.Scope, &valueStr)
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate_value: %w", err)
	}
	rate.RateValue = value
	return &rate, nil
}

// branchFeeRateRepository implements domain.BranchFeeRateStore
type branchFeeRateRepository struct {
	db *DB
}

// NewBranchFeeRateRepository creates a new legacy branch fee rate repository
func NewBranchFeeRateRepository(db *DB) domain.BranchFeeRateStore {
	return &branchFeeRateRepository{db: db}
}

// GetByBranch retrieves the legacy fee rate row for a branch
func (r *branchFeeRateRepository) GetByBranch(ctx context.Context, branchID uuid.UUID) (*domain.BranchFeeRate, error) {
	query := `
		SELECT id, branch_id, sending_per_thousand_usd, receiving_per_thousand_usd
		FROM branch_fee_rates
		WHERE branch_id = $1
	`

	var rate domain.BranchFeeRate
	var sendingStr, receivingStr string
	err := r.db.QueryRow(ctx, query, branchID).Scan(
		&rate.ID,
		&rate.BranchID,
		&sendingStr,
		&receivingStr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch fee rate: %w", mapError(err))
	}

	if rate.SendingPerThousandUSD, err = decimal.NewFromString(sendingStr); err != nil {
		return nil, fmt.Errorf("failed to parse sending_per_thousand_usd: %w", err)
	}
	if rate.ReceivingPerThousandUSD, err = decimal.NewFromString(receivingStr); err != nil {
		return nil, fmt.Errorf("failed to parse receiving_per_thousand_usd: %w", err)
	}
	return &rate, nil
}

// Create creates a legacy fee rate row
func (r *branchFeeRateRepository) Create(ctx context.Context, rate *domain.BranchFeeRate) error {
	query := `
		INSERT INTO branch_fee_rates (id, branch_id, sending_per_thousand_usd, receiving_per_thousand_usd)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query,
		rate.ID,
		rate.BranchID,
		rate.SendingPerThousandUSD.String(),
		rate.ReceivingPerThousandUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to create branch fee rate: %w", mapError(err))
	}
	return nil
}
