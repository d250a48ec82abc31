package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// transferRepository implements domain.TransferRecordStore
type transferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer record repository
func NewTransferRepository(db *DB) domain.TransferRecordStore {
	return &transferRepository{db: db}
}

// Save persists a new transfer record
func (r *transferRepository) Save(ctx context.Context, record *domain.TransferRecord) error {
	query := `
		INSERT INTO transfer_records (
			id, sender_id, receiver_id, fund_id,
			gross_amount, source_currency, destination_currency,
			usd_equivalent, exchange_rate,
			platform_base_fee, platform_exchange_profit,
			sending_branch_fee, receiving_branch_fee, total_fee,
			sender_branch_id, receiver_branch_id,
			status, release_passcode, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.SenderID,
		record.ReceiverID,
		record.FundID,
		record.GrossAmount.String(),
		record.SourceCurrency,
		record.DestinationCurrency,
		record.USDEquivalent.String(),
		record.ExchangeRate.String(),
		record.PlatformBaseFee.String(),
		record.PlatformExchangeProfit.String(),
		record.SendingBranchFee.String(),
		record.ReceivingBranchFee.String(),
		record.TotalFee.String(),
		record.SenderBranchID,
		record.ReceiverBranchID,
		string(record.Status),
		record.ReleasePasscode,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transfer record: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a transfer record by its ID
func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	query := `
		SELECT id, sender_id, receiver_id, fund_id,
		       gross_amount, source_currency, destination_currency,
		       usd_equivalent, exchange_rate,
		       platform_base_fee, platform_exchange_profit,
		       sending_branch_fee, receiving_branch_fee, total_fee,
		       sender_branch_id, receiver_branch_id,
		       status, release_passcode, created_at, updated_at
		FROM transfer_records
		WHERE id = $1
	`
	record, err := scanTransferRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer record: %w", mapError(err))
	}
	return record, nil
}

// UpdateStatus transitions a record between statuses as an atomic
// compare-and-set. A zero-row update means the record either does not exist
// or already left the expected status; the existence probe disambiguates.
func (r *transferRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TransferStatus) error {
	query := `
		UPDATE transfer_records
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update transfer status: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM transfer_records WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe transfer record: %w", err)
		}
		if !exists {
			return fmt.Errorf("transfer record %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("transfer record %s is not %s: %w", id, from, domain.ErrConflict)
	}
	return nil
}

func scanTransferRecord(row pgx.Row) (*domain.TransferRecord, error) {
	var record domain.TransferRecord
	var grossStr, usdStr, rateStr string
	var baseStr, profitStr, sendingStr, receivingStr, totalStr string

	err := row.Scan(
		&record.ID,
		&record.SenderID,
		&record.ReceiverID,
		&record.FundID,
		&grossStr,
		&record.SourceCurrency,
		&record.DestinationCurrency,
		&usdStr,
		&rateStr,
		&baseStr,
		&profitStr,
		&sendingStr,
		&receivingStr,
		&totalStr,
		&record.SenderBranchID,
		&record.ReceiverBranchID,
		&record.Status,
		&record.ReleasePasscode,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&record.GrossAmount, grossStr},
		{&record.USDEquivalent, usdStr},
		{&record.ExchangeRate, rateStr},
		{&record.PlatformBaseFee, baseStr},
		{&record.PlatformExchangeProfit, profitStr},
		{&record.SendingBranchFee, sendingStr},
		{&record.ReceivingBranchFee, receivingStr},
		{&record.TotalFee, totalStr},
	}
	for _, field := range fields {
		value, err := decimal.NewFromString(field.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decimal column: %w", err)
		}
		*field.dst = value
	}
	return &record, nil
}
