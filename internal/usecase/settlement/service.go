package settlement

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

// maxApplyAttempts bounds the retries of the atomic ledger apply when a
// concurrent settlement wins the race. Only ErrConflict is retried.
const maxApplyAttempts = 3

// CurrencyConverter is the conversion capability the engine needs
type CurrencyConverter interface {
	ToUSD(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error)
	AppliedRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}

// FeeCalculator is the fee computation capability the engine needs
type FeeCalculator interface {
	ComputeFees(
		ctx context.Context,
		usdEquivalent decimal.Decimal,
		sourceCurrency, destinationCurrency string,
		sendingBranchID, receivingBranchID, platformBranchID uuid.UUID,
	) (domain.FeeBreakdown, error)
}

// TransferInput represents the input for a comprehensive transfer
type TransferInput struct {
	SenderID            uuid.UUID
	ReceiverID          uuid.UUID
	FundID              uuid.UUID
	Amount              decimal.Decimal
	SourceCurrency      string
	DestinationCurrency string
	SenderBranchID      uuid.UUID
	ReceiverBranchID    uuid.UUID
}

// TransferReceipt is the comprehensive record a settlement produces
type TransferReceipt struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	FundID     uuid.UUID

	GrossAmount         decimal.Decimal
	NetAmount           decimal.Decimal // USD equivalent routed to the receiving branch
	TotalFee            decimal.Decimal
	SourceCurrency      string
	DestinationCurrency string
	ExchangeRate        decimal.Decimal
	USDEquivalent       decimal.Decimal

	PlatformBaseFee        decimal.Decimal
	PlatformExchangeProfit decimal.Decimal
	SendingBranchFee       decimal.Decimal
	ReceivingBranchFee     decimal.Decimal

	SenderBranchID     uuid.UUID
	ReceiverBranchID   uuid.UUID
	SenderBranchName   string
	ReceiverBranchName string

	// Fund routing: what each ledger gained or lost
	PlatformFundCredit       decimal.Decimal
	SenderBranchFundDebit    decimal.Decimal
	ReceiverBranchFundCredit decimal.Decimal
	InterBranchDebt          decimal.Decimal

	Status          domain.TransferStatus
	ReleasePasscode string
	CreatedAt       time.Time
}

// SimpleTransferInput represents the input for the legacy transfer path
type SimpleTransferInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	FundID     uuid.UUID
	Amount     decimal.Decimal
}

// SettlementService orchestrates one transfer end to end: validate, convert,
// price, authorize, mutate the four ledgers atomically, mint the release
// passcode and record the immutable transaction.
type SettlementService struct {
	FundStore     domain.FundStore
	BranchStore   domain.BranchStore
	TransferStore domain.TransferRecordStore
	Converter     CurrencyConverter
	Fees          FeeCalculator
	Notifier      domain.Notifier
	Audit         domain.AuditSink
	Log           *slog.Logger
}

// NewSettlementService creates a new SettlementService instance
func NewSettlementService(
	fundStore domain.FundStore,
	branchStore domain.BranchStore,
	transferStore domain.TransferRecordStore,
	converter CurrencyConverter,
	fees FeeCalculator,
	notifier domain.Notifier,
	audit domain.AuditSink,
	log *slog.Logger,
) *SettlementService {
	return &SettlementService{
		FundStore:     fundStore,
		BranchStore:   branchStore,
		TransferStore: transferStore,
		Converter:     converter,
		Fees:          fees,
		Notifier:      notifier,
		Audit:         audit,
		Log:           log,
	}
}

// ExecuteTransfer runs the comprehensive settlement. Stages:
// validate -> compute -> authorize -> settle (atomic) -> record.
// Any failure before the ledger apply aborts with zero side effects; the apply
// itself is all-or-nothing and retried only on a lost concurrency race.
func (s *SettlementService) ExecuteTransfer(ctx context.Context, actor domain.Actor, input TransferInput) (*TransferReceipt, error) {
	// Validate
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidTransaction)
	}
	if input.SenderID == input.ReceiverID {
		return nil, fmt.Errorf("%w: sender and receiver cannot be the same", domain.ErrInvalidTransaction)
	}

	clientFund, err := s.FundStore.GetByID(ctx, input.FundID)
	if err != nil {
		return nil, fmt.Errorf("fund %s: %w", input.FundID, err)
	}
	if !clientFund.IsActive() {
		return nil, fmt.Errorf("%w: fund %s is not active", domain.ErrInvalidTransaction, clientFund.Name)
	}

	senderBranch, err := s.BranchStore.GetByID(ctx, input.SenderBranchID)
	if err != nil {
		return nil, fmt.Errorf("sender branch %s: %w", input.SenderBranchID, err)
	}
	receiverBranch, err := s.BranchStore.GetByID(ctx, input.ReceiverBranchID)
	if err != nil {
		return nil, fmt.Errorf("receiver branch %s: %w", input.ReceiverBranchID, err)
	}
	platformBranch, err := s.BranchStore.GetPlatformBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform branch: %w", err)
	}

	// Compute
	usdEquivalent, err := s.Converter.ToUSD(ctx, input.Amount, input.SourceCurrency)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.Fees.ComputeFees(ctx, usdEquivalent,
		input.SourceCurrency, input.DestinationCurrency,
		senderBranch.ID, receiverBranch.ID, platformBranch.ID)
	if err != nil {
		return nil, err
	}
	exchangeRate, err := s.Converter.AppliedRate(ctx, input.SourceCurrency, input.DestinationCurrency)
	if err != nil {
		return nil, err
	}

	totalFee := breakdown.TotalFee()
	// Fees are USD-denominated but the client debit is principal plus fees
	// summed directly in source-currency units.
	totalDebit := input.Amount.Add(totalFee)

	// Authorize
	if clientFund.Balance.LessThan(totalDebit) {
		return nil, fmt.Errorf("%w: fund %s requires %s, has %s",
			domain.ErrInsufficientFunds, clientFund.Name, totalDebit, clientFund.Balance)
	}

	// Settle
	platformFund, err := s.getOrCreateFund(ctx, domain.PlatformFundName)
	if err != nil {
		return nil, err
	}
	senderBranchFund, err := s.getOrCreateFund(ctx, senderBranch.FundName())
	if err != nil {
		return nil, err
	}
	receiverBranchFund, err := s.getOrCreateFund(ctx, receiverBranch.FundName())
	if err != nil {
		return nil, err
	}

	ledger := &LedgerSet{
		ClientFund:         clientFund,
		SenderBranchFund:   senderBranchFund,
		PlatformFund:       platformFund,
		ReceiverBranchFund: receiverBranchFund,
	}
	if err := s.applyWithRetry(ctx, ledger.Deltas(input.Amount, breakdown)); err != nil {
		return nil, err
	}

	// Record
	passcode, err := GenerateReleasePasscode()
	if err != nil {
		return nil, err
	}

	record := &domain.TransferRecord{
		ID:                     uuid.New(),
		SenderID:               input.SenderID,
		ReceiverID:             input.ReceiverID,
		FundID:                 clientFund.ID,
		GrossAmount:            input.Amount,
		SourceCurrency:         input.SourceCurrency,
		DestinationCurrency:    input.DestinationCurrency,
		USDEquivalent:          usdEquivalent,
		ExchangeRate:           exchangeRate,
		PlatformBaseFee:        breakdown.PlatformBaseFee,
		PlatformExchangeProfit: breakdown.PlatformExchangeProfit,
		SendingBranchFee:       breakdown.SendingBranchFee,
		ReceivingBranchFee:     breakdown.ReceivingBranchFee,
		TotalFee:               totalFee,
		SenderBranchID:         senderBranch.ID,
		ReceiverBranchID:       receiverBranch.ID,
		Status:                 domain.TransferStatusCompleted,
		ReleasePasscode:        passcode,
		CreatedAt:              time.Now(),
	}
	if err := s.TransferStore.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save transfer record: %w", err)
	}

	s.sendTransferNotifications(ctx, record, senderBranch, receiverBranch)
	s.audit(ctx, "EXECUTE_TRANSFER", actor, "transaction", record.ID)

	return &TransferReceipt{
		ID:                       record.ID,
		SenderID:                 record.SenderID,
		ReceiverID:               record.ReceiverID,
		FundID:                   record.FundID,
		GrossAmount:              record.GrossAmount,
		NetAmount:                usdEquivalent,
		TotalFee:                 totalFee,
		SourceCurrency:           record.SourceCurrency,
		DestinationCurrency:      record.DestinationCurrency,
		ExchangeRate:             exchangeRate,
		USDEquivalent:            usdEquivalent,
		PlatformBaseFee:          breakdown.PlatformBaseFee,
		PlatformExchangeProfit:   breakdown.PlatformExchangeProfit,
		SendingBranchFee:         breakdown.SendingBranchFee,
		ReceivingBranchFee:       breakdown.ReceivingBranchFee,
		SenderBranchID:           senderBranch.ID,
		ReceiverBranchID:         receiverBranch.ID,
		SenderBranchName:         senderBranch.Name,
		ReceiverBranchName:       receiverBranch.Name,
		PlatformFundCredit:       breakdown.PlatformTotal(),
		SenderBranchFundDebit:    usdEquivalent.Add(totalFee),
		ReceiverBranchFundCredit: usdEquivalent,
		InterBranchDebt:          usdEquivalent,
		Status:                   record.Status,
		ReleasePasscode:          record.ReleasePasscode,
		CreatedAt:                record.CreatedAt,
	}, nil
}

// CreateSimpleTransfer is the legacy transfer path: principal-only debit of
// the client fund, with PENDING/FAILED bookkeeping states around the debit.
func (s *SettlementService) CreateSimpleTransfer(ctx context.Context, actor domain.Actor, input SimpleTransferInput) (*domain.TransferRecord, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidTransaction)
	}
	if input.SenderID == input.ReceiverID {
		return nil, fmt.Errorf("%w: sender and receiver cannot be the same", domain.ErrInvalidTransaction)
	}

	fund, err := s.FundStore.GetByID(ctx, input.FundID)
	if err != nil {
		return nil, fmt.Errorf("fund %s: %w", input.FundID, err)
	}
	if !fund.IsActive() {
		return nil, fmt.Errorf("%w: fund %s is not active", domain.ErrInvalidTransaction, fund.Name)
	}
	if fund.Balance.LessThan(input.Amount) {
		return nil, fmt.Errorf("%w: fund %s", domain.ErrInsufficientFunds, fund.Name)
	}

	record := &domain.TransferRecord{
		ID:                  uuid.New(),
		SenderID:            input.SenderID,
		ReceiverID:          input.ReceiverID,
		FundID:              fund.ID,
		GrossAmount:         input.Amount,
		SourceCurrency:      domain.USDCode,
		DestinationCurrency: domain.USDCode,
		Status:              domain.TransferStatusPending,
		CreatedAt:           time.Now(),
	}
	if err := s.TransferStore.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save transfer record: %w", err)
	}

	deltas := []domain.FundDelta{{
		FundID:             fund.ID,
		Amount:             input.Amount.Neg(),
		EnforceNonNegative: true,
	}}
	if err := s.applyWithRetry(ctx, deltas); err != nil {
		if statusErr := s.TransferStore.UpdateStatus(ctx, record.ID, domain.TransferStatusPending, domain.TransferStatusFailed); statusErr != nil {
			s.Log.Error("failed to mark transfer FAILED",
				slog.String("transfer_id", record.ID.String()),
				slog.String("error", statusErr.Error()))
		}
		return nil, fmt.Errorf("%w: transfer failed: %s", domain.ErrInvalidTransaction, err)
	}

	if err := s.TransferStore.UpdateStatus(ctx, record.ID, domain.TransferStatusPending, domain.TransferStatusCompleted); err != nil {
		return nil, fmt.Errorf("complete transfer record: %w", err)
	}
	record.Status = domain.TransferStatusCompleted

	s.audit(ctx, "CREATE_TRANSACTION", actor, "transaction", record.ID)

	return record, nil
}

// applyWithRetry applies the ledger deltas, retrying a bounded number of times
// when a concurrent apply wins the race. Business failures are never retried.
func (s *SettlementService) applyWithRetry(ctx context.Context, deltas []domain.FundDelta) error {
	var err error
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		err = s.FundStore.AtomicApply(ctx, deltas)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("ledger apply: %w", err)
		}
		s.Log.Warn("ledger apply conflict, retrying",
			slog.Int("attempt", attempt))
	}
	return fmt.Errorf("ledger apply exhausted %d attempts: %w", maxApplyAttempts, err)
}

// getOrCreateFund resolves a settlement fund by name, lazily creating it with
// the conventional starting balance. A create lost to a concurrent settlement
// falls back to re-reading the winner's row.
func (s *SettlementService) getOrCreateFund(ctx context.Context, name string) (*domain.Fund, error) {
	fund, err := s.FundStore.GetByName(ctx, name)
	if err == nil {
		return fund, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("fund %q: %w", name, err)
	}

	fund = domain.NewBranchFund(name)
	if createErr := s.FundStore.Create(ctx, fund); createErr != nil {
		if errors.Is(createErr, domain.ErrConflict) {
			return s.FundStore.GetByName(ctx, name)
		}
		return nil, fmt.Errorf("create fund %q: %w", name, createErr)
	}
	return fund, nil
}

// sendTransferNotifications emits the two side channels of a settlement: an
// internal alert to the receiving branch, which must never see the passcode,
// and email + SMS confirmations to the sender, which carry it. Delivery is
// best-effort; failures are logged and swallowed.
func (s *SettlementService) sendTransferNotifications(ctx context.Context, record *domain.TransferRecord, senderBranch, receiverBranch *domain.Branch) {
	branchAlert := fmt.Sprintf(
		"New money transfer received - Transaction ID: %s, Sender Branch: %s, Receiver: %s, Amount: %s %s. Please prepare for client pickup.",
		record.ID, senderBranch.Name, record.ReceiverID, record.GrossAmount, record.SourceCurrency)
	if err := s.Notifier.AlertBranch(ctx, receiverBranch.ID, branchAlert); err != nil {
		s.Log.Error("branch alert failed",
			slog.String("transfer_id", record.ID.String()),
			slog.String("error", err.Error()))
	}

	emailBody := fmt.Sprintf(
		"Your money transfer has been processed successfully. Transaction ID: %s, Amount: %s %s, Receiver: %s. Release Passcode: %s. Please provide this passcode to the receiver for pickup.",
		record.ID, record.GrossAmount, record.SourceCurrency, record.ReceiverID, record.ReleasePasscode)
	if err := s.Notifier.EmailSender(ctx, record.SenderID, "Money Transfer Processed", emailBody); err != nil {
		s.Log.Error("sender email failed",
			slog.String("transfer_id", record.ID.String()),
			slog.String("error", err.Error()))
	}

	smsBody := fmt.Sprintf("Transfer processed. ID: %s, Amount: %s. Passcode: %s",
		record.ID, record.GrossAmount, record.ReleasePasscode)
	if err := s.Notifier.SMSSender(ctx, record.SenderID, smsBody); err != nil {
		s.Log.Error("sender sms failed",
			slog.String("transfer_id", record.ID.String()),
			slog.String("error", err.Error()))
	}
}

// audit records the action best-effort; a sink failure never fails the
// settlement.
func (s *SettlementService) audit(ctx context.Context, action string, actor domain.Actor, entityType string, entityID uuid.UUID) {
	if err := s.Audit.Record(ctx, action, actor.ID, entityType, entityID); err != nil {
		s.Log.Error("audit sink failed",
			slog.String("action", action),
			slog.String("entity_id", entityID.String()),
			slog.String("error", err.Error()))
	}
}
