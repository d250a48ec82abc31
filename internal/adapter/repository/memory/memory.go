// Package memory provides in-memory store implementations with the same
// error taxonomy and atomicity semantics as the postgres adapters. They back
// the integration tests and local development without a database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyStore is an in-memory domain.CurrencyStore
type CurrencyStore struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency // keyed by code
}

// NewCurrencyStore creates an empty in-memory currency store
func NewCurrencyStore() *CurrencyStore {
	return &CurrencyStore{currencies: make(map[string]*domain.Currency)}
}

func (s *CurrencyStore) GetActiveByCode(ctx context.Context, code string) (*domain.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	currency, ok := s.currencies[code]
	if !ok || !currency.Active {
		return nil, fmt.Errorf("currency %s: %w", code, domain.ErrNotFound)
	}
	copied := *currency
	return &copied, nil
}

func (s *CurrencyStore) List(ctx context.Context) ([]*domain.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	currencies := make([]*domain.Currency, 0, len(s.currencies))
	for _, currency := range s.currencies {
		copied := *currency
		currencies = append(currencies, &copied)
	}
	return currencies, nil
}

func (s *CurrencyStore) Upsert(ctx context.Context, currency *domain.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *currency
	s.currencies[currency.Code] = &copied
	return nil
}

// BranchStore is an in-memory domain.BranchStore
type BranchStore struct {
	mu       sync.RWMutex
	branches map[uuid.UUID]*domain.Branch
}

// NewBranchStore creates an empty in-memory branch store
func NewBranchStore() *BranchStore {
	return &BranchStore{branches: make(map[uuid.UUID]*domain.Branch)}
}

func (s *BranchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	branch, ok := s.branches[id]
	if !ok {
		return nil, fmt.Errorf("branch %s: %w", id, domain.ErrNotFound)
	}
	copied := *branch
	return &copied, nil
}

func (s *BranchStore) GetPlatformBranch(ctx context.Context) (*domain.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, branch := range s.branches {
		if branch.IsPlatform() {
			copied := *branch
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("platform branch: %w", domain.ErrNotFound)
}

func (s *BranchStore) Create(ctx context.Context, branch *domain.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.branches[branch.ID]; exists {
		return fmt.Errorf("branch %s: %w", branch.ID, domain.ErrConflict)
	}
	copied := *branch
	s.branches[branch.ID] = &copied
	return nil
}

// FundStore is an in-memory domain.FundStore. AtomicApply holds the single
// store lock for the whole apply, which gives the same all-or-nothing
// observability guarantee as the postgres transaction.
type FundStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*domain.Fund
	byName  map[string]uuid.UUID
	applied int // number of successful applies, visible to tests
}

// NewFundStore creates an empty in-memory fund store
func NewFundStore() *FundStore {
	return &FundStore{
		byID:   make(map[uuid.UUID]*domain.Fund),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *FundStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fund, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("fund %s: %w", id, domain.ErrNotFound)
	}
	copied := *fund
	return &copied, nil
}

func (s *FundStore) GetByName(ctx context.Context, name string) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("fund %q: %w", name, domain.ErrNotFound)
	}
	copied := *s.byID[id]
	return &copied, nil
}

func (s *FundStore) Create(ctx context.Context, fund *domain.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[fund.Name]; exists {
		return fmt.Errorf("fund %q: %w", fund.Name, domain.ErrConflict)
	}
	copied := *fund
	s.byID[fund.ID] = &copied
	s.byName[fund.Name] = fund.ID
	return nil
}

func (s *FundStore) AtomicApply(ctx context.Context, deltas []domain.FundDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate every delta before touching any balance
	for _, delta := range deltas {
		fund, ok := s.byID[delta.FundID]
		if !ok {
			return fmt.Errorf("fund %s: %w", delta.FundID, domain.ErrNotFound)
		}
		next := fund.Balance.Add(delta.Amount)
		if delta.EnforceNonNegative && next.IsNegative() {
			return fmt.Errorf("fund %s: %w", delta.FundID, domain.ErrInsufficientFunds)
		}
	}

	for _, delta := range deltas {
		fund := s.byID[delta.FundID]
		fund.Balance = fund.Balance.Add(delta.Amount)
	}
	s.applied++
	return nil
}

// AppliedCount reports how many applies committed, for test assertions.
func (s *FundStore) AppliedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// CommissionRateStore is an in-memory domain.CommissionRateStore
type CommissionRateStore struct {
	mu    sync.RWMutex
	rates map[string]*domain.CommissionRate // keyed by branchID + scope
}

// NewCommissionRateStore creates an empty in-memory commission rate store
func NewCommissionRateStore() *CommissionRateStore {
	return &CommissionRateStore{rates: make(map[string]*domain.CommissionRate)}
}

func rateKey(branchID uuid.UUID, scope domain.CommissionScope) string {
	return branchID.String() + "/" + string(scope)
}

func (s *CommissionRateStore) Lookup(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope) (*domain.CommissionRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[rateKey(branchID, scope)]
	if !ok {
		return nil, fmt.Errorf("rate %s/%s: %w", branchID, scope, domain.ErrNotFound)
	}
	copied := *rate
	return &copied, nil
}

func (s *CommissionRateStore) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*domain.CommissionRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rates []*domain.CommissionRate
	for _, rate := range s.rates {
		if rate.BranchID == branchID {
			copied := *rate
			rates = append(rates, &copied)
		}
	}
	return rates, nil
}

func (s *CommissionRateStore) Update(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope, value decimal.Decimal) (*domain.CommissionRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rate, ok := s.rates[rateKey(branchID, scope)]
	if !ok {
		return nil, fmt.Errorf("rate %s/%s: %w", branchID, scope, domain.ErrNotFound)
	}
	rate.RateValue = value
	copied := *rate
	return &copied, nil
}

func (s *CommissionRateStore) Create(ctx context.Context, rate *domain.CommissionRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rateKey(rate.BranchID, rate.Scope)
	if _, exists := s.rates[key]; exists {
		return fmt.Errorf("rate %s/%s: %w", rate.BranchID, rate.Scope, domain.ErrConflict)
	}
	copied := *rate
	s.rates[key] = &copied
	return nil
}

// BranchFeeRateStore is an in-memory domain.BranchFeeRateStore
type BranchFeeRateStore struct {
	mu    sync.RWMutex
	rates map[uuid.UUID]*domain.BranchFeeRate
}

// NewBranchFeeRateStore creates an empty in-memory legacy fee rate store
func NewBranchFeeRateStore() *BranchFeeRateStore {
	return &BranchFeeRateStore{rates: make(map[uuid.UUID]*domain.BranchFeeRate)}
}

func (s *BranchFeeRateStore) GetByBranch(ctx context.Context, branchID uuid.UUID) (*domain.BranchFeeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[branchID]
	if !ok {
		return nil, fmt.Errorf("branch fee rate %s: %w", branchID, domain.ErrNotFound)
	}
	copied := *rate
	return &copied, nil
}

func (s *BranchFeeRateStore) Create(ctx context.Context, rate *domain.BranchFeeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rates[rate.BranchID]; exists {
		return fmt.Errorf("branch fee rate %s: %w", rate.BranchID, domain.ErrConflict)
	}
	copied := *rate
	s.rates[rate.BranchID] = &copied
	return nil
}

// TransferStore is an in-memory domain.TransferRecordStore
type TransferStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*domain.TransferRecord
}

// NewTransferStore creates an empty in-memory transfer record store
func NewTransferStore() *TransferStore {
	return &TransferStore{records: make(map[uuid.UUID]*domain.TransferRecord)}
}

func (s *TransferStore) Save(ctx context.Context, record *domain.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("transfer record %s: %w", record.ID, domain.ErrConflict)
	}
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *TransferStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("transfer record %s: %w", id, domain.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}

func (s *TransferStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.TransferStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("transfer record %s: %w", id, domain.ErrNotFound)
	}
	if record.Status != from {
		return fmt.Errorf("transfer record %s is not %s: %w", id, from, domain.ErrConflict)
	}
	record.Status = to
	return nil
}
