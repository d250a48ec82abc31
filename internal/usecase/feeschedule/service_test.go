package feeschedule

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCommissionRateStore is a mock implementation of CommissionRateStore for testing
type MockCommissionRateStore struct {
	mock.Mock
}

func (m *MockCommissionRateStore) Lookup(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope) (*domain.CommissionRate, error) {
	args := m.Called(ctx, branchID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRate), args.Error(1)
}

func (m *MockCommissionRateStore) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*domain.CommissionRate, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommissionRate), args.Error(1)
}

func (m *MockCommissionRateStore) Update(ctx context.Context, branchID uuid.UUID, scope domain.CommissionScope, rate decimal.Decimal) (*domain.CommissionRate, error) {
	args := m.Called(ctx, branchID, scope, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRate), args.Error(1)
}

func (m *MockCommissionRateStore) Create(ctx context.Context, rate *domain.CommissionRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// MockBranchFeeRateStore is a mock implementation of BranchFeeRateStore for testing
type MockBranchFeeRateStore struct {
	mock.Mock
}

func (m *MockBranchFeeRateStore) GetByBranch(ctx context.Context, branchID uuid.UUID) (*domain.BranchFeeRate, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BranchFeeRate), args.Error(1)
}

func (m *MockBranchFeeRateStore) Create(ctx context.Context, rate *domain.BranchFeeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func commissionRate(branchID uuid.UUID, scope domain.CommissionScope, rate string) *domain.CommissionRate {
	return &domain.CommissionRate{
		ID:        uuid.New(),
		BranchID:  branchID,
		Scope:     scope,
		RateValue: decimal.RequireFromString(rate),
	}
}

func TestThousandUSDUnits_CeilingRule(t *testing.T) {
	cases := []struct {
		usd   string
		units int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"998.945", 1},
		{"1000.00", 1},
		{"1000.01", 2},
		{"5000.00", 5},
		{"5000.01", 6},
	}
	for _, c := range cases {
		units := ThousandUSDUnits(decimal.RequireFromString(c.usd))
		assert.True(t, units.Equal(decimal.NewFromInt(c.units)),
			"usd=%s expected %d units, got %s", c.usd, c.units, units)
	}
}

// 41,450 TL at mid rate 0.0241 => 998.945 USD-equivalent => 1 unit.
func TestComputeFees_SingleUnitCrossCurrency(t *testing.T) {
	ctx := context.Background()
	commissionStore := new(MockCommissionRateStore)
	service := NewFeeScheduleService(commissionStore, new(MockBranchFeeRateStore))

	platformBranch := uuid.New()
	sendingBranch := uuid.New()
	receivingBranch := uuid.New()

	commissionStore.On("Lookup", ctx, platformBranch, domain.ScopePlatformBaseFee).
		Return(commissionRate(platformBranch, domain.ScopePlatformBaseFee, "1.50"), nil)
	commissionStore.On("Lookup", ctx, platformBranch, domain.ScopePlatformExchangeProfit).
		Return(commissionRate(platformBranch, domain.ScopePlatformExchangeProfit, "1.50"), nil)
	commissionStore.On("Lookup", ctx, sendingBranch, domain.ScopeSendingBranchFee).
		Return(commissionRate(sendingBranch, domain.ScopeSendingBranchFee, "1.50"), nil)
	commissionStore.On("Lookup", ctx, receivingBranch, domain.ScopeReceivingBranchFee).
		Return(commissionRate(receivingBranch, domain.ScopeReceivingBranchFee, "4.00"), nil)

	breakdown, err := service.ComputeFees(ctx, decimal.RequireFromString("998.945"),
		"TL", "USD", sendingBranch, receivingBranch, platformBranch)

	assert.NoError(t, err)
	assert.True(t, breakdown.PlatformBaseFee.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, breakdown.PlatformExchangeProfit.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, breakdown.SendingBranchFee.Equal(decimal.RequireFromString("1.50")))
	assert.True(t, breakdown.ReceivingBranchFee.Equal(decimal.RequireFromString("4.00")))
	assert.True(t, breakdown.TotalFee().Equal(decimal.RequireFromString("8.50")))
}

// Same-currency transfer: no exchange profit, and the store is never asked for it.
func TestComputeFees_SameCurrencySkipsExchangeProfit(t *testing.T) {
	ctx := context.Background()
	commissionStore := new(MockCommissionRateStore)
	service := NewFeeScheduleService(commissionStore, new(MockBranchFeeRateStore))

	platformBranch := uuid.New()
	sendingBranch := uuid.New()
	receivingBranch := uuid.New()

	commissionStore.On("Lookup", ctx, platformBranch, domain.ScopePlatformBaseFee).
		Return(commissionRate(platformBranch, domain.ScopePlatformBaseFee, "1.50"), nil)
	commissionStore.On("Lookup", ctx, sendingBranch, domain.ScopeSendingBranchFee).
		Return(commissionRate(sendingBranch, domain.ScopeSendingBranchFee, "1.50"), nil)
	commissionStore.On("Lookup", ctx, receivingBranch, domain.ScopeReceivingBranchFee).
		Return(commissionRate(receivingBranch, domain.ScopeReceivingBranchFee, "4.00"), nil)

	breakdown, err := service.ComputeFees(ctx, decimal.RequireFromString("1000.00"),
		"USD", "USD", sendingBranch, receivingBranch, platformBranch)

	assert.NoError(t, err)
	assert.True(t, breakdown.PlatformExchangeProfit.IsZero())
	assert.True(t, breakdown.TotalFee().Equal(decimal.RequireFromString("7.00")))
	commissionStore.AssertNotCalled(t, "Lookup", ctx, platformBranch, domain.ScopePlatformExchangeProfit)
}

// 5,000 USD -> EUR: 5 units, fees 7.50/7.50/7.50/20.00, total 42.50.
func TestComputeFees_FiveUnits(t *testing.T) {
	ctx := context.Background()
	commissionStore := new(MockCommissionRateStore)
	service := NewFeeScheduleService(commissionStore, new(MockBranchFeeRateStore))

	platformBranch := uuid.New()
	sendingBranch := uuid.New()
	receivingBranch := uuid.New()

	// No rates configured anywhere: every component falls back to its default
	commissionStore.On("Lookup", ctx, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	breakdown, err := service.ComputeFees(ctx, decimal.RequireFromString("5000.00"),
		"USD", "EUR", sendingBranch, receivingBranch, platformBranch)

	assert.NoError(t, err)
	assert.True(t, breakdown.PlatformBaseFee.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, breakdown.PlatformExchangeProfit.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, breakdown.SendingBranchFee.Equal(decimal.RequireFromString("7.50")))
	assert.True(t, breakdown.ReceivingBranchFee.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, breakdown.TotalFee().Equal(decimal.RequireFromString("42.50")))
}

// A configured zero rate must be honored as zero, never replaced by a default.
func TestComputeFees_ConfiguredZeroRateIsNotDefaulted(t *testing.T) {
	ctx := context.Background()
	commissionStore := new(MockCommissionRateStore)
	service := NewFeeScheduleService(commissionStore, new(MockBranchFeeRateStore))

	platformBranch := uuid.New()
	sendingBranch := uuid.New()
	receivingBranch := uuid.New()

	commissionStore.On("Lookup", ctx, sendingBranch, domain.ScopeSendingBranchFee).
		Return(commissionRate(sendingBranch, domain.ScopeSendingBranchFee, "0.00"), nil)
	commissionStore.On("Lookup", ctx, platformBranch, mock.Anything).Return(nil, domain.ErrNotFound)
	commissionStore.On("Lookup", ctx, receivingBranch, domain.ScopeReceivingBranchFee).Return(nil, domain.ErrNotFound)

	breakdown, err := service.ComputeFees(ctx, decimal.RequireFromString("1000.00"),
		"USD", "USD", sendingBranch, receivingBranch, platformBranch)

	assert.NoError(t, err)
	assert.True(t, breakdown.SendingBranchFee.IsZero(),
		"configured zero rate must yield a zero fee, got %s", breakdown.SendingBranchFee)
}

// Partial thousand just over the boundary doubles every component.
func TestComputeFees_BoundaryAmountPricesTwoUnits(t *testing.T) {
	ctx := context.Background()
	commissionStore := new(MockCommissionRateStore)
	service := NewFeeScheduleService(commissionStore, new(MockBranchFeeRateStore))

	commissionStore.On("Lookup", ctx, mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	breakdown, err := service.ComputeFees(ctx, decimal.RequireFromString("1000.01"),
		"USD", "USD", uuid.New(), uuid.New(), uuid.New())

	assert.NoError(t, err)
	assert.True(t, breakdown.PlatformBaseFee.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, breakdown.ReceivingBranchFee.Equal(decimal.RequireFromString("8.00")))
}

func TestLegacyBranchFees_Defaults(t *testing.T) {
	ctx := context.Background()
	branchFeeStore := new(MockBranchFeeRateStore)
	service := NewFeeScheduleService(new(MockCommissionRateStore), branchFeeStore)

	branchID := uuid.New()
	branchFeeStore.On("GetByBranch", ctx, branchID).Return(nil, domain.ErrNotFound)

	usd := decimal.RequireFromString("2500.00") // 3 units

	sending, err := service.LegacySendingBranchFee(ctx, usd, branchID)
	assert.NoError(t, err)
	assert.True(t, sending.Equal(decimal.RequireFromString("3.00")), "legacy sending default is 1.00/unit")

	receiving, err := service.LegacyReceivingBranchFee(ctx, usd, branchID)
	assert.NoError(t, err)
	assert.True(t, receiving.Equal(decimal.RequireFromString("12.00")), "legacy receiving default is 4.00/unit")

	assert.True(t, service.LegacyPlatformBaseFee(usd).Equal(decimal.RequireFromString("4.50")))
}

func TestLegacyBranchFees_ConfiguredRates(t *testing.T) {
	ctx := context.Background()
	branchFeeStore := new(MockBranchFeeRateStore)
	service := NewFeeScheduleService(new(MockCommissionRateStore), branchFeeStore)

	branchID := uuid.New()
	branchFeeStore.On("GetByBranch", ctx, branchID).Return(&domain.BranchFeeRate{
		ID:                      uuid.New(),
		BranchID:                branchID,
		SendingPerThousandUSD:   decimal.RequireFromString("2.25"),
		ReceivingPerThousandUSD: decimal.RequireFromString("6.00"),
	}, nil)

	usd := decimal.RequireFromString("1000.00")

	sending, err := service.LegacySendingBranchFee(ctx, usd, branchID)
	assert.NoError(t, err)
	assert.True(t, sending.Equal(decimal.RequireFromString("2.25")))

	receiving, err := service.LegacyReceivingBranchFee(ctx, usd, branchID)
	assert.NoError(t, err)
	assert.True(t, receiving.Equal(decimal.RequireFromString("6.00")))
}
