package feeadmin

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

// MockBranchStore is a mock implementation of BranchStore for testing
type MockBranchStore struct {
	mock.Mock
}

func (m *MockBranchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchStore) GetPlatformBranch(ctx context.Context) (*domain.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchStore) Create(ctx context.Context, branch *domain.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

// MockAuditSink is a mock implementation of AuditSink for testing
type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Record(ctx context.Context, action string, actorID uuid.UUID, entityType string, entityID uuid.UUID) error {
	args := m.Called(ctx, action, actorID, entityType, entityID)
	return args.Error(0)
}

func newService() (*FeeAdminService, *MockCommissionRateStore, *MockBranchStore, *MockAuditSink) {
	rates := new(MockCommissionRateStore)
	branches := new(MockBranchStore)
	audit := new(MockAuditSink)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFeeAdminService(rates, branches, audit, logger), rates, branches, audit
}

func TestUpdateRate_SuperAdminUpdatesAnyScope(t *testing.T) {
	ctx := context.Background()
	service, rates, branches, audit := newService()
	branch := &domain.Branch{ID: uuid.New(), Name: "BRANCH_A"}
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSuperAdmin}
	newRate := decimal.RequireFromString("2.25")

	branches.On("GetByID", ctx, branch.ID).Return(branch, nil)
	updated := &domain.CommissionRate{ID: uuid.New(), BranchID: branch.ID, Scope: domain.ScopePlatformBaseFee, RateValue: newRate}
	rates.On("Update", ctx, branch.ID, domain.ScopePlatformBaseFee, newRate).Return(updated, nil)
	audit.On("Record", ctx, "UPDATE_COMMISSION_RATE", actor.ID, "commission_rate", updated.ID).Return(nil)

	result, err := service.UpdateRate(ctx, actor, branch.ID, domain.ScopePlatformBaseFee, newRate)

	require.NoError(t, err)
	assert.True(t, result.RateValue.Equal(newRate))
	rates.AssertExpectations(t)
}

func TestUpdateRate_BranchManagerScopeRules(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	otherBranchID := uuid.New()
	manager := domain.Actor{ID: uuid.New(), Role: domain.RoleBranchManager, BranchID: &branchID}

	t.Run("own branch, branch scope", func(t *testing.T) {
		service, rates, branches, audit := newService()
		branches.On("GetByID", ctx, branchID).Return(&domain.Branch{ID: branchID, Name: "BRANCH_A"}, nil)
		updated := &domain.CommissionRate{ID: uuid.New(), BranchID: branchID, Scope: domain.ScopeSendingBranchFee, RateValue: decimal.RequireFromString("2.00")}
		rates.On("Update", ctx, branchID, domain.ScopeSendingBranchFee, mock.Anything).Return(updated, nil)
		audit.On("Record", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := service.UpdateRate(ctx, manager, branchID, domain.ScopeSendingBranchFee, decimal.RequireFromString("2.00"))
		assert.NoError(t, err)
	})

	t.Run("own branch, platform scope denied", func(t *testing.T) {
		service, rates, _, _ := newService()
		_, err := service.UpdateRate(ctx, manager, branchID, domain.ScopePlatformBaseFee, decimal.RequireFromString("2.00"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		rates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other branch denied", func(t *testing.T) {
		service, rates, _, _ := newService()
		_, err := service.UpdateRate(ctx, manager, otherBranchID, domain.ScopeSendingBranchFee, decimal.RequireFromString("2.00"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		rates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateRate_CashierAndAuditorDenied(t *testing.T) {
	ctx := context.Background()
	branchID := uuid.New()
	for _, role := range []domain.ActorRole{domain.RoleCashier, domain.RoleAuditor} {
		t.Run(string(role), func(t *testing.T) {
			service, _, _, _ := newService()
			actor := domain.Actor{ID: uuid.New(), Role: role, BranchID: &branchID}
			_, err := service.UpdateRate(ctx, actor, branchID, domain.ScopeSendingBranchFee, decimal.RequireFromString("2.00"))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestUpdateRate_RejectsNegativeRate(t *testing.T) {
	ctx := context.Background()
	service, rates, _, _ := newService()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSuperAdmin}

	_, err := service.UpdateRate(ctx, actor, uuid.New(), domain.ScopeSendingBranchFee, decimal.RequireFromString("-0.01"))

	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)
	rates.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRate_RejectsUnknownScope(t *testing.T) {
	ctx := context.Background()
	service, _, _, _ := newService()
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSuperAdmin}

	_, err := service.UpdateRate(ctx, actor, uuid.New(), domain.CommissionScope("LOYALTY_BONUS"), decimal.RequireFromString("2.00"))

	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)
}

func TestUpdateRate_NoCreateOnDemand(t *testing.T) {
	ctx := context.Background()
	service, rates, branches, _ := newService()
	branch := &domain.Branch{ID: uuid.New(), Name: "BRANCH_A"}
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSuperAdmin}

	branches.On("GetByID", ctx, branch.ID).Return(branch, nil)
	rates.On("Update", ctx, branch.ID, domain.ScopeReceivingBranchFee, mock.Anything).Return(nil, domain.ErrNotFound)

	_, err := service.UpdateRate(ctx, actor, branch.ID, domain.ScopeReceivingBranchFee, decimal.RequireFromString("5.00"))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	rates.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateRate_ConfiguredZeroIsAllowed(t *testing.T) {
	ctx := context.Background()
	service, rates, branches, audit := newService()
	branch := &domain.Branch{ID: uuid.New(), Name: "BRANCH_A"}
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleSuperAdmin}

	branches.On("GetByID", ctx, branch.ID).Return(branch, nil)
	updated := &domain.CommissionRate{ID: uuid.New(), BranchID: branch.ID, Scope: domain.ScopeSendingBranchFee, RateValue: decimal.Zero}
	rates.On("Update", ctx, branch.ID, domain.ScopeSendingBranchFee, decimal.Zero).Return(updated, nil)
	audit.On("Record", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := service.UpdateRate(ctx, actor, branch.ID, domain.ScopeSendingBranchFee, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, result.RateValue.IsZero())
}

func TestGetRate_UnconfiguredPair(t *testing.T) {
	ctx := context.Background()
	service, rates, _, _ := newService()
	branchID := uuid.New()
	rates.On("Lookup", ctx, branchID, domain.ScopeSendingBranchFee).Return(nil, domain.ErrNotFound)

	_, err := service.GetRate(ctx, branchID, domain.ScopeSendingBranchFee)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListBranchRates(t *testing.T) {
	ctx := context.Background()
	service, rates, branches, _ := newService()
	branch := &domain.Branch{ID: uuid.New(), Name: "BRANCH_A"}
	configured := []*domain.CommissionRate{
		{ID: uuid.New(), BranchID: branch.ID, Scope: domain.ScopeSendingBranchFee, RateValue: decimal.RequireFromString("1.50")},
		{ID: uuid.New(), BranchID: branch.ID, Scope: domain.ScopeReceivingBranchFee, RateValue: decimal.RequireFromString("4.00")},
	}

	branches.On("GetByID", ctx, branch.ID).Return(branch, nil)
	rates.On("ListByBranch", ctx, branch.ID).Return(configured, nil)

	result, err := service.ListBranchRates(ctx, branch.ID)

	require.NoError(t, err)
	assert.Len(t, result, 2)
}
