package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActor_CanModifyRate_SuperAdmin(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleSuperAdmin}
	branchID := uuid.New()

	// Super admin may modify every scope of every branch
	assert.True(t, actor.CanModifyRate(branchID, ScopePlatformBaseFee))
	assert.True(t, actor.CanModifyRate(branchID, ScopePlatformExchangeProfit))
	assert.True(t, actor.CanModifyRate(branchID, ScopeSendingBranchFee))
	assert.True(t, actor.CanModifyRate(branchID, ScopeReceivingBranchFee))
}

func TestActor_CanModifyRate_BranchManager(t *testing.T) {
	ownBranch := uuid.New()
	otherBranch := uuid.New()
	actor := Actor{ID: uuid.New(), Role: RoleBranchManager, BranchID: &ownBranch}

	// Own branch, branch-level scopes only
	assert.True(t, actor.CanModifyRate(ownBranch, ScopeSendingBranchFee))
	assert.True(t, actor.CanModifyRate(ownBranch, ScopeReceivingBranchFee))

	// Platform scopes are off limits even for the own branch
	assert.False(t, actor.CanModifyRate(ownBranch, ScopePlatformBaseFee))
	assert.False(t, actor.CanModifyRate(ownBranch, ScopePlatformExchangeProfit))

	// Another branch is off limits entirely
	assert.False(t, actor.CanModifyRate(otherBranch, ScopeSendingBranchFee))
	assert.False(t, actor.CanModifyRate(otherBranch, ScopeReceivingBranchFee))
}

func TestActor_CanModifyRate_BranchManagerWithoutBranch(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: RoleBranchManager, BranchID: nil}
	assert.False(t, actor.CanModifyRate(uuid.New(), ScopeSendingBranchFee))
}

func TestActor_CanModifyRate_CashierAndAuditor(t *testing.T) {
	branchID := uuid.New()
	for _, role := range []ActorRole{RoleCashier, RoleAuditor} {
		actor := Actor{ID: uuid.New(), Role: role, BranchID: &branchID}
		assert.False(t, actor.CanModifyRate(branchID, ScopeSendingBranchFee))
		assert.False(t, actor.CanModifyRate(branchID, ScopeReceivingBranchFee))
		assert.False(t, actor.CanModifyRate(branchID, ScopePlatformBaseFee))
	}
}

func TestParseActorRole(t *testing.T) {
	role, ok := ParseActorRole("BRANCH_MANAGER")
	assert.True(t, ok)
	assert.Equal(t, RoleBranchManager, role)

	_, ok = ParseActorRole("INTERN")
	assert.False(t, ok)
}
