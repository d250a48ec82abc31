package domain

import "github.com/google/uuid"

// ActorRole is the closed set of roles the core understands. Authorization is
// expressed as pure functions over the actor plus the requested (branch, scope),
// never as ambient security context.
type ActorRole string

const (
	RoleSuperAdmin    ActorRole = "SUPER_ADMIN"
	RoleBranchManager ActorRole = "BRANCH_MANAGER"
	RoleCashier       ActorRole = "CASHIER"
	RoleAuditor       ActorRole = "AUDITOR"
)

// ParseActorRole maps a role string to the closed variant.
func ParseActorRole(s string) (ActorRole, bool) {
	switch ActorRole(s) {
	case RoleSuperAdmin, RoleBranchManager, RoleCashier, RoleAuditor:
		return ActorRole(s), true
	}
	return "", false
}

// Actor identifies who is performing an operation. BranchID names the branch
// a branch manager or cashier works at; nil for platform-level roles.
type Actor struct {
	ID       uuid.UUID
	Role     ActorRole
	BranchID *uuid.UUID
}

// CanModifyRate reports whether the actor may modify the commission rate for
// the given (branch, scope) pair:
//   - a super admin may modify any scope of any branch
//   - a branch manager may modify only SENDING_BRANCH_FEE and
//     RECEIVING_BRANCH_FEE, and only for their own branch
//   - cashiers and auditors may modify nothing
func (a Actor) CanModifyRate(branchID uuid.UUID, scope CommissionScope) bool {
	switch a.Role {
	case RoleSuperAdmin:
		return true
	case RoleBranchManager:
		if scope != ScopeSendingBranchFee && scope != ScopeReceivingBranchFee {
			return false
		}
		return a.BranchID != nil && *a.BranchID == branchID
	default:
		return false
	}
}

// AffiliatedWith reports whether the actor belongs to the given branch.
func (a Actor) AffiliatedWith(branchID uuid.UUID) bool {
	return a.BranchID != nil && *a.BranchID == branchID
}
