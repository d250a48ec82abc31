package domain

import "github.com/google/uuid"

// PlatformBranchName designates the branch that collects platform-level fees.
const PlatformBranchName = "MAIN_ADMIN_BRANCH"

// Branch represents an organizational branch. Immutable for the core's purposes.
type Branch struct {
	ID   uuid.UUID
	Name string
}

// IsPlatform reports whether this branch is the platform/admin branch.
func (b *Branch) IsPlatform() bool {
	return b.Name == PlatformBranchName
}

// FundName returns the conventional name of this branch's settlement fund.
func (b *Branch) FundName() string {
	return b.Name + " Fund"
}
