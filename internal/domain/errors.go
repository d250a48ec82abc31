package domain

import "errors"

// Sentinel errors for the transfer core. Callers match with errors.Is; services
// wrap them with fmt.Errorf("...: %w", ...) to add context.
var (
	// ErrNotFound signals a missing currency, branch, fund or transaction
	ErrNotFound = errors.New("resource not found")

	// ErrInsufficientFunds signals a debit larger than the available balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransaction signals a business-rule violation: inactive fund,
	// self-transfer, non-positive amount, bad status transition, wrong receiver
	// or bad passcode
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrConflict signals a lost race on a concurrent mutation (ledger apply or
	// status compare-and-set); the settlement engine retries it a bounded number
	// of times, everything else surfaces it
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrUnauthorized signals an actor attempting a fee modification outside
	// their authority
	ErrUnauthorized = errors.New("unauthorized fee modification")
)
