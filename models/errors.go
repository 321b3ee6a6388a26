package models

import (
	"errors"
	"fmt"
)

// Domain errors. Callers branch on these with errors.Is; every failed
// operation rolls back in its entirety before one of these is returned.
var (
	// ErrInsufficientPayment indicates an entry paid less than the entrance fee
	ErrInsufficientPayment = errors.New("entry amount below entrance fee")

	// ErrNotOpen indicates an operation that requires the open phase
	ErrNotOpen = errors.New("raffle is not open")

	// ErrTransferFailed indicates the winner payout was rejected by the ledger
	ErrTransferFailed = errors.New("payout transfer failed")

	// ErrTriggerNotEligible indicates a draw was attempted while the
	// eligibility predicate was false
	ErrTriggerNotEligible = errors.New("draw not eligible")

	// ErrIndexOutOfRange indicates an entrant accessor was given an invalid slot
	ErrIndexOutOfRange = errors.New("entrant index out of range")

	// ErrUnknownRequest indicates a randomness callback carried a request id
	// that is not the outstanding one for the current round
	ErrUnknownRequest = errors.New("unknown or stale randomness request")

	// ErrInsufficientFunds indicates a ledger debit larger than the account balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound indicates a ledger operation on a missing account
	ErrAccountNotFound = errors.New("account not found")
)

// TriggerNotEligibleError carries the diagnostic state the automation needs
// to log a misfire. It unwraps to ErrTriggerNotEligible.
type TriggerNotEligibleError struct {
	Report EligibilityReport
}

func (e *TriggerNotEligibleError) Error() string {
	return fmt.Sprintf("%v: phase=%s entrants=%d pool_balance=%d elapsed=%s interval=%s",
		ErrTriggerNotEligible,
		e.Report.Phase,
		e.Report.EntrantCount,
		e.Report.PoolBalance,
		e.Report.TimeSinceReset,
		e.Report.Interval,
	)
}

func (e *TriggerNotEligibleError) Unwrap() error {
	return ErrTriggerNotEligible
}
