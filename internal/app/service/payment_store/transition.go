package payment_store

import "github.com/fatflowers/travelpay/pkg/types"

// Outcome classifies an incoming reconciliation signal.
type Outcome string

const (
	// OutcomeNone annotates a payment without asking for a status change.
	OutcomeNone    Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Decide applies the terminal-transition rule: only PENDING moves, and the
// first terminal status wins. A FAILED payment is not resurrected by a late success.
func Decide(current types.PaymentStatus, outcome Outcome) (types.PaymentStatus, bool) {
	if current != types.PaymentStatusPending {
		return current, false
	}
	switch outcome {
	case OutcomeSuccess:
		return types.PaymentStatusCompleted, true
	case OutcomeFailure:
		return types.PaymentStatusFailed, true
	default:
		return current, false
	}
}
