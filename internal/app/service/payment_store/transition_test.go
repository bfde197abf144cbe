package payment_store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fatflowers/travelpay/pkg/types"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		current   types.PaymentStatus
		outcome   Outcome
		want      types.PaymentStatus
		wantApply bool
	}{
		{"pending success", types.PaymentStatusPending, OutcomeSuccess, types.PaymentStatusCompleted, true},
		{"pending failure", types.PaymentStatusPending, OutcomeFailure, types.PaymentStatusFailed, true},
		{"pending annotate", types.PaymentStatusPending, OutcomeNone, types.PaymentStatusPending, false},
		{"completed success", types.PaymentStatusCompleted, OutcomeSuccess, types.PaymentStatusCompleted, false},
		{"completed failure", types.PaymentStatusCompleted, OutcomeFailure, types.PaymentStatusCompleted, false},
		{"failed success stays failed", types.PaymentStatusFailed, OutcomeSuccess, types.PaymentStatusFailed, false},
		{"failed failure", types.PaymentStatusFailed, OutcomeFailure, types.PaymentStatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, apply := Decide(tt.current, tt.outcome)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantApply, apply)
		})
	}
}
