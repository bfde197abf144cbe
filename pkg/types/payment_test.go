package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_IsTerminal(t *testing.T) {
	require.False(t, PaymentStatusPending.IsTerminal())
	require.True(t, PaymentStatusCompleted.IsTerminal())
	require.True(t, PaymentStatusFailed.IsTerminal())
}
