package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fatflowers/travelpay/internal/platform/gateway"
)

func TestGatewayError_MatchesKindAndCause(t *testing.T) {
	cause := &gateway.TransportError{Op: "initialize", StatusCode: 400, Err: errors.New("invalid currency")}
	err := fmt.Errorf("wrapped: %w", &GatewayError{Kind: ErrInitiationFailed, Err: cause})

	require.ErrorIs(t, err, ErrInitiationFailed)
	require.ErrorIs(t, err, gateway.ErrTransport)
	require.NotErrorIs(t, err, ErrVerificationUnavailable)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "gateway initialize: status 400: invalid currency", gwErr.Cause())
	require.Equal(t, "payment initialization failed: gateway initialize: status 400: invalid currency", gwErr.Error())
}
