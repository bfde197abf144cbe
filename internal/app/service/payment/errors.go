package payment

import "errors"

var (
	ErrValidation              = errors.New("validation error")
	ErrNotFound                = errors.New("payment not found")
	ErrMissingReference        = errors.New("tx_ref missing")
	ErrInitiationFailed        = errors.New("payment initialization failed")
	ErrVerificationUnavailable = errors.New("payment verification unavailable")
	ErrInternal                = errors.New("internal error")
)

// GatewayError carries the upstream failure of Initiate so callers can show it.
type GatewayError struct {
	Kind error
	Err  error
}

func (e *GatewayError) Error() string { return e.Kind.Error() + ": " + e.Err.Error() }

func (e *GatewayError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Cause returns the upstream error message alone.
func (e *GatewayError) Cause() string { return e.Err.Error() }
