package handlers

import (
	"errors"
	"net/http"

	"github.com/fatflowers/travelpay/internal/app/service/payment"
)

// ErrorBody is the bare error shape of the /payments endpoints.
type ErrorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error,omitempty"`
}

// statusFor maps engine errors onto HTTP statuses. Anything unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, payment.ErrValidation), errors.Is(err, payment.ErrMissingReference):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrInitiationFailed), errors.Is(err, payment.ErrVerificationUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
