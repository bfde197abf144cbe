package payment

import (
	"context"

	"github.com/shopspring/decimal"

	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/types"
)

type InitiateRequest struct {
	BookingReference string           `json:"booking_reference" validate:"omitempty,max=100"`
	Amount           *decimal.Decimal `json:"amount" validate:"required"`
	Currency         string           `json:"currency" validate:"omitempty,alpha,len=3"`
	ReturnURL        string           `json:"return_url" validate:"omitempty,url"`
	CallbackURL      string           `json:"callback_url" validate:"omitempty,url"`
	Email            string           `json:"email" validate:"omitempty,email"`
	FirstName        string           `json:"first_name" validate:"omitempty,max=100"`
	LastName         string           `json:"last_name" validate:"omitempty,max=100"`
	// UserID is set by the caller's auth layer, never from the body.
	UserID *string `json:"-"`
}

type InitiateResult struct {
	CheckoutURL string         `json:"checkout_url"`
	TxRef       string         `json:"tx_ref"`
	PaymentID   string         `json:"payment_id"`
	Raw         map[string]any `json:"raw"`
}

type VerifyResult struct {
	Detail        string              `json:"detail"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	// Raw is the provider response, returned when the payment did not complete.
	Raw map[string]any `json:"raw,omitempty"`
}

type WebhookRequest struct {
	Payload map[string]any
	Query   map[string]string
}

type WebhookResult struct {
	OK    bool   `json:"ok"`
	TxRef string `json:"tx_ref"`
}

// Manager drives a payment from initiation to a single terminal status.
type Manager interface {
	// Initiate creates a PENDING payment and asks the gateway for a checkout URL.
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	// Verify polls the gateway and reconciles the answer.
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
	// HandleWebhook reconciles a provider push. Safe under duplicate delivery.
	HandleWebhook(ctx context.Context, req *WebhookRequest) (*WebhookResult, error)
	GetPayment(ctx context.Context, txRef string) (*models.Payment, error)
	ListPayments(ctx context.Context, req *paymentstore.ScanRequest) (*paymentstore.ScanResponse, error)
}
