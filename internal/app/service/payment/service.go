package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/travelpay/internal/app/service/notifier"
	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	webhooklog "github.com/fatflowers/travelpay/internal/app/service/webhook_log"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/internal/platform/gateway"
	"github.com/fatflowers/travelpay/pkg/config"
	"github.com/fatflowers/travelpay/pkg/logctx"
	"github.com/fatflowers/travelpay/pkg/metrics"
	"github.com/fatflowers/travelpay/pkg/tool"
	"github.com/fatflowers/travelpay/pkg/types"
)

const (
	detailCompleted    = "Payment completed"
	detailNotSucceeded = "Payment not successful"

	defaultVerifyFailReason  = "not successful"
	defaultWebhookFailReason = "webhook says not successful"
)

// webhookRecorder is satisfied by *webhook_log.Service.
type webhookRecorder interface {
	Record(ctx context.Context, e webhooklog.Entry)
}

type Service struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	store    paymentstore.Store
	gateway  gateway.Client
	notifier notifier.Notifier
	audit    webhookRecorder
	metrics  *metrics.PaymentMetrics
	validate *validator.Validate
}

func NewService(
	cfg *config.Config,
	log *zap.SugaredLogger,
	store paymentstore.Store,
	gw gateway.Client,
	n notifier.Notifier,
	audit *webhooklog.Service,
	m *metrics.PaymentMetrics,
) Manager {
	return newService(cfg, log, store, gw, n, audit, m)
}

func newService(
	cfg *config.Config,
	log *zap.SugaredLogger,
	store paymentstore.Store,
	gw gateway.Client,
	n notifier.Notifier,
	audit webhookRecorder,
	m *metrics.PaymentMetrics,
) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		store:    store,
		gateway:  gw,
		notifier: n,
		audit:    audit,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	if err := s.validateInitiate(req); err != nil {
		return nil, err
	}
	lg := logctx.FromCtx(ctx, s.log)

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.Payment.DefaultCurrency
	}
	bookingRef := strings.TrimSpace(req.BookingReference)
	if bookingRef == "" {
		bookingRef = tool.GenerateBookingReference()
	}

	p := &models.Payment{
		UserID:           req.UserID,
		BookingReference: bookingRef,
		Amount:           *req.Amount,
		Currency:         currency,
		TxRef:            tool.GenerateTxRef(bookingRef),
		CustomerEmail:    strings.TrimSpace(req.Email),
		Status:           types.PaymentStatusPending,
		Provider:         types.PaymentProviderChapa,
	}
	if err := s.store.Create(ctx, p); err != nil {
		lg.Errorw("payment_create_failed", "tx_ref", p.TxRef, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	lg = lg.With("tx_ref", p.TxRef, "payment_id", p.ID)

	resp, err := s.gateway.InitializeTransaction(ctx, &gateway.InitializeRequest{
		TxRef:       p.TxRef,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Email:       p.CustomerEmail,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ReturnURL:   req.ReturnURL,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		lg.Errorw("payment_initialize_failed", "err", err)
		_, applyErr := s.store.Apply(context.WithoutCancel(ctx), p.TxRef, paymentstore.Signal{
			Outcome:  paymentstore.OutcomeFailure,
			Reason:   err.Error(),
			Metadata: map[string]any{models.MetadataKeyInitializeError: err.Error()},
		})
		if applyErr != nil {
			lg.Errorw("payment_mark_failed_error", "err", applyErr)
		}
		s.metrics.Transition(types.ReconcileChannelInitiate, "failed")
		return nil, &GatewayError{Kind: ErrInitiationFailed, Err: err}
	}

	initRes := gateway.ParseInitialize(resp)
	if _, err := s.store.Apply(ctx, p.TxRef, paymentstore.Signal{
		ExternalID: initRes.ExternalID,
		Metadata:   map[string]any{models.MetadataKeyInitializeResponse: map[string]any(resp)},
	}); err != nil {
		lg.Errorw("payment_initialize_persist_failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if initRes.CheckoutURL == "" {
		lg.Warnw("payment_checkout_url_missing")
	}
	s.metrics.Transition(types.ReconcileChannelInitiate, "initiated")
	lg.Infow("payment_initiated", "booking_reference", bookingRef, "amount", p.Amount.String(), "currency", currency)

	return &InitiateResult{
		CheckoutURL: initRes.CheckoutURL,
		TxRef:       p.TxRef,
		PaymentID:   p.ID,
		Raw:         resp,
	}, nil
}

var maxAmount = decimal.New(1, 10)

func (s *Service) validateInitiate(req *InitiateRequest) error {
	if req == nil || req.Amount == nil {
		return fmt.Errorf("%w: amount is required", ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: invalid %s (%s)", ErrValidation, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	}
	// amount column is numeric(12,2)
	if !req.Amount.Equal(req.Amount.Truncate(2)) {
		return fmt.Errorf("%w: amount must have at most 2 decimal places", ErrValidation)
	}
	if req.Amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: amount exceeds maximum", ErrValidation)
	}
	return nil
}

func (s *Service) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	lg := logctx.FromCtx(ctx, s.log).With("tx_ref", txRef, "channel", types.ReconcileChannelVerify)
	if _, err := s.lookup(ctx, txRef); err != nil {
		return nil, err
	}

	resp, err := s.gateway.VerifyTransaction(ctx, txRef)
	if err != nil {
		lg.Warnw("payment_verify_unavailable", "err", err)
		s.metrics.Transition(types.ReconcileChannelVerify, "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrVerificationUnavailable, err)
	}

	res := gateway.ParseVerify(resp)
	reason := lo.CoalesceOrEmpty(res.Status, defaultVerifyFailReason)
	if msg, ok := gateway.Lookup(resp, []gateway.Rule{gateway.Path("message")}); ok {
		reason = msg
	}
	p, err := s.reconcile(ctx, lg, types.ReconcileChannelVerify, txRef, res, reason,
		map[string]any{models.MetadataKeyVerifyResponse: map[string]any(resp)})
	if err != nil {
		return nil, err
	}

	if p.Status == types.PaymentStatusCompleted {
		return &VerifyResult{Detail: detailCompleted, PaymentStatus: p.Status}, nil
	}
	return &VerifyResult{Detail: detailNotSucceeded, PaymentStatus: p.Status, Raw: resp}, nil
}

func (s *Service) HandleWebhook(ctx context.Context, req *WebhookRequest) (res *WebhookResult, retErr error) {
	if req == nil {
		req = &WebhookRequest{}
	}
	parsed := gateway.ParseWebhook(req.Payload, req.Query)
	lg := logctx.FromCtx(ctx, s.log).With("tx_ref", parsed.TxRef, "channel", types.ReconcileChannelWebhook)
	lg.Infow("payment_webhook_received", "status", parsed.Status)

	defer func() {
		s.audit.Record(ctx, webhooklog.Entry{TxRef: parsed.TxRef, Payload: req.Payload, Result: res, Err: retErr})
	}()

	if parsed.TxRef == "" {
		lg.Warnw("payment_webhook_missing_reference", "query", req.Query)
		return nil, ErrMissingReference
	}
	if _, err := s.lookup(ctx, parsed.TxRef); err != nil {
		if errors.Is(err, ErrNotFound) {
			lg.Warnw("payment_webhook_unknown_reference")
		}
		return nil, err
	}

	reason := lo.CoalesceOrEmpty(parsed.Status, defaultWebhookFailReason)
	if _, err := s.reconcile(ctx, lg, types.ReconcileChannelWebhook, parsed.TxRef, parsed, reason,
		map[string]any{models.MetadataKeyWebhook: req.Payload}); err != nil {
		return nil, err
	}
	return &WebhookResult{OK: true, TxRef: parsed.TxRef}, nil
}

// reconcile applies one classified signal through the store and fires the
// confirmation only for the call that completed the payment.
func (s *Service) reconcile(
	ctx context.Context,
	lg *zap.SugaredLogger,
	channel types.ReconcileChannel,
	txRef string,
	res gateway.Result,
	reason string,
	metadata map[string]any,
) (*models.Payment, error) {
	outcome := paymentstore.OutcomeFailure
	if res.Success {
		outcome = paymentstore.OutcomeSuccess
	}
	applied, err := s.store.Apply(ctx, txRef, paymentstore.Signal{
		Outcome:    outcome,
		ExternalID: res.ExternalID,
		Metadata:   metadata,
		Reason:     reason,
	})
	if err != nil {
		if errors.Is(err, paymentstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		lg.Errorw("payment_apply_failed", "err", err)
		s.metrics.Transition(channel, "error")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	p := applied.Payment
	switch {
	case applied.Applied && p.Status == types.PaymentStatusCompleted:
		lg.Infow("payment_completed", "external_tx_id", lo.FromPtr(p.ExternalTxID))
		s.metrics.Transition(channel, "completed")
		s.notify(ctx, lg, p.ID)
	case applied.Applied:
		lg.Infow("payment_failed", "reason", reason)
		s.metrics.Transition(channel, "failed")
	case applied.Previous == types.PaymentStatusFailed && res.Success:
		lg.Warnw("payment_late_success_ignored", "status", res.Status)
		s.metrics.Transition(channel, "late_success_ignored")
	default:
		lg.Infow("payment_signal_noop", "current", p.Status, "status", res.Status)
		s.metrics.Transition(channel, "noop")
	}
	return p, nil
}

// notify is best-effort: errors are logged and never reach the caller.
func (s *Service) notify(ctx context.Context, lg *zap.SugaredLogger, paymentID string) {
	if s.notifier == nil {
		return
	}
	timeout := s.cfg.Payment.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			lg.Errorw("payment_notify_panic", "panic", r)
		}
	}()
	if err := s.notifier.Notify(nctx, paymentID); err != nil {
		lg.Errorw("payment_notify_failed", "err", err)
	}
}

func (s *Service) lookup(ctx context.Context, txRef string) (*models.Payment, error) {
	p, err := s.store.GetByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, paymentstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return p, nil
}

func (s *Service) GetPayment(ctx context.Context, txRef string) (*models.Payment, error) {
	return s.lookup(ctx, txRef)
}

func (s *Service) ListPayments(ctx context.Context, req *paymentstore.ScanRequest) (*paymentstore.ScanResponse, error) {
	res, err := s.store.Scan(ctx, req)
	if err != nil {
		if errors.Is(err, paymentstore.ErrInvalidQuery) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return res, nil
}
