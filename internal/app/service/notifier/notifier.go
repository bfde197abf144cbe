package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/internal/platform/kafka"
	"github.com/fatflowers/travelpay/pkg/config"
	"github.com/fatflowers/travelpay/pkg/logctx"
)

// Notifier asks for a payment's owner to be told about it. Delivery happens
// elsewhere; callers log a returned error and carry on.
type Notifier interface {
	Notify(ctx context.Context, paymentID string) error
}

// ConfirmationEvent is the message an email worker renders and sends.
type ConfirmationEvent struct {
	PaymentID        string    `json:"payment_id"`
	TxRef            string    `json:"tx_ref"`
	BookingReference string    `json:"booking_reference"`
	Amount           string    `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Recipient        string    `json:"recipient"`
	From             string    `json:"from"`
	Subject          string    `json:"subject"`
	Body             string    `json:"body"`
	CreatedAt        time.Time `json:"created_at"`
}

func BuildConfirmation(p *models.Payment, from string, now time.Time) *ConfirmationEvent {
	return &ConfirmationEvent{
		PaymentID:        p.ID,
		TxRef:            p.TxRef,
		BookingReference: p.BookingReference,
		Amount:           p.Amount.StringFixed(2),
		Currency:         p.Currency,
		Status:           string(p.Status),
		Recipient:        p.CustomerEmail,
		From:             from,
		Subject:          fmt.Sprintf("Payment confirmation for booking %s", p.BookingReference),
		Body: fmt.Sprintf(
			"Hello,\n\nYour payment for booking %s has been received.\nAmount: %s %s\nReference: %s\nStatus: %s\n\nThank you.\n",
			p.BookingReference, p.Amount.StringFixed(2), p.Currency, p.TxRef, p.Status,
		),
		CreatedAt: now,
	}
}

type eventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type paymentLoader interface {
	GetByID(ctx context.Context, id string) (*models.Payment, error)
}

// KafkaNotifier publishes confirmation events keyed by tx_ref.
type KafkaNotifier struct {
	payments paymentLoader
	pub      eventPublisher
	from     string
	log      *zap.SugaredLogger
}

func NewKafkaNotifier(payments paymentLoader, pub eventPublisher, from string, log *zap.SugaredLogger) *KafkaNotifier {
	return &KafkaNotifier{payments: payments, pub: pub, from: from, log: log}
}

func (n *KafkaNotifier) Notify(ctx context.Context, paymentID string) error {
	ev, err := loadConfirmation(ctx, n.payments, paymentID, n.from, n.log)
	if err != nil || ev == nil {
		return err
	}
	if err := n.pub.PublishJSON(ctx, ev.TxRef, ev); err != nil {
		return fmt.Errorf("failed to publish confirmation for payment %s: %w", paymentID, err)
	}
	logctx.FromCtx(ctx, n.log).Infow("payment_confirmation_enqueued", "payment_id", paymentID, "tx_ref", ev.TxRef)
	return nil
}

// LogNotifier stands in when no broker is configured.
type LogNotifier struct {
	payments paymentLoader
	from     string
	log      *zap.SugaredLogger
}

func NewLogNotifier(payments paymentLoader, from string, log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{payments: payments, from: from, log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, paymentID string) error {
	ev, err := loadConfirmation(ctx, n.payments, paymentID, n.from, n.log)
	if err != nil || ev == nil {
		return err
	}
	logctx.FromCtx(ctx, n.log).Infow("payment_confirmation",
		"payment_id", ev.PaymentID,
		"tx_ref", ev.TxRef,
		"recipient", ev.Recipient,
		"subject", ev.Subject,
	)
	return nil
}

// loadConfirmation returns nil without error when there is nobody to notify.
func loadConfirmation(ctx context.Context, payments paymentLoader, paymentID, from string, log *zap.SugaredLogger) (*ConfirmationEvent, error) {
	p, err := payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment %s: %w", paymentID, err)
	}
	if p.CustomerEmail == "" {
		logctx.FromCtx(ctx, log).Errorw("payment_confirmation_no_recipient", "payment_id", paymentID)
		return nil, nil
	}
	return BuildConfirmation(p, from, time.Now()), nil
}

func newNotifier(lc fx.Lifecycle, cfg *config.Config, store paymentstore.Store, log *zap.SugaredLogger) Notifier {
	from := cfg.Notification.DefaultFromEmail
	if !cfg.KafkaEnabled() {
		log.Infow("kafka not configured, confirmations are logged only")
		return NewLogNotifier(store, from, log)
	}
	pub := kafka.NewPublisher(cfg.Notification.Kafka.Brokers, cfg.Notification.Kafka.Topic)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Infow("closing kafka publisher")
			return pub.Close()
		},
	})
	return NewKafkaNotifier(store, pub, from, log)
}

var Module = fx.Options(
	fx.Provide(newNotifier),
)
