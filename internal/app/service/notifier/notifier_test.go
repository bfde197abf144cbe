package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/types"
)

type stubLoader map[string]*models.Payment

func (s stubLoader) GetByID(_ context.Context, id string) (*models.Payment, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, paymentstore.ErrNotFound
}

type recordingPublisher struct {
	keys   []string
	events []any
	err    error
}

func (r *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	if r.err != nil {
		return r.err
	}
	r.keys = append(r.keys, key)
	r.events = append(r.events, v)
	return nil
}

func payment(email string) *models.Payment {
	return &models.Payment{
		ID:               "p-1",
		TxRef:            "booking-1-abc",
		BookingReference: "booking-1",
		Amount:           decimal.RequireFromString("99.5"),
		Currency:         "ETB",
		Status:           types.PaymentStatusCompleted,
		CustomerEmail:    email,
	}
}

func TestBuildConfirmation(t *testing.T) {
	now := time.Unix(1735689600, 0)
	ev := BuildConfirmation(payment("guest@example.com"), "billing@example.com", now)

	require.Equal(t, "guest@example.com", ev.Recipient)
	require.Equal(t, "billing@example.com", ev.From)
	require.Equal(t, "99.50", ev.Amount)
	require.Equal(t, "Payment confirmation for booking booking-1", ev.Subject)
	require.Contains(t, ev.Body, "Reference: booking-1-abc")
	require.Equal(t, now, ev.CreatedAt)
}

func TestKafkaNotifier_PublishesKeyedByTxRef(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewKafkaNotifier(stubLoader{"p-1": payment("guest@example.com")}, pub, "billing@example.com", zap.NewNop().Sugar())

	require.NoError(t, n.Notify(context.Background(), "p-1"))
	require.Equal(t, []string{"booking-1-abc"}, pub.keys)
	ev := pub.events[0].(*ConfirmationEvent)
	require.Equal(t, "p-1", ev.PaymentID)
}

func TestKafkaNotifier_SkipsWithoutRecipient(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewKafkaNotifier(stubLoader{"p-1": payment("")}, pub, "billing@example.com", zap.NewNop().Sugar())

	require.NoError(t, n.Notify(context.Background(), "p-1"))
	require.Empty(t, pub.events)
}

func TestKafkaNotifier_Errors(t *testing.T) {
	boom := errors.New("broker down")
	n := NewKafkaNotifier(stubLoader{"p-1": payment("guest@example.com")}, &recordingPublisher{err: boom}, "", zap.NewNop().Sugar())
	require.ErrorIs(t, n.Notify(context.Background(), "p-1"), boom)

	require.ErrorIs(t, n.Notify(context.Background(), "missing"), paymentstore.ErrNotFound)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(stubLoader{"p-1": payment("guest@example.com")}, "billing@example.com", zap.NewNop().Sugar())
	require.NoError(t, n.Notify(context.Background(), "p-1"))
	require.Error(t, n.Notify(context.Background(), "missing"))
}
