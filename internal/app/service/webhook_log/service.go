package webhook_log

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/logctx"
	"github.com/fatflowers/travelpay/pkg/tool"
	"github.com/fatflowers/travelpay/pkg/types"
)

// Entry describes one webhook delivery and what became of it.
type Entry struct {
	TxRef   string
	Payload map[string]any
	Result  any
	Err     error
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record persists the entry in the background. Write errors are logged only.
func (s *Service) Record(ctx context.Context, e Entry) {
	row := s.build(ctx, e)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.save(context.WithoutCancel(ctx), row); err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("webhook_log_save_failed", "tx_ref", row.TxRef, "err", err)
		}
	}()
}

// Wait blocks until in-flight writes finish.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) build(ctx context.Context, e Entry) *models.PaymentWebhookLog {
	row := &models.PaymentWebhookLog{
		ID:               tool.GenerateUUIDV7(),
		ProviderID:       string(types.PaymentProviderChapa),
		TraceID:          logctx.TraceID(ctx),
		TxRef:            e.TxRef,
		NotificationTime: time.Now(),
		Data:             toJSON(lo.Ternary(e.Payload == nil, map[string]any{}, e.Payload)),
		Status:           models.PaymentWebhookLogStatusHandled,
	}
	var result any = e.Result
	if e.Err != nil {
		row.Status = models.PaymentWebhookLogStatusHandleFailed
		result = map[string]any{"error": e.Err.Error()}
	}
	if result != nil {
		js := toJSON(result)
		row.Result = &js
	}
	return row
}

func (s *Service) save(ctx context.Context, row *models.PaymentWebhookLog) error {
	return s.db.WithContext(ctx).Create(row).Error
}

func toJSON(v any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("{}")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}

func newService(lc fx.Lifecycle, db *gorm.DB, log *zap.SugaredLogger) *Service {
	s := New(db, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Wait()
			return nil
		},
	})
	return s
}

var Module = fx.Options(
	fx.Provide(newService),
)
