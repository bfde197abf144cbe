package webhook_log

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/logctx"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "wh.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.PaymentWebhookLog{}))
	return New(db, zap.NewNop().Sugar()), db
}

func TestRecord_Handled(t *testing.T) {
	s, db := newTestService(t)
	ctx := logctx.WithTraceID(context.Background(), "trace-9")

	s.Record(ctx, Entry{
		TxRef:   "booking-1-abc",
		Payload: map[string]any{"tx_ref": "booking-1-abc", "status": "success"},
		Result:  map[string]any{"status": "COMPLETED"},
	})
	s.Wait()

	var rows []models.PaymentWebhookLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "booking-1-abc", rows[0].TxRef)
	require.Equal(t, "trace-9", rows[0].TraceID)
	require.Equal(t, "chapa", rows[0].ProviderID)
	require.Equal(t, models.PaymentWebhookLogStatusHandled, rows[0].Status)

	var data map[string]any
	require.NoError(t, json.Unmarshal(rows[0].Data, &data))
	require.Equal(t, "success", data["status"])
}

func TestRecord_FailureKeepsError(t *testing.T) {
	s, db := newTestService(t)

	s.Record(context.Background(), Entry{Err: errors.New("missing reference")})
	s.Wait()

	var row models.PaymentWebhookLog
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, models.PaymentWebhookLogStatusHandleFailed, row.Status)
	require.NotNil(t, row.Result)
	require.JSONEq(t, `{"error":"missing reference"}`, string(*row.Result))
	require.JSONEq(t, `{}`, string(row.Data))
}
