package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fatflowers/travelpay/internal/models"
	cfgpkg "github.com/fatflowers/travelpay/pkg/config"
)

func TestNewDB_RejectsEmptyDSN(t *testing.T) {
	_, err := NewDB(zap.NewNop().Sugar(), &cfgpkg.Config{})
	require.ErrorIs(t, err, gorm.ErrInvalidDB)
}

func TestAutoMigrate_CreatesPaymentTables(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "m.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(zap.NewNop().Sugar(), gdb))
	require.True(t, gdb.Migrator().HasTable(&models.Payment{}))
	require.True(t, gdb.Migrator().HasTable(&models.PaymentWebhookLog{}))
	require.True(t, gdb.Migrator().HasIndex(&models.Payment{}, "unique_payment_tx_ref"))

	require.NoError(t, configurePool(gdb, cfgpkg.DBConfig{MaxOpenConns: 3}))
	require.Equal(t, 3, sqlDB.Stats().MaxOpenConnections)
}
