package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/travelpay/internal/app/api/server"
	"github.com/fatflowers/travelpay/internal/app/service/notifier"
	"github.com/fatflowers/travelpay/internal/app/service/payment"
	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	webhooklog "github.com/fatflowers/travelpay/internal/app/service/webhook_log"
	"github.com/fatflowers/travelpay/internal/platform/db"
	"github.com/fatflowers/travelpay/internal/platform/gateway"
	"github.com/fatflowers/travelpay/pkg/config"
	"github.com/fatflowers/travelpay/pkg/logger"
	"github.com/fatflowers/travelpay/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	gateway.Module,
	paymentstore.Module,
	webhooklog.Module,
	notifier.Module,
	payment.Module,
	server.Module,
)
