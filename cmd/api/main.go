package main

// @title           Travel Payments API
// @version         1.0
// @description     Payment initiation, verification and gateway webhook reconciliation for travel bookings.
// @termsOfService  http://example.com/terms/

// @contact.name   API Support
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/travelpay/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Logging is not wired until fx starts.
	boot := zap.NewExample().Sugar()

	// .env is a development convenience; deployments set APP_* directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		boot.Warnf("failed to load .env: %v", err)
	}

	a := fx.New(app.Module)
	startCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancel()
	if err := a.Start(startCtx); err != nil {
		boot.Errorf("failed to start app: %v", err)
		return 1
	}

	// SIGINT/SIGTERM
	sig := <-a.Done()
	boot.Infow("shutting down", "signal", sig.String())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		boot.Errorf("failed to stop app: %v", err)
		return 1
	}
	return 0
}
