// cmd/flushtokens/main.go
package main

import (
	"context"
	"go-auth-api/app"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/service"
	"os"
	"time"
)

// Deletes refresh-token ledger rows and blacklist entries whose tokens have
// expired. Intended to run from cron.
func main() {
	if err := run(); err != nil {
		logger.Log.WithError(err).Error("Flush failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	stores, err := app.OpenStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	_, err = service.NewMaintenanceService(stores.Tokens, stores.Blacklist).FlushExpired(ctx)
	return err
}
