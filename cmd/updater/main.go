package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"nepse-gateway/src/config"
	"nepse-gateway/src/helpers"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/network"
	"nepse-gateway/src/updater"
	"nepse-gateway/src/upstream"
)

// -----------------------------------------------------------------------------
// Batch entrypoint for rebuilding the stock map snapshot. Meant to run from
// cron or CI against a live gateway; exits non-zero when the rebuild fails
// so schedulers notice.
// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	apiURL := flag.String("api-url", "", "gateway base URL (overrides snapshot.updater_base_url)")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name+"-updater")

	baseURL := config.Snapshot.UpdaterBaseURL
	if *apiURL != "" {
		baseURL = *apiURL
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", config.Host, config.Port)
	}

	// The updater tolerates a slower gateway than interactive traffic does
	timeout := time.Duration(config.Snapshot.UpdaterTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	networkManager := network.NewManagerWithTimeout(&config.Upstream, appLogger, timeout)
	client := upstream.NewClient(baseURL, networkManager, appLogger)

	stockUpdater := updater.NewStockMapUpdater(client, config.Snapshot.Path, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err = helpers.RetryWithBackoff("stock map update", 3, 10*time.Second, func() error {
		return stockUpdater.Update(ctx)
	})
	if err != nil {
		appLogger.Error("Stock map update failed: %v", err)
		os.Exit(1)
	}

	appLogger.Info("Stock map update complete")
}
