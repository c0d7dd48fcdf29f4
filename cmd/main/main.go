package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nepse-gateway/src/aggregator"
	"nepse-gateway/src/cache"
	"nepse-gateway/src/config"
	"nepse-gateway/src/dispatch"
	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
	"nepse-gateway/src/network"
	"nepse-gateway/src/ratelimit"
	"nepse-gateway/src/server"
	"nepse-gateway/src/updater"
	"nepse-gateway/src/upstream"
	"nepse-gateway/src/utils"
	"nepse-gateway/src/validator"
)

const version = "1.0.0"

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Upstream chain: network manager -> client -> response cache
	networkManager := network.NewManager(&config.Upstream, appLogger)
	client := upstream.NewClient(config.Upstream.BaseURL, networkManager, appLogger)

	ttl := time.Duration(config.Cache.TTLSeconds) * time.Second
	var source interfaces.IUpstream = cache.NewEndpointCache(client, ttl, appLogger)

	var marketData interfaces.IMarketData = upstream.NewMarketData(source)

	// 3. Domain components
	limiter := ratelimit.NewSlidingWindowLimiter(config.RateLimit, appLogger)
	symbolValidator := validator.NewValidator(config.Snapshot.Path, appLogger)

	tradingCalendar := utils.GetCalendar(config.Calendar.MIC, config.Calendar.Timezone)
	clock := utils.NewMarketClock(marketData, tradingCalendar, appLogger)

	agg := aggregator.NewAggregator(marketData, appLogger)
	registry := dispatch.NewRegistry(source, marketData, symbolValidator, clock, agg, appLogger)

	// The admin trigger rebuilds the snapshot through the same cached source,
	// so a manual update never hammers upstream.
	stockUpdater := updater.NewStockMapUpdater(source, config.Snapshot.Path, appLogger)

	// 4. Transports
	httpServer := server.NewGatewayServer(config.MConfig, appLogger, registry, limiter, symbolValidator, stockUpdater)

	transports := []interfaces.IGatewayServer{httpServer}
	if config.ZmqBind != "" {
		zmqServer := server.NewZMQServer(config.ZmqBind, registry, limiter, appLogger)
		if err := zmqServer.Start(); err != nil {
			appLogger.Critical("Failed to start ZMQ server: %v", err)
		}
		transports = append(transports, zmqServer)
	}
	if config.McpPort != 0 {
		mcpServer := server.NewMCPServer(config.McpHost, config.McpPort, version, registry, limiter, symbolValidator, appLogger)
		if err := mcpServer.Start(); err != nil {
			appLogger.Critical("Failed to start MCP server: %v", err)
		}
		transports = append(transports, mcpServer)
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			appLogger.Critical("HTTP server failed: %v", err)
		}
	}()

	// 5. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	for _, t := range transports {
		if err := t.Stop(); err != nil {
			appLogger.Warning("Transport shutdown error: %v", err)
		}
	}
}
