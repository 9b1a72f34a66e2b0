// Haven Core - Smart Home Orchestration Service
//
// havend is the main entry point for Haven Core. It wires together the
// SQLite store, the optional MQTT and InfluxDB connections, the domain
// services and the HTTP API, then waits for a shutdown signal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/havenhome/haven-core/migrations"

	"github.com/havenhome/haven-core/internal/api"
	"github.com/havenhome/haven-core/internal/auth"
	"github.com/havenhome/haven-core/internal/device"
	"github.com/havenhome/haven-core/internal/infrastructure/cache"
	"github.com/havenhome/haven-core/internal/infrastructure/config"
	"github.com/havenhome/haven-core/internal/infrastructure/database"
	"github.com/havenhome/haven-core/internal/infrastructure/logging"
	"github.com/havenhome/haven-core/internal/infrastructure/mqtt"
	"github.com/havenhome/haven-core/internal/infrastructure/telemetry"
	"github.com/havenhome/haven-core/internal/room"
	"github.com/havenhome/haven-core/internal/rule"
	"github.com/havenhome/haven-core/internal/scene"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Haven Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and apply pending migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			mqttClient.Close()
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
			"client_id", cfg.MQTT.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var telemetryClient *telemetry.Client
	if cfg.Telemetry.Enabled {
		telemetryClient = telemetry.Connect(cfg.Telemetry)
		defer func() {
			log.Info("closing telemetry connection")
			telemetryClient.Close()
		}()
		log.Info("telemetry connected", "url", cfg.Telemetry.URL, "bucket", cfg.Telemetry.Bucket)
	} else {
		log.Info("telemetry disabled")
	}

	// WebSocket hub doubles as the device status notifier, so it is
	// created up front and handed to both sides.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Domain services
	deviceRepo := device.NewRepository(db.DB)
	deviceSvc := device.NewService(deviceRepo, device.NewLogRepository(db.DB),
		cache.NewMemory(), mqttClient, telemetryClient, hub, log)

	sceneRepo := scene.NewRepository(db.DB)
	composer := scene.NewComposer(sceneRepo, deviceRepo, log)
	executor := scene.NewExecutor(sceneRepo, deviceSvc, mqttClient, telemetryClient, log)

	// HTTP API
	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Users:    auth.NewUserRepository(db.DB),
		Rooms:    room.NewRepository(db.DB),
		Devices:  deviceSvc,
		Composer: composer,
		Executor: executor,
		Rules:    rule.NewRepository(db.DB),
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Telemetry (if enabled)
	// 3. MQTT (if enabled)
	// 4. Database

	log.Info("Haven Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HAVEN_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HAVEN_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies core components are up after initialisation.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
