package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	configs := getConfigs()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB := mustGormOpen(configs)
	if err := postgres.AutoMigrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, &app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded, using process environment: %v", err)
	}

	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", "fulfillment"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		CentralBaseURL: envString("CENTRAL_BASE_URL", ""),
		CentralAPIKey:  envString("CENTRAL_API_KEY", ""),
		CentralTimeout: envDuration("CENTRAL_TIMEOUT", 10*time.Second),

		TenantAPIKeys: parseTenantKeys(envString("TENANT_API_KEYS", "")),
		ServiceAPIKey: envString("SERVICE_API_KEY", ""),

		RateLimitPerSecond: envFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 20),

		MaxConnectionsPerUser:   envInt("MAX_CONNECTIONS_PER_USER", 3),
		MaxConnectionsPerTenant: envInt("MAX_CONNECTIONS_PER_TENANT", 50),
		ConnectionStaleAfter:    envDuration("CONNECTION_STALE_AFTER", 60*time.Second),
		ConnectionMaxAge:        envDuration("CONNECTION_MAX_AGE", time.Hour),
		OrderRetention:          envDuration("ORDER_RETENTION", 24*time.Hour),

		MaxRelayRetries:    envInt("MAX_RELAY_RETRIES", 5),
		RelayRetrySchedule: envString("RELAY_RETRY_SCHEDULE", "@every 1m"),
		MenuRetrySchedule:  envString("MENU_RETRY_SCHEDULE", "@every 30s"),
		SweepSchedule:      envString("SWEEP_SCHEDULE", "@every 30m"),
	}
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(envString(key, strconv.Itoa(fallback)))
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(envString(key, strconv.FormatFloat(fallback, 'f', -1, 64)), 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(envString(key, fallback.String()))
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return v
}

// parseTenantKeys reads "tenant:key,tenant:key".
func parseTenantKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tenantID, key, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(tenantID) == "" || strings.TrimSpace(key) == "" {
			log.Fatalf("Invalid TENANT_API_KEYS entry %q", pair)
		}
		keys[strings.TrimSpace(tenantID)] = strings.TrimSpace(key)
	}
	return keys
}

func mustGormOpen(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%v port=%v user=%v password=%v dbname=%v sslmode=%v",
		configs.DBHost,
		configs.DBPort,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBSslMode,
	)
	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e, err := app.CreateRouter(ctx)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	closed := app.CloseConnections()
	logger.Info("Closed push connections", "count", closed)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}
}
