package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	CentralBaseURL string
	CentralAPIKey  string
	CentralTimeout time.Duration

	// TenantAPIKeys maps tenant id to the API key its terminals use.
	TenantAPIKeys map[string]string
	ServiceAPIKey string

	RateLimitPerSecond float64
	RateLimitBurst     int

	MaxConnectionsPerUser   int
	MaxConnectionsPerTenant int
	ConnectionStaleAfter    time.Duration
	ConnectionMaxAge        time.Duration
	OrderRetention          time.Duration

	MaxRelayRetries    int
	RelayRetrySchedule string
	MenuRetrySchedule  string
	SweepSchedule      string
}
