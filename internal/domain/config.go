package domain

import (
	"strconv"
	"strings"
	"time"
)

// Config holds the complete service configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Profile selects the infrastructure defaults
	Profile Profile `json:"profile"`

	// Component configurations
	Repository  RepositoryConfig  `json:"repository"`
	Cache       CacheConfig       `json:"cache"`
	EventBus    EventBusConfig    `json:"eventBus"`
	Integration IntegrationConfig `json:"integration"`
	Scheduler   SchedulerConfig   `json:"scheduler"`

	// Rule tables
	Rules RulesConfig `json:"rules"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// Profile represents the deployment profile.
type Profile string

const (
	// ProfileLocal runs on SQLite, in-memory cache and channels.
	ProfileLocal Profile = "local"

	// ProfileProduction runs on PostgreSQL, Redis and NATS.
	ProfileProduction Profile = "production"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds

	// AllowedOrigins lists browser origins for CORS; empty allows any
	AllowedOrigins []string `json:"allowedOrigins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
	Endpoint    string `json:"endpoint"`
	Insecure    bool   `json:"insecure"`
}

// SchedulerConfig holds cron specs for background jobs.
type SchedulerConfig struct {
	Enabled           bool   `json:"enabled"`
	SyncRetrySpec     string `json:"syncRetrySpec"`
	IncidentSweepSpec string `json:"incidentSweepSpec"`
	MaxSyncAttempts   int    `json:"maxSyncAttempts"`
}

// RulesConfig holds the data-driven rule tables.
type RulesConfig struct {
	// Timezone used to read shift days and hours
	Timezone string `json:"timezone"`

	// BaseHourlyRate is the award base rate before penalty multipliers
	BaseHourlyRate float64 `json:"baseHourlyRate"`

	// PayMultipliers are evaluated in order; first match wins
	PayMultipliers []PayMultiplierRule `json:"payMultipliers"`

	// ScreeningRules are evaluated in order; first match wins
	ScreeningRules []ScreeningRule `json:"screeningRules"`

	// CriticalityWeights weight compliance checks in the aggregate score
	CriticalityWeights map[Criticality]int `json:"criticalityWeights"`

	// AreaLoadings apply to default-table prices only
	AreaLoadings map[GeographicArea]float64 `json:"areaLoadings"`

	// MinorAgeLoading applies to participants younger than MinorAge
	MinorAgeLoading float64 `json:"minorAgeLoading"`
	MinorAge        int     `json:"minorAge"`

	// DefaultPrices is the fallback table keyed by support item code
	DefaultPrices map[string]DefaultPrice `json:"defaultPrices"`

	// PriceCacheTTL controls how long price lookups are cached
	PriceCacheTTL time.Duration `json:"priceCacheTtl"`
}

// DefaultConfig returns the local profile configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Profile: ProfileLocal,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./primacy.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Integration: IntegrationConfig{
			SMSProvider:   "log",
			EmailProvider: "log",
			AccountingURL: "https://api.xero.com/api.xro/2.0",
			TokenURL:      "https://identity.xero.com/connect/token",
			Timeout:       10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:           true,
			SyncRetrySpec:     "@every 1h",
			IncidentSweepSpec: "@every 1h",
			MaxSyncAttempts:   5,
		},
		Rules: DefaultRulesConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "primacy",
		},
	}
}

// ProductionConfig returns the production profile configuration.
func ProductionConfig() *Config {
	cfg := DefaultConfig()
	cfg.Profile = ProfileProduction
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "primacy",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
		LocalTTL:       time.Minute,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
		NATSQueueGroup:    "primacy-workers",
	}
	cfg.Tracing.Enabled = true
	return cfg
}

// DefaultRulesConfig returns the rule tables used when nothing is configured.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		Timezone:       "Australia/Sydney",
		BaseHourlyRate: 35.00,
		PayMultipliers: DefaultPayMultipliers(),
		ScreeningRules: DefaultScreeningRules(),
		CriticalityWeights: map[Criticality]int{
			CriticalityCritical: 40,
			CriticalityHigh:     30,
			CriticalityMedium:   20,
			CriticalityLow:      10,
		},
		AreaLoadings: map[GeographicArea]float64{
			AreaStandard:   1.0,
			AreaRemote:     1.4,
			AreaVeryRemote: 1.5,
		},
		MinorAgeLoading: 1.10,
		MinorAge:        18,
		DefaultPrices:   DefaultPriceTable(),
		PriceCacheTTL:   15 * time.Minute,
	}
}

// ApplyEnv overrides configuration values from environment variables.
// getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("PRIMACY_HOST", &c.Server.Host)
	setInt("PRIMACY_PORT", &c.Server.Port)
	if v := getenv("PRIMACY_CORS_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
		for i := range c.Server.AllowedOrigins {
			c.Server.AllowedOrigins[i] = strings.TrimSpace(c.Server.AllowedOrigins[i])
		}
	}

	setString("PRIMACY_DB_DRIVER", &c.Repository.Driver)
	setString("PRIMACY_SQLITE_PATH", &c.Repository.SQLitePath)
	setString("DATABASE_URL", &c.Repository.PostgresURL)
	setString("PRIMACY_PG_HOST", &c.Repository.PostgresHost)
	setInt("PRIMACY_PG_PORT", &c.Repository.PostgresPort)
	setString("PRIMACY_PG_USER", &c.Repository.PostgresUser)
	setString("PRIMACY_PG_PASSWORD", &c.Repository.PostgresPassword)
	setString("PRIMACY_PG_DB", &c.Repository.PostgresDB)
	setString("PRIMACY_PG_SSLMODE", &c.Repository.PostgresSSLMode)

	setString("PRIMACY_CACHE", &c.Cache.Type)
	setString("PRIMACY_REDIS_ADDR", &c.Cache.RedisAddr)
	setString("PRIMACY_REDIS_PASSWORD", &c.Cache.RedisPassword)

	setString("PRIMACY_BUS", &c.EventBus.Type)
	setString("PRIMACY_NATS_URL", &c.EventBus.NATSUrl)
	setString("PRIMACY_NATS_TOKEN", &c.EventBus.NATSToken)
	setString("PRIMACY_NATS_QUEUE", &c.EventBus.NATSQueueGroup)

	setString("PRIMACY_SMS_PROVIDER", &c.Integration.SMSProvider)
	setString("PRIMACY_EMAIL_PROVIDER", &c.Integration.EmailProvider)
	setString("PRIMACY_ALERT_PHONE", &c.Integration.AlertPhone)
	setString("PRIMACY_ALERT_EMAIL", &c.Integration.AlertEmail)
	setString("PRIMACY_ACCOUNTING_URL", &c.Integration.AccountingURL)
	setString("PRIMACY_ACCOUNTING_TENANT", &c.Integration.AccountingTenantID)
	setString("PRIMACY_ACCOUNTING_CLIENT_ID", &c.Integration.ClientID)
	setString("PRIMACY_ACCOUNTING_CLIENT_SECRET", &c.Integration.ClientSecret)
	setString("PRIMACY_ACCOUNTING_REFRESH_TOKEN", &c.Integration.RefreshToken)
	setString("PRIMACY_ACCOUNTING_TOKEN_URL", &c.Integration.TokenURL)
	setString("PRIMACY_ESIGN_URL", &c.Integration.ESignURL)
	setString("PRIMACY_ESIGN_TOKEN", &c.Integration.ESignToken)

	setBool("PRIMACY_SCHEDULER", &c.Scheduler.Enabled)
	setString("PRIMACY_SYNC_RETRY_SPEC", &c.Scheduler.SyncRetrySpec)
	setString("PRIMACY_INCIDENT_SWEEP_SPEC", &c.Scheduler.IncidentSweepSpec)

	setString("PRIMACY_TIMEZONE", &c.Rules.Timezone)
	if v := getenv("PRIMACY_BASE_HOURLY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Rules.BaseHourlyRate = f
		}
	}

	setString("PRIMACY_LOG_LEVEL", &c.Logging.Level)
	if strings.EqualFold(getenv("PRIMACY_DEBUG"), "true") {
		c.Logging.Level = "debug"
	}

	if v := getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = v
	}
	setBool("OTEL_EXPORTER_OTLP_INSECURE", &c.Tracing.Insecure)
}
