// Package config reads the athletix settings from environment variables.
//
// Each section maps to one concern: STORE_BACKEND and DATABASE_URL pick the
// record store, IMPORT_* and ENCODING_* drive the start-list pipeline,
// SCHEDULE_* and RESULTS_* hold the competition rules. Struct tags carry the
// variable name, an optional legacy alias and the default.
package config

import (
	"strconv"
	"time"
	_ "time/tzdata" // SCHEDULE_TIMEZONE must resolve on hosts without zoneinfo
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Encoding EncodingConfig
	Schedule ScheduleConfig
	Results  ResultsConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining imports (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds record store settings.
type DatabaseConfig struct {
	// Backend selects the record store: memory or postgres (default: postgres)
	Backend string `env:"STORE_BACKEND" default:"postgres"`

	// URL is the PostgreSQL connection string, required for the postgres backend.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Migrate applies the embedded schema on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"4"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds start-list and result file import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel imports (default: 5)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// DefaultFormat is the header alias table used when a request names none: pzla or international
	DefaultFormat string `env:"IMPORT_DEFAULT_FORMAT" default:"pzla"`

	// Strict stops an import at the first malformed row (default: false)
	Strict bool `env:"IMPORT_STRICT" default:"false"`

	UpdateExisting        bool `env:"IMPORT_UPDATE_EXISTING" default:"false"`
	CreateMissingAthletes bool `env:"IMPORT_CREATE_MISSING_ATHLETES" default:"true"`

	// SubmitWorkers bounds concurrent batch result submissions (default: 4)
	SubmitWorkers int `env:"RESULTS_SUBMIT_WORKERS" default:"4"`
}

// EncodingConfig controls legacy code page detection.
type EncodingConfig struct {
	// Legacy is the fallback code page name (default: windows-1250)
	Legacy string `env:"ENCODING_LEGACY" default:"windows-1250"`

	// Alphabet is the expected letter set: latin or polish (default: latin)
	Alphabet string `env:"ENCODING_ALPHABET" default:"latin"`

	// ExtraLetters are accepted in addition to the alphabet.
	ExtraLetters string `env:"ENCODING_EXTRA_LETTERS"`
}

// ScheduleConfig holds minute program generation rules.
type ScheduleConfig struct {
	DefaultBreak         time.Duration `env:"SCHEDULE_DEFAULT_BREAK" default:"5m"`
	DefaultTrackDuration time.Duration `env:"SCHEDULE_TRACK_DURATION" default:"10m"`
	DefaultFieldDuration time.Duration `env:"SCHEDULE_FIELD_DURATION" default:"60m"`
	PerSeries            time.Duration `env:"SCHEDULE_PER_SERIES" default:"5m"`
	PerAthlete           time.Duration `env:"SCHEDULE_PER_ATHLETE" default:"6m"`
	Lanes                int           `env:"SCHEDULE_LANES" default:"8"`

	// Timezone interprets schedule start dates and times (default: Europe/Warsaw)
	Timezone string `env:"SCHEDULE_TIMEZONE" default:"Europe/Warsaw"`
}

// ResultsConfig holds result classification and ranking settings.
type ResultsConfig struct {
	// SeasonStartMonth is the first month of a season, 1-12 (default: 1)
	SeasonStartMonth int `env:"RESULTS_SEASON_START_MONTH" default:"1"`

	// WindLimit is the legal tailwind in m/s (default: 2.0)
	WindLimit float64 `env:"RESULTS_WIND_LIMIT" default:"2.0"`

	// Points are awarded to positions 1..N, comma separated.
	Points []string `env:"RESULTS_POINTS" default:"8,7,6,5,4,3,2,1"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for file import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location loads the schedule timezone.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
