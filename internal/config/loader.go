package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/athletix/internal/charset"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
)

// Load reads the athletix settings from the environment, applies the tag
// defaults and runs Validate. cmd/server calls it after godotenv has merged
// .env; cmd/importer calls it after --store and --log-level are applied.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// loadStruct walks the section structs and fills every field carrying an
// env tag. envAlt names a legacy variable read when the primary is unset.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}
		value, err := lookup(field.Tag)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}
	return nil
}

// lookup resolves one tagged field: env, then envAlt, then default.
func lookup(tag reflect.StructTag) (string, error) {
	name := tag.Get("env")
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	if alt := tag.Get("envAlt"); alt != "" {
		if v := os.Getenv(alt); v != "" {
			return v, nil
		}
	}
	if tag.Get("required") == "true" {
		return "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return tag.Get("default"), nil
}

// setField parses value into the field's type. Durations use Go syntax
// ("90s", "1m30s"); string slices such as RESULTS_POINTS and TRUSTED_PROXIES
// are comma-separated.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Float64:
		// Wind limits come from Polish spreadsheets as "2,0".
		f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		field.Set(reflect.ValueOf(out))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks every section and reports all failures at once, one per
// line, so a misconfigured deployment is fixed in a single pass.
func (c *Config) Validate() error {
	var errs []string
	for _, check := range []func() []string{
		c.Database.validate,
		c.Server.validate,
		c.Import.validate,
		c.Encoding.validate,
		c.Schedule.validate,
		c.Results.validate,
		c.Rate.validate,
		c.Logging.validate,
	} {
		errs = append(errs, check()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (d DatabaseConfig) validate() []string {
	var errs []string
	switch strings.ToLower(d.Backend) {
	case BackendMemory:
		// Pool settings are ignored.
	case BackendPostgres:
		if d.URL == "" {
			errs = append(errs, "DATABASE_URL is required when STORE_BACKEND is postgres")
		}
		if d.MaxConns < d.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns))
		}
		if d.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if d.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_BACKEND (%q) must be one of: memory, postgres", d.Backend))
	}
	return errs
}

func (s ServerConfig) validate() []string {
	var errs []string
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return errs
}

func (im ImportConfig) validate() []string {
	var errs []string
	if im.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if im.MaxConcurrent <= 0 {
		errs = append(errs, "IMPORT_MAX_CONCURRENT must be positive")
	}
	if im.MaxWaitTime <= 0 {
		errs = append(errs, "IMPORT_MAX_WAIT_TIME must be positive")
	}
	if im.SubmitWorkers <= 0 {
		errs = append(errs, "RESULTS_SUBMIT_WORKERS must be positive")
	}
	if _, err := rows.ParseFormat(im.DefaultFormat); err != nil {
		errs = append(errs, fmt.Sprintf("IMPORT_DEFAULT_FORMAT: %v", err))
	}
	return errs
}

func (e EncodingConfig) validate() []string {
	var errs []string
	if _, err := charset.NewNormalizer(nil, e.Legacy); err != nil {
		errs = append(errs, fmt.Sprintf("ENCODING_LEGACY: %v", err))
	}
	switch strings.ToLower(e.Alphabet) {
	case "latin", "polish":
	default:
		errs = append(errs, fmt.Sprintf("ENCODING_ALPHABET (%q) must be one of: latin, polish", e.Alphabet))
	}
	return errs
}

func (s ScheduleConfig) validate() []string {
	var errs []string
	if s.DefaultBreak < 0 {
		errs = append(errs, "SCHEDULE_DEFAULT_BREAK must be non-negative")
	}
	if s.DefaultTrackDuration <= 0 || s.DefaultFieldDuration <= 0 {
		errs = append(errs, "SCHEDULE_TRACK_DURATION and SCHEDULE_FIELD_DURATION must be positive")
	}
	if s.Lanes <= 0 {
		errs = append(errs, "SCHEDULE_LANES must be positive")
	}
	if _, err := s.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("SCHEDULE_TIMEZONE (%q): %v", s.Timezone, err))
	}
	return errs
}

func (r ResultsConfig) validate() []string {
	var errs []string
	if r.SeasonStartMonth < 1 || r.SeasonStartMonth > 12 {
		errs = append(errs, fmt.Sprintf("RESULTS_SEASON_START_MONTH (%d) must be 1-12", r.SeasonStartMonth))
	}
	if r.WindLimit <= 0 {
		errs = append(errs, "RESULTS_WIND_LIMIT must be positive")
	}
	if _, err := results.ParsePointsTable(strings.Join(r.Points, ",")); err != nil {
		errs = append(errs, fmt.Sprintf("RESULTS_POINTS: %v", err))
	}
	return errs
}

func (r RateLimitConfig) validate() []string {
	if r.Enabled && (r.RequestsPerMinute <= 0 || r.ImportLimit <= 0) {
		return []string{"RATE_LIMIT_REQUESTS_PER_MINUTE and RATE_LIMIT_IMPORT must be positive when rate limiting is enabled"}
	}
	return nil
}

func (l LoggingConfig) validate() []string {
	var errs []string
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level))
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", l.Format))
	}
	return errs
}

// String renders the settings for the startup log line with DATABASE_URL
// masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Database: {Backend: %q, URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.Backend, c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d, MaxConcurrent: %d, DefaultFormat: %q, Strict: %v}, ",
		c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.DefaultFormat, c.Import.Strict)
	fmt.Fprintf(&b, "Schedule: {DefaultBreak: %s, Timezone: %q}, ", c.Schedule.DefaultBreak, c.Schedule.Timezone)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
