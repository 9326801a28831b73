// Package config loads runtime configuration from the environment.
// Values are parsed once at startup and passed by value into
// constructors; nothing reads the environment after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matchpulse/collector/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

var validate = validator.New()

// DataSourceConfig describes one upstream provider. Immutable after
// Load.
type DataSourceConfig struct {
	Name                string        `validate:"required"`
	BaseURL             string        `validate:"required,url"`
	AuthToken           string        `validate:"-"`
	RateLimitPerMinute  int           `validate:"min=1"`
	Timeout             time.Duration `validate:"min=1ms"`
	RetryAttempts       int           `validate:"min=0"`
	RetryDelay          time.Duration `validate:"min=0"`
	ReliabilityScore    float64       `validate:"min=0,max=1"`
	Enabled             bool
	CircuitEnabled      bool
	CircuitFailureCount int
	CircuitOpenTimeout  time.Duration
	CircuitHalfOpenReq  int
}

func (c DataSourceConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("data source %q: %w", c.Name, err)
	}
	return nil
}

// CollectionSchedule drives the scheduler daemon. The orchestrator
// itself never sees the cron spec.
type CollectionSchedule struct {
	CronSpec     string
	Competitions []int64
	LookbackDays int
	WindowDays   int
	MaxWorkers   int
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	DBURL              string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	InternalJobToken   string

	FootballData         DataSourceConfig
	Schedule             CollectionSchedule
	MinSourceReliability float64

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	dbURL := strings.TrimSpace(getEnv("DATABASE_URL", ""))
	if dbURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	fdEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_DATA_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_ENABLED: %w", err)
	}
	fdRateLimit, err := getEnvAsInt("FOOTBALL_DATA_RATE_LIMIT_PER_MINUTE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_RATE_LIMIT_PER_MINUTE: %w", err)
	}
	fdTimeout, err := time.ParseDuration(getEnv("FOOTBALL_DATA_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_TIMEOUT: %w", err)
	}
	fdRetries, err := getEnvAsInt("FOOTBALL_DATA_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_MAX_RETRIES: %w", err)
	}
	fdRetryDelay, err := time.ParseDuration(getEnv("FOOTBALL_DATA_RETRY_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_RETRY_DELAY: %w", err)
	}
	fdReliability, err := getEnvAsFloat("FOOTBALL_DATA_RELIABILITY_SCORE", 0.95)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_RELIABILITY_SCORE: %w", err)
	}
	fdCircuitEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_DATA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_CIRCUIT_ENABLED: %w", err)
	}
	fdCircuitFailures, err := getEnvAsInt("FOOTBALL_DATA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	fdCircuitOpenTimeout, err := time.ParseDuration(getEnv("FOOTBALL_DATA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	fdCircuitHalfOpen, err := getEnvAsInt("FOOTBALL_DATA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	footballData := DataSourceConfig{
		Name:                getEnv("FOOTBALL_DATA_SOURCE_NAME", "football_data"),
		BaseURL:             getEnv("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4"),
		AuthToken:           strings.TrimSpace(getEnv("FOOTBALL_DATA_TOKEN", "")),
		RateLimitPerMinute:  fdRateLimit,
		Timeout:             fdTimeout,
		RetryAttempts:       fdRetries,
		RetryDelay:          fdRetryDelay,
		ReliabilityScore:    fdReliability,
		Enabled:             fdEnabled,
		CircuitEnabled:      fdCircuitEnabled,
		CircuitFailureCount: fdCircuitFailures,
		CircuitOpenTimeout:  fdCircuitOpenTimeout,
		CircuitHalfOpenReq:  fdCircuitHalfOpen,
	}
	if err := footballData.Validate(); err != nil {
		return Config{}, err
	}
	if appEnv == EnvProd && fdEnabled && footballData.AuthToken == "" {
		return Config{}, fmt.Errorf("FOOTBALL_DATA_TOKEN is required when FOOTBALL_DATA_ENABLED=true")
	}

	competitions, err := parseIDList(getEnv("COLLECTION_COMPETITIONS", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTION_COMPETITIONS: %w", err)
	}
	lookbackDays, err := getEnvAsInt("COLLECTION_LOOKBACK_DAYS", 7)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTION_LOOKBACK_DAYS: %w", err)
	}
	windowDays, err := getEnvAsInt("COLLECTION_WINDOW_DAYS", 14)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTION_WINDOW_DAYS: %w", err)
	}
	maxWorkers, err := getEnvAsInt("COLLECTION_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTION_MAX_WORKERS: %w", err)
	}
	if maxWorkers < 1 {
		return Config{}, fmt.Errorf("COLLECTION_MAX_WORKERS must be >= 1")
	}

	minReliability, err := getEnvAsFloat("COLLECTION_MIN_RELIABILITY", 0.5)
	if err != nil {
		return Config{}, fmt.Errorf("parse COLLECTION_MIN_RELIABILITY: %w", err)
	}
	if minReliability < 0 || minReliability > 1 {
		return Config{}, fmt.Errorf("COLLECTION_MIN_RELIABILITY must be between 0 and 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServer := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServer == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	serviceName := getEnv("SERVICE_NAME", "matchpulse-collector")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DBURL:              dbURL,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		FootballData:       footballData,
		Schedule: CollectionSchedule{
			CronSpec:     getEnv("COLLECTION_CRON", "0 */6 * * *"),
			Competitions: competitions,
			LookbackDays: lookbackDays,
			WindowDays:   windowDays,
			MaxWorkers:   maxWorkers,
		},
		MinSourceReliability:       minReliability,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServer,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		LogLevel:                   parseLogLevel(getEnv("LOG_LEVEL", "info")),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case EnvDev, EnvStage, EnvProd:
		return v, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseIDList(raw string) ([]int64, error) {
	out := make([]int64, 0, 8)
	for _, part := range splitCSV(raw) {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		if value <= 0 {
			return nil, fmt.Errorf("id must be > 0, got %q", part)
		}
		out = append(out, value)
	}

	return out, nil
}
