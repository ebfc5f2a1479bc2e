package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/lmt-facturation/internal/common"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv          string
	CatalogFile     string
	ExchangeRate    int64
	PageSize        string
	IncludeLogo     bool
	LogoPath        string
	IncludeQR       bool
	OutputDir       string
	ReferencePrefix string
	ReferenceSuffix string
	Location        *time.Location
	EventsJournal   string

	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsTextfile  string
	MetricsBuckets   string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		CatalogFile:      strings.TrimSpace(k.String("CATALOG_FILE")),
		ExchangeRate:     common.ParseInt64Default(k.String("EXCHANGE_RATE"), 5000),
		PageSize:         strings.ToUpper(valueOrDefault(k.String("PAGE_SIZE"), "A5")),
		IncludeLogo:      parseBool(k.String("INCLUDE_LOGO"), true),
		LogoPath:         valueOrDefault(k.String("LOGO_PATH"), "logo.png"),
		IncludeQR:        parseBool(k.String("INCLUDE_QR"), true),
		OutputDir:        valueOrDefault(k.String("OUTPUT_DIR"), "."),
		ReferencePrefix:  valueOrDefault(k.String("REFERENCE_PREFIX"), "LMT"),
		ReferenceSuffix:  strings.ToLower(valueOrDefault(k.String("REFERENCE_SUFFIX"), "none")),
		EventsJournal:    strings.TrimSpace(k.String("EVENTS_JOURNAL")),
		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "console"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "lmt"),
		MetricsTextfile:  strings.TrimSpace(k.String("OBS_METRICS_TEXTFILE")),
		MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
	}

	loc, err := time.LoadLocation(valueOrDefault(k.String("TIMEZONE"), "Indian/Antananarivo"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.ExchangeRate <= 0 {
		return nil, errors.New("EXCHANGE_RATE must be positive")
	}
	if cfg.PageSize != "A5" && cfg.PageSize != "A4" {
		return nil, fmt.Errorf("PAGE_SIZE must be A5 or A4, got %q", cfg.PageSize)
	}
	switch cfg.ReferenceSuffix {
	case "none", "sequence", "random":
	default:
		return nil, fmt.Errorf("REFERENCE_SUFFIX must be none, sequence or random, got %q", cfg.ReferenceSuffix)
	}

	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
