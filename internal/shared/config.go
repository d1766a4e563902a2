package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	// pipeline
	Workers          int
	CorrectionWeight float64 // w in [0,1]; corrected = w*raw + (1-w)*sentiment rating
	OverratedThresh  float64
	RiskRatioThresh  float64
	RiskMinSupport   int
	BagSize          int
	HorizonMonths    int
	AROrder          int
	BoostRounds      int
	SeasonLength     int
}

// ConfigurationError is fatal; an out-of-range value would silently corrupt
// every downstream result, so validation runs before any stage.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	return Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ratinglens?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		Workers:          atoi("PIPELINE_WORKERS", 8),
		CorrectionWeight: atof("CORRECTION_WEIGHT", 0.5),
		OverratedThresh:  atof("OVERRATED_THRESHOLD", 0.75),
		RiskRatioThresh:  atof("RISK_RATIO_THRESHOLD", 0.30),
		RiskMinSupport:   atoi("RISK_MIN_SUPPORT", 5),
		BagSize:          atoi("BAG_SIZE", 20),
		HorizonMonths:    atoi("FORECAST_HORIZON_MONTHS", 3),
		AROrder:          atoi("AR_ORDER", 3),
		BoostRounds:      atoi("BOOST_ROUNDS", 50),
		SeasonLength:     atoi("SEASON_LENGTH", 12),
	}
}

// Validate fails fast on out-of-range values.
func (c Config) Validate() error {
	if c.CorrectionWeight < 0 || c.CorrectionWeight > 1 {
		return &ConfigurationError{Field: "CORRECTION_WEIGHT", Reason: "must be in [0,1]"}
	}
	if c.OverratedThresh < 0 {
		return &ConfigurationError{Field: "OVERRATED_THRESHOLD", Reason: "must be >= 0"}
	}
	if c.RiskRatioThresh < 0 || c.RiskRatioThresh > 1 {
		return &ConfigurationError{Field: "RISK_RATIO_THRESHOLD", Reason: "must be in [0,1]"}
	}
	if c.RiskMinSupport < 0 {
		return &ConfigurationError{Field: "RISK_MIN_SUPPORT", Reason: "must be >= 0"}
	}
	if c.BagSize < 1 {
		return &ConfigurationError{Field: "BAG_SIZE", Reason: "must be >= 1"}
	}
	if c.HorizonMonths < 1 {
		return &ConfigurationError{Field: "FORECAST_HORIZON_MONTHS", Reason: "must be >= 1"}
	}
	if c.Workers < 1 {
		return &ConfigurationError{Field: "PIPELINE_WORKERS", Reason: "must be >= 1"}
	}
	if c.AROrder < 1 {
		return &ConfigurationError{Field: "AR_ORDER", Reason: "must be >= 1"}
	}
	if c.BoostRounds < 1 {
		return &ConfigurationError{Field: "BOOST_ROUNDS", Reason: "must be >= 1"}
	}
	if c.SeasonLength < 2 {
		return &ConfigurationError{Field: "SEASON_LENGTH", Reason: "must be >= 2"}
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
