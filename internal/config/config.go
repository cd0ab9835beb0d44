package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Upstream sources.
	WindborneBaseURL string
	NHCBaseURL       string
	UpstreamTimeout  time.Duration
	UpstreamRPS      float64
	KMZCacheSize     int
	UseMockData      bool

	// Analysis.
	AnalysisInterval     time.Duration
	ProximityThresholdKm float64

	// Kafka publication. Publishing is disabled when no brokers are set.
	KafkaBrokers   []string
	KafkaSinkTopic string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether results should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	interval, err := parsePositiveDuration("ANALYSIS_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parsePositiveDuration("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	threshold, err := parsePositiveFloat("PROXIMITY_THRESHOLD_KM", 100)
	if err != nil {
		return nil, err
	}

	rps, err := parsePositiveFloat("UPSTREAM_RPS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		WindborneBaseURL: envOrDefault("WINDBORNE_BASE_URL", "https://a.windbornesystems.com"),
		NHCBaseURL:       envOrDefault("NHC_BASE_URL", "https://www.nhc.noaa.gov"),
		UpstreamTimeout:  upstreamTimeout,
		UpstreamRPS:      rps,
		KMZCacheSize:     parseCacheSize(),
		UseMockData:      os.Getenv("USE_MOCK_DATA") == "true",

		AnalysisInterval:     interval,
		ProximityThresholdKm: threshold,

		KafkaBrokers:   parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "balloon-proximity-results"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.WindborneBaseURL == "" {
		return nil, errors.New("WINDBORNE_BASE_URL is required")
	}
	if cfg.NHCBaseURL == "" {
		return nil, errors.New("NHC_BASE_URL is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or fallback when the
// variable is unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, trimming whitespace
// and dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseCacheSize() int {
	if s := os.Getenv("KMZ_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}
