package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	StoreTimeout       time.Duration
	CommitLockWait     time.Duration
	SuggestWindowDays  int
	SuggestMaxResults  int
	FixturesPath       string
}

// Load parses configuration from the current environment. MongoURI and
// KafkaBrokers are optional; when absent the service runs on in-memory
// storage with the outbox drained locally.
func Load() (Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()
	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "roamly"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		FixturesPath:     os.Getenv("UNIT_FIXTURES_PATH"),
	}
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	idempotencyTTL, err := parseDurationEnv("IDEMP_TTL", 168*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = idempotencyTTL

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	storeTimeout, err := parseDurationEnv("STORE_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.StoreTimeout = storeTimeout

	lockWait, err := parseDurationEnv("COMMIT_LOCK_WAIT", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.CommitLockWait = lockWait

	windowDays, err := parseIntEnv("SUGGEST_WINDOW_DAYS", 90)
	if err != nil {
		return Config{}, err
	}
	cfg.SuggestWindowDays = windowDays

	maxResults, err := parseIntEnv("SUGGEST_MAX_RESULTS", 3)
	if err != nil {
		return Config{}, err
	}
	cfg.SuggestMaxResults = maxResults

	retryStr := getEnv("RETRY_BACKOFF", "1s,5s,30s")
	for _, raw := range strings.Split(retryStr, ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}

	if cfg.MongoURI == "" && cfg.Env == "prod" {
		return Config{}, fmt.Errorf("MONGO_URI is required in prod")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return n, nil
}
