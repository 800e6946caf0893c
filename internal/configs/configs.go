package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	AppURL                 string
	DatabaseDriver         string
	DatabaseDSN            string
	RateLimit              int
	RedisEnabled           bool
	RedisAddr              string
	RedisKeyPrefix         string
	ShutdownTimeoutSeconds int
	LogLevel               string
	LogEncoding            string
	Timezone               string

	TelegramBotToken           string
	TelegramPollTimeoutSeconds int
	TelegramSendTimeoutSeconds int
	BotWorkers                 int
	DialogTTLSeconds           int

	APIBaseURL        string
	APITimeoutSeconds int

	NotifyIntervalSeconds int
	NotifyWorkers         int
	NotifyQueueSize       int
	NotifyBatchSize       int
	NotifyClaimTTLSeconds int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8000")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	var err error
	cfg := Config{
		AppURL:                 fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDriver:         getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:            getEnv("DATABASE_DSN", "todo.db"),
		RateLimit:              getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120, &err),
		RedisEnabled:           getEnvAsBool("REDIS_ENABLED", false, &err),
		RedisAddr:              fmt.Sprintf("%s:%s", redisHost, redisPort),
		RedisKeyPrefix:         getEnv("REDIS_KEY_PREFIX", "todo"),
		ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20, &err),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogEncoding:            getEnv("LOG_ENCODING", "json"),
		Timezone:               getEnv("APP_TIMEZONE", "UTC"),

		TelegramBotToken:           os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramPollTimeoutSeconds: getEnvAsInt("TELEGRAM_POLL_TIMEOUT_SECONDS", 30, &err),
		TelegramSendTimeoutSeconds: getEnvAsInt("TELEGRAM_SEND_TIMEOUT_SECONDS", 10, &err),
		BotWorkers:                 getEnvAsInt("BOT_WORKERS", 8, &err),
		DialogTTLSeconds:           getEnvAsInt("DIALOG_TTL_SECONDS", 86400, &err),

		APIBaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:8000/api"), "/"),
		APITimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 30, &err),

		NotifyIntervalSeconds: getEnvAsInt("NOTIFY_INTERVAL_SECONDS", 60, &err),
		NotifyWorkers:         getEnvAsInt("NOTIFY_WORKERS", 4, &err),
		NotifyQueueSize:       getEnvAsInt("NOTIFY_QUEUE_SIZE", 100, &err),
		NotifyBatchSize:       getEnvAsInt("NOTIFY_BATCH_SIZE", 500, &err),
		NotifyClaimTTLSeconds: getEnvAsInt("NOTIFY_CLAIM_TTL_SECONDS", 60, &err),
	}
	if err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validate(cfg Config) error {
	if cfg.AppURL == "" {
		return fmt.Errorf("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8000)")
	}
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is not a valid IANA zone: %w", err)
	}
	positive := map[string]int{
		"SHUTDOWN_TIMEOUT_SECONDS":      cfg.ShutdownTimeoutSeconds,
		"TELEGRAM_POLL_TIMEOUT_SECONDS": cfg.TelegramPollTimeoutSeconds,
		"TELEGRAM_SEND_TIMEOUT_SECONDS": cfg.TelegramSendTimeoutSeconds,
		"BOT_WORKERS":                   cfg.BotWorkers,
		"DIALOG_TTL_SECONDS":            cfg.DialogTTLSeconds,
		"API_TIMEOUT_SECONDS":           cfg.APITimeoutSeconds,
		"NOTIFY_INTERVAL_SECONDS":       cfg.NotifyIntervalSeconds,
		"NOTIFY_WORKERS":                cfg.NotifyWorkers,
		"NOTIFY_QUEUE_SIZE":             cfg.NotifyQueueSize,
		"NOTIFY_BATCH_SIZE":             cfg.NotifyBatchSize,
		"NOTIFY_CLAIM_TTL_SECONDS":      cfg.NotifyClaimTTLSeconds,
	}
	for key, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%s must be greater than 0", key)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int, errp *error) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			if *errp == nil {
				*errp = fmt.Errorf("invalid integer value for %s", key)
			}
			return defaultVal
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool, errp *error) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			if *errp == nil {
				*errp = fmt.Errorf("invalid boolean value for %s", key)
			}
			return defaultVal
		}
		return b
	}
	return defaultVal
}
