package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string
	DBPath          string
	CatalogPath     string
	FeedbackURL     string
	FeedbackTimeout time.Duration
	ThinkDelay      time.Duration
	SinkEnabled     bool
	LogLevel        string
	LogFormat       string
	LogFile         string
}

const (
	defaultFeedbackTimeout = 10 * time.Second
	defaultThinkDelay      = 700 * time.Millisecond
)

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are applied first but never override variables
// that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		DBPath:          getEnv("DB_PATH", "/data/nutribot.db"),
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		FeedbackURL:     getEnv("FEEDBACK_URL", "http://localhost:8080/api/feedback"),
		FeedbackTimeout: getDuration("FEEDBACK_TIMEOUT", defaultFeedbackTimeout),
		ThinkDelay:      getDuration("THINK_DELAY", defaultThinkDelay),
		SinkEnabled:     getBool("SINK_ENABLED", true),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		LogFile:         getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}
