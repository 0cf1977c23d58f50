package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is read once at process start from the environment.
type Config struct {
	AppEnv         string
	Port           string
	APIPrefix      string
	AllowedOrigins []string

	StoreDriver string
	Database    DatabaseConfig
	AutoMigrate bool

	QueryCacheTTL time.Duration
	FaucetIPRPS   float64
	FaucetIPBurst int

	RabbitMQ    RabbitMQConfig
	FaucetQueue string

	SnapshotCron string

	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Host          string
	User          string
	Password      string
	Name          string
	Port          string
	SSLMode       string
	TimeZone      string
	MaxIdleConns  int
	MaxOpenConns  int
	MigrationsDir string
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// Enabled reports whether a broker host was configured.
func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load reads the environment, after merging a .env file if one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	return &Config{
		AppEnv:         getEnv("APP_ENV", EnvDevelopment),
		Port:           getEnv("PORT", "3001"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		AllowedOrigins: splitList(os.Getenv("ALLOWED_ORIGINS")),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		Database: DatabaseConfig{
			Host:          getEnv("DB_HOST", "localhost"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      os.Getenv("DB_PASSWORD"),
			Name:          getEnv("DB_NAME", "stacksave"),
			Port:          getEnv("DB_PORT", "5432"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
			TimeZone:      getEnv("DB_TIMEZONE", "UTC"),
			MaxIdleConns:  getEnvInt("DB_MAX_IDLE_CONNS", 50),
			MaxOpenConns:  getEnvInt("DB_MAX_OPEN_CONNS", 200),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		QueryCacheTTL: getEnvDuration("QUERY_CACHE_TTL", 30*time.Second),
		FaucetIPRPS:   getEnvFloat("FAUCET_IP_RPS", 1),
		FaucetIPBurst: getEnvInt("FAUCET_IP_BURST", 5),

		RabbitMQ: RabbitMQConfig{
			Host:     os.Getenv("RABBITMQ_HOST"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
		},
		FaucetQueue: getEnv("FAUCET_QUEUE", "faucet_grants"),

		SnapshotCron: getEnv("SNAPSHOT_CRON", "0 5 0 * * *"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// InitLogger configures the global logrus logger.
func InitLogger(cfg *Config) {
	if cfg.LogFormat == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.Warnf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logrus.Warnf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

// splitList parses a comma-separated list, e.g. "http://localhost:3000,http://localhost:3001".
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
