package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvFiles lists the dotenv files read at startup, highest precedence first.
// Variables already present in the process environment always win.
var EnvFiles = []string{".env.local", ".env"}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`
	LogLevel    string `json:"log_level"`

	DatabaseURL        string `json:"-"`
	DatabaseServiceKey string `json:"-"`
	DBMaxIdleConns     int    `json:"db_max_idle_conns"`
	DBMaxOpenConns     int    `json:"db_max_open_conns"`
	DBAutoMigrate      bool   `json:"db_auto_migrate"`
	DataDir            string `json:"data_dir"`

	JWTSecret      string        `json:"-"`
	JWTTTL         time.Duration `json:"jwt_ttl"`
	AllowedOrigins []string      `json:"allowed_origins"`
	LoginRateLimit int           `json:"login_rate_limit"`
	Redis          RedisConfig   `json:"redis"`

	SentryDSN string `json:"-"`

	ReadTimeout        time.Duration `json:"read_timeout"`
	WriteTimeout       time.Duration `json:"write_timeout"`
	NotifyPollInterval time.Duration `json:"notify_poll_interval"`

	SeedAdminEmail    string `json:"seed_admin_email"`
	SeedAdminPassword string `json:"-"`
}

// LoadEnv reads the given dotenv files into the process environment.
// Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         getEnv("SERVER_PORT", "5000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseServiceKey: getEnv("DATABASE_SERVICE_KEY", ""),
		DBMaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		DBAutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", false),
		DataDir:            getEnv("DATA_DIR", "./data"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTTTL:             getEnvAsDuration("JWT_TTL", 24*time.Hour),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LoginRateLimit:     getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		ReadTimeout:        getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		NotifyPollInterval: getEnvAsDuration("NOTIFY_POLL_INTERVAL", 15*time.Second),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Environment == "production" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if cfg.LoginRateLimit <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}

	return cfg, nil
}

// UsesDatabase reports whether the managed database backend is configured.
// Without it the JSON file store under DataDir is used.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Log prints the non-secret parts of the configuration.
func (c *Config) Log(logger logrus.FieldLogger) {
	backend := "file:" + c.DataDir
	if c.UsesDatabase() {
		backend = "postgres:" + maskPassword(c.DatabaseURL)
	}
	logger.WithFields(logrus.Fields{
		"environment": c.Environment,
		"port":        c.ServerPort,
		"backend":     backend,
		"redis":       c.Redis.Enabled,
		"sentry":      c.SentryDSN != "",
	}).Info("Loaded configuration")
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
