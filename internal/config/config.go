package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	AppEnv        string
	LogLevel      string

	// classification and report tuning
	LimitedThreshold int
	TopRisksLimit    int

	AdminUsername string
	AdminPassword string
}

func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    getenv("SERVER_PORT", "8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AppEnv:        getenv("APP_ENV", "development"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin@risk.local"),
		AdminPassword: getenv("ADMIN_PASSWORD", "Admin123!"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	var err error
	if cfg.LimitedThreshold, err = getint("LIMITED_THRESHOLD", 18); err != nil {
		return nil, err
	}
	if cfg.LimitedThreshold < 5 || cfg.LimitedThreshold > 25 {
		return nil, fmt.Errorf("LIMITED_THRESHOLD must be between 5 and 25, got %d", cfg.LimitedThreshold)
	}
	if cfg.TopRisksLimit, err = getint("TOP_RISKS_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.TopRisksLimit < 1 {
		return nil, fmt.Errorf("TOP_RISKS_LIMIT must be positive, got %d", cfg.TopRisksLimit)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", key, v)
	}
	return n, nil
}
