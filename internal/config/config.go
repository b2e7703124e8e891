package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	Env         string
	LogLevel    string
	DatabaseURL string
	CORSOrigins string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
}

// Load reads configuration from environment variables, after merging a local
// .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getenv("APP_ADDR", ":8080"),
		Env:         getenv("APP_ENV", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigins: getenv("CORS_ORIGINS", "*"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      getDuration("JWT_TTL", 72*time.Hour),
		BcryptCost:  getInt("BCRYPT_COST", bcrypt.DefaultCost),
	}
}

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var errs []error
	if len(missing) > 0 {
		errs = append(errs, errors.New("missing required settings: "+strings.Join(missing, ", ")))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, errors.New("BCRYPT_COST must be between 4 and 31"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
