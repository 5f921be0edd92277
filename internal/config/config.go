package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AccountDeletePolicy decides what happens to an account's transactions when
// the account is deleted.
type AccountDeletePolicy string

const (
	// DeletePolicyReject refuses to delete an account that still has transactions.
	DeletePolicyReject AccountDeletePolicy = "reject"
	// DeletePolicyCascade deletes the account together with its transactions.
	DeletePolicyCascade AccountDeletePolicy = "cascade"
)

// Config holds application configuration
type Config struct {
	// Runtime
	Env      string
	LogLevel string

	// Server
	Port             string
	CORSAllowOrigins []string
	EnablePprof      bool
	AdminAPIKey      string
	AccountDelete    AccountDeletePolicy

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := FromEnv()
	appConfig = config
	return config, nil
}

// FromEnv builds a Config from the current process environment without
// touching .env files.
func FromEnv() *Config {
	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		// Server
		Port:             getEnv("PORT", "8080"),
		CORSAllowOrigins: strings.Fields(getEnv("CORS_ALLOW_ORIGINS", "")),
		EnablePprof:      getEnv("ENABLE_PPROF", "false") == "true",
		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fintrack"),
		DBPassword: getEnv("DB_PASSWORD", "fintrack"),
		DBName:     getEnv("DB_NAME", "fintrack"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "fintrack.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil || expDur <= 0 {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	policy := AccountDeletePolicy(getEnv("ACCOUNT_DELETE_POLICY", string(DeletePolicyReject)))
	switch policy {
	case DeletePolicyReject, DeletePolicyCascade:
	default:
		log.Printf("Warning: invalid ACCOUNT_DELETE_POLICY value '%s', falling back to reject\n", policy)
		policy = DeletePolicyReject
	}
	config.AccountDelete = policy

	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		log.Printf("Warning: invalid DB_DRIVER value '%s', falling back to postgres\n", config.DBDriver)
		config.DBDriver = "postgres"
	}

	return config
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Tests use it to inject
// secrets and policies without environment variables.
func Set(c *Config) {
	appConfig = c
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
