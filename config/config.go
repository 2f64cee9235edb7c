package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	DatabaseDriver     string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	StaffScope         string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	CORSOrigins        []string

	// StrictPointsRedemption makes order creation refuse to debit more
	// EcoPoints than the user holds. Off by default.
	StrictPointsRedemption bool
	SignupBonusPoints      int

	// SeedData loads the demo accounts and catalog into an empty database
	SeedData bool
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DatabaseDriver:         strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		Port:                   getEnv("PORT", "8080"),
		GoEnv:                  getEnv("GO_ENV", "development"),
		Auth0Domain:            getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:          getEnv("AUTH0_AUDIENCE", ""),
		StaffScope:             getEnv("STAFF_SCOPE", "manage:ecotrade"),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:            getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174,http://localhost:5175")),
		StrictPointsRedemption: getEnvBool("STRICT_POINTS_REDEMPTION", false),
		SignupBonusPoints:      getEnvInt("SIGNUP_BONUS_POINTS", 100),
		SeedData:               getEnvBool("SEED_DATA", false),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case "sqlite":
		// an empty URL falls back to a local file
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.SignupBonusPoints < 0 {
		return fmt.Errorf("SIGNUP_BONUS_POINTS must not be negative")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// AuthEnabled reports whether staff routes are protected by Auth0.
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// StorageEnabled reports whether an S3 bucket is configured for uploads.
func (c *Config) StorageEnabled() bool {
	return c.AWSS3Bucket != ""
}

// GetConfig returns the configuration loaded by Load, or defaults when
// Load has not run yet.
func GetConfig() *Config {
	if appConfig == nil {
		return Default()
	}
	return appConfig
}

// SetConfig replaces the process-wide configuration (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// Default returns a configuration suitable for local runs and tests.
func Default() *Config {
	return &Config{
		DatabaseDriver:    "sqlite",
		Port:              "8080",
		GoEnv:             "development",
		StaffScope:        "manage:ecotrade",
		AWSRegion:         "us-east-1",
		LogLevel:          "info",
		CORSOrigins:       []string{"http://localhost:5173", "http://localhost:5174", "http://localhost:5175"},
		SignupBonusPoints: 100,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
