package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port      string
	JWTSecret string
	DataDir   string
	ImageDir  string
	// SecretFile is where the shared layout-edit secret lives, outside
	// the relational store.
	SecretFile string
	Database   DatabaseConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" (external or
	// embedded) or "sqlite" for single-terminal deployments.
	Driver     string
	Host       string
	Port       string
	Username   string
	Password   string
	Database   string
	SQLitePath string
	LogQueries bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		Port:       getEnv("PORT", "3310"),
		JWTSecret:  jwtSecret,
		DataDir:    dataDir,
		ImageDir:   getEnv("IMAGE_DIR", filepath.Join(dataDir, "images")),
		SecretFile: getEnv("EDIT_SECRET_FILE", filepath.Join(dataDir, "edit_secret")),
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("PG_HOST", "localhost"),
			Port:       getEnv("PG_PORT", "5432"),
			Username:   getEnv("PG_USERNAME", "postgres"),
			Password:   os.Getenv("PG_PASSWORD"),
			Database:   getEnv("PG_DATABASE", "rackstock"),
			SQLitePath: getEnv("SQLITE_PATH", filepath.Join(dataDir, "rackstock.db")),
			LogQueries: getEnv("DB_LOG", "false") == "true",
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
