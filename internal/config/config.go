package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Filesystem mirror
	DataDir string // root of the physical directory tree shadowing the logical one
	// Folder defaults
	DefaultFolderName string // protected per-workspace default folder
	DefaultWorkspace  string // workspace assumed when none is supplied
	// Logging
	LogDir string // when set, logs also go to a timestamped file
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       env,
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CORSOrigins:       getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:       getTablePrefix(env),
		DataDir:           getEnv("DATA_DIR", "data/entries"),
		DefaultFolderName: getEnv("DEFAULT_FOLDER_NAME", "Uncategorized"),
		DefaultWorkspace:  getEnv("DEFAULT_WORKSPACE", "Main"),
		LogDir:            getEnv("LOG_DIR", ""),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
