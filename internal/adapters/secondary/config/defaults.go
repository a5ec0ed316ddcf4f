package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SNGEDIT_"

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	autoOpen := getEnvBoolOrDefault(EnvPrefix+"BROWSER_AUTO_OPEN", true)

	config := &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault(EnvPrefix+"HOST", "localhost"),
			Port:            getEnvIntOrDefault(EnvPrefix+"PORT", 4300),
			ReadTimeout:     getEnvIntOrDefault(EnvPrefix+"READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault(EnvPrefix+"WRITE_TIMEOUT", 30),
			ShutdownTimeout: getEnvIntOrDefault(EnvPrefix+"SHUTDOWN_TIMEOUT", 5),
			CORSOrigins: getEnvSliceOrDefault(EnvPrefix+"CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:4300",
				"http://127.0.0.1:4300",
			}),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: &autoOpen,
			Browser:  getEnvOrDefault(EnvPrefix+"BROWSER", "default"),
		},
		Watcher: entities.WatcherConfig{
			Backend:    getEnvOrDefault(EnvPrefix+"WATCH_BACKEND", entities.WatcherBackendPoll),
			IntervalMs: 200,
			DebounceMs: 500,
		},
		Editor: entities.EditorConfig{
			FieldOrder:    append([]string{}, entities.DefaultFieldOrder...),
			NewSlideTitle: entities.DefaultSlideTitle,
			ExportFormat:  getEnvOrDefault(EnvPrefix+"EXPORT_FORMAT", "sng"),
		},
		Remote: entities.RemoteConfig{
			TimeoutSeconds: getEnvIntOrDefault(EnvPrefix+"REMOTE_TIMEOUT", 30),
			UserAgent:      "sngedit",
		},
		Sessions: entities.SessionsConfig{
			TTLMinutes:     120,
			CleanupMinutes: 10,
		},
		Logging: entities.LoggingConfig{
			Level:      getEnvOrDefault(EnvPrefix+"LOG_LEVEL", "info"),
			Verbose:    getEnvBoolOrDefault(EnvPrefix+"LOG_VERBOSE", false),
			JSONFormat: getEnvBoolOrDefault(EnvPrefix+"LOG_JSON", false),
			File:       getEnvOrDefault(EnvPrefix+"LOG_FILE", ""),
			MaxSize:    getEnvIntOrDefault(EnvPrefix+"LOG_MAX_SIZE", 100),
			MaxAge:     getEnvIntOrDefault(EnvPrefix+"LOG_MAX_AGE", 7),
			MaxBackups: getEnvIntOrDefault(EnvPrefix+"LOG_MAX_BACKUPS", 5),
		},
	}

	return config
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns environment variable as int or default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault returns environment variable as bool or default
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvSliceOrDefault returns environment variable as slice or default
func getEnvSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
