package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/fredcamaral/sngedit/internal/domain/entities"
	"github.com/fredcamaral/sngedit/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	result := deepCopy(configs[0])
	if result == nil {
		result = &entities.Config{}
	}

	for i := 1; i < len(configs); i++ {
		if configs[i] != nil {
			m.mergeInto(result, configs[i])
		}
	}

	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok {
		autoOpen := !noBrowser
		result.Browser.AutoOpen = &autoOpen
	}

	if backend, ok := flags["watch-backend"].(string); ok && backend != "" {
		result.Watcher.Backend = backend
	}

	if format, ok := flags["format"].(string); ok && format != "" {
		result.Editor.ExportFormat = format
	}

	if verbose, ok := flags["verbose"].(bool); ok && verbose {
		result.Logging.Verbose = true
	}

	return result
}

// ApplyEnvVars applies environment variable overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		result.Server.Host = host
	}

	if portStr := os.Getenv(EnvPrefix + "PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			result.Server.Port = port
		}
	}

	if noBrowserStr := os.Getenv(EnvPrefix + "NO_BROWSER"); noBrowserStr != "" {
		if noBrowser, err := strconv.ParseBool(noBrowserStr); err == nil {
			autoOpen := !noBrowser
			result.Browser.AutoOpen = &autoOpen
		}
	}

	if browser := os.Getenv(EnvPrefix + "BROWSER"); browser != "" {
		result.Browser.Browser = browser
	}

	if backend := os.Getenv(EnvPrefix + "WATCH_BACKEND"); backend != "" {
		result.Watcher.Backend = backend
	}

	if intervalStr := os.Getenv(EnvPrefix + "WATCH_INTERVAL"); intervalStr != "" {
		if interval, err := strconv.Atoi(intervalStr); err == nil && interval > 0 {
			result.Watcher.IntervalMs = interval
		}
	}

	if debounceStr := os.Getenv(EnvPrefix + "WATCH_DEBOUNCE"); debounceStr != "" {
		if debounce, err := strconv.Atoi(debounceStr); err == nil && debounce >= 0 {
			result.Watcher.DebounceMs = debounce
		}
	}

	if order := os.Getenv(EnvPrefix + "FIELD_ORDER"); order != "" {
		fields := make([]string, 0)
		for _, field := range strings.Split(order, ",") {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				fields = append(fields, trimmed)
			}
		}
		if len(fields) > 0 {
			result.Editor.FieldOrder = fields
		}
	}

	if timeoutStr := os.Getenv(EnvPrefix + "REMOTE_TIMEOUT"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			result.Remote.TimeoutSeconds = timeout
		}
	}

	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		result.Logging.Level = level
	}

	if file := os.Getenv(EnvPrefix + "LOG_FILE"); file != "" {
		result.Logging.File = file
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	if source.Server.Port != 0 {
		target.Server.Port = source.Server.Port
	}
	if source.Server.Host != "" {
		target.Server.Host = source.Server.Host
	}
	if source.Server.ReadTimeout != 0 {
		target.Server.ReadTimeout = source.Server.ReadTimeout
	}
	if source.Server.WriteTimeout != 0 {
		target.Server.WriteTimeout = source.Server.WriteTimeout
	}
	if source.Server.ShutdownTimeout != 0 {
		target.Server.ShutdownTimeout = source.Server.ShutdownTimeout
	}
	if len(source.Server.CORSOrigins) > 0 {
		target.Server.CORSOrigins = append([]string{}, source.Server.CORSOrigins...)
	}

	// Browser config
	if source.Browser.Browser != "" {
		target.Browser.Browser = source.Browser.Browser
	}
	if source.Browser.AutoOpen != nil {
		autoOpen := *source.Browser.AutoOpen
		target.Browser.AutoOpen = &autoOpen
	}

	// Watcher config
	if source.Watcher.Backend != "" {
		target.Watcher.Backend = source.Watcher.Backend
	}
	if source.Watcher.IntervalMs != 0 {
		target.Watcher.IntervalMs = source.Watcher.IntervalMs
	}
	if source.Watcher.DebounceMs != 0 {
		target.Watcher.DebounceMs = source.Watcher.DebounceMs
	}

	// Editor config
	if len(source.Editor.FieldOrder) > 0 {
		target.Editor.FieldOrder = append([]string{}, source.Editor.FieldOrder...)
	}
	if source.Editor.NewSlideTitle != "" {
		target.Editor.NewSlideTitle = source.Editor.NewSlideTitle
	}
	if source.Editor.ExportFormat != "" {
		target.Editor.ExportFormat = source.Editor.ExportFormat
	}

	// Remote config
	if source.Remote.TimeoutSeconds != 0 {
		target.Remote.TimeoutSeconds = source.Remote.TimeoutSeconds
	}
	if source.Remote.UserAgent != "" {
		target.Remote.UserAgent = source.Remote.UserAgent
	}

	// Sessions config
	if source.Sessions.TTLMinutes != 0 {
		target.Sessions.TTLMinutes = source.Sessions.TTLMinutes
	}
	if source.Sessions.CleanupMinutes != 0 {
		target.Sessions.CleanupMinutes = source.Sessions.CleanupMinutes
	}

	// Logging config; booleans can only be switched on by a later file
	if source.Logging.Level != "" {
		target.Logging.Level = source.Logging.Level
	}
	if source.Logging.Verbose {
		target.Logging.Verbose = true
	}
	if source.Logging.JSONFormat {
		target.Logging.JSONFormat = true
	}
	if source.Logging.File != "" {
		target.Logging.File = source.Logging.File
	}
	if source.Logging.MaxSize != 0 {
		target.Logging.MaxSize = source.Logging.MaxSize
	}
	if source.Logging.MaxAge != 0 {
		target.Logging.MaxAge = source.Logging.MaxAge
	}
	if source.Logging.MaxBackups != 0 {
		target.Logging.MaxBackups = source.Logging.MaxBackups
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src

	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string{}, src.Server.CORSOrigins...)
	}

	if src.Browser.AutoOpen != nil {
		autoOpen := *src.Browser.AutoOpen
		dst.Browser.AutoOpen = &autoOpen
	}

	if src.Editor.FieldOrder != nil {
		dst.Editor.FieldOrder = append([]string{}, src.Editor.FieldOrder...)
	}

	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
