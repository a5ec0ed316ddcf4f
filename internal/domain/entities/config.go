package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Browser  BrowserConfig  `toml:"browser"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Editor   EditorConfig   `toml:"editor"`
	Remote   RemoteConfig   `toml:"remote"`
	Sessions SessionsConfig `toml:"sessions"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Editor.Validate(); err != nil {
		return fmt.Errorf("editor config: %w", err)
	}

	if err := c.Remote.Validate(); err != nil {
		return fmt.Errorf("remote config: %w", err)
	}

	if err := c.Sessions.Validate(); err != nil {
		return fmt.Errorf("sessions config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" {
		if ip := net.ParseIP(s.Host); ip == nil {
			if _, err := net.LookupHost(s.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	if s.ReadTimeout < 0 {
		return errors.New("read timeout must be non-negative")
	}

	if s.WriteTimeout < 0 {
		return errors.New("write timeout must be non-negative")
	}

	if s.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	return s.CORSOrigins
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	AutoOpen *bool  `toml:"auto_open"`
	Browser  string `toml:"browser"`
}

// GetAutoOpen reports whether serve opens the editor in a browser; unset means true
func (b BrowserConfig) GetAutoOpen() bool {
	if b.AutoOpen == nil {
		return true
	}
	return *b.AutoOpen
}

// WatcherConfig contains file watcher configuration
type WatcherConfig struct {
	Backend    string `toml:"backend"` // poll or fsnotify
	IntervalMs int    `toml:"interval_ms"`
	DebounceMs int    `toml:"debounce_ms"`
}

// Watcher backends
const (
	WatcherBackendPoll     = "poll"
	WatcherBackendFSNotify = "fsnotify"
)

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	switch w.Backend {
	case "", WatcherBackendPoll, WatcherBackendFSNotify:
	default:
		return fmt.Errorf("unknown watcher backend: %s", w.Backend)
	}

	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetBackend returns the backend name with default
func (w WatcherConfig) GetBackend() string {
	if w.Backend == "" {
		return WatcherBackendPoll
	}
	return w.Backend
}

// GetInterval returns the watcher interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the debounce time as a duration
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// DefaultFieldOrder is the metadata emission order used when none is configured
var DefaultFieldOrder = []string{
	"Title", "Author", "Melody", "(c)", "CCLI", "Key", "Tempo", "Time",
	"Copyright", "Editor", "Language",
}

// EditorConfig controls how songs are written back
type EditorConfig struct {
	// FieldOrder lists metadata keys emitted first, in this order
	FieldOrder []string `toml:"field_order"`

	// NewSlideTitle is the title given to slides added without one
	NewSlideTitle string `toml:"new_slide_title"`

	// ExportFormat is the default format for the export command
	ExportFormat string `toml:"export_format"`
}

// Validate validates editor configuration
func (e EditorConfig) Validate() error {
	for _, field := range e.FieldOrder {
		if strings.TrimSpace(field) == "" {
			return errors.New("field order entries cannot be empty")
		}
	}
	return nil
}

// GetFieldOrder returns the configured field order with default
func (e EditorConfig) GetFieldOrder() []string {
	if len(e.FieldOrder) == 0 {
		return DefaultFieldOrder
	}
	return e.FieldOrder
}

// GetExportFormat returns the default export format
func (e EditorConfig) GetExportFormat() string {
	if e.ExportFormat == "" {
		return "sng"
	}
	return e.ExportFormat
}

// RemoteConfig configures fetching and uploading songs over HTTP
type RemoteConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Validate validates remote configuration
func (r RemoteConfig) Validate() error {
	if r.TimeoutSeconds < 0 {
		return errors.New("remote timeout must be non-negative")
	}
	return nil
}

// GetTimeout returns the request timeout as a duration
func (r RemoteConfig) GetTimeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// GetUserAgent returns the user agent with default
func (r RemoteConfig) GetUserAgent() string {
	if r.UserAgent == "" {
		return "sngedit"
	}
	return r.UserAgent
}

// SessionsConfig controls the in-memory session store of the editing server
type SessionsConfig struct {
	TTLMinutes     int `toml:"ttl_minutes"`
	CleanupMinutes int `toml:"cleanup_minutes"`
}

// Validate validates session configuration
func (s SessionsConfig) Validate() error {
	if s.TTLMinutes < 0 {
		return errors.New("session ttl must be non-negative")
	}
	if s.CleanupMinutes < 0 {
		return errors.New("session cleanup interval must be non-negative")
	}
	return nil
}

// GetTTL returns how long an idle session is kept
func (s SessionsConfig) GetTTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// GetCleanupInterval returns how often expired sessions are purged
func (s SessionsConfig) GetCleanupInterval() time.Duration {
	if s.CleanupMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.CleanupMinutes) * time.Minute
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Verbose    bool   `toml:"verbose"`     // Enable verbose logging
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
	MaxSize    int    `toml:"max_size"`    // Maximum log file size in MB
	MaxAge     int    `toml:"max_age"`     // Maximum age in days
	MaxBackups int    `toml:"max_backups"` // Maximum number of backup files
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	case "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}

		if l.MaxSize < 0 {
			return errors.New("max log file size must be non-negative")
		}

		if l.MaxAge < 0 {
			return errors.New("max log file age must be non-negative")
		}

		if l.MaxBackups < 0 {
			return errors.New("max log backups must be non-negative")
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}

// GetMaxSize returns the max file size with default (100MB)
func (l LoggingConfig) GetMaxSize() int {
	if l.MaxSize <= 0 {
		return 100
	}
	return l.MaxSize
}

// GetMaxAge returns the max age with default (7 days)
func (l LoggingConfig) GetMaxAge() int {
	if l.MaxAge <= 0 {
		return 7
	}
	return l.MaxAge
}

// GetMaxBackups returns the max backups with default (5)
func (l LoggingConfig) GetMaxBackups() int {
	if l.MaxBackups <= 0 {
		return 5
	}
	return l.MaxBackups
}
