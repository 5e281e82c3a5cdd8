// Package config decodes and validates the flat configuration record
// consumed by Shared Resources.Setup (spec §6).
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
)

// LogLevel enumerates the recognized log_level values.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) valid() bool {
	switch l {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

// MetadataRate is the token-bucket parameter pair for metadata-fetch
// pacing (spec §6 "metadata_rate").
type MetadataRate struct {
	Count      int `toml:"count"`
	IntervalMS int `toml:"interval_ms"`
}

// Config is the flat record described by spec §6.
type Config struct {
	DataDir string `toml:"data_dir"`

	Username string `toml:"username"`
	Password string `toml:"password"`

	TrustToken   string `toml:"trust_token"`
	RefreshToken bool   `toml:"refresh_token"`

	Port int `toml:"port"`

	MaxRetries      int `toml:"max_retries"`
	DownloadThreads int `toml:"download_threads"`

	Schedule string `toml:"schedule"`

	EnableCrashReporting bool `toml:"enable_crash_reporting"`
	FailOnMFA            bool `toml:"fail_on_mfa"`
	Force                bool `toml:"force"`
	RemoteDelete         bool `toml:"remote_delete"`
	Silent               bool `toml:"silent"`
	LogToCLI             bool `toml:"log_to_cli"`
	SuppressWarnings     bool `toml:"suppress_warnings"`
	ExportMetrics        bool `toml:"export_metrics"`

	LogLevel LogLevel `toml:"log_level"`

	MetadataRate MetadataRate `toml:"metadata_rate"`
}

// Default returns a Config with the same baseline defaults the CLI's
// `config init` writes out.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:         dataDir,
		MaxRetries:      5,
		DownloadThreads: 4,
		LogLevel:        LogLevelInfo,
		MetadataRate:    MetadataRate{Count: 20, IntervalMS: 1000},
	}
}

// Validate checks the invariants spec §6/§7 imply: data_dir is required,
// numeric fields are sane, log_level is recognized, and schedule (if set)
// parses as a valid cron expression. schedule is validated but never
// executed by the core (spec §6 "external scheduler hint").
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must be non-negative")
	}
	if c.DownloadThreads <= 0 {
		return fmt.Errorf("config: download_threads must be positive")
	}
	if c.LogLevel != "" && !c.LogLevel.valid() {
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	if c.MetadataRate.Count <= 0 || c.MetadataRate.IntervalMS <= 0 {
		return fmt.Errorf("config: metadata_rate.count and interval_ms must be positive")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("config: invalid schedule: %w", err)
		}
	}
	return nil
}

// Manager handles reading and writing configuration, mirroring the
// teacher's toml-backed Manager.
type Manager struct{}

// Read decodes a Config from r and validates it.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write encodes cfg to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile loads and validates a Config from path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes a new config file at path, failing if one already exists.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
