// ABOUTME: biosync configuration: user identity, data directory, and log level.
// ABOUTME: Stored as JSON under XDG_CONFIG_HOME; also opens storage and builds the logger.

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/biosync/internal/models"
	"github.com/harperreed/biosync/internal/storage"
)

// UserEnv overrides the configured user when set.
const UserEnv = "BIOSYNC_USER"

// Config stores biosync configuration.
type Config struct {
	// User is the identity every command acts as. Defaults to $USER.
	User string `json:"user,omitempty"`

	// DataDir is the directory holding biosync.db.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/biosync.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty"`
}

// GetUser resolves the acting user: BIOSYNC_USER, then the config file,
// then the login name.
func (c *Config) GetUser() models.UserID {
	if u := strings.TrimSpace(os.Getenv(UserEnv)); u != "" {
		return models.UserID(u)
	}
	if c.User != "" {
		return models.UserID(c.User)
	}
	return models.UserID(os.Getenv("USER"))
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetLogLevel returns the configured level, defaulting to warn.
func (c *Config) GetLogLevel() log.Level {
	if c.LogLevel == "" {
		return log.WarnLevel
	}
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// NewLogger builds the structured logger used by every service.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           c.GetLogLevel(),
		ReportTimestamp: true,
		Prefix:          "biosync",
	})
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DBPath is the SQLite file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "biosync.db")
}

// OpenStorage opens the SQLite store in the configured data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.DBPath())
}

// keys maps settable names to their fields.
var keys = map[string]func(*Config) *string{
	"user":      func(c *Config) *string { return &c.User },
	"data_dir":  func(c *Config) *string { return &c.DataDir },
	"log_level": func(c *Config) *string { return &c.LogLevel },
}

// Keys lists the settable configuration keys.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Set assigns value to key after checking it.
func (c *Config) Set(key, value string) error {
	field, ok := keys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == "log_level" && value != "" {
		if _, err := log.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid log_level %q: %w", value, err)
		}
	}
	*field(c) = value
	return nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "biosync", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
