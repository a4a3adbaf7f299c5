// Package config manages YAML-based configuration and builds the configured
// I/O backend.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mfs "github.com/CageChen/cspellio/internal/fs"
)

// Backend names accepted in the backend field.
const (
	BackendNative = "native"
	BackendWeb    = "web"
	BackendGit    = "git"
	BackendMemory = "memory"
	BackendObject = "object"
	BackendHTTP   = "http"
	BackendRouter = "router"
)

// Backends lists every accepted backend name.
var Backends = []string{BackendNative, BackendWeb, BackendGit, BackendMemory, BackendObject, BackendHTTP, BackendRouter}

// Config holds all configuration options for cspellio
type Config struct {
	Backend     string           `yaml:"backend"`
	Root        string           `yaml:"root,omitempty"`
	GitRef      string           `yaml:"git_ref,omitempty"`
	Object      mfs.ObjectConfig `yaml:"object,omitempty"`
	HTTPTimeout time.Duration    `yaml:"http_timeout"`

	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// Internal: path to config file for saving
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendNative,
		Root:        ".",
		GitRef:      "HEAD",
		HTTPTimeout: mfs.DefaultHTTPTimeout,
		Port:        8080,
		LogLevel:    "info",
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cspellio"
	}
	return filepath.Join(home, ".config", "cspellio")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from explicitPath, or from the first of
// ~/.config/cspellio/config.yaml and ./cspellio.yaml that exists.
// A missing file is only an error when explicitPath is set.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	var cfgPath string
	if explicitPath != "" {
		cfgPath = explicitPath
	} else {
		// Try ~/.config/cspellio/config.yaml first
		globalConfig := GetConfigPath()
		if _, err := os.Stat(globalConfig); err == nil {
			cfgPath = globalConfig
		} else if _, err := os.Stat("cspellio.yaml"); err == nil {
			// Fall back to local cspellio.yaml
			cfgPath = "cspellio.yaml"
		}
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil {
			if explicitPath != "" {
				return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
			}
		}
		cfg.configPath = cfgPath
	} else {
		// Set default config path for saving
		cfg.configPath = GetConfigPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks field values.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	valid := false
	for _, b := range Backends {
		if c.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.Backend == BackendObject && c.Object.Endpoint == "" {
		return fmt.Errorf("backend %q needs object.endpoint", c.Backend)
	}
	return nil
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	// Ensure config directory exists
	configDir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0o600)
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// SetConfigFilePath changes where Save writes.
func (c *Config) SetConfigFilePath(path string) {
	c.configPath = path
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

// NewBackend builds the configured CSpellIO.
//
//nolint:ireturn // the backend is chosen at runtime.
func (c *Config) NewBackend(log *slog.Logger) (mfs.CSpellIO, error) {
	opts := []mfs.Option{mfs.WithLogger(log)}
	switch c.Backend {
	case BackendNative, "":
		return mfs.NewLocalIO(c.Root, opts...), nil
	case BackendWeb:
		return mfs.NewWebIO(), nil
	case BackendGit:
		return mfs.NewGitIO(c.Root, c.GitRef, opts...), nil
	case BackendMemory:
		return mfs.NewMemoryIO(opts...), nil
	case BackendHTTP:
		return mfs.NewHTTPIO(c.httpClient(), opts...), nil
	case BackendObject:
		return c.objectIO(opts)
	case BackendRouter:
		r := mfs.NewRouter(append(opts, mfs.WithCwd(c.Root))...).
			Handle(mfs.NewLocalIO(c.Root, opts...), "file").
			Handle(mfs.NewHTTPIO(c.httpClient(), opts...), "http", "https")
		if c.Object.Endpoint != "" {
			o, err := c.objectIO(opts)
			if err != nil {
				return nil, err
			}
			r.Handle(o, mfs.SchemeS3)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}

func (c *Config) httpClient() *http.Client {
	timeout := c.HTTPTimeout
	if timeout <= 0 {
		timeout = mfs.DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c *Config) objectIO(opts []mfs.Option) (*mfs.ObjectIO, error) {
	store, err := mfs.NewMinioStore(c.Object)
	if err != nil {
		return nil, err
	}
	return mfs.NewObjectIO(store, c.Object.Bucket, opts...), nil
}
