package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AuthMode selects how the server authenticates incoming requests
type AuthMode string

const (
	AuthModeNone   AuthMode = "none"
	AuthModeBearer AuthMode = "bearer"
	AuthModeHeader AuthMode = "header"
)

// Default ceilings for the external automation processes. A single order and
// a mailbox extraction each get five minutes; a full extract-and-submit run
// gets ten.
const (
	DefaultOrderTimeout    = 300 * time.Second
	DefaultExtractTimeout  = 300 * time.Second
	DefaultPipelineTimeout = 600 * time.Second

	// DefaultPoolSize bounds concurrent automation invocations dispatched
	// by the server.
	DefaultPoolSize = 3
)

// Config holds all runtime configuration for the inbound automation service
type Config struct {
	// Server
	ListenAddr string   `yaml:"listen_addr"`
	AuthMode   AuthMode `yaml:"auth_mode"`
	MCPSecret  string   `yaml:"-"`
	PoolSize   int      `yaml:"pool_size"`

	// Automation backend
	APIKey          string        `yaml:"-"`
	ArcadiaUsername string        `yaml:"-"`
	ArcadiaPassword string        `yaml:"-"`
	Interpreter     string        `yaml:"interpreter"`
	ExtractScript   string        `yaml:"extract_script"`
	OrderScript     string        `yaml:"order_script"`
	ProfileDir      string        `yaml:"profile_dir"`
	OrderTimeout    time.Duration `yaml:"order_timeout"`
	ExtractTimeout  time.Duration `yaml:"extract_timeout"`
	PipelineTimeout time.Duration `yaml:"pipeline_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ListenAddr:      ":8080",
		AuthMode:        AuthModeBearer,
		PoolSize:        DefaultPoolSize,
		Interpreter:     "python3",
		ExtractScript:   "scripts/extract_inbound.py",
		OrderScript:     "scripts/run_arcadia_only.py",
		ProfileDir:      ".browser-profile",
		OrderTimeout:    DefaultOrderTimeout,
		ExtractTimeout:  DefaultExtractTimeout,
		PipelineTimeout: DefaultPipelineTimeout,
		LogLevel:        "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in that order of precedence. A .env file in the working
// directory is read first so local runs can keep credentials out of the
// shell.
func Load(path string) (*Config, error) {
	// Missing .env is fine; it only exists for local development.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	if v := os.Getenv("AUTH_MODE"); v != "" {
		c.AuthMode = AuthMode(v)
	}
	setString(&c.MCPSecret, "MCP_SECRET")
	setString(&c.APIKey, "AUTOMATION_API_KEY")
	setString(&c.ArcadiaUsername, "ARCADIA_USERNAME")
	setString(&c.ArcadiaPassword, "ARCADIA_PASSWORD")
	setString(&c.Interpreter, "AUTOMATION_INTERPRETER")
	setString(&c.ExtractScript, "EXTRACT_SCRIPT")
	setString(&c.OrderScript, "ORDER_SCRIPT")
	setString(&c.ProfileDir, "BROWSER_PROFILE_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogJSON = b
		}
	}
	if v := os.Getenv("POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PoolSize = n
		}
	}
	setDuration(&c.OrderTimeout, "ORDER_TIMEOUT")
	setDuration(&c.ExtractTimeout, "EXTRACT_TIMEOUT")
	setDuration(&c.PipelineTimeout, "PIPELINE_TIMEOUT")
}

// Validate checks for settings the server cannot run with
func (c *Config) Validate() error {
	switch c.AuthMode {
	case AuthModeNone, AuthModeBearer, AuthModeHeader:
	default:
		return fmt.Errorf("unknown auth mode: %q (expected none, bearer or header)", c.AuthMode)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool size must be >= 1, got %d", c.PoolSize)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
