// Package config loads neoknight settings from defaults, an optional YAML file,
// an optional .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Neo4j      Neo4j      `yaml:"neo4j"`
	Repository Repository `yaml:"repository"`
	Server     Server     `yaml:"server"`
	LogLevel   string     `yaml:"log_level" env:"LOG_LEVEL"`
}

// Neo4j holds the connection settings of the graph store.
type Neo4j struct {
	URI      string `yaml:"uri" env:"NEO4J_URI"`
	User     string `yaml:"user" env:"NEO4J_USER"`
	Password string `yaml:"password" env:"NEO4J_PASSWORD"`
	Database string `yaml:"database" env:"NEO4J_DATABASE"`
}

// Repository holds repository behaviour settings.
type Repository struct {
	// ClientSideEvaluation decides what happens when a specification has to be
	// evaluated in memory.
	ClientSideEvaluation EvaluationMode `yaml:"client_side_evaluation" env:"CLIENT_SIDE_EVALUATION"`
}

// Server holds HTTP server settings.
type Server struct {
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// EvaluationMode is the client-side evaluation policy.
type EvaluationMode string

const (
	// EvaluationAllow falls back silently.
	EvaluationAllow EvaluationMode = "allow"
	// EvaluationWarn falls back and logs a warning.
	EvaluationWarn EvaluationMode = "warn"
	// EvaluationThrow refuses to fall back.
	EvaluationThrow EvaluationMode = "throw"
)

// UnmarshalText accepts allow, warn and throw in any case. "silent" is an alias for allow.
func (m *EvaluationMode) UnmarshalText(text []byte) error {
	switch v := EvaluationMode(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case EvaluationAllow, EvaluationWarn, EvaluationThrow:
		*m = v
	case "silent":
		*m = EvaluationAllow
	default:
		return fmt.Errorf("unknown client side evaluation mode %q", string(text))
	}
	return nil
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Neo4j: Neo4j{
			URI:      "bolt://localhost:7687",
			User:     "neo4j",
			Database: "neo4j",
		},
		Repository: Repository{ClientSideEvaluation: EvaluationWarn},
		Server: Server{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path names an optional YAML file; environ
// overrides the process environment when non-nil.
func Load(path string, environ map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// Validate checks settings that have no usable fallback. Connection settings
// are checked when connecting, see Neo4j.Validate.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Repository.ClientSideEvaluation == "" {
		c.Repository.ClientSideEvaluation = EvaluationWarn
	}
	return nil
}
