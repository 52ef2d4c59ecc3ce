package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/tunebridge/tmx/internal/matching"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Matching matching.Config `toml:"matching"`
	Database DatabaseConfig  `toml:"database"`
	Batch    BatchConfig     `toml:"batch"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BatchConfig contains batch-matching settings.
type BatchConfig struct {
	Workers        int `toml:"workers"`
	CandidateLimit int `toml:"candidate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks constraints the match engine itself does not enforce:
// threshold and delta must be present and non-negative. The engine treats
// malformed values as a caller bug, so validation happens here at load time.
func (c *Config) Validate() error {
	if c.Matching.MatchThreshold < 0 {
		return fmt.Errorf("%w: match_threshold must be non-negative", ErrInvalidConfig)
	}
	if c.Matching.AmbiguityDelta < 0 {
		return fmt.Errorf("%w: ambiguity_delta must be non-negative", ErrInvalidConfig)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("%w: batch workers must be non-negative", ErrInvalidConfig)
	}
	return nil
}
