package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines configuration for the primes CLI.
type Config struct {
	Workers        int       `yaml:"workers"`
	Bucket         string    `yaml:"bucket"`
	Dir            string    `yaml:"dir"`
	Prefix         string    `yaml:"prefix"`
	RunID          string    `yaml:"run_id"`
	Cleanup        bool      `yaml:"cleanup"`
	Progress       bool      `yaml:"progress"`
	VerifyChecksum bool      `yaml:"verify_checksum"`
	Log            LogConfig `yaml:"log"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// Default returns a Config with sensible defaults. Workers is zero, which
// means the hardware parallelism is detected at run time.
func Default() Config {
	return Config{
		Dir:            ".",
		Prefix:         "primes/",
		VerifyChecksum: true,
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// yamlConfig is used for YAML unmarshaling so that an absent boolean can be
// told apart from false.
type yamlConfig struct {
	Workers        int       `yaml:"workers"`
	Bucket         string    `yaml:"bucket"`
	Dir            string    `yaml:"dir"`
	Prefix         string    `yaml:"prefix"`
	RunID          string    `yaml:"run_id"`
	Cleanup        bool      `yaml:"cleanup"`
	Progress       bool      `yaml:"progress"`
	VerifyChecksum *bool     `yaml:"verify_checksum"`
	Log            LogConfig `yaml:"log"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Dir != "" {
		cfg.Dir = yc.Dir
	}
	if yc.Prefix != "" {
		cfg.Prefix = yc.Prefix
	}
	if yc.RunID != "" {
		cfg.RunID = yc.RunID
	}
	cfg.Cleanup = yc.Cleanup
	cfg.Progress = yc.Progress
	if yc.VerifyChecksum != nil {
		cfg.VerifyChecksum = *yc.VerifyChecksum
	}
	if yc.Log.Level != "" {
		cfg.Log.Level = yc.Log.Level
	}
	if yc.Log.Encoding != "" {
		cfg.Log.Encoding = yc.Log.Encoding
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PRIMES_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PRIMES_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PRIMES_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PRIMES_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("PRIMES_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("PRIMES_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("PRIMES_RUN_ID"); v != "" {
		c.RunID = v
	}
	if v := os.Getenv("PRIMES_CLEANUP"); v != "" {
		c.Cleanup = v == "true" || v == "1"
	}
	if v := os.Getenv("PRIMES_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("PRIMES_CHECKSUM"); v != "" {
		c.VerifyChecksum = v == "true" || v == "1"
	}
	if v := os.Getenv("PRIMES_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PRIMES_LOG_ENCODING"); v != "" {
		c.Log.Encoding = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New("config: workers must not be negative")
	}
	if c.Bucket == "" && c.Dir == "" {
		return errors.New("config: bucket or dir is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	if c.Log.Encoding != "console" && c.Log.Encoding != "json" {
		return fmt.Errorf("config: log encoding must be console or json, got %q", c.Log.Encoding)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored. VerifyChecksum is not merged since
// its zero value is meaningful; callers clear it explicitly.
func (c Config) Merge(override Config) Config {
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Dir != "" {
		c.Dir = override.Dir
	}
	if override.Prefix != "" {
		c.Prefix = override.Prefix
	}
	if override.RunID != "" {
		c.RunID = override.RunID
	}
	if override.Cleanup {
		c.Cleanup = override.Cleanup
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Log.Level != "" {
		c.Log.Level = override.Log.Level
	}
	if override.Log.Encoding != "" {
		c.Log.Encoding = override.Log.Encoding
	}
	return c
}
