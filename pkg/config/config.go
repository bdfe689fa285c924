// Package config loads scanner configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/reconprobe/reconprobe/pkg/webscan"
)

// Config is the full CLI/agent configuration. Zero values fall back to
// the defaults from Default.
type Config struct {
	TCP SectionTCP `yaml:"tcp"`
	Web SectionWeb `yaml:"web"`
	Log SectionLog `yaml:"log"`
}

// SectionTCP configures the TCP reachability scan.
type SectionTCP struct {
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	Workers        int     `yaml:"workers"`
	GrabBanner     bool    `yaml:"grab_banner"`
}

// SectionWeb configures the injection scan.
type SectionWeb struct {
	TimeoutSeconds int                 `yaml:"timeout_seconds"`
	Workers        int                 `yaml:"workers"`
	UserAgent      string              `yaml:"user_agent"`
	Payloads       []string            `yaml:"payloads"`
	Signatures     []SignatureOverride `yaml:"signatures"`
}

// SignatureOverride replaces the built-in signature table when present.
type SignatureOverride struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// SectionLog configures logging.
type SectionLog struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// Default returns the built-in configuration: 1s/50 workers for TCP,
// 10s/5 workers for web, info-level text logging.
func Default() *Config {
	return &Config{
		TCP: SectionTCP{TimeoutSeconds: 1.0, Workers: 50},
		Web: SectionWeb{TimeoutSeconds: 10, Workers: 5},
		Log: SectionLog{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.TCP.TimeoutSeconds <= 0 || cfg.Web.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("config %s: timeouts must be positive", path)
	}
	if cfg.TCP.Workers < 1 || cfg.Web.Workers < 1 {
		return nil, fmt.Errorf("config %s: worker counts must be positive", path)
	}
	return cfg, nil
}

// TCPTimeout returns the per-connection timeout as a duration.
func (c *Config) TCPTimeout() time.Duration {
	return time.Duration(c.TCP.TimeoutSeconds * float64(time.Second))
}

// WebTimeout returns the per-request timeout as a duration.
func (c *Config) WebTimeout() time.Duration {
	return time.Duration(c.Web.TimeoutSeconds) * time.Second
}

// WebSignatures converts signature overrides to the scanner's table type;
// nil when no override is configured.
func (c *Config) WebSignatures() []webscan.Signature {
	if len(c.Web.Signatures) == 0 {
		return nil
	}
	sigs := make([]webscan.Signature, 0, len(c.Web.Signatures))
	for _, s := range c.Web.Signatures {
		sigs = append(sigs, webscan.Signature{Category: s.Category, Patterns: s.Patterns})
	}
	return sigs
}

// NewLogger builds a logrus logger from the log section.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	if c.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
