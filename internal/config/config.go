package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kevinxiao27/lww-set/lww"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	NodeID      string `yaml:"node_id"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	Clock       string `yaml:"clock"`      // wall | logical
	TiePolicy   string `yaml:"tie_policy"` // remove-wins | add-wins
	LogLevel    string `yaml:"log_level"`
}

// Load reads path as YAML when it is set, then applies LWW_* environment
// overrides and fills in defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	for env, field := range map[string]*string{
		"LWW_NODE_ID":      &cfg.NodeID,
		"LWW_HTTP_ADDR":    &cfg.HTTPAddr,
		"LWW_METRICS_ADDR": &cfg.MetricsAddr,
		"LWW_CLOCK":        &cfg.Clock,
		"LWW_TIE_POLICY":   &cfg.TiePolicy,
		"LWW_LOG_LEVEL":    &cfg.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

func (c *Config) setDefaults() {
	if c.NodeID == "" {
		c.NodeID = ulid.Make().String()
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.Clock == "" {
		c.Clock = "wall"
	}
	if c.TiePolicy == "" {
		c.TiePolicy = lww.RemoveWins.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Validate() error {
	switch c.Clock {
	case "wall", "logical":
	default:
		return fmt.Errorf("unknown clock %q, want wall or logical", c.Clock)
	}
	if _, err := ParseTiePolicy(c.TiePolicy); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func ParseTiePolicy(s string) (lww.TiePolicy, error) {
	switch strings.ToLower(s) {
	case lww.RemoveWins.String():
		return lww.RemoveWins, nil
	case lww.AddWins.String():
		return lww.AddWins, nil
	}
	return 0, fmt.Errorf("unknown tie policy %q, want remove-wins or add-wins", s)
}

// SetOptions builds the options for one new set. Each call gets its own clock.
func (c *Config) SetOptions() []lww.Option {
	tie, _ := ParseTiePolicy(c.TiePolicy)

	var clock lww.Clock = lww.NewWallClock()
	if c.Clock == "logical" {
		clock = lww.NewLogicalClock(0)
	}
	return []lww.Option{lww.WithClock(clock), lww.WithTiePolicy(tie)}
}
