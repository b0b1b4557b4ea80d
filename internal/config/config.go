package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LinkConfig struct {
	Name          string     `toml:"name"`
	Listen        string     `toml:"listen"`
	Peer          string     `toml:"peer"`
	FragmentSize  int        `toml:"fragment_size"`
	AckTimeoutMS  int        `toml:"ack_timeout_ms"`
	PollTimeoutMS int        `toml:"poll_timeout_ms"`
	MaxRetry      int        `toml:"max_retry"`
	StatsAddr     string     `toml:"stats_addr"`
	AuthToken     string     `toml:"auth_token"`
	CorsOrigins   []string   `toml:"cors_origins"`
	Loss          LossConfig `toml:"loss"`
}

// LossConfig injects deterministic corruption on the send path, for
// exercising the recovery machinery against a known loss profile.
type LossConfig struct {
	Enabled  bool    `toml:"enabled"`
	DropRate float64 `toml:"drop_rate"`
	FlipRate float64 `toml:"flip_rate"`
	Seed     int64   `toml:"seed"`
}

func LoadLinkConfig(path string) (LinkConfig, error) {
	var cfg LinkConfig
	if err := loadToml(path, &cfg); err != nil {
		return LinkConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = "linkctl"
	}
	if cfg.Listen == "" {
		cfg.Listen = ":9600"
	}
	if cfg.FragmentSize == 0 {
		cfg.FragmentSize = 64
	}
	if cfg.AckTimeoutMS == 0 {
		cfg.AckTimeoutMS = 1000
	}
	if cfg.PollTimeoutMS == 0 {
		cfg.PollTimeoutMS = 200
	}
	if cfg.MaxRetry == 0 {
		cfg.MaxRetry = 5
	}
	if cfg.StatsAddr == "" {
		cfg.StatsAddr = ":9700"
	}
	if err := ValidateLinkConfig(cfg); err != nil {
		return LinkConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateLinkConfig(cfg LinkConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("link config missing name")
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		return fmt.Errorf("link config missing listen")
	}
	if cfg.FragmentSize < 1 {
		return fmt.Errorf("fragment_size must be at least 1")
	}
	if cfg.AckTimeoutMS < 1 {
		return fmt.Errorf("ack_timeout_ms must be at least 1")
	}
	if cfg.PollTimeoutMS < 1 {
		return fmt.Errorf("poll_timeout_ms must be at least 1")
	}
	if cfg.MaxRetry < 1 {
		return fmt.Errorf("max_retry must be at least 1")
	}
	if cfg.Loss.DropRate < 0 || cfg.Loss.DropRate > 1 {
		return fmt.Errorf("loss drop_rate out of range [0,1]")
	}
	if cfg.Loss.FlipRate < 0 || cfg.Loss.FlipRate > 1 {
		return fmt.Errorf("loss flip_rate out of range [0,1]")
	}
	return nil
}
