package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type scenario struct {
	DropRate     float64 `toml:"drop_rate"`
	FlipRate     float64 `toml:"flip_rate"`
	Seed         int64   `toml:"seed"`
	Sizes        []int   `toml:"sizes"`
	RunsPerSize  int     `toml:"runs_per_size"`
	FragmentSize int     `toml:"fragment_size"`
	AckTimeoutMS int64   `toml:"ack_timeout_ms"`
	MaxRetry     int     `toml:"max_retry"`
}

func defaultScenario() scenario {
	return scenario{
		DropRate:     0.01,
		FlipRate:     0.05,
		Seed:         1,
		Sizes:        []int{16, 64, 256, 1024},
		RunsPerSize:  20,
		FragmentSize: 64,
		AckTimeoutMS: 100,
		MaxRetry:     5,
	}
}

func loadScenario(path string) (scenario, error) {
	sc := defaultScenario()

	var raw scenario
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return scenario{}, fmt.Errorf("load scenario: %w", err)
	}

	if meta.IsDefined("drop_rate") {
		sc.DropRate = raw.DropRate
	}
	if meta.IsDefined("flip_rate") {
		sc.FlipRate = raw.FlipRate
	}
	if meta.IsDefined("seed") {
		sc.Seed = raw.Seed
	}
	if meta.IsDefined("sizes") {
		sc.Sizes = raw.Sizes
	}
	if meta.IsDefined("runs_per_size") {
		sc.RunsPerSize = raw.RunsPerSize
	}
	if meta.IsDefined("fragment_size") {
		sc.FragmentSize = raw.FragmentSize
	}
	if meta.IsDefined("ack_timeout_ms") {
		sc.AckTimeoutMS = raw.AckTimeoutMS
	}
	if meta.IsDefined("max_retry") {
		sc.MaxRetry = raw.MaxRetry
	}

	if err := validateScenario(sc); err != nil {
		return scenario{}, err
	}
	return sc, nil
}

func validateScenario(sc scenario) error {
	if sc.DropRate < 0 || sc.DropRate > 1 {
		return fmt.Errorf("drop_rate out of range [0,1]")
	}
	if sc.FlipRate < 0 || sc.FlipRate > 1 {
		return fmt.Errorf("flip_rate out of range [0,1]")
	}
	if len(sc.Sizes) == 0 {
		return fmt.Errorf("sizes must not be empty")
	}
	for _, s := range sc.Sizes {
		if s < 1 {
			return fmt.Errorf("sizes entries must be at least 1")
		}
	}
	if sc.RunsPerSize < 1 {
		return fmt.Errorf("runs_per_size must be at least 1")
	}
	if sc.FragmentSize < 1 {
		return fmt.Errorf("fragment_size must be at least 1")
	}
	if sc.AckTimeoutMS < 1 {
		return fmt.Errorf("ack_timeout_ms must be at least 1")
	}
	if sc.MaxRetry < 1 {
		return fmt.Errorf("max_retry must be at least 1")
	}
	return nil
}
