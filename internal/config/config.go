package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/integrators"
	"github.com/san-kum/reactorsim/internal/kinetics"
)

const (
	DefaultFPS                     = 60
	DefaultWallSecondsPerSimSecond = 1.0
	DefaultLogLevel                = "info"
)

type Config struct {
	Params     kinetics.Parameters `yaml:"params"`
	Integrator string              `yaml:"integrator"`
	Playback   PlaybackConfig      `yaml:"playback"`
	Export     ExportConfig        `yaml:"export"`
	LogLevel   string              `yaml:"log_level"`
}

type PlaybackConfig struct {
	FPS                     int     `yaml:"fps"`
	WallSecondsPerSimSecond float64 `yaml:"wall_seconds_per_sim_second"`
}

type ExportConfig struct {
	IncludePrecursor bool `yaml:"include_precursor"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:     kinetics.DefaultParameters(),
		Integrator: integrators.Default,
		Playback: PlaybackConfig{
			FPS:                     DefaultFPS,
			WallSecondsPerSimSecond: DefaultWallSecondsPerSimSecond,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads path on top of DefaultConfig.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the keys present in path onto cfg.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("playback fps must be positive, got %d", c.Playback.FPS)
	}
	if c.Playback.WallSecondsPerSimSecond <= 0 {
		return fmt.Errorf("playback wall_seconds_per_sim_second must be positive, got %g", c.Playback.WallSecondsPerSimSecond)
	}
	return nil
}
