// Package config loads the kns configuration: the host-owned sampler and
// scheduler lists, filename generator defaults, server and log settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/karlmeister/kns/pkg/kns/filename"
	"github.com/karlmeister/kns/pkg/kns/sampler"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Enums    EnumsConfig    `yaml:"enums"`
	Filename FilenameConfig `yaml:"filename"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// EnumsConfig holds the name lists the host provides to the selector nodes.
type EnumsConfig struct {
	Samplers         []string `yaml:"samplers" validate:"min=1,dive,required"`
	Schedulers       []string `yaml:"schedulers" validate:"min=1,dive,required"`
	ImpactSchedulers []string `yaml:"impact_schedulers" validate:"min=1,dive,required"`
	// ExtraSchedulers are appended to Schedulers. An empty list disables them.
	ExtraSchedulers []string `yaml:"extra_schedulers" validate:"dive,required"`
}

// FilenameConfig holds the SeedFilenameGenerator slot defaults.
type FilenameConfig struct {
	Prefix     string `yaml:"prefix"`
	TimeFormat string `yaml:"time_format" validate:"required"`
	Delimiter  string `yaml:"delimiter"`
	OutputPath string `yaml:"output_path"`
	Location   string `yaml:"location" validate:"omitempty,timezone"`
}

// ServerConfig holds host transport settings.
type ServerConfig struct {
	Name        string        `yaml:"name" validate:"required"`
	Version     string        `yaml:"version" validate:"required"`
	WSAddr      string        `yaml:"ws_addr" validate:"omitempty,hostname_port"`
	CallTimeout time.Duration `yaml:"call_timeout" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is present. The lists
// mirror the host's stock sampler and scheduler names.
func Default() Config {
	fd := filename.StockDefaults()

	return Config{
		Enums: EnumsConfig{
			Samplers: []string{
				"euler", "euler_cfg_pp", "euler_ancestral", "euler_ancestral_cfg_pp",
				"heun", "heunpp2", "dpm_2", "dpm_2_ancestral", "lms", "dpm_fast",
				"dpm_adaptive", "dpmpp_2s_ancestral", "dpmpp_sde", "dpmpp_sde_gpu",
				"dpmpp_2m", "dpmpp_2m_sde", "dpmpp_2m_sde_gpu", "dpmpp_3m_sde",
				"dpmpp_3m_sde_gpu", "ddpm", "lcm", "ipndm", "ipndm_v", "deis",
				"ddim", "uni_pc", "uni_pc_bh2",
			},
			Schedulers: []string{
				"normal", "karras", "exponential", "sgm_uniform", "simple",
				"ddim_uniform", "beta", "linear_quadratic", "kl_optimal",
			},
			ImpactSchedulers: []string{
				"normal", "karras", "exponential", "sgm_uniform", "simple",
				"ddim_uniform", "beta", "AYS SDXL", "AYS SD1", "AYS SVD", "GITS[coeff=1.2]",
			},
			ExtraSchedulers: slices.Clone(sampler.ExtraSchedulers),
		},
		Filename: FilenameConfig{
			Prefix:     fd.Prefix,
			TimeFormat: fd.TimeFormat,
			Delimiter:  fd.Delimiter,
			OutputPath: fd.OutputPath,
			Location:   "",
		},
		Server: ServerConfig{
			Name:        "kns",
			Version:     "0.1.0",
			WSAddr:      "127.0.0.1:8189",
			CallTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Environment variables referenced as ${VAR} or $VAR are expanded before
// parsing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("config: load: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns Default otherwise.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return Load(path)
}

// Save writes cfg as YAML, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: save: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: save: %w", err)
	}

	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}

	return nil
}

// SamplerEnums converts the enum section for the sampler nodes.
func (c Config) SamplerEnums() sampler.Enums {
	return sampler.Enums{
		Samplers:         c.Enums.Samplers,
		Schedulers:       c.Enums.Schedulers,
		ImpactSchedulers: c.Enums.ImpactSchedulers,
		ExtraSchedulers:  c.Enums.ExtraSchedulers,
	}
}

// FilenameDefaults converts the filename section for the generator node.
func (c Config) FilenameDefaults() filename.Defaults {
	return filename.Defaults{
		Prefix:     c.Filename.Prefix,
		TimeFormat: c.Filename.TimeFormat,
		Delimiter:  c.Filename.Delimiter,
		OutputPath: c.Filename.OutputPath,
	}
}

// FilenameLocation resolves the configured time zone. Empty means local time.
func (c Config) FilenameLocation() (*time.Location, error) {
	if c.Filename.Location == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Filename.Location)
	if err != nil {
		return nil, fmt.Errorf("config: filename location: %w", err)
	}

	return loc, nil
}
