// Package config loads hsbmctl's run configuration: network construction
// parameters, sweep/collapse schedule, and logging options, via viper so a
// YAML file and environment variables layer over built-in defaults. The
// only command-line flag, --config, selects the file.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds every tunable hsbmctl exposes.
type Config struct {
	Network  NetworkConfig  `mapstructure:"network"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
}

// NetworkConfig describes how to build the initial Network.
type NetworkConfig struct {
	EdgeListPath string `mapstructure:"edge_list_path"`
	Types        []string `mapstructure:"types"`
	Seed         int64  `mapstructure:"seed"`
	InitialBlocks int   `mapstructure:"initial_blocks"`
}

// ScheduleConfig describes the inference run's sweep/collapse parameters.
type ScheduleConfig struct {
	Eps            float64 `mapstructure:"eps"`
	VariableBlocks bool    `mapstructure:"variable_blocks"`
	SweepsPerLevel int     `mapstructure:"sweeps_per_level"`
	Sigma          float64 `mapstructure:"sigma"`
	TargetBlocks   int     `mapstructure:"target_blocks"`
	// TrackPairs enables consensus co-membership tracking across the
	// initial sweep schedule.
	TrackPairs bool `mapstructure:"track_pairs"`
	// NChecksPerBlock bounds how many candidate absorbing blocks the
	// agglomerative merger draws per block during collapse.
	NChecksPerBlock int `mapstructure:"n_checks_per_block"`
	// AllowExhaustive lets collapse's merge step fall back to exhaustive
	// same-type enumeration when a type's block pool is small.
	AllowExhaustive bool `mapstructure:"allow_exhaustive"`
	// ReportAllSteps records one stage entry per individual merge
	// collapse performs, in addition to the per-round summaries.
	ReportAllSteps bool `mapstructure:"report_all_steps"`
}

// LogConfig controls zerolog's output.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// StoreConfig points at the checkpoint database.
type StoreConfig struct {
	Path  string `mapstructure:"path"`
	RunID string `mapstructure:"run_id"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.seed", 1)
	v.SetDefault("network.initial_blocks", -1)
	v.SetDefault("schedule.eps", 0.1)
	v.SetDefault("schedule.variable_blocks", false)
	v.SetDefault("schedule.sweeps_per_level", 10)
	v.SetDefault("schedule.sigma", 1.5)
	v.SetDefault("schedule.target_blocks", 1)
	v.SetDefault("schedule.track_pairs", false)
	v.SetDefault("schedule.n_checks_per_block", 5)
	v.SetDefault("schedule.allow_exhaustive", true)
	v.SetDefault("schedule.report_all_steps", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("store.path", "hsbm.db")
	v.SetDefault("store.run_id", "default")
}

// Load reads configuration from configPath (if non-empty), falling back to
// ./hsbmctl.yaml and environment variables prefixed HSBMCTL_.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hsbmctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %q: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("hsbmctl")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
