// Package config provides configuration loading and management for bmipgen.
package config

import (
	"github.com/ntlab/bmipgen/internal/spec"
)

// Config is the root configuration.
type Config struct {
	Spec       spec.InstanceSpec `json:"spec"       mapstructure:"spec"`
	Generation Generation        `json:"generation" mapstructure:"generation"`
	Retention  RetentionPolicy   `json:"retention"  mapstructure:"retention"`
}

// Generation defines generation defaults, overridable per command.
type Generation struct {
	Count         int    `json:"count"                    mapstructure:"count"`
	AttemptFactor int    `json:"attempt_factor"           mapstructure:"attempt_factor"`
	OutDir        string `json:"out_dir,omitempty"        mapstructure:"out_dir"`
	Solver        string `json:"solver,omitempty"         mapstructure:"solver"`
	Seed          int64  `json:"seed,omitempty"           mapstructure:"seed"`
}

// RetentionPolicy defines how many old runs to keep.
type RetentionPolicy struct {
	KeepLast int `json:"keep_last,omitempty" mapstructure:"keep_last"`
	KeepDays int `json:"keep_days,omitempty" mapstructure:"keep_days"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Generation: Generation{
			Count:         10,
			AttemptFactor: 3,
			OutDir:        "problems_folder",
			Solver:        "gurobi",
		},
	}
}
