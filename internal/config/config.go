// Package config loads the run configuration from KAOSU_-prefixed
// environment variables and validates it before anything else runs.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/bobotu/kaosu-packer/internal/engine"
	"github.com/bobotu/kaosu-packer/internal/model"
)

type Config struct {
	Input     string `env:"INPUT,required" validate:"required"`
	OutputDir string `env:"OUTPUT_DIR" envDefault:"."`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	Bin struct {
		Width  int `env:"WIDTH,required" validate:"min=1"`
		Depth  int `env:"DEPTH,required" validate:"min=1"`
		Height int `env:"HEIGHT,required" validate:"min=1"`
	} `envPrefix:"BIN_"`

	Mode     string `env:"MODE" envDefault:"minimize" validate:"oneof=minimize fixed"`
	MaxBins  int    `env:"MAX_BINS" envDefault:"0" validate:"required_if=Mode fixed,omitempty,min=1"`
	Rotation string `env:"ROTATION" envDefault:"full" validate:"oneof=full planar none"`

	// Solver overrides; zero keeps the recommended value for the instance.
	Solver struct {
		Population     int     `env:"POPULATION" envDefault:"0" validate:"min=0"`
		EliteFraction  float64 `env:"ELITE_FRACTION" envDefault:"0" validate:"min=0,max=1"`
		MutantFraction float64 `env:"MUTANT_FRACTION" envDefault:"0" validate:"min=0,max=1"`
		EliteBias      float64 `env:"ELITE_BIAS" envDefault:"0" validate:"min=0,max=1"`
		MaxGenerations int     `env:"MAX_GENERATIONS" envDefault:"0" validate:"min=0"`
		Stagnation     int     `env:"STAGNATION" envDefault:"0" validate:"min=0"`
		Seed           uint64  `env:"SEED" envDefault:"0"`
		Parallel       bool    `env:"PARALLEL" envDefault:"true"`
	} `envPrefix:"SOLVER_"`

	Export struct {
		PDF    bool `env:"PDF" envDefault:"false"`
		Labels bool `env:"LABELS" envDefault:"false"`
		XLSX   bool `env:"XLSX" envDefault:"false"`
		DXF    bool `env:"DXF" envDefault:"false"`
	} `envPrefix:"EXPORT_"`

	// A non-empty job name saves the run under Job.Dir.
	Job struct {
		Name string `env:"NAME"`
		Dir  string `env:"DIR" envDefault:"jobs"`
	} `envPrefix:"JOB_"`
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "KAOSU_"}); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// Only return the first error to keep the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			e := ve[0]
			return nil, fmt.Errorf("invalid configuration: %s fails %q", e.Namespace(), e.Tag())
		}
		return nil, err
	}

	return cfg, nil
}

// BinSpec returns the configured bin dimensions.
func (c *Config) BinSpec() model.Dimension {
	return model.NewDimension(c.Bin.Width, c.Bin.Depth, c.Bin.Height)
}

// PackingMode maps the mode string onto the solver's mode enum.
func (c *Config) PackingMode() model.Mode {
	if c.Mode == "fixed" {
		return model.ModeFixedBins
	}
	return model.ModeMinimizeBins
}

// RotationMode maps the rotation string onto the solver's rotation enum.
func (c *Config) RotationMode() model.RotationMode {
	switch c.Rotation {
	case "planar":
		return model.RotationPlanar
	case "none":
		return model.RotationNone
	default:
		return model.RotationFull
	}
}

// SolverParams builds the solver parameters for an instance of numBoxes
// boxes: the recommended defaults with any non-zero override applied.
func (c *Config) SolverParams(numBoxes int) engine.Params {
	p := engine.RecommendParams(numBoxes)
	if c.Solver.Population > 0 {
		p.PopulationSize = c.Solver.Population
	}
	if c.Solver.EliteFraction > 0 {
		p.EliteFraction = c.Solver.EliteFraction
	}
	if c.Solver.MutantFraction > 0 {
		p.MutantFraction = c.Solver.MutantFraction
	}
	if c.Solver.EliteBias > 0 {
		p.EliteBias = c.Solver.EliteBias
	}
	if c.Solver.MaxGenerations > 0 {
		p.MaxGenerations = c.Solver.MaxGenerations
	}
	if c.Solver.Stagnation > 0 {
		p.StagnationLimit = c.Solver.Stagnation
	}
	p.Seed = c.Solver.Seed
	p.Parallel = c.Solver.Parallel
	return p
}

// SlogLevel maps the configured log level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
