// Package config loads circlepack settings from TOML, YAML or JSON files.
//
// The format is picked by file extension. Unknown keys are errors in every
// format, and the decoded settings are checked with struct-tag validation;
// both kinds of failure are INVALID_CONFIG errors. [Default] reproduces the
// stock problem: five circles in [0,10]×[0,10] solved with Octeract.
//
// Command-line flags override file values; see internal/cli.
package config

import (
	"fmt"
	"time"

	"github.com/matzehuels/circlepack/pkg/packing"
	"github.com/matzehuels/circlepack/pkg/pipeline"
	"github.com/matzehuels/circlepack/pkg/solver"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// Config is the full settings file.
type Config struct {
	Domain    DomainConfig `toml:"domain" yaml:"domain" json:"domain"`
	N         int          `toml:"n" yaml:"n" json:"n"`
	Backend   string       `toml:"backend" yaml:"backend" json:"backend" validate:"required"`
	Strategy  string       `toml:"strategy" yaml:"strategy" json:"strategy"`
	Seed      uint64       `toml:"seed" yaml:"seed" json:"seed"`
	TimeLimit Duration     `toml:"time_limit" yaml:"time_limit" json:"time_limit" validate:"min=0"`
	Tolerance float64      `toml:"tolerance" yaml:"tolerance" json:"tolerance" validate:"min=0"`

	AMPL  AMPLConfig  `toml:"ampl" yaml:"ampl" json:"ampl"`
	Cache CacheConfig `toml:"cache" yaml:"cache" json:"cache"`
	Store StoreConfig `toml:"store" yaml:"store" json:"store"`
}

// DomainConfig is the rectangle circles are packed into. Its shape, like
// the circle count, is checked when the model is built.
type DomainConfig struct {
	XMin float64 `toml:"x_min" yaml:"x_min" json:"x_min"`
	XMax float64 `toml:"x_max" yaml:"x_max" json:"x_max"`
	YMin float64 `toml:"y_min" yaml:"y_min" json:"y_min"`
	YMax float64 `toml:"y_max" yaml:"y_max" json:"y_max"`
}

// AMPLConfig locates the ampl binary and solver executables.
type AMPLConfig struct {
	Path      string `toml:"path" yaml:"path" json:"path"`
	SolverDir string `toml:"solver_dir" yaml:"solver_dir" json:"solver_dir"`
	TempDir   string `toml:"temp_dir" yaml:"temp_dir" json:"temp_dir"`
	KeepLogs  bool   `toml:"keep_logs" yaml:"keep_logs" json:"keep_logs"`
}

// CacheConfig selects where solved packings are cached.
type CacheConfig struct {
	Kind     string `toml:"kind" yaml:"kind" json:"kind" validate:"oneof=file redis none"`
	Dir      string `toml:"dir" yaml:"dir" json:"dir"`
	RedisURL string `toml:"redis_url" yaml:"redis_url" json:"redis_url" validate:"required_if=Kind redis"`
}

// StoreConfig selects where run history is kept.
type StoreConfig struct {
	Kind       string `toml:"kind" yaml:"kind" json:"kind" validate:"oneof=file mongo memory none"`
	Path       string `toml:"path" yaml:"path" json:"path"`
	MongoURI   string `toml:"mongo_uri" yaml:"mongo_uri" json:"mongo_uri" validate:"required_if=Kind mongo"`
	Database   string `toml:"database" yaml:"database" json:"database"`
	Collection string `toml:"collection" yaml:"collection" json:"collection"`
}

// Default returns the stock configuration.
func Default() Config {
	d := packing.DefaultDomain
	return Config{
		Domain:    DomainConfig{XMin: d.XMin, XMax: d.XMax, YMin: d.YMin, YMax: d.YMax},
		N:         pipeline.DefaultN,
		Backend:   string(solver.DefaultBackend),
		Seed:      pipeline.DefaultSeed,
		Tolerance: pipeline.DefaultTolerance,
		Cache:     CacheConfig{Kind: CacheFile},
		Store:     StoreConfig{Kind: StoreFile},
	}
}

// PackingDomain converts the domain section.
func (d DomainConfig) PackingDomain() packing.Domain {
	return packing.Domain{XMin: d.XMin, XMax: d.XMax, YMin: d.YMin, YMax: d.YMax}
}

// Options returns the pipeline options described by c.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Domain:    c.Domain.PackingDomain(),
		N:         c.N,
		Backend:   c.Backend,
		Strategy:  c.Strategy,
		Seed:      c.Seed,
		TimeLimit: c.TimeLimit.Duration(),
		Tolerance: c.Tolerance,
	}
}

// Duration is a time.Duration written as a Go duration string ("90s",
// "5m") in every format.
type Duration time.Duration

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
