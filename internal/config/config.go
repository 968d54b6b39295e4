// Package config loads the playback configuration file.
//
// Configuration is YAML on disk, constrained by an embedded CUE
// schema. Decoding and validation are separate steps: yaml.v3 gives
// the typed struct, CUE rejects out-of-range values with a precise
// message.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config controls how the play command drives the replay engine.
type Config struct {
	// TickMillis is the simulation time advanced per tick.
	TickMillis int `yaml:"tick_millis" json:"tick_millis"`

	// Rate scales wall-clock sleep between ticks. 1.0 is real time;
	// 2.0 plays the recording twice as fast.
	Rate float64 `yaml:"rate" json:"rate"`

	// SeekSeconds, when set, jumps to this simulation time after the
	// session starts and continues from there.
	SeekSeconds *float64 `yaml:"seek_seconds,omitempty" json:"seek_seconds,omitempty"`
}

// Default returns the configuration used when no file is given:
// 100ms ticks at real time, no seek.
func Default() Config {
	return Config{
		TickMillis: 100,
		Rate:       1.0,
	}
}

// Tick returns the per-tick simulation time step.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// Seek returns the configured jump target and whether one is set.
func (c Config) Seek() (time.Duration, bool) {
	if c.SeekSeconds == nil {
		return 0, false
	}
	return time.Duration(*c.SeekSeconds * float64(time.Second)), true
}

// Load reads and validates a configuration file. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// validate unifies the decoded config with the embedded CUE schema.
func validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}
