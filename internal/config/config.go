package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/scenario"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario = "earth-moon"
	DefaultLogLevel = "info"
	DefaultDataDir  = "./data"
)

// Config is the file form of a run. Zero numeric fields defer to the
// scenario's recommended value.
type Config struct {
	Scenario      string       `yaml:"scenario"`
	Model         string       `yaml:"model"`
	G             float64      `yaml:"g"`
	Dt            float64      `yaml:"dt"`
	Duration      float64      `yaml:"duration"`
	Seed          int64        `yaml:"seed"`
	NumBodies     int          `yaml:"num_bodies"`
	MinSeparation float64      `yaml:"min_separation"`
	LogLevel      string       `yaml:"log_level"`
	DataDir       string       `yaml:"data_dir"`
	Bodies        []BodyConfig `yaml:"bodies,omitempty"`
}

type BodyConfig struct {
	Name string  `yaml:"name"`
	Mass float64 `yaml:"mass"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Model:    dynamo.ModelSequential,
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	for field, v := range map[string]float64{"g": c.G, "dt": c.Dt, "duration": c.Duration, "min_separation": c.MinSeparation} {
		if v < 0 {
			return &dynamo.ConfigError{Field: field, Value: v, Reason: "must not be negative"}
		}
	}
	if c.NumBodies < 0 {
		return &dynamo.ConfigError{Field: "num_bodies", Value: c.NumBodies, Reason: "must not be negative"}
	}
	switch c.Model {
	case "", dynamo.ModelSequential, dynamo.ModelNetForce:
	default:
		return &dynamo.ConfigError{Field: "model", Value: c.Model, Reason: "unknown model"}
	}
	if _, err := c.Level(); err != nil {
		return &dynamo.ConfigError{Field: "log_level", Value: c.LogLevel, Reason: err.Error()}
	}
	return nil
}

func (c *Config) Level() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(c.LogLevel)
}

// Resolve turns the file form into bodies and an engine configuration.
// Explicit bodies take precedence over the named scenario.
func (c *Config) Resolve() ([]dynamo.Body, dynamo.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, dynamo.Config{}, err
	}

	var (
		bodies []dynamo.Body
		sim    dynamo.Config
	)
	if len(c.Bodies) > 0 {
		bodies = c.ToBodies()
		sim = dynamo.DefaultConfig()
	} else {
		sc, err := scenario.Build(c.Scenario, scenario.Options{N: c.NumBodies, Seed: c.Seed})
		if err != nil {
			return nil, dynamo.Config{}, err
		}
		bodies, sim = sc.Bodies, sc.Config
	}

	if c.G > 0 {
		sim.G = c.G
	}
	if c.Dt > 0 {
		sim.Dt = c.Dt
	}
	if c.Duration > 0 {
		sim.Duration = c.Duration
	}
	if c.Model != "" {
		sim.Model = c.Model
	}
	sim.MinSeparation = c.MinSeparation

	if err := sim.Validate(); err != nil {
		return nil, dynamo.Config{}, err
	}
	if err := dynamo.ValidateBodies(bodies); err != nil {
		return nil, dynamo.Config{}, err
	}
	return bodies, sim, nil
}

func (c *Config) ToBodies() []dynamo.Body {
	bodies := make([]dynamo.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		bodies[i] = dynamo.Body{
			Name: b.Name,
			Mass: b.Mass,
			Pos:  r2.Vec{X: b.X, Y: b.Y},
			Vel:  r2.Vec{X: b.VX, Y: b.VY},
		}
	}
	return bodies
}

// FromBodies converts an initial state back into its file form.
func FromBodies(bodies []dynamo.Body) []BodyConfig {
	out := make([]BodyConfig, len(bodies))
	for i, b := range bodies {
		out[i] = BodyConfig{Name: b.Name, Mass: b.Mass, X: b.Pos.X, Y: b.Pos.Y, VX: b.Vel.X, VY: b.Vel.Y}
	}
	return out
}
