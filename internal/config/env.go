package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	EnvG             = "GRAVSIM_G"
	EnvDt            = "GRAVSIM_DT"
	EnvDuration      = "GRAVSIM_DURATION"
	EnvModel         = "GRAVSIM_MODEL"
	EnvScenario      = "GRAVSIM_SCENARIO"
	EnvSeed          = "GRAVSIM_SEED"
	EnvBodies        = "GRAVSIM_BODIES"
	EnvMinSeparation = "GRAVSIM_MIN_SEPARATION"
	EnvLogLevel      = "GRAVSIM_LOG_LEVEL"
	EnvData          = "GRAVSIM_DATA"
)

var envKeys = []string{
	EnvG, EnvDt, EnvDuration, EnvModel, EnvScenario, EnvSeed,
	EnvBodies, EnvMinSeparation, EnvLogLevel, EnvData,
}

// ApplyEnv overlays GRAVSIM_* values onto c. Dotenv files are read in order
// without touching the process environment; missing files are skipped and
// real environment variables win over file values.
func ApplyEnv(c *Config, files ...string) error {
	vals := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range m {
			vals[k] = v
		}
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			vals[key] = v
		}
	}
	return c.applyValues(vals)
}

func (c *Config) applyValues(vals map[string]string) error {
	floats := map[string]*float64{
		EnvG:             &c.G,
		EnvDt:            &c.Dt,
		EnvDuration:      &c.Duration,
		EnvMinSeparation: &c.MinSeparation,
	}
	for key, dst := range floats {
		v, ok := vals[key]
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &dynamo.ConfigError{Field: key, Value: v, Reason: "not a number"}
		}
		*dst = f
	}

	if v := vals[EnvSeed]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &dynamo.ConfigError{Field: EnvSeed, Value: v, Reason: "not an integer"}
		}
		c.Seed = n
	}
	if v := vals[EnvBodies]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &dynamo.ConfigError{Field: EnvBodies, Value: v, Reason: "not an integer"}
		}
		c.NumBodies = n
	}

	strs := map[string]*string{
		EnvModel:    &c.Model,
		EnvScenario: &c.Scenario,
		EnvLogLevel: &c.LogLevel,
		EnvData:     &c.DataDir,
	}
	for key, dst := range strs {
		if v := vals[key]; v != "" {
			*dst = v
		}
	}
	return nil
}
