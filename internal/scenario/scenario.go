// Package scenario builds named initial body sets together with the
// integration settings that suit them.
package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
)

var ErrUnknownScenario = errors.New("scenario: unknown scenario")

// Scenario is a ready-to-run initial state. Config carries the recommended
// G, Dt and Duration; callers may override any of them.
type Scenario struct {
	Name        string
	Description string
	Bodies      []dynamo.Body
	Config      dynamo.Config
}

// Options tune the generated scenarios. Presets with a fixed body set ignore
// them.
type Options struct {
	N    int
	Seed int64
}

type entry struct {
	description string
	build       func(Options) (*Scenario, error)
}

var registry = map[string]entry{
	"earth-moon": {"Earth and Moon, one sidereal month", func(Options) (*Scenario, error) { return EarthMoon(), nil }},
	"solar":      {"Sun, inner planets, Jupiter and its Galilean moons", func(Options) (*Scenario, error) { return Solar(), nil }},
	"binary":     {"equal-mass stars on a circular orbit", func(Options) (*Scenario, error) { return Binary(), nil }},
	"ring":       {"n unit masses on a unit ring, G = 1", func(o Options) (*Scenario, error) { return Ring(o.N) }},
	"random":     {"n seeded random bodies on tangential orbits", func(o Options) (*Scenario, error) { return Random(o.N, o.Seed) }},
}

func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Description(name string) string {
	return registry[name].description
}

func Build(name string, opts Options) (*Scenario, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScenario, name, List())
	}
	sc, err := e.build(opts)
	if err != nil {
		return nil, err
	}
	sc.Name = name
	sc.Description = e.description
	return sc, nil
}
