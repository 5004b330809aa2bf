package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
)

var registry = map[string]func(minSep float64) dynamo.Stepper{
	dynamo.ModelSequential: func(minSep float64) dynamo.Stepper { return NewSequential(minSep) },
	dynamo.ModelNetForce:   func(minSep float64) dynamo.Stepper { return NewNetForce(minSep) },
}

// Get returns a fresh stepper for the named update model.
func Get(name string, minSep float64) (dynamo.Stepper, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, Names())
	}
	return fn(minSep), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
