package metrics

import "github.com/san-kum/gravsim/internal/dynamo"

// Default returns a fresh set of the standard run diagnostics.
func Default(cfg dynamo.Config) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(cfg.G),
		NewMomentumDrift(),
		NewMinSeparation(),
	}
}
