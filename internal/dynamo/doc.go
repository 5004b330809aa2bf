// Package dynamo provides the core types shared by the gravity engine.
//
// The package defines the data model and the seams of a simulation run:
//
//   - [Body]: point mass with position, velocity and recorded acceleration
//   - [Snapshot]: ordered system state after one step
//   - [Trajectory]: chronological snapshots of a run
//   - [Stepper]: one-step update model (sequential or net-force)
//   - [Observer]: per-step callback for logging, streaming or metrics
//   - [Config]: G, dt, duration and model of a run
//
// # Example
//
//	stepper, _ := integrators.Get(cfg.Model, cfg.MinSeparation)
//	s := sim.New(stepper, cfg)
//	result, err := s.Run(ctx, bodies)
//
// # Errors
//
// A coincident pair surfaces as [*SeparationError] (matching [ErrCoincident]);
// rejected parameters surface as [*ConfigError] (matching [ErrInvalidConfig]).
package dynamo
