// Package physics provides the Newtonian force law and system invariants.
//
// Pair quantities take the gravitational constant explicitly so runs with
// different unit systems can coexist:
//
//   - [Force]: magnitude G*m1*m2/r^2
//   - [ForceOn]: force vector on a target, decomposed from the bearing angle
//   - [Potential]: pair potential -G*m1*m2/r
//
// Every pair function reports [dynamo.ErrCoincident] instead of producing
// Inf or NaN when the separation is at or below the given threshold.
//
// # Invariants
//
// [TotalEnergy], [Momentum] and [AngularMomentum] are diagnostics for
// checking an integrator:
//
//	e0, _ := physics.TotalEnergy(cfg.G, result.Initial.Bodies)
//	e1, _ := physics.TotalEnergy(cfg.G, result.Final().Bodies)
package physics
