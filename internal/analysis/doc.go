// Package analysis extracts orbital characteristics from finished runs.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectral estimate of the main
//     oscillation in a sampled series
//   - [Separation]: distance between two bodies at every step
//   - [ClosestReturn]: where a body comes back nearest to its start,
//     measured relative to a reference body
//   - [OrbitalPeriod]: period of one body's motion about another
//   - [Divergence]: how far two runs of the same bodies drift apart
//
// All functions read trajectories and never modify them.
package analysis
