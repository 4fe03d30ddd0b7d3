// Package analysis summarizes recorded trajectories.
//
//   - [PowerSpectrum], [DominantFrequency]: oscillation content of a
//     coordinate series
//   - [PathToASCII]: a particle's path in the plane as terminal art
//
// # Pendulum period
//
//	xs, _ := traj.Series("bob00")
//	f, err := analysis.DominantFrequency(analysis.Xs(xs), dt)
//	period := 1 / f
package analysis
