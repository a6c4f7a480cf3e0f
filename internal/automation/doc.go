// Package automation runs batches of simulations: scripted scenario files,
// single-parameter sweeps and Monte Carlo perturbation studies. Sweeps and
// trials run concurrently through [sim.Ensemble]; each world still steps on
// one goroutine.
package automation
