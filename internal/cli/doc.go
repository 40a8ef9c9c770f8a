// Package cli implements the hofstadter command-line interface.
//
// The CLI is a thin layer over [pipeline.Runner]: each command turns flags
// and the config file into [pipeline.Options], runs one pipeline entry
// point and prints the result. It is built on cobra, logs through
// charmbracelet/log and styles its output with lipgloss.
//
// # Commands
//
//   - bands: band structure, Chern numbers, Berry curvature and Wannier
//     centers at flux p/q
//   - butterfly: flux sweep at fixed q
//   - plot: redraw a saved run
//   - paths: hopping-path diagram of a lattice
//   - runs: browse the run catalog
//   - cache, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels through context.Context. Long computations draw a bubbletea
// progress bar on terminals; log lines are printed above it.
//
// [pipeline.Runner]: github.com/qmatter/hofstadter/pkg/pipeline.Runner
// [pipeline.Options]: github.com/qmatter/hofstadter/pkg/pipeline.Options
package cli
