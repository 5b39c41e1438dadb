// Package preflight provides readiness checks for the tools, paths, and
// drive a burncheck run depends on.
//
// These checks run in two contexts:
//   - The run and soak commands call RunAll before touching the drive.
//     A failed required check stops the run before any media is written.
//   - The deps and status commands render the individual results.
package preflight
