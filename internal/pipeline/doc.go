// Package pipeline drives one optical burn-and-verify run.
//
// A run walks INIT → STAGED → MANIFESTED → IMAGE_BUILT → BURNED → MOUNT_WAIT →
// VERIFIED → CLEANED. Each transition either succeeds or routes its error
// through a single failure handler, which runs teardown exactly once and
// marks the run FAILED. Run never exits the process; callers map the
// returned *StageError to an exit status with ExitCode.
//
// External effects (ISO authoring, burning, mounting, ejecting) sit behind
// small interfaces so tests drive the state machine with fakes while the
// CLI wires the disc and workspace packages.
package pipeline
