// Package runner executes external tools and captures their exit status and
// diagnostic output.
//
// Every external invocation burncheck makes (ISO authoring, disc writers,
// mount, umount, eject) goes through a Runner so the pipeline can be driven by
// scripted fakes in tests. A tool runs exactly once per call; callers inspect
// the returned Result or *ExitError instead of re-running the command.
package runner
