package history

import (
	"strings"

	"burncheck/internal/pipeline"
)

// FromRunState summarizes a finished pipeline run.
func FromRunState(state *pipeline.RunState) Record {
	rec := Record{
		RunID:         state.ID,
		Device:        state.Job.Device,
		Media:         state.Job.Media,
		Status:        StatusPassed,
		ExitCode:      state.ExitCode(),
		Files:         state.ManifestFiles,
		Mismatches:    len(state.Mismatches),
		RemountWaited: state.Remount.Waited,
		MountCreated:  state.MountPoint.Created,
		StartedAt:     state.StartedAt,
		FinishedAt:    state.FinishedAt,
	}
	if state.Remount.Outcome != 0 {
		rec.RemountOutcome = state.Remount.Outcome.String()
	}
	if state.Err != nil {
		rec.Status = StatusFailed
		rec.FailedStage = state.FailedStage.String()
		rec.Kind = pipeline.KindOf(state.Err).String()
		rec.Message = strings.TrimSpace(state.Err.Error())
	}
	return rec
}
