package disc

import (
	"context"
	"fmt"

	"burncheck/internal/runner"
)

// Ejector defines disc eject operations.
type Ejector interface {
	Eject(ctx context.Context, device string) error
}

type commandEjector struct {
	runner runner.Runner
}

// NewEjector creates an ejector that shells out to the eject utility.
func NewEjector(r runner.Runner) Ejector {
	if r == nil {
		r = runner.New()
	}
	return commandEjector{runner: r}
}

func (e commandEjector) Eject(ctx context.Context, device string) error {
	args := []string{}
	if device != "" {
		args = append(args, device)
	}
	if _, err := e.runner.Run(ctx, "eject", args...); err != nil {
		return fmt.Errorf("eject %s: %w", device, err)
	}
	return nil
}
