package disc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"burncheck/internal/logging"
	"burncheck/internal/runner"
)

// ImageBuilder authors ISO9660 images with Joliet and Rock Ridge extensions.
type ImageBuilder struct {
	runner runner.Runner
	tool   string
	label  string
	logger *slog.Logger
}

// NewImageBuilder returns a builder that shells out to tool (genisoimage or
// mkisofs; both accept the same flags).
func NewImageBuilder(r runner.Runner, tool, volumeLabel string, logger *slog.Logger) *ImageBuilder {
	if r == nil {
		r = runner.New()
	}
	if strings.TrimSpace(tool) == "" {
		tool = "genisoimage"
	}
	return &ImageBuilder{
		runner: r,
		tool:   tool,
		label:  volumeLabel,
		logger: logging.NewComponentLogger(logger, "image"),
	}
}

// ImageArgs returns the authoring command line for datasetDir.
func (b *ImageBuilder) ImageArgs(datasetDir, imagePath string) []string {
	args := []string{
		"-input-charset", "utf-8",
		"-J", "-joliet-long",
		"-R",
	}
	if label := volumeID(b.label); label != "" {
		args = append(args, "-V", label)
	}
	return append(args, "-o", imagePath, datasetDir)
}

// BuildImage writes an ISO of datasetDir to imagePath. On failure the
// returned error wraps a *runner.ExitError carrying the tool's exit code and
// diagnostic output.
func (b *ImageBuilder) BuildImage(ctx context.Context, datasetDir, imagePath string) error {
	args := b.ImageArgs(datasetDir, imagePath)
	b.logger.Info("building image",
		logging.String("tool", b.tool),
		logging.String("source", datasetDir),
		logging.String("image", imagePath),
	)
	if _, err := b.runner.Run(ctx, b.tool, args...); err != nil {
		return fmt.Errorf("%s: %w", b.tool, err)
	}
	return nil
}

// volumeID trims a label to the 32 character ISO9660 volume identifier limit.
func volumeID(label string) string {
	label = strings.TrimSpace(label)
	if len(label) > 32 {
		label = label[:32]
	}
	return label
}
