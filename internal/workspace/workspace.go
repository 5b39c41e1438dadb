package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"burncheck/internal/logging"
)

// ErrSelfCheck marks a manifest that did not validate against the data it
// was just computed from.
var ErrSelfCheck = errors.New("manifest self-check failed")

// Preparer builds the working directory for one pipeline run.
type Preparer struct {
	algorithm string
	logger    *slog.Logger
}

// NewPreparer returns a Preparer that writes manifests with algorithm.
func NewPreparer(algorithm string, logger *slog.Logger) *Preparer {
	if strings.TrimSpace(algorithm) == "" {
		algorithm = AlgorithmMD5
	}
	return &Preparer{
		algorithm: algorithm,
		logger:    logging.NewComponentLogger(logger, "workspace"),
	}
}

// Algorithm returns the manifest digest in use.
func (p *Preparer) Algorithm() string { return p.algorithm }

// CreateWorkspace creates path. An existing directory is accepted.
func (p *Preparer) CreateWorkspace(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("workspace path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create workspace %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat workspace %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %s is not a directory", path)
	}
	p.logger.Debug("workspace ready", logging.String("path", path))
	return nil
}

// StageSampleData copies sourcePath/datasetName into destDir/datasetName and
// returns the staged directory.
func (p *Preparer) StageSampleData(ctx context.Context, sourcePath, datasetName, destDir string) (string, error) {
	src := filepath.Join(sourcePath, datasetName)
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("sample dataset %s not found: %w", src, err)
		}
		return "", fmt.Errorf("stat sample dataset %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("sample dataset %s is not a directory", src)
	}

	dst := filepath.Join(destDir, datasetName)
	if err := CopyTree(ctx, src, dst); err != nil {
		return "", fmt.Errorf("stage sample data: %w", err)
	}
	p.logger.Info("sample data staged",
		logging.String("source", src),
		logging.String("dest", dst),
	)
	return dst, nil
}

// ComputeManifest checksums every file under datasetDir, writes the manifest
// to manifestPath, then reads it back and re-checks the data against it. The
// read-back guards against a corrupt write of the manifest file itself.
func (p *Preparer) ComputeManifest(ctx context.Context, datasetDir, manifestPath string) (Manifest, error) {
	manifest, err := Compute(ctx, datasetDir, p.algorithm)
	if err != nil {
		return Manifest{}, err
	}
	if err := manifest.WriteFile(manifestPath); err != nil {
		return Manifest{}, fmt.Errorf("write manifest %s: %w", manifestPath, err)
	}

	reread, err := ReadFile(manifestPath, p.algorithm)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	if !reread.Equal(manifest) {
		return Manifest{}, fmt.Errorf("%w: %s does not match computed checksums", ErrSelfCheck, manifestPath)
	}
	mismatches, err := reread.Check(ctx, datasetDir)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrSelfCheck, err)
	}
	if len(mismatches) > 0 {
		return Manifest{}, fmt.Errorf("%w: %s", ErrSelfCheck, mismatches[0])
	}

	p.logger.Info("manifest written",
		logging.String("path", manifestPath),
		logging.Int("files", manifest.Len()),
		logging.String("algorithm", p.algorithm),
	)
	return manifest, nil
}

// VerifyManifest checks the files under dir against the manifest at
// manifestPath and returns every entry that did not match.
func (p *Preparer) VerifyManifest(ctx context.Context, manifestPath, dir string) ([]Mismatch, error) {
	manifest, err := ReadFile(manifestPath, p.algorithm)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return manifest.Check(ctx, dir)
}
