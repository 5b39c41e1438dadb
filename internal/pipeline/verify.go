package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"burncheck/internal/workspace"
)

// ManifestVerifier re-checks files against a written manifest.
type ManifestVerifier interface {
	VerifyManifest(ctx context.Context, manifestPath, dir string) ([]workspace.Mismatch, error)
}

// Verification is the read-back result.
type Verification struct {
	Outcome     Outcome
	Mismatches  []workspace.Mismatch
	ReadbackDir string
}

// Verify copies the disc contents at mountPoint into workDir/readback and
// checks the copy against the manifest. A mismatch is a result, not an
// error; errors are reserved for a failed copy (KindCopy) or an unreadable
// manifest (KindChecksum).
func Verify(ctx context.Context, verifier ManifestVerifier, mountPoint, workDir, manifestPath string) (Verification, error) {
	if verifier == nil {
		return Verification{}, newStageError(KindChecksum, "verify", "no manifest verifier configured", nil)
	}
	if strings.TrimSpace(mountPoint) == "" {
		return Verification{}, newStageError(KindCopy, "read back", "no mount point", errors.New("disc is not mounted"))
	}

	readback := filepath.Join(workDir, ReadbackDirName)
	if err := workspace.CopyTree(ctx, mountPoint, readback); err != nil {
		return Verification{}, newStageError(KindCopy, "read back", "copy from "+mountPoint+" failed", err)
	}

	mismatches, err := verifier.VerifyManifest(ctx, manifestPath, readback)
	if err != nil {
		return Verification{}, newStageError(KindChecksum, "verify", "check read-back data", err)
	}
	result := Verification{Outcome: OutcomeMatch, ReadbackDir: readback}
	if len(mismatches) > 0 {
		result.Outcome = OutcomeMismatch
		result.Mismatches = mismatches
	}
	return result, nil
}
