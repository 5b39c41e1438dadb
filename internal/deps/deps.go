// Package deps reports whether the external tools burncheck shells out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external tool. Alternatives are tried in order
// when Command is not on PATH (mkisofs for genisoimage).
type Requirement struct {
	Name         string
	Command      string
	Alternatives []string
	Description  string
	Optional     bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		candidates := append([]string{cmd}, req.Alternatives...)
		for _, candidate := range candidates {
			if path, err := exec.LookPath(candidate); err == nil {
				status.Available = true
				status.Path = path
				if candidate != cmd {
					status.Command = candidate
					status.Detail = fmt.Sprintf("using %s in place of %s", candidate, cmd)
				}
				break
			}
		}
		if !status.Available {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
