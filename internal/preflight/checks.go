package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"burncheck/internal/config"
	"burncheck/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDir(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDir verifies that the directory exists and can be listed.
func CheckReadableDir(name, path string) Result {
	return checkDir(name, path, unix.R_OK|unix.X_OK, "readable")
}

func checkDir(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckDevice verifies that device is a block device the process can open
// for reading and writing.
func CheckDevice(device string) Result {
	const name = "Optical drive"

	var st unix.Stat_t
	if err := unix.Stat(device, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", device, err)}
	}
	if st.Mode&unix.S_IFMT != unix.S_IFBLK {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a block device)", device)}
	}
	if err := unix.Access(device, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v; is the user in the cdrom group?)", device, err)}
	}
	return Result{Name: name, Passed: true, Detail: device}
}

// CheckSystemDeps evaluates the external tools a run needs under cfg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	imageAlternatives := []string{}
	if cfg.Image.Tool == "genisoimage" {
		imageAlternatives = append(imageAlternatives, "mkisofs")
	}
	requirements := []deps.Requirement{
		{
			Name:         "ISO authoring",
			Command:      cfg.Image.Tool,
			Alternatives: imageAlternatives,
			Description:  "Builds the Joliet/Rock Ridge image",
		},
		{
			Name:        "CD writer",
			Command:     cfg.Burn.CDWriter,
			Description: "Burns cd media",
		},
		{
			Name:        "DVD/BD writer",
			Command:     cfg.Burn.DVDWriter,
			Description: "Burns dvd and bd media",
		},
		{
			Name:        "mount",
			Command:     "mount",
			Description: "Fallback mount when the disc is not automounted",
		},
		{
			Name:        "umount",
			Command:     "umount",
			Description: "Releases fallback mounts during teardown",
		},
		{
			Name:        "eject",
			Command:     "eject",
			Description: "Ejects the disc during teardown",
		},
		{
			Name:        "lsblk",
			Command:     "lsblk",
			Description: "Reports disc label for the status command",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
