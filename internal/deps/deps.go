package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"kobobackup/internal/config"
)

// Requirement defines an external command kobo-backup relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
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
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Requirements lists the commands used on goos. The device enumeration
// command is required; the desktop helpers are optional because their
// failures never affect a backup.
func Requirements(cfg *config.Config, goos string) []Requirement {
	var reqs []Requirement
	switch goos {
	case "linux":
		reqs = append(reqs,
			Requirement{
				Name:        "lsblk",
				Command:     cfg.Device.LsblkBinary,
				Description: "Required to find the device by label",
			},
			Requirement{
				Name:        "notify-send",
				Command:     "notify-send",
				Description: "Fallback for desktop notifications when D-Bus is unavailable",
				Optional:    true,
			},
			Requirement{
				Name:        "xdg-open",
				Command:     "xdg-open",
				Description: "Fallback for opening the backup folder",
				Optional:    true,
			},
		)
	case "darwin":
		reqs = append(reqs,
			Requirement{
				Name:        "df",
				Command:     cfg.Device.DfBinary,
				Description: "Required to find the device by label",
			},
			Requirement{
				Name:        "open",
				Command:     "open",
				Description: "Opens the backup folder in Finder",
				Optional:    true,
			},
		)
	case "windows":
		reqs = append(reqs, Requirement{
			Name:        "explorer",
			Command:     "explorer",
			Description: "Opens the backup folder in Explorer",
			Optional:    true,
		})
	}
	return reqs
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
