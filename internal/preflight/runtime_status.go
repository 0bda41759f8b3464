package preflight

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"kobobackup/internal/config"
	"kobobackup/internal/deps"
	"kobobackup/internal/device"
)

// CheckSystemDeps evaluates the external commands the current platform uses.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg, runtime.GOOS))
}

// DeviceProbe reports whether the labelled device is currently mounted.
type DeviceProbe struct {
	Label      string
	Strategy   string
	Path       string
	Candidates []string
	Err        error
}

// ProbeDevice runs locator once without treating any outcome as fatal.
func ProbeDevice(ctx context.Context, locator device.Locator, label string) DeviceProbe {
	probe := DeviceProbe{Label: label, Strategy: locator.Name()}
	path, err := device.Locate(ctx, locator, label)
	if err != nil {
		var ambiguous *device.AmbiguousError
		if errors.As(err, &ambiguous) {
			probe.Candidates = ambiguous.Candidates
		}
		probe.Err = err
		return probe
	}
	probe.Path = path
	return probe
}

// Detail renders a display-friendly summary for status output.
func (p DeviceProbe) Detail() string {
	switch {
	case p.Path != "":
		return fmt.Sprintf("%s mounted at %s", p.Label, p.Path)
	case errors.Is(p.Err, device.ErrNotFound):
		return fmt.Sprintf("No %s detected", p.Label)
	case len(p.Candidates) > 0:
		return fmt.Sprintf("%d %s devices detected", len(p.Candidates), p.Label)
	case p.Err != nil:
		return fmt.Sprintf("lookup failed (%v)", p.Err)
	default:
		return "Unknown"
	}
}
