package device

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kobobackup/internal/logging"
)

type lsblkLocator struct {
	binary  string
	exec    Executor
	timeout time.Duration
	logger  *slog.Logger
}

func (l *lsblkLocator) Name() string { return "lsblk" }

func (l *lsblkLocator) Candidates(ctx context.Context, label string) ([]string, error) {
	output, err := runWithTimeout(ctx, l.exec, l.timeout, l.binary, []string{"-f", "--json"})
	if err != nil {
		return nil, err
	}
	candidates, unmounted, err := ParseLsblk(output, label)
	if err != nil {
		return nil, err
	}
	if unmounted > 0 {
		l.logger.Debug("labelled block device is not mounted",
			logging.String(logging.FieldLabel, label),
			logging.Int("unmounted", unmounted),
		)
	}
	return candidates, nil
}

type lsblkOutput struct {
	BlockDevices []lsblkDevice `json:"blockdevices"`
}

// lsblkDevice covers both the single "mountpoint" field of older util-linux
// releases and the "mountpoints" array of newer ones.
type lsblkDevice struct {
	Name        string        `json:"name"`
	Label       *string       `json:"label"`
	Mountpoint  *string       `json:"mountpoint"`
	Mountpoints []*string     `json:"mountpoints"`
	Children    []lsblkDevice `json:"children"`
}

func (d lsblkDevice) mounts() []string {
	var out []string
	if d.Mountpoint != nil && *d.Mountpoint != "" {
		out = append(out, *d.Mountpoint)
	}
	for _, mp := range d.Mountpoints {
		if mp != nil && *mp != "" {
			out = append(out, *mp)
		}
	}
	return out
}

// ParseLsblk extracts the mount paths of devices labelled label from
// `lsblk -f --json` output, descending into partitions. It also reports how
// many labelled devices had no mount point.
func ParseLsblk(data []byte, label string) ([]string, int, error) {
	var parsed lsblkOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, 0, fmt.Errorf("parse lsblk output: %w", err)
	}

	var (
		candidates []string
		unmounted  int
		walk       func([]lsblkDevice)
	)
	walk = func(devices []lsblkDevice) {
		for _, dev := range devices {
			if dev.Label != nil && *dev.Label == label {
				mounts := dev.mounts()
				if len(mounts) == 0 {
					unmounted++
				}
				candidates = append(candidates, mounts...)
			}
			walk(dev.Children)
		}
	}
	walk(parsed.BlockDevices)
	return candidates, unmounted, nil
}
