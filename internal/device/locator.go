package device

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"kobobackup/internal/config"
	"kobobackup/internal/logging"
)

// Locator enumerates the mount paths of volumes carrying a label.
type Locator interface {
	// Name identifies the strategy in logs and status output.
	Name() string
	// Candidates returns every mount path whose volume label equals label.
	Candidates(ctx context.Context, label string) ([]string, error)
}

// Executor abstracts command execution for the command-backed strategies.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// commandExecutor executes commands using os/exec.
type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.Output()
}

// New returns the strategy for the running platform.
func New(cfg *config.Config, logger *slog.Logger) (Locator, error) {
	return ForPlatform(runtime.GOOS, cfg, commandExecutor{}, logger)
}

// ForPlatform returns the strategy for goos using runner to run commands.
// Strategies that do not shell out ignore runner.
func ForPlatform(goos string, cfg *config.Config, runner Executor, logger *slog.Logger) (Locator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("device locator requires configuration")
	}
	if runner == nil {
		runner = commandExecutor{}
	}
	logger = logging.NewComponentLogger(logger, "device-locator")
	timeout := cfg.QueryTimeout()

	switch goos {
	case "linux":
		return &lsblkLocator{binary: cfg.Device.LsblkBinary, exec: runner, timeout: timeout, logger: logger}, nil
	case "darwin":
		return &dfLocator{binary: cfg.Device.DfBinary, exec: runner, timeout: timeout, logger: logger}, nil
	case "windows":
		return newWMILocator(logger)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

// Locate runs the strategy and applies Resolve to its candidates.
func Locate(ctx context.Context, locator Locator, label string) (string, error) {
	candidates, err := locator.Candidates(ctx, label)
	if err != nil {
		return "", fmt.Errorf("%s: enumerate devices: %w", locator.Name(), err)
	}
	return Resolve(label, candidates)
}

// Resolve turns a candidate list into the single mount path for label.
// Zero candidates yields ErrNotFound and two or more yields *AmbiguousError.
// Blank entries and exact duplicates are dropped first.
func Resolve(label string, candidates []string) (string, error) {
	unique := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		unique = append(unique, candidate)
	}

	switch len(unique) {
	case 0:
		return "", ErrNotFound
	case 1:
		return unique[0], nil
	default:
		return "", &AmbiguousError{Label: label, Candidates: unique}
	}
}

// runWithTimeout runs binary through runner, bounded by timeout when positive.
func runWithTimeout(ctx context.Context, runner Executor, timeout time.Duration, binary string, args []string) ([]byte, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	output, err := runner.Run(runCtx, binary, args)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", binary, err)
	}
	return output, nil
}
