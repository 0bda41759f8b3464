package notifications

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// errNoTransport means the platform has no way to deliver the side effect.
var errNoTransport = errors.New("no desktop transport available")

type notifier interface {
	notify(ctx context.Context, msg message) error
}

type opener interface {
	open(ctx context.Context, path string) error
}

// fallbackNotifier tries each notifier in order until one succeeds.
type fallbackNotifier []notifier

func (f fallbackNotifier) notify(ctx context.Context, msg message) error {
	var errs []error
	for _, n := range f {
		err := n.notify(ctx, msg)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errNoTransport
	}
	return errors.Join(errs...)
}

// fallbackOpener tries each opener in order until one succeeds.
type fallbackOpener []opener

func (f fallbackOpener) open(ctx context.Context, path string) error {
	var errs []error
	for _, o := range f {
		err := o.open(ctx, path)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return errNoTransport
	}
	return errors.Join(errs...)
}

// Executor abstracts command execution for the exec fallbacks.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// execNotifier shells out to notify-send. Other platforms have no
// command-line notifier we rely on.
type execNotifier struct {
	runner Executor
	goos   string
}

func (e execNotifier) notify(ctx context.Context, msg message) error {
	switch platform(e.goos) {
	case "linux", "freebsd", "openbsd", "netbsd":
	default:
		return errNoTransport
	}
	args := []string{"--app-name=" + appName, msg.summary}
	if msg.body != "" {
		args = append(args, msg.body)
	}
	if out, err := e.runner.Run(ctx, "notify-send", args); err != nil {
		return fmt.Errorf("notify-send: %w (%s)", err, trimOutput(out))
	}
	return nil
}

// execOpener runs the platform's open command on path.
type execOpener struct {
	runner Executor
	goos   string
}

func (e execOpener) open(ctx context.Context, path string) error {
	binary := openCommand(platform(e.goos))
	if binary == "" {
		return errNoTransport
	}
	out, err := e.runner.Run(ctx, binary, []string{path})
	// explorer.exe exits 1 even when the window opened.
	if err != nil && binary == "explorer" {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", binary, err, trimOutput(out))
	}
	return nil
}

func openCommand(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open"
	default:
		return ""
	}
}

func platform(goos string) string {
	if goos == "" {
		return runtime.GOOS
	}
	return goos
}

func trimOutput(out []byte) string {
	const limit = 256
	if len(out) > limit {
		out = out[:limit]
	}
	return string(out)
}
