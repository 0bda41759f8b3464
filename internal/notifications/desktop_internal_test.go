package notifications

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"kobobackup/internal/logging"
	"kobobackup/internal/usage"
)

type recordingNotifier struct {
	err  error
	sent []message
}

func (r *recordingNotifier) notify(_ context.Context, msg message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

type recordingOpener struct {
	err    error
	opened []string
}

func (r *recordingOpener) open(_ context.Context, path string) error {
	r.opened = append(r.opened, path)
	return r.err
}

type captureExec struct {
	err    error
	binary string
	args   []string
}

func (c *captureExec) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	c.binary = binary
	c.args = append([]string(nil), args...)
	return nil, c.err
}

func newTestService(n notifier, o opener) *desktopService {
	return &desktopService{
		notifyEnabled: true,
		openEnabled:   true,
		timeout:       time.Second,
		notifier:      n,
		opener:        o,
		logger:        logging.NewNop(),
	}
}

func TestDesktopServiceFormatsMessages(t *testing.T) {
	rec := &recordingNotifier{}
	svc := newTestService(rec, &recordingOpener{})
	ctx := context.Background()

	if err := svc.NotifyDeviceConnected(ctx, " KOBOeReader "); err != nil {
		t.Fatalf("NotifyDeviceConnected: %v", err)
	}
	summary := usage.Summary{Path: "/backups/kobo_backup_2024-01-01_10-00", Files: 1234, Bytes: 2048}
	if err := svc.NotifyBackupCompleted(ctx, summary); err != nil {
		t.Fatalf("NotifyBackupCompleted: %v", err)
	}
	if err := svc.NotifyBackupFailed(ctx, errors.New("disk full")); err != nil {
		t.Fatalf("NotifyBackupFailed: %v", err)
	}

	want := []message{
		{summary: "KOBOeReader connected", body: "Attempting backup..."},
		{summary: "Backed up!", body: "Copied 1,234 files (2.00KB) to /backups/kobo_backup_2024-01-01_10-00"},
		{summary: "Backup failed", body: "disk full"},
	}
	if !slices.Equal(rec.sent, want) {
		t.Fatalf("sent = %#v\nwant %#v", rec.sent, want)
	}
}

func TestDesktopServiceHonoursToggles(t *testing.T) {
	rec := &recordingNotifier{}
	op := &recordingOpener{}
	svc := newTestService(rec, op)
	svc.notifyEnabled = false
	svc.openEnabled = false

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if err := svc.OpenFolder(context.Background(), "/backups"); err != nil {
		t.Fatalf("OpenFolder: %v", err)
	}
	if len(rec.sent) != 0 || len(op.opened) != 0 {
		t.Fatalf("disabled service should do nothing: sent=%v opened=%v", rec.sent, op.opened)
	}
}

func TestFallbackNotifierUsesNextTransport(t *testing.T) {
	first := &recordingNotifier{err: errors.New("no session bus")}
	second := &recordingNotifier{}
	svc := newTestService(fallbackNotifier{first, second}, &recordingOpener{})

	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(first.sent) != 1 || len(second.sent) != 1 {
		t.Fatalf("expected both transports to be tried once: %d %d", len(first.sent), len(second.sent))
	}
}

func TestFallbackOpenerJoinsErrors(t *testing.T) {
	busErr := errors.New("no file manager")
	execErr := errors.New("xdg-open missing")
	svc := newTestService(&recordingNotifier{}, fallbackOpener{
		&recordingOpener{err: busErr},
		&recordingOpener{err: execErr},
	})

	err := svc.OpenFolder(context.Background(), "/backups")
	if !errors.Is(err, busErr) || !errors.Is(err, execErr) {
		t.Fatalf("expected both transport errors, got %v", err)
	}
}

func TestEmptyFallbackReportsNoTransport(t *testing.T) {
	if err := (fallbackNotifier{}).notify(context.Background(), message{}); !errors.Is(err, errNoTransport) {
		t.Fatalf("expected errNoTransport, got %v", err)
	}
}

func TestExecNotifierArgs(t *testing.T) {
	capture := &captureExec{}
	n := execNotifier{runner: capture, goos: "linux"}
	if err := n.notify(context.Background(), message{summary: "KOBOeReader connected", body: "Attempting backup..."}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if capture.binary != "notify-send" {
		t.Fatalf("binary = %q", capture.binary)
	}
	want := []string{"--app-name=kobo-backup", "KOBOeReader connected", "Attempting backup..."}
	if !slices.Equal(capture.args, want) {
		t.Fatalf("args = %v, want %v", capture.args, want)
	}

	if err := (execNotifier{runner: capture, goos: "darwin"}).notify(context.Background(), message{summary: "x"}); !errors.Is(err, errNoTransport) {
		t.Fatalf("expected errNoTransport on darwin, got %v", err)
	}
}

func TestExecOpenerPerPlatform(t *testing.T) {
	for goos, binary := range map[string]string{"linux": "xdg-open", "darwin": "open", "windows": "explorer"} {
		capture := &captureExec{}
		if err := (execOpener{runner: capture, goos: goos}).open(context.Background(), "/backups"); err != nil {
			t.Fatalf("%s: open: %v", goos, err)
		}
		if capture.binary != binary || !slices.Equal(capture.args, []string{"/backups"}) {
			t.Fatalf("%s: ran %s %v", goos, capture.binary, capture.args)
		}
	}
	if err := (execOpener{runner: &captureExec{}, goos: "plan9"}).open(context.Background(), "/x"); !errors.Is(err, errNoTransport) {
		t.Fatalf("expected errNoTransport, got %v", err)
	}
}

func TestExecOpenerReportsFailure(t *testing.T) {
	capture := &captureExec{err: exec.ErrNotFound}
	err := (execOpener{runner: capture, goos: "linux"}).open(context.Background(), "/x")
	if !errors.Is(err, exec.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", err)
	}
}

func TestFileURIEscapesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("drive-letter paths")
	}
	got := fileURI("/home/reader/Backups/kobo/kobo backup")
	if !strings.HasPrefix(got, "file:///home/reader/") || !strings.HasSuffix(got, "kobo%20backup") {
		t.Fatalf("unexpected uri %q", got)
	}
}
