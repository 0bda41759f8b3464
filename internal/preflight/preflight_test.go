package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kobobackup/internal/device"
	"kobobackup/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBaseDirectory_WillBeCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Backups", "kobo")
	result := CheckBaseDirectory("Backup directory", path)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	ok := CheckFreeSpace("Free space", filepath.Join(dir, "not-yet"), 1)
	if !ok.Passed {
		t.Fatalf("expected 1 byte to fit, got: %s", ok.Detail)
	}

	tooMuch := CheckFreeSpace("Free space", dir, 1<<62)
	if tooMuch.Passed {
		t.Fatalf("expected shortfall, got: %s", tooMuch.Detail)
	}
	if !strings.Contains(tooMuch.Detail, "needed") {
		t.Fatalf("unexpected detail %q", tooMuch.Detail)
	}
}

func TestUsedBytes(t *testing.T) {
	if _, err := UsedBytes(t.TempDir()); err != nil {
		t.Fatalf("UsedBytes: %v", err)
	}
}

func TestRunAllIncludesLogFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.File = filepath.Join(testsupport.BaseDir(cfg), "logs", "kobo.log")

	results := RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

type fakeLocator struct {
	candidates []string
	err        error
}

func (f fakeLocator) Name() string { return "fake" }

func (f fakeLocator) Candidates(context.Context, string) ([]string, error) {
	return f.candidates, f.err
}

func TestProbeDevice(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		locator fakeLocator
		want    string
	}{
		{name: "mounted", locator: fakeLocator{candidates: []string{"/media/k"}}, want: "KOBOeReader mounted at /media/k"},
		{name: "absent", locator: fakeLocator{}, want: "No KOBOeReader detected"},
		{name: "ambiguous", locator: fakeLocator{candidates: []string{"/a", "/b"}}, want: "2 KOBOeReader devices detected"},
		{name: "failed", locator: fakeLocator{err: errors.New("lsblk exploded")}, want: "lookup failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := ProbeDevice(ctx, tt.locator, "KOBOeReader")
			if !strings.HasPrefix(probe.Detail(), tt.want) {
				t.Fatalf("Detail() = %q, want prefix %q", probe.Detail(), tt.want)
			}
			if probe.Strategy != "fake" {
				t.Fatalf("unexpected strategy %q", probe.Strategy)
			}
		})
	}
	if !errors.Is(ProbeDevice(ctx, fakeLocator{}, "KOBOeReader").Err, device.ErrNotFound) {
		t.Fatal("expected ErrNotFound to be recorded")
	}
}
