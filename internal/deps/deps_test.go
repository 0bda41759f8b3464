package deps

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"kobobackup/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status %#v", results[2])
	}
}

func TestRequirementsPerPlatform(t *testing.T) {
	cfg := config.Default()
	cfg.Device.LsblkBinary = "/usr/local/bin/lsblk"

	names := func(reqs []Requirement) []string {
		out := make([]string, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, r.Name)
		}
		return out
	}

	linux := Requirements(&cfg, "linux")
	if got := names(linux); !slices.Equal(got, []string{"lsblk", "notify-send", "xdg-open"}) {
		t.Fatalf("linux requirements = %v", got)
	}
	if linux[0].Command != "/usr/local/bin/lsblk" || linux[0].Optional {
		t.Fatalf("lsblk should be required and use the configured binary: %#v", linux[0])
	}
	if got := names(Requirements(&cfg, "darwin")); !slices.Equal(got, []string{"df", "open"}) {
		t.Fatalf("darwin requirements = %v", got)
	}
	if got := Requirements(&cfg, "plan9"); len(got) != 0 {
		t.Fatalf("expected no requirements on plan9, got %v", got)
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "lsblk", Available: false},
		{Name: "notify-send", Available: false, Optional: true},
		{Name: "xdg-open", Available: true, Optional: true},
	}
	if got := MissingRequired(statuses); !slices.Equal(got, []string{"lsblk"}) {
		t.Fatalf("MissingRequired = %v", got)
	}
}
