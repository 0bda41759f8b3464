package logs_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"kobobackup/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kobo-watch.log")
	writeLog(t, path, "a\nb\r\nc\npartial")

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{name: "fewer than available", n: 2, want: []string{"b", "c"}},
		{name: "more than available", n: 10, want: []string{"a", "b", "c"}},
		{name: "none", n: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, offset, err := logs.Last(path, tt.n)
			if err != nil {
				t.Fatalf("Last: %v", err)
			}
			if strings.Join(lines, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("lines = %#v, want %#v", lines, tt.want)
			}
			if offset != int64(len("a\nb\r\nc\n")) {
				t.Fatalf("offset = %d, want end of last complete line", offset)
			}
		})
	}
}

func TestLastMissingFile(t *testing.T) {
	lines, offset, err := logs.Last(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestLastRejectsDirectory(t *testing.T) {
	if _, _, err := logs.Last(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowStreamsAppendedLinesAndRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kobo-watch.log")
	writeLog(t, path, "old\n")
	_, offset, err := logs.Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lockedBuffer{}
	done := make(chan error, 1)
	go func() { done <- logs.Follow(ctx, path, offset, out, clock, time.Second) }()

	waitForOutput := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !strings.Contains(out.String(), want) {
			if time.Now().After(deadline) {
				t.Fatalf("output %q never contained %q", out.String(), want)
			}
			if err := clock.BlockUntilContext(ctx, 1); err != nil {
				t.Fatalf("wait for ticker: %v", err)
			}
			clock.Advance(time.Second)
			time.Sleep(5 * time.Millisecond)
		}
	}

	appendLog(t, path, "backup run finished\n")
	waitForOutput("backup run finished\n")

	// lumberjack rotation leaves a fresh, shorter file behind.
	writeLog(t, path, "x\n")
	waitForOutput("x\n")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned %v", err)
	}
	if strings.Contains(out.String(), "old") {
		t.Fatalf("lines before the offset were repeated: %q", out.String())
	}
}
