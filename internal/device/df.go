package device

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"time"
)

type dfLocator struct {
	binary  string
	exec    Executor
	timeout time.Duration
	logger  *slog.Logger
}

func (l *dfLocator) Name() string { return "df" }

func (l *dfLocator) Candidates(ctx context.Context, label string) ([]string, error) {
	output, err := runWithTimeout(ctx, l.exec, l.timeout, l.binary, []string{"-Hl"})
	if err != nil {
		return nil, err
	}
	return ParseDf(output, label), nil
}

// ParseDf returns the mount column of every `df -Hl` line that has a field
// equal to /Volumes/<label>. Volume labels containing whitespace cannot be
// matched because df output is split on whitespace.
func ParseDf(data []byte, label string) []string {
	target := "/Volumes/" + label
	var candidates []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) == 0 {
			continue
		}
		for _, field := range fields {
			if string(field) == target {
				candidates = append(candidates, string(fields[len(fields)-1]))
				break
			}
		}
	}
	return candidates
}
