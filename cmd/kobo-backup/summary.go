package main

import (
	"strconv"
	"time"

	"kobobackup/internal/backup"
	"kobobackup/internal/usage"
)

func renderSummary(result backup.Result) string {
	pairs := [][2]string{
		{"Run ID", result.RunID},
		{"Device", result.Device},
		{"Destination", result.Destination},
		{"Files", usage.FormatCount(result.Current.Files)},
		{"Size", result.Current.Human()},
	}
	if n := len(result.Copy.Skipped); n > 0 {
		pairs = append(pairs, [2]string{"Skipped", strconv.Itoa(n)})
	}
	if result.Previous != nil {
		files, bytes, _ := result.Delta()
		pairs = append(pairs,
			[2]string{"Previous", usage.FormatCount(result.Previous.Files) + " files, " + result.Previous.Human()},
			[2]string{"Change", signed(files, usage.FormatCount) + " files, " + signed(bytes, usage.FormatBytes)},
		)
	}
	if !result.Finished.IsZero() {
		pairs = append(pairs, [2]string{"Duration", result.Finished.Sub(result.Started).Round(time.Millisecond).String()})
	}
	return renderPairs(pairs)
}

func signed(n int64, format func(int64) string) string {
	if n < 0 {
		return "-" + format(-n)
	}
	return "+" + format(n)
}
