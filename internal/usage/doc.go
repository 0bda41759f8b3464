// Package usage measures backup trees: total file count, total byte size, and
// the human-readable binary-prefix rendering used in run summaries.
//
// Summaries are recomputed on every call; nothing is cached between runs.
package usage
