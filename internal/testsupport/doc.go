// Package testsupport builds throwaway configurations and fixture trees for
// tests that exercise the backup pipeline against temp directories instead of
// a real e-reader.
package testsupport
