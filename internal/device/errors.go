package device

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports that no mounted volume carries the label.
	ErrNotFound = errors.New("device not found")
	// ErrUnsupportedPlatform reports that no enumeration strategy exists for
	// the running operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// AmbiguousError is returned when more than one mounted volume carries the
// label. Candidates lists every matching mount path in enumeration order.
type AmbiguousError struct {
	Label      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("multiple %s devices detected: %s", e.Label, strings.Join(e.Candidates, ", "))
}
