//go:build !windows

package device

import "log/slog"

func newWMILocator(*slog.Logger) (Locator, error) {
	return nil, ErrUnsupportedPlatform
}
