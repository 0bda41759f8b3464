//go:build windows

package preflight

import "os"

// checkAccess probes writability by creating and removing a temp file, since
// Windows ACLs are not reflected in mode bits.
func checkAccess(path string) error {
	f, err := os.CreateTemp(path, ".kobo-backup-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
