// Package device finds the mount path of a removable volume by its label.
//
// Each platform has its own enumeration strategy: lsblk JSON on Linux, df
// output on macOS, and a WMI Win32_LogicalDisk query on Windows. A strategy
// only reports candidate mount paths; Resolve applies the shared policy that
// turns zero, one, or several candidates into ErrNotFound, a path, or an
// *AmbiguousError.
package device
