// Package copier copies a device tree into a fresh backup directory.
//
// Directories, regular files and symlinks are copied with their mode and
// modification time; links are recreated rather than followed. Entries that
// cannot be read because of a permission error on the source side are
// skipped and reported in Result.Skipped. Every other failure stops the copy
// with a *CopyError and leaves what was already copied in place.
package copier
