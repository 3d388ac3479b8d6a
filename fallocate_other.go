//go:build !linux && !darwin

package hashkit

import "os"

// fallocateFile pre-allocates disk blocks so a full disk fails the write
// up front instead of tearing a partially written filter file.
// On platforms without native fallocate, uses Truncate as a fallback.
// Note: This sets file size but may not reserve actual disk blocks on all filesystems.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
