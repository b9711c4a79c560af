//go:build linux || darwin

package walker

import (
	"os"
	"syscall"
)

// deviceID returns the filesystem device number backing info, used to
// enforce StayOnOneFilesystem. Mirrors the stat_linux.go/stat_darwin.go
// split in internal/predicate for the same GOOS-specific concern.
func deviceID(info os.FileInfo) (uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(stat.Dev), true
}
