//go:build windows

package predicate

import (
	"os"
	"syscall"
	"time"
)

// extraTimes extracts atime/ctime (creation time, Windows has no ctime) from
// the platform-specific Win32FileAttributeData Go's os.FileInfo.Sys() exposes.
func extraTimes(info os.FileInfo) (atime, ctime time.Time) {
	stat, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(0, stat.LastAccessTime.Nanoseconds()), time.Unix(0, stat.CreationTime.Nanoseconds())
}
