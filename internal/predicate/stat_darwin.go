//go:build darwin

package predicate

import (
	"os"
	"syscall"
	"time"
)

// extraTimes extracts atime/ctime on Darwin, whose syscall.Stat_t names the
// same fields Atimespec/Ctimespec instead of Linux's Atim/Ctim.
func extraTimes(info os.FileInfo) (atime, ctime time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(stat.Atimespec.Sec, stat.Atimespec.Nsec), time.Unix(stat.Ctimespec.Sec, stat.Ctimespec.Nsec)
}
