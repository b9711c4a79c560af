//go:build linux

package predicate

import (
	"os"
	"syscall"
	"time"
)

// extraTimes extracts atime/ctime from the platform-specific stat_t Go's
// os.FileInfo.Sys() exposes on unix-like systems. Grounded in the
// file-splitting idiom the teacher's transitive gopsutil dependency uses for
// the same GOOS-specific concern, without adopting gopsutil itself since
// syscall.Stat_t already carries everything this predicate needs.
func extraTimes(info os.FileInfo) (atime, ctime time.Time) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec), time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
}
