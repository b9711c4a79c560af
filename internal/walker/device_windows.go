//go:build windows

package walker

import "os"

// deviceID has no cheap equivalent via os.FileInfo on Windows; callers
// disable the StayOnOneFilesystem check on this platform rather than pay
// for a volume-handle lookup per directory.
func deviceID(info os.FileInfo) (uint64, bool) {
	return 0, false
}
