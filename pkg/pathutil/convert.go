// Package pathutil converts between absolute and relative path representations.
//
// The walker and searcher operate on absolute paths internally to avoid
// ambiguity across multiple roots; user-facing output converts back to
// root-relative paths for readability.
package pathutil

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/vfind/internal/stream"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go" (outside root)
//   - ToRelative("src/main.go", "/home/user/project") → "src/main.go" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeResults converts the Path field of every stream.Result in
// results from absolute to relative, without mutating the input slice.
// Used at the CLI's output boundary, where results are printed for users.
func ToRelativeResults(results []stream.Result, rootDir string) []stream.Result {
	if len(results) == 0 {
		return results
	}

	converted := make([]stream.Result, len(results))
	copy(converted, results)

	for i := range converted {
		if converted[i].Path != "" {
			converted[i].Path = ToRelative(converted[i].Path, rootDir)
		}
		if converted[i].Kind == stream.KindSearchMatch {
			converted[i].Match.Path = ToRelative(converted[i].Match.Path, rootDir)
		}
	}

	return converted
}
