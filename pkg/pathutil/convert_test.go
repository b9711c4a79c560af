package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/standardbeagle/vfind/internal/stream"
)

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{
			name:     "simple relative path",
			absPath:  "/home/user/project/src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "nested relative path",
			absPath:  "/home/user/project/internal/core/search.go",
			rootDir:  "/home/user/project",
			expected: "internal/core/search.go",
		},
		{
			name:     "root level file",
			absPath:  "/home/user/project/README.md",
			rootDir:  "/home/user/project",
			expected: "README.md",
		},
		{
			name:     "same directory",
			absPath:  "/home/user/project",
			rootDir:  "/home/user/project",
			expected: ".",
		},
		{
			name:     "already relative path",
			absPath:  "src/main.go",
			rootDir:  "/home/user/project",
			expected: "src/main.go",
		},
		{
			name:     "path outside root - fallback to absolute",
			absPath:  "/other/location/file.go",
			rootDir:  "/home/user/project",
			expected: "/other/location/file.go",
		},
		{
			name:     "empty root directory",
			absPath:  "/home/user/project/file.go",
			rootDir:  "",
			expected: "/home/user/project/file.go",
		},
		{
			name:     "empty absolute path",
			absPath:  "",
			rootDir:  "/home/user/project",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.absPath, tt.rootDir)
			expected := tt.expected
			if runtime.GOOS == "windows" {
				result = filepath.ToSlash(result)
				expected = filepath.ToSlash(expected)
			}
			if result != expected {
				t.Errorf("ToRelative() = %v, want %v", result, expected)
			}
		})
	}
}

func TestToRelativeResultsConvertsPathKind(t *testing.T) {
	rootDir := "/home/user/project"
	input := []stream.Result{
		stream.PathResult("/home/user/project/src/main.go"),
		stream.PathResult("/home/user/project/README.md"),
	}

	results := ToRelativeResults(input, rootDir)

	expected := []string{"src/main.go", "README.md"}
	if len(results) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(results))
	}
	for i, r := range results {
		if r.Path != expected[i] {
			t.Errorf("result %d: Path = %v, want %v", i, r.Path, expected[i])
		}
	}
}

func TestToRelativeResultsConvertsMatchKind(t *testing.T) {
	rootDir := "/home/user/project"
	input := []stream.Result{
		stream.MatchResult(stream.SearchMatch{
			Path:       "/home/user/project/internal/core/search.go",
			LineNumber: 42,
			LineText:   "foo",
			Matches:    []string{"foo"},
		}),
	}

	results := ToRelativeResults(input, rootDir)

	if results[0].Path != "internal/core/search.go" {
		t.Errorf("Path = %v, want internal/core/search.go", results[0].Path)
	}
	if results[0].Match.Path != "internal/core/search.go" {
		t.Errorf("Match.Path = %v, want internal/core/search.go", results[0].Match.Path)
	}
	if results[0].Match.LineNumber != 42 {
		t.Errorf("LineNumber not preserved: got %v", results[0].Match.LineNumber)
	}
}

func TestToRelativeResultsEmptySlice(t *testing.T) {
	results := ToRelativeResults(nil, "/home/user/project")
	if len(results) != 0 {
		t.Errorf("expected empty slice, got %d elements", len(results))
	}
}

func TestToRelativeResultsDoesNotMutateInput(t *testing.T) {
	rootDir := "/home/user/project"
	input := []stream.Result{stream.PathResult("/home/user/project/file.go")}

	_ = ToRelativeResults(input, rootDir)

	if input[0].Path != "/home/user/project/file.go" {
		t.Errorf("input was mutated: %v", input[0].Path)
	}
}
