package query

import (
	"testing"

	vferrors "github.com/standardbeagle/vfind/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyRoots(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

// S6: an invalid content regex is rejected synchronously at construction,
// before any traversal runs.
func TestWithContentPatternRejectsInvalidRegex(t *testing.T) {
	_, err := New([]string{"."}, WithContentPattern("[unterminated", true))
	require.Error(t, err)
	var target *vferrors.InvalidPatternError
	assert.ErrorAs(t, err, &target)
}

// An invalid path glob must fail the same way (spec §7: InvalidPattern is
// "raised at query construction, no traversal performed") — not silently
// accepted and only discovered later, deep inside the walker.
func TestWithPathGlobRejectsInvalidPattern(t *testing.T) {
	_, err := New([]string{"."}, WithPathGlob("a/**b["))
	require.Error(t, err)
	var target *vferrors.InvalidPatternError
	assert.ErrorAs(t, err, &target)
}

func TestWithExcludePatternsRejectsInvalidPattern(t *testing.T) {
	_, err := New([]string{"."}, WithExcludePatterns("ok/*", "a/**b["))
	require.Error(t, err)
	var target *vferrors.InvalidPatternError
	assert.ErrorAs(t, err, &target)
}

func TestWithPathGlobAcceptsValidPattern(t *testing.T) {
	q, err := New([]string{"."}, WithPathGlob("*.go"))
	require.NoError(t, err)
	require.NotNil(t, q.PathPattern)
	assert.Equal(t, "*.go", *q.PathPattern)
}
