package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidPatternError(t *testing.T) {
	underlying := errors.New("unexpected ]")
	err := NewInvalidPatternError("**/[invalid", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Equal(t, `invalid pattern "**/[invalid": unexpected ]`, err.Error())
}

func TestInvalidArgumentError(t *testing.T) {
	err := NewInvalidArgumentError("sort", "bogus", nil)
	assert.Equal(t, `invalid argument sort="bogus"`, err.Error())

	underlying := errors.New("must be non-empty")
	err = NewInvalidArgumentError("roots", "", underlying)
	require.ErrorIs(t, err, underlying)
	assert.Equal(t, `invalid argument roots="": must be non-empty`, err.Error())
}

func TestEntryError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewEntryError("readdir", "/tmp/locked", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Equal(t, "readdir failed for /tmp/locked: permission denied", err.Error())
}

func TestOpenError(t *testing.T) {
	underlying := errors.New("too many open files")
	err := NewOpenError("/tmp/big.log", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "/tmp/big.log")
}

func TestSearchError(t *testing.T) {
	underlying := errors.New("unexpected EOF")
	err := NewSearchError("/tmp/truncated.log", "TODO", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "TODO")
}

func TestCancelledError(t *testing.T) {
	assert.Equal(t, "query cancelled", ErrCancelled.Error())
}
