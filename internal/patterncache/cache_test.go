package patterncache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompileHitsAndPromotes(t *testing.T) {
	c := New(2)

	_, err := c.GetOrCompile("*.go", true)
	require.NoError(t, err)
	_, err = c.GetOrCompile("*.py", true)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Stats().Size)

	// Touch *.go again so *.py becomes the LRU entry.
	_, err = c.GetOrCompile("*.go", true)
	require.NoError(t, err)

	_, err = c.GetOrCompile("*.rs", true)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Stats().Size)
	// *.py should have been evicted, *.go and *.rs should remain compilable.
	assert.Equal(t, "*.rs", c.order.Front().Value.(*node).pattern)
	assert.Equal(t, "*.go", c.order.Back().Value.(*node).pattern)
	_, err = c.GetOrCompile("*.go", true)
	require.NoError(t, err)
}

func TestLiteralFastPath(t *testing.T) {
	c := New(10)

	e, err := c.GetOrCompile("main.go", true)
	require.NoError(t, err)
	assert.True(t, e.IsLiteral)
	assert.True(t, e.Match("cmd/vfind/main.go"))
	assert.False(t, e.Match("cmd/vfind/other.go"))
}

func TestCaseSensitivityIsPartOfTheKey(t *testing.T) {
	c := New(10)

	lower, err := c.GetOrCompile("README.md", false)
	require.NoError(t, err)
	upper, err := c.GetOrCompile("README.md", true)
	require.NoError(t, err)

	assert.True(t, lower.Match("docs/readme.md"))
	assert.False(t, upper.Match("docs/readme.md"))
	assert.Equal(t, 2, c.Stats().Size)
}

func TestInvalidPatternIsNotCached(t *testing.T) {
	c := New(10)

	_, err := c.GetOrCompile("a/**b[", true)
	require.Error(t, err)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestPrewarmPopulatesCache(t *testing.T) {
	c := New(DefaultCapacity)
	Prewarm(c)

	assert.Greater(t, c.Stats().Size, 50)
	assert.LessOrEqual(t, c.Stats().Size, DefaultCapacity)
}

func TestGlobPatternMatch(t *testing.T) {
	c := New(10)

	e, err := c.GetOrCompile("**/*.go", true)
	require.NoError(t, err)
	assert.True(t, e.Match("internal/walker/walker.go"))
	assert.False(t, e.Match("internal/walker/walker.rs"))
}
