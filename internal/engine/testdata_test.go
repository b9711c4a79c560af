package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildFixtureTree materialises a set of relative-path -> content entries
// under a fresh t.TempDir(), returning the tree's root. Adapted from the
// teacher's temp-directory fixture helper, generalised from a code-index
// corpus builder to a plain file/content map since this package has no
// need for the teacher's symbol/reference metadata.
func buildFixtureTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

// writeFixtureFile writes a single file of n bytes (repeating fill) under
// root, for size-predicate scenarios that don't care about content.
func writeFixtureFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	data := make([]byte, size)
	for i := range data {
		data[i] = 'x'
	}
	require.NoError(t, os.WriteFile(full, data, 0o644))
}
