package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/vfind/internal/query"
	"github.com/standardbeagle/vfind/internal/stream"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSearchFileMatchesLines(t *testing.T) {
	path := writeFile(t, "one\ntwo needle\nthree\nneedle again\n")
	q, err := query.New([]string{"."}, query.WithContentPattern("needle", true))
	require.NoError(t, err)

	ch := stream.NewChannel(stream.WorkloadContentSearch, 1)
	s := New()

	go func() {
		_, _ = s.SearchFile(context.Background(), path, q, ch)
		ch.Close()
	}()

	var matches []stream.SearchMatch
	for r := range ch.Recv() {
		matches = append(matches, r.Match)
	}

	require.Len(t, matches, 2)
	assert.Equal(t, 2, matches[0].LineNumber)
	assert.Equal(t, 4, matches[1].LineNumber)
}

func TestSearchFileHandlesUnterminatedFinalLine(t *testing.T) {
	path := writeFile(t, "needle no trailing newline")
	q, err := query.New([]string{"."}, query.WithContentPattern("needle", true))
	require.NoError(t, err)

	ch := stream.NewChannel(stream.WorkloadContentSearch, 1)
	s := New()

	go func() {
		_, _ = s.SearchFile(context.Background(), path, q, ch)
		ch.Close()
	}()

	var matches []stream.SearchMatch
	for r := range ch.Recv() {
		matches = append(matches, r.Match)
	}
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].LineNumber)
}

func TestSearchFileCaseInsensitive(t *testing.T) {
	path := writeFile(t, "NEEDLE\n")
	q, err := query.New([]string{"."}, query.WithContentPattern("needle", false))
	require.NoError(t, err)

	ch := stream.NewChannel(stream.WorkloadContentSearch, 1)
	s := New()

	n, err := s.SearchFile(context.Background(), path, q, ch)
	ch.Close()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearchFileLineTextPreservesSurroundingWhitespace(t *testing.T) {
	path := writeFile(t, "  needle padded  \n")
	q, err := query.New([]string{"."}, query.WithContentPattern("needle", true))
	require.NoError(t, err)

	ch := stream.NewChannel(stream.WorkloadContentSearch, 1)
	s := New()

	go func() {
		_, _ = s.SearchFile(context.Background(), path, q, ch)
		ch.Close()
	}()

	var matches []stream.SearchMatch
	for r := range ch.Recv() {
		matches = append(matches, r.Match)
	}

	require.Len(t, matches, 1)
	assert.Equal(t, "  needle padded  ", matches[0].LineText)
	assert.Equal(t, []string{"needle padded"}, matches[0].Matches)
}

func TestSearchFileOpenErrorOnMissingFile(t *testing.T) {
	q, err := query.New([]string{"."}, query.WithContentPattern("needle", true))
	require.NoError(t, err)

	ch := stream.NewChannel(stream.WorkloadContentSearch, 1)
	s := New()

	_, err = s.SearchFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), q, ch)
	require.Error(t, err)
}
