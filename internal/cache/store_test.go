package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEmptyWhenDirMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriteThenListAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	payload := []byte(`[{"id":1}]`)
	rec, err := s.Write(payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(rec.Path), filePrefix))
	assert.True(t, strings.HasSuffix(rec.Path, fileExt))
	assert.WithinDuration(t, time.Now(), rec.CreatedAt, 5*time.Second)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.Path, records[0].Path)

	got, err := s.Load(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriteSameDayReplaces(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Write([]byte("first"))
	require.NoError(t, err)
	rec, err := s.Write([]byte("second"))
	require.NoError(t, err)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 1)

	got, err := s.Load(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Write([]byte("payload"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.Contains(entries[0].Name(), ".tmp-"))
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, filePrefix+"2026-01-02"+fileExt), []byte("[]"), 0o644))

	s := NewStore(dir)
	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Load(filepath.Join(t.TempDir(), "gone.json"))
	require.Error(t, err)
}
