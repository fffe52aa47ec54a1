// Package cache stores raw WaniKani subject payloads on disk so repeat runs
// can skip the API entirely. One JSON file per fetch day; the file mtime is
// the record's creation time.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	filePrefix = "wanikani_subjects_cache_"
	fileExt    = ".json"
)

// Record points at one cached payload.
type Record struct {
	Path      string
	CreatedAt time.Time
}

// Store manages payload files under a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns every cache record found, unordered. A missing directory is
// an empty cache, not an error.
func (s *Store) List() ([]Record, error) {
	pattern := filepath.Join(s.dir, filePrefix+"*"+fileExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob cache files: %w", err)
	}
	records := make([]Record, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			// Raced away or unreadable; skip rather than fail the scan.
			continue
		}
		records = append(records, Record{Path: path, CreatedAt: info.ModTime()})
	}
	return records, nil
}

// Write stores data as today's cache file, replacing any earlier fetch from
// the same day. The write goes through a temp file and rename so readers
// never observe a half-written payload.
func (s *Store) Write(data []byte) (Record, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("create cache dir: %w", err)
	}
	name := filePrefix + time.Now().Format("2006-01-02") + fileExt
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return Record{}, fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Record{}, fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Record{}, fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return Record{}, fmt.Errorf("publish cache file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Record{}, fmt.Errorf("stat cache file: %w", err)
	}
	return Record{Path: path, CreatedAt: info.ModTime()}, nil
}

// Load reads a cached payload back.
func (s *Store) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	return data, nil
}
