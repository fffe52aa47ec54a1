package deck

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeDeckFile writes an Anki text-import file: "#key:value" directives,
// then one tab-separated note per line. The write is temp-and-rename so a
// failed run never leaves a truncated deck behind.
func writeDeckFile(path string, directives []string, notes [][]string) (int64, error) {
	var buf bytes.Buffer
	for _, d := range directives {
		buf.WriteString(d)
		buf.WriteByte('\n')
	}
	for _, fields := range notes {
		cleaned := make([]string, len(fields))
		for i, f := range fields {
			cleaned[i] = sanitizeField(f)
		}
		buf.WriteString(strings.Join(cleaned, "\t"))
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create deck dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp deck file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write deck file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close deck file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("publish deck file: %w", err)
	}
	return int64(buf.Len()), nil
}

// sanitizeField keeps a field on one line: tabs would shift columns and raw
// newlines would split the note, so both become safe HTML-era equivalents.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "\r", "<br>")
	return s
}
