// Package report provides the append-only flag report writer. The report
// is a markdown file that flagging stages append batches of lines to;
// formatting of the individual lines stays with the callers.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer appends line batches to a markdown report file. The file and its
// directory are created on first write. A Writer is safe for use from a
// single goroutine; pipeline stages write their summaries one at a time.
type Writer struct {
	path string
	mu   sync.Mutex
}

// NewWriter returns a writer appending to the report file at path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the report file location.
func (w *Writer) Path() string {
	return w.path
}

// WriteLines appends the given lines to the report, one per row, creating
// the file with a header if it does not exist yet.
func (w *Writer) WriteLines(lines []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	_, statErr := os.Stat(w.path)
	isNew := os.IsNotExist(statErr)

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	if isNew {
		if _, err := fmt.Fprintln(file, "# Flag report"); err != nil {
			return fmt.Errorf("failed to write report header: %w", err)
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
	}
	return nil
}
