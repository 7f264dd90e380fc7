package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// timestampLayout is used in report file names.
const timestampLayout = "20060102T150405Z"

// WriteFiles writes the text report, and the JSON document when js is
// non-nil, into dir as report-<timestamp>-<run id>.txt / .json. dir is
// created if needed. Returns the paths written.
func WriteFiles(dir string, at time.Time, runID, text string, js []byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	base := filepath.Join(dir, "report-"+at.UTC().Format(timestampLayout)+"-"+runID)
	paths := []string{base + ".txt"}
	if err := os.WriteFile(paths[0], []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("failed to write text report: %w", err)
	}

	if js != nil {
		paths = append(paths, base+".json")
		if err := os.WriteFile(paths[1], js, 0644); err != nil {
			return nil, fmt.Errorf("failed to write json report: %w", err)
		}
	}
	return paths, nil
}
