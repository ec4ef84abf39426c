// Package corpus loads the on-disk inputs a fuzzing run starts from: the
// example files that seed the mutation pipeline, and an optional AFL-style
// dictionary of tokens used by the dictionary stages.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fizil/fizil/internal/logger"
)

// Example is one seed file read from the examples directory.
type Example struct {
	Data          []byte
	FileExtension string
	SourceFile    string
}

// LoadExamples reads every regular file directly under dir and returns them
// sorted by name, so a run is deterministic given the same directory
// contents. Subdirectories are not traversed.
func LoadExamples(dir string) ([]Example, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	examples := make([]Example, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read example %s: %w", path, err)
		}
		examples = append(examples, Example{
			Data:          data,
			FileExtension: filepath.Ext(name),
			SourceFile:    path,
		})
	}

	logger.Info("loaded %d example(s) from %s", len(examples), dir)
	return examples, nil
}
