// Package triage annotates a persisted finding with nearest-uncovered-
// function context pulled from a gcovr JSON report, purely to help a human
// decide where to start reading. It runs strictly after a finding has been
// persisted and never feeds back into the aggregator's decision to persist.
package triage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zjy-dev/gcovr-json-util/v2/pkg/gcovr"
)

// Annotation is the sidecar written alongside a finding as <name>.triage.json.
type Annotation struct {
	FindingFile      string     `json:"finding_file"`
	NearestFunctions []Function `json:"nearest_functions"`
}

// Function describes one uncovered function surfaced for triage.
type Function struct {
	FilePath      string `json:"file_path"`
	FunctionName  string `json:"function_name"`
	DemangledName string `json:"demangled_name,omitempty"`
	CoveredLines  int    `json:"covered_lines"`
	TotalLines    int    `json:"total_lines"`
}

// Report holds a loaded gcovr uncovered-function report, ready to annotate
// any number of findings from the same run.
type Report struct {
	functions []Function
}

// LoadReport reads and flattens a gcovr JSON report at path.
func LoadReport(path string) (*Report, error) {
	raw, err := gcovr.LoadUncoveredReport(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load gcovr report %s: %w", path, err)
	}

	var functions []Function
	for _, file := range raw.Files {
		for _, fn := range file.UncoveredFunctions {
			functions = append(functions, Function{
				FilePath:      file.FilePath,
				FunctionName:  fn.FunctionName,
				DemangledName: fn.DemangledName,
				CoveredLines:  fn.CoveredLines,
				TotalLines:    fn.TotalLines,
			})
		}
	}

	// Least-covered functions are the most interesting triage leads: surface
	// them first.
	sort.Slice(functions, func(i, j int) bool {
		return coverageRatio(functions[i]) < coverageRatio(functions[j])
	})

	return &Report{functions: functions}, nil
}

func newReport(functions []Function) *Report {
	sorted := append([]Function{}, functions...)
	sort.Slice(sorted, func(i, j int) bool {
		return coverageRatio(sorted[i]) < coverageRatio(sorted[j])
	})
	return &Report{functions: sorted}
}

func coverageRatio(f Function) float64 {
	if f.TotalLines == 0 {
		return 0
	}
	return float64(f.CoveredLines) / float64(f.TotalLines)
}

// Annotate writes findingPath+".triage.json" listing up to limit of the
// report's least-covered functions.
func (r *Report) Annotate(findingPath string, limit int) error {
	if limit <= 0 || limit > len(r.functions) {
		limit = len(r.functions)
	}

	annotation := Annotation{
		FindingFile:      filepath.Base(findingPath),
		NearestFunctions: append([]Function{}, r.functions[:limit]...),
	}

	data, err := json.MarshalIndent(annotation, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal triage annotation: %w", err)
	}

	sidecarPath := findingPath + ".triage.json"
	if err := os.WriteFile(sidecarPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write triage sidecar %s: %w", sidecarPath, err)
	}
	return nil
}
