// Package engine wires together configuration, the mutation pipeline, a
// test runner and the result aggregator into a single fuzzing run.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fizil/fizil/internal/aggregate"
	"github.com/fizil/fizil/internal/config"
	"github.com/fizil/fizil/internal/corpus"
	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/logger"
	"github.com/fizil/fizil/internal/pipeline"
	"github.com/fizil/fizil/internal/runner"
	"github.com/fizil/fizil/internal/status"
	"github.com/fizil/fizil/internal/triage"
)

// Outcome is the top-level result of a run: all other signal (crashes,
// findings) is observable only through emitted status and persisted files.
type Outcome int

const (
	Success Outcome = iota
	ExamplesNotFound
)

// Run executes one complete fuzzing run per cfg, returning the outcome and
// the final run summary.
func Run(ctx context.Context, cfg config.Config) (Outcome, aggregate.Summary, error) {
	startTime := time.Now()
	logger.Info("starting fuzzing run: target=%s isolation=%s", cfg.TargetPath, cfg.Isolation)

	if _, err := os.Stat(cfg.ExamplesDir); os.IsNotExist(err) {
		logger.Warn("examples directory %s not found", cfg.ExamplesDir)
		return ExamplesNotFound, aggregate.Summary{}, nil
	}

	examples, err := corpus.LoadExamples(cfg.ExamplesDir)
	if err != nil {
		return Success, aggregate.Summary{}, fmt.Errorf("failed to load examples: %w", err)
	}
	if len(examples) == 0 {
		logger.Warn("examples directory %s contains no files", cfg.ExamplesDir)
		return ExamplesNotFound, aggregate.Summary{}, nil
	}

	var dict [][]byte
	if cfg.DictionaryPath != "" {
		dict, err = corpus.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return Success, aggregate.Summary{}, fmt.Errorf("failed to load dictionary: %w", err)
		}
	}

	r, err := buildRunner(cfg)
	if err != nil {
		return Success, aggregate.Summary{}, fmt.Errorf("failed to build runner: %w", err)
	}
	defer r.Close()

	sink := status.NewLoggingSink(cfg.ProgressEvery)
	sink.Initialize(len(examples))

	agg := aggregate.New(cfg.FindingsRoot, sink)

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.Isolation == config.IsolationInProcess {
		runSerially(ctx, r, agg, examples, dict, timeout)
	} else {
		runInParallel(ctx, r, agg, examples, dict, timeout, cfg.Parallelism)
	}

	summary := agg.AllTestsComplete()
	if err := aggregate.WriteSummary(cfg.FindingsRoot, summary); err != nil {
		logger.Warn("failed to write run summary: %v", err)
	}

	if cfg.GcovrReportPath != "" && agg.FindingsFolder() != "" {
		if err := annotateFindings(cfg.GcovrReportPath, agg.FindingsFolder()); err != nil {
			logger.Warn("failed to triage findings: %v", err)
		}
	}

	logger.Info("run complete: tests=%d crashes=%d findings=%d elapsed=%s",
		summary.TestsRun, summary.CrashesSeen, summary.FindingsCount, time.Since(startTime))

	return Success, summary, nil
}

// annotateFindings writes a triage sidecar for every file persisted under
// findingsDir, using the nearest-uncovered-function context from the gcovr
// report at gcovrReportPath. Per §11.7 this runs strictly after persistence
// and never influences which findings were kept.
func annotateFindings(gcovrReportPath, findingsDir string) error {
	report, err := triage.LoadReport(gcovrReportPath)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(findingsDir)
	if err != nil {
		return fmt.Errorf("failed to list findings directory %s: %w", findingsDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".json" {
			continue
		}
		path := filepath.Join(findingsDir, entry.Name())
		if err := report.Annotate(path, 5); err != nil {
			return err
		}
	}
	return nil
}

func buildRunner(cfg config.Config) (runner.Runner, error) {
	crashExitCode := cfg.CrashExitCode
	if crashExitCode == 0 {
		crashExitCode = runner.CrashExitCode
	}

	inputMode := runner.InputOnCommandLine
	if cfg.Input == config.InputStdin {
		inputMode = runner.InputOnStdin
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	shmDir := os.TempDir()
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		shmDir = "/dev/shm"
	}

	switch cfg.Isolation {
	case config.IsolationInProcess:
		return runner.LoadInProcessRunner(cfg.TargetPath, crashExitCode, cfg.MapSize, shmDir)
	case config.IsolationPodmanSandbox:
		sandbox := runner.NewPodmanSandboxRunner(cfg.PodmanImage, cfg.TargetPath, inputMode, crashExitCode, timeout, shmDir, cfg.MapSize)
		if err := sandbox.Create(); err != nil {
			return nil, err
		}
		return sandbox, nil
	default:
		return runner.NewOutOfProcessRunner(cfg.TargetPath, inputMode, crashExitCode, timeout, shmDir, cfg.MapSize), nil
	}
}

func executeOne(ctx context.Context, r runner.Runner, agg *aggregate.Aggregator, tc fuzzcase.TestCase) {
	result, coverage, err := r.Run(ctx, tc)
	if err != nil {
		logger.Error("test run failed: stage=%s err=%v", tc.Stage, err)
		result = fuzzcase.TestResult{Crashed: false, ExitCode: -1, Stderr: []byte(err.Error())}
	}
	agg.Submit(fuzzcase.Result{
		TestCase:   tc,
		TestResult: result,
		Coverage:   coverage,
	})
}

// runSerially drives the pipeline on the calling goroutine, required for
// in-process targets since a loaded plugin is process-global state.
func runSerially(ctx context.Context, r runner.Runner, agg *aggregate.Aggregator, examples []corpus.Example, dict [][]byte, timeout time.Duration) {
	_ = timeout
	for tc := range pipeline.Run(examples, dict) {
		executeOne(ctx, r, agg, tc)
	}
}

// runInParallel drives the pipeline across an unordered worker pool, used
// for out-of-process targets where each test gets its own child process and
// its own coverage region.
func runInParallel(ctx context.Context, r runner.Runner, agg *aggregate.Aggregator, examples []corpus.Example, dict [][]byte, timeout time.Duration, parallelism int) {
	_ = timeout
	p := pool.New()
	if parallelism > 0 {
		p = p.WithMaxGoroutines(parallelism)
	}

	var submitted int
	for tc := range pipeline.Run(examples, dict) {
		tc := tc
		submitted++
		p.Go(func() {
			executeOne(ctx, r, agg, tc)
		})
	}
	p.Wait()
	logger.Debug("submitted %d test cases", submitted)
}
