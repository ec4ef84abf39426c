// Package aggregate implements the result aggregator (§4.5): the single
// consumer that hashes each test run's coverage, decides whether it
// represents a newly observed path, and decides whether to persist the
// triggering input as a finding.
//
// All state mutation happens on one goroutine, fed by a channel, so
// findings are numbered deterministically no matter how many workers feed
// results into it concurrently.
package aggregate

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/logger"
	"github.com/fizil/fizil/internal/status"
)

// Summary is the run-level tally the aggregator keeps, written to
// run_summary.json once the run completes.
type Summary struct {
	TestsRun        int           `json:"tests_run"`
	CrashesSeen     int           `json:"crashes_seen"`
	FindingsCount   int           `json:"findings_count"`
	NonZeroExits    int           `json:"non_zero_exits"`
	ElapsedDuration time.Duration `json:"elapsed_ns"`
}

// Aggregator is the result sink fed by the execution driver. Submit is safe
// to call from multiple goroutines; all other state lives on the internal
// consumer goroutine.
type Aggregator struct {
	findingsRoot string
	sink         status.Sink

	submit chan fuzzcase.Result
	sync   chan chan struct{}
	done   chan struct{}

	start time.Time

	// only touched on the consumer goroutine
	observedPaths  map[string]bool
	findingName    int
	findingsFolder string
	findingsDirSet bool
	summary        Summary

	wg sync.WaitGroup
}

// New creates an Aggregator. findingsRoot is the directory under which a
// fresh findings_<timestamp> directory will be created on the first
// persisted finding.
func New(findingsRoot string, sink status.Sink) *Aggregator {
	a := &Aggregator{
		findingsRoot:  findingsRoot,
		sink:          sink,
		submit:        make(chan fuzzcase.Result, 64),
		sync:          make(chan chan struct{}),
		done:          make(chan struct{}),
		start:         time.Now(),
		observedPaths: make(map[string]bool),
	}
	a.wg.Add(1)
	go a.loop()
	return a
}

// Submit posts a result for processing. It blocks only as long as the
// internal channel is full.
func (a *Aggregator) Submit(r fuzzcase.Result) {
	a.submit <- r
}

// AllTestsComplete blocks until every result submitted before this call has
// been fully processed, then returns the final summary and closes the
// aggregator. It must be called exactly once, after the last Submit.
func (a *Aggregator) AllTestsComplete() Summary {
	reply := make(chan struct{})
	a.sync <- reply
	<-reply

	close(a.done)
	a.wg.Wait()

	a.summary.ElapsedDuration = time.Since(a.start)
	return a.summary
}

func (a *Aggregator) loop() {
	defer a.wg.Done()
	for {
		select {
		case r := <-a.submit:
			a.process(r)
		case reply := <-a.sync:
			a.drain()
			close(reply)
		case <-a.done:
			a.drain()
			return
		}
	}
}

// drain processes any results queued before the barrier/shutdown signal was
// observed, so nothing submitted earlier is lost.
func (a *Aggregator) drain() {
	for {
		select {
		case r := <-a.submit:
			a.process(r)
		default:
			return
		}
	}
}

func (a *Aggregator) process(r fuzzcase.Result) {
	a.summary.TestsRun++

	hash := md5.Sum(r.Coverage)
	hexHash := hex.EncodeToString(hash[:])
	novel := !a.observedPaths[hexHash]
	if novel {
		a.observedPaths[hexHash] = true
	}
	r.NewPathFound = novel

	if r.TestResult.Crashed {
		a.summary.CrashesSeen++
		logger.Warn("crash: stage=%s exit_code=%d", r.TestCase.Stage, r.TestResult.ExitCode)
	} else if r.TestResult.ExitCode != 0 {
		a.summary.NonZeroExits++
	}

	if novel {
		logger.Debug("new path found: stage=%s hash=%s", r.TestCase.Stage, hexHash)
	}
	logger.Debug("stdout=%q stderr=%q", r.TestResult.Stdout, r.TestResult.Stderr)

	if a.sink != nil {
		a.sink.Update(status.Event{
			TestsRun:      a.summary.TestsRun,
			CrashesSeen:   a.summary.CrashesSeen,
			FindingsCount: a.summary.FindingsCount,
			Stage:         r.TestCase.Stage,
		})
	}

	shouldPersist := r.TestResult.Crashed && r.NewPathFound && r.TestCase.SourceFile == ""
	if !shouldPersist {
		return
	}

	if err := a.persistFinding(r.TestCase); err != nil {
		logger.Error("failed to persist finding: %v", err)
		return
	}
	a.summary.FindingsCount++
}

func (a *Aggregator) persistFinding(tc fuzzcase.TestCase) error {
	if !a.findingsDirSet {
		folder := uniqueFindingsFolder(a.findingsRoot, time.Now())
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create findings directory %s: %w", folder, err)
		}
		a.findingsFolder = folder
		a.findingsDirSet = true
	}

	name := fmt.Sprintf("%d%s", a.findingName, tc.FileExtension)
	path := filepath.Join(a.findingsFolder, name)
	if err := os.WriteFile(path, tc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write finding %s: %w", path, err)
	}
	a.findingName++
	return nil
}

// uniqueFindingsFolder returns findingsRoot/findings_<timestamp>, appending
// "_" until the name doesn't already exist.
func uniqueFindingsFolder(findingsRoot string, at time.Time) string {
	base := "findings_" + at.Format("2006-01-02_15-04-05")
	candidate := filepath.Join(findingsRoot, base)
	for {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		base += "_"
		candidate = filepath.Join(findingsRoot, base)
	}
}

// FindingsFolder returns the directory findings were persisted to, or ""
// if none was ever created.
func (a *Aggregator) FindingsFolder() string {
	return a.findingsFolder
}

// WriteSummary persists the run summary as JSON to findingsRoot/run_summary.json.
func WriteSummary(findingsRoot string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	path := filepath.Join(findingsRoot, "run_summary.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run summary %s: %w", path, err)
	}
	return nil
}
