// Package fuzzcase defines the data model shared by the mutation pipeline,
// the test runner and the result aggregator: test cases, stages, and the
// results that come back from executing them against a target.
package fuzzcase

import "iter"

// Count is how many cases a Stage expects to yield for the input it was
// built from, so progress reporting can show a total without draining the
// sequence first. For stages with pruning (arith, interest, dictionary
// overwrite), this is an upper bound: the actual stream may be shorter.
type Count struct {
	N int
}

// Stage is a single mutation strategy applied to one example. Cases is a
// single-pass sequence: ranging over it twice is not supported, matching the
// one-shot nature of a fuzzing campaign.
type Stage struct {
	Name  string
	Count Count
	Cases iter.Seq[[]byte]
}

// TestCase is one concrete input to run against the target, tagged with the
// stage that produced it and, for unmutated examples, the source file it
// came from.
type TestCase struct {
	Data          []byte
	FileExtension string
	SourceFile    string // empty unless this is the unmodified original example
	Stage         string
}

// TestResult is the raw outcome of executing a TestCase.
type TestResult struct {
	Crashed  bool
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Result pairs a TestCase and its TestResult with the coverage bitmap
// captured during execution and whether the aggregator judged it novel.
type Result struct {
	TestCase     TestCase
	TestResult   TestResult
	Coverage     []byte
	NewPathFound bool
}
