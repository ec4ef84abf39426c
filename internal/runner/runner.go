// Package runner implements the test-runner abstraction (§4.4): executing
// one TestCase against a target and returning its TestResult plus the
// coverage captured while it ran.
package runner

import (
	"context"

	"github.com/fizil/fizil/internal/fuzzcase"
)

// CrashExitCode is the platform-defined unhandled-exception sentinel used to
// classify a crash: the .NET CLR's COMPLUS_EXCEPTION code. A target built on
// a different managed runtime can override this via config.
const CrashExitCode = 0xE0434352

// InputMode selects how a TestCase's bytes reach the target process.
type InputMode int

const (
	// InputOnCommandLine passes the test bytes, converted to a string, as
	// the child's process arguments.
	InputOnCommandLine InputMode = iota
	// InputOnStdin writes the raw bytes to the child's stdin and closes it.
	InputOnStdin
)

// Runner executes a single TestCase and reports its outcome.
type Runner interface {
	// Run executes tc against the target, returning the raw result and the
	// coverage bitmap captured during execution. A non-nil error means the
	// runner itself failed (spawn failure, I/O error) — it is not a crash.
	Run(ctx context.Context, tc fuzzcase.TestCase) (fuzzcase.TestResult, []byte, error)

	// Close releases any runner-owned resources (child processes, sandbox
	// containers, shared memory). Safe to call more than once.
	Close() error
}

func classifyCrash(exitCode, crashExitCode int) bool {
	return exitCode == crashExitCode
}
