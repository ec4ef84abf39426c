package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/sharedmem"
)

// OutOfProcessRunner spawns the target as a child process for every test
// case, delivering input either on the command line or via stdin, and
// classifying crashes by exit code.
type OutOfProcessRunner struct {
	targetPath    string
	inputMode     InputMode
	crashExitCode int
	timeout       time.Duration
	shmDir        string
	mapSize       int
	spawn         func(ctx context.Context, name string, args []string) *exec.Cmd
}

// NewOutOfProcessRunner builds a runner that spawns targetPath directly
// (no sandbox). shmDir is where coverage regions are created (typically
// /dev/shm); mapSize is the coverage bitmap size, or sharedmem.DefaultMapSize
// if zero.
func NewOutOfProcessRunner(targetPath string, mode InputMode, crashExitCode int, timeout time.Duration, shmDir string, mapSize int) *OutOfProcessRunner {
	return &OutOfProcessRunner{
		targetPath:    targetPath,
		inputMode:     mode,
		crashExitCode: crashExitCode,
		timeout:       timeout,
		shmDir:        shmDir,
		mapSize:       mapSize,
		spawn: func(ctx context.Context, name string, args []string) *exec.Cmd {
			return exec.CommandContext(ctx, name, args...)
		},
	}
}

// Run executes tc by spawning the target, per the configured input mode.
func (r *OutOfProcessRunner) Run(ctx context.Context, tc fuzzcase.TestCase) (fuzzcase.TestResult, []byte, error) {
	ch, err := sharedmem.Create(r.shmDir, r.mapSize)
	if err != nil {
		return fuzzcase.TestResult{}, nil, fmt.Errorf("failed to create coverage region: %w", err)
	}
	defer ch.Dispose()

	runCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var args []string
	if r.inputMode == InputOnCommandLine {
		args = []string{string(tc.Data)}
	}

	cmd := r.spawn(runCtx, r.targetPath, args)
	cmd.Env = append(cmd.Environ(), sharedmem.EnvVar+"="+ch.Path())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.inputMode == InputOnStdin {
		cmd.Stdin = bytes.NewReader(tc.Data)
	}

	runErr := cmd.Run()

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return fuzzcase.TestResult{}, nil, fmt.Errorf("failed to run target %s: %w", r.targetPath, runErr)
		}
	}

	result := fuzzcase.TestResult{
		Crashed:  classifyCrash(exitCode, r.crashExitCode),
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}

	return result, ch.ReadBytes(), nil
}

// Close is a no-op: the runner owns no resources outside the per-run
// coverage channel, which Run already disposes.
func (r *OutOfProcessRunner) Close() error { return nil }
