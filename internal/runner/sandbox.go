package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/sharedmem"
)

// PodmanSandboxRunner runs each test case inside a long-lived Podman
// container instead of spawning the target directly on the host, for
// targets that need isolation from the fuzzing host.
type PodmanSandboxRunner struct {
	image         string
	targetPath    string // path to the target binary inside the container
	inputMode     InputMode
	crashExitCode int
	timeout       time.Duration
	shmDir        string
	mapSize       int

	executor    commandExecutor
	containerID string
	workDir     string
}

// NewPodmanSandboxRunner creates a sandboxed runner. Create must be called
// before the first Run.
func NewPodmanSandboxRunner(image, targetPath string, mode InputMode, crashExitCode int, timeout time.Duration, shmDir string, mapSize int) *PodmanSandboxRunner {
	workDir, _ := os.Getwd()
	return &PodmanSandboxRunner{
		image:         image,
		targetPath:    targetPath,
		inputMode:     mode,
		crashExitCode: crashExitCode,
		timeout:       timeout,
		shmDir:        shmDir,
		mapSize:       mapSize,
		executor:      hostExecutor{},
		workDir:       workDir,
	}
}

// Create starts the backing container. It must be called once before Run.
func (r *PodmanSandboxRunner) Create() error {
	mountArg := fmt.Sprintf("%s:/workspace", r.workDir)
	shmMountArg := fmt.Sprintf("%s:%s", r.shmDir, r.shmDir)
	res, err := r.executor.Run("podman", "run", "-d", "--rm", "-v", mountArg, "-v", shmMountArg, "-w", "/workspace", r.image, "sleep", "infinity")
	if err != nil {
		return fmt.Errorf("failed to create podman container: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("failed to create podman container, exit code %d: %s", res.ExitCode, res.Stderr)
	}
	r.containerID = strings.TrimSpace(res.Stdout)
	return nil
}

// Run executes the target inside the running container.
func (r *PodmanSandboxRunner) Run(ctx context.Context, tc fuzzcase.TestCase) (fuzzcase.TestResult, []byte, error) {
	if r.containerID == "" {
		return fuzzcase.TestResult{}, nil, fmt.Errorf("sandbox container not created, call Create first")
	}

	ch, err := sharedmem.Create(r.shmDir, r.mapSize)
	if err != nil {
		return fuzzcase.TestResult{}, nil, fmt.Errorf("failed to create coverage region: %w", err)
	}
	defer ch.Dispose()

	args := []string{"exec", "-e", sharedmem.EnvVar + "=" + ch.Path(), r.containerID, r.targetPath}
	if r.inputMode == InputOnCommandLine {
		args = append(args, string(tc.Data))
	}

	res, err := r.executor.Run("podman", args...)
	if err != nil {
		return fuzzcase.TestResult{}, nil, fmt.Errorf("failed to execute in podman container: %w", err)
	}

	result := fuzzcase.TestResult{
		Crashed:  classifyCrash(res.ExitCode, r.crashExitCode),
		ExitCode: res.ExitCode,
		Stdout:   []byte(res.Stdout),
		Stderr:   []byte(res.Stderr),
	}

	return result, ch.ReadBytes(), nil
}

// Close stops and removes the backing container.
func (r *PodmanSandboxRunner) Close() error {
	if r.containerID == "" {
		return nil
	}
	_, err := r.executor.Run("podman", "stop", r.containerID)
	r.containerID = ""
	return err
}
