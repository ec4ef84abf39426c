// Package sharedmem implements the coverage channel (§4.3 in the fuzzing
// design this module follows): a fixed-size region of memory, backed by a
// named file under /dev/shm, that the core creates before spawning a test
// run and the target's instrumentation writes coverage bits into.
package sharedmem

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// EnvVar is the environment variable the core publishes the channel's name
// through, so an out-of-process target can find and map the same region.
const EnvVar = "FIZIL_SHARED_MEMORY"

// DefaultMapSize matches the classic 64KiB coverage bitmap size used by
// bitmap-based coverage-guided fuzzers when no override is configured.
const DefaultMapSize = 1 << 16

// Channel is an open coverage region. It is not safe for concurrent use by
// more than one test run at a time — the engine serializes access to it.
type Channel struct {
	name string
	path string
	size int
	data []byte
	file *os.File
}

// Create allocates a new coverage region of size bytes under dir (typically
// /dev/shm), named distinctly from any other channel created in the same
// process, and publishes its path into this process's environment via
// EnvVar so an in-process target (sharing this process's environment) and a
// freshly spawned out-of-process target (inheriting it) can both find it.
func Create(dir string, size int) (*Channel, error) {
	if size <= 0 {
		size = DefaultMapSize
	}

	f, err := os.CreateTemp(dir, "fizil-cov-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create coverage region in %s: %w", dir, err)
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to size coverage region: %w", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to map coverage region: %w", err)
	}

	if err := os.Setenv(EnvVar, f.Name()); err != nil {
		unix.Munmap(data)
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to publish coverage region: %w", err)
	}

	return &Channel{
		name: filepath.Base(f.Name()),
		path: f.Name(),
		size: size,
		data: data,
		file: f,
	}, nil
}

// Name is the channel's identity, to be passed to a target process via
// EnvVar (combined with the directory it lives in, since the target opens
// the same backing file by path).
func (c *Channel) Name() string { return c.name }

// Path is the backing file's full path, suitable to publish via EnvVar.
func (c *Channel) Path() string { return c.path }

// Size returns the region's fixed byte length.
func (c *Channel) Size() int { return c.size }

// Clear zeroes the region, to be called before every test run so each
// execution's coverage can be read independently.
func (c *Channel) Clear() {
	for i := range c.data {
		c.data[i] = 0
	}
}

// ReadBytes copies the current contents of the region out. A copy is
// returned (not a view) so a caller can retain it across the next Clear.
func (c *Channel) ReadBytes() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Dispose unmaps the region and removes its backing file. It is idempotent.
func (c *Channel) Dispose() error {
	if c.data != nil {
		if err := unix.Munmap(c.data); err != nil {
			return fmt.Errorf("failed to unmap coverage region %s: %w", c.path, err)
		}
		c.data = nil
	}
	if c.file != nil {
		c.file.Close()
		os.Remove(c.path)
		c.file = nil
	}
	return nil
}
