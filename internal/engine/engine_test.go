package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fizil/fizil/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsExamplesNotFoundForMissingDir(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		TargetPath:   "/bin/true",
		ExamplesDir:  filepath.Join(dir, "does-not-exist"),
		FindingsRoot: dir,
	}

	outcome, summary, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, ExamplesNotFound, outcome)
	assert.Zero(t, summary.TestsRun)
}

func TestRunReturnsExamplesNotFoundForEmptyDir(t *testing.T) {
	dir := t.TempDir()
	examplesDir := filepath.Join(dir, "examples")
	require.NoError(t, os.MkdirAll(examplesDir, 0755))

	cfg := config.Config{
		TargetPath:   "/bin/true",
		ExamplesDir:  examplesDir,
		FindingsRoot: dir,
	}

	outcome, _, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, ExamplesNotFound, outcome)
}
