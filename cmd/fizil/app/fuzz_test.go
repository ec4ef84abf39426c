package app

import (
	"testing"

	"github.com/fizil/fizil/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestApplyFlagOverridesOnlyTouchesChangedFlags(t *testing.T) {
	cmd := NewFuzzCommand()
	require := assert.New(t)

	require.NoError(cmd.Flags().Set("target", "/bin/target"))
	require.NoError(cmd.Flags().Set("parallelism", "8"))

	cfg := config.Config{
		ExamplesDir:  "from-config-file",
		FindingsRoot: "from-config-file",
		Parallelism:  1,
	}

	applyFlagOverrides(cmd, &cfg, flagValues{
		targetPath:  "/bin/target",
		parallelism: 8,
		logLevel:    "info",
	})

	assert.Equal(t, "/bin/target", cfg.TargetPath)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, "from-config-file", cfg.ExamplesDir)
	assert.Equal(t, "from-config-file", cfg.FindingsRoot)
}

func TestApplyFlagOverridesDefaultsLogLevelWhenUnset(t *testing.T) {
	cmd := NewFuzzCommand()
	cfg := config.Config{}

	applyFlagOverrides(cmd, &cfg, flagValues{logLevel: "info"})

	assert.Equal(t, "info", cfg.LogLevel)
}
