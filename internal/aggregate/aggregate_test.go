package aggregate

import (
	"os"
	"testing"
	"time"

	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorPersistsNovelCrashWithoutSourceFile(t *testing.T) {
	root := t.TempDir()
	a := New(root, nil)

	a.Submit(fuzzcase.Result{
		TestCase:   fuzzcase.TestCase{Data: []byte{0x41}, FileExtension: ".bin", Stage: "bitflip/1"},
		TestResult: fuzzcase.TestResult{Crashed: true},
		Coverage:   []byte{0x01, 0x02},
	})

	summary := a.AllTestsComplete()
	assert.Equal(t, 1, summary.TestsRun)
	assert.Equal(t, 1, summary.CrashesSeen)
	assert.Equal(t, 1, summary.FindingsCount)

	require.NotEmpty(t, a.FindingsFolder())
	entries, err := os.ReadDir(a.FindingsFolder())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0.bin", entries[0].Name())
}

func TestAggregatorSuppressesSeedCrashes(t *testing.T) {
	root := t.TempDir()
	a := New(root, nil)

	a.Submit(fuzzcase.Result{
		TestCase:   fuzzcase.TestCase{Data: []byte{0x41}, SourceFile: "seed.bin"},
		TestResult: fuzzcase.TestResult{Crashed: true},
		Coverage:   []byte{0x01},
	})

	summary := a.AllTestsComplete()
	assert.Equal(t, 1, summary.CrashesSeen)
	assert.Equal(t, 0, summary.FindingsCount)
	assert.Empty(t, a.FindingsFolder())
}

func TestAggregatorSuppressesDuplicateCoverageHash(t *testing.T) {
	root := t.TempDir()
	a := New(root, nil)

	cov := []byte{0xAA, 0xBB}
	a.Submit(fuzzcase.Result{TestCase: fuzzcase.TestCase{Data: []byte{1}}, TestResult: fuzzcase.TestResult{Crashed: true}, Coverage: cov})
	a.Submit(fuzzcase.Result{TestCase: fuzzcase.TestCase{Data: []byte{2}}, TestResult: fuzzcase.TestResult{Crashed: true}, Coverage: cov})

	summary := a.AllTestsComplete()
	assert.Equal(t, 2, summary.CrashesSeen)
	assert.Equal(t, 1, summary.FindingsCount, "second submission repeats the first's coverage hash and must not be recorded as a new path")
}

func TestUniqueFindingsFolderDisambiguates(t *testing.T) {
	root := t.TempDir()
	at, err := time.Parse("2006-01-02_15-04-05", "2026-01-02_15-04-05")
	require.NoError(t, err)

	first := uniqueFindingsFolder(root, at)
	require.NoError(t, os.MkdirAll(first, 0755))

	second := uniqueFindingsFolder(root, at)
	assert.NotEqual(t, first, second)
	assert.Equal(t, first+"_", second)
}
