package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExamples(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte{0x01, 0x02}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte{0xAA}, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	examples, err := LoadExamples(dir)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, filepath.Join(dir, "a.bin"), examples[0].SourceFile)
	assert.Equal(t, []byte{0xAA}, examples[0].Data)
	assert.Equal(t, ".bin", examples[0].FileExtension)

	assert.Equal(t, filepath.Join(dir, "b.bin"), examples[1].SourceFile)
	assert.Equal(t, []byte{0x01, 0x02}, examples[1].Data)
}

func TestLoadExamplesMissingDirectory(t *testing.T) {
	_, err := LoadExamples(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
