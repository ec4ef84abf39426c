package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.dict")
	content := "# a comment\n\nkw1=\"GET\"\n\"\\x00\\x01\"\n\"quote\\\"mark\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tokens, err := LoadDictionary(path)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, []byte("GET"), tokens[0])
	assert.Equal(t, []byte{0x00, 0x01}, tokens[1])
	assert.Equal(t, []byte(`quote"mark`), tokens[2])
}

func TestLoadDictionaryRejectsMalformedToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.dict")
	require.NoError(t, os.WriteFile(path, []byte("not_quoted\n"), 0644))

	_, err := LoadDictionary(path)
	assert.Error(t, err)
}
