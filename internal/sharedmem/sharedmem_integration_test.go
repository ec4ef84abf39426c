//go:build integration

package sharedmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelLifecycle(t *testing.T) {
	ch, err := Create(t.TempDir(), 4096)
	require.NoError(t, err)
	defer ch.Dispose()

	assert.Equal(t, 4096, ch.Size())
	assert.NotEmpty(t, ch.Name())

	data := ch.ReadBytes()
	for _, b := range data {
		require.Equal(t, byte(0), b)
	}

	ch.Clear()
	assert.Len(t, ch.ReadBytes(), 4096)
}

func TestCreateDefaultsMapSize(t *testing.T) {
	ch, err := Create(t.TempDir(), 0)
	require.NoError(t, err)
	defer ch.Dispose()

	assert.Equal(t, DefaultMapSize, ch.Size())
}

func TestDisposeIsIdempotent(t *testing.T) {
	ch, err := Create(t.TempDir(), 4096)
	require.NoError(t, err)

	require.NoError(t, ch.Dispose())
	assert.NoError(t, ch.Dispose())
}
