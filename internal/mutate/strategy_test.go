package mutate

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(stage func(yield func([]byte) bool)) [][]byte {
	var out [][]byte
	stage(func(b []byte) bool {
		out = append(out, b)
		return true
	})
	return out
}

func TestUseOriginal(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	stage := UseOriginal(data)
	assert.Equal(t, 1, stage.Count.N)

	cases := collect(stage.Cases)
	require.Len(t, cases, 1)
	assert.Equal(t, data, cases[0])
}

func TestBitFlip1(t *testing.T) {
	data := []byte{0x00, 0xff}
	stage := BitFlip(1)(data)
	require.Equal(t, 16, stage.Count.N)

	cases := collect(stage.Cases)
	require.Len(t, cases, 16)

	seen := map[string]bool{}
	for _, c := range cases {
		require.Len(t, c, 2)
		seen[string(c)] = true
	}
	assert.Len(t, seen, 16, "every single-bit flip should produce a distinct buffer")

	// Scenario #1: bit 0 is the LSB of byte 0, so the first flip must
	// produce [0x01, 0xff], then [0x02, 0xff], [0x04, 0xff], [0x08, 0xff], ...
	expected := [][]byte{
		{0x01, 0xff}, {0x02, 0xff}, {0x04, 0xff}, {0x08, 0xff},
		{0x10, 0xff}, {0x20, 0xff}, {0x40, 0xff}, {0x80, 0xff},
	}
	assert.Equal(t, expected, cases[:8])
}

func TestByteFlip1(t *testing.T) {
	data := []byte{0x00, 0xff, 0x00}
	stage := ByteFlip(1)(data)
	require.Equal(t, 3, stage.Count.N)

	cases := collect(stage.Cases)
	require.Len(t, cases, 3)
	assert.Equal(t, []byte{0xff, 0xff, 0x00}, cases[0])
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, cases[1])
	assert.Equal(t, []byte{0x00, 0xff, 0xff}, cases[2])
}

func TestBitFlipDoesNotMutateInput(t *testing.T) {
	data := []byte{0x00, 0x00}
	original := slices.Clone(data)
	_ = collect(BitFlip(4)(data).Cases)
	assert.Equal(t, original, data)
}

func TestArithPrunesBitflipDuplicates(t *testing.T) {
	data := []byte{128}
	cases := collect(Arith(1)(data).Cases)

	for _, c := range cases {
		old := uint32(data[0])
		new := uint32(c[0])
		assert.False(t, couldBeBitflip(old, new),
			"arith8 must not emit a value already reachable by bitflip/byteflip: %v", new)
	}

	// No duplicate candidate values should appear in the stream.
	seen := map[byte]bool{}
	for _, c := range cases {
		assert.False(t, seen[c[0]], "duplicate arith8 candidate %d", c[0])
		seen[c[0]] = true
	}
}

func TestInterestPrunesArithAndBitflipDuplicates(t *testing.T) {
	data := []byte{0, 0}
	cases := collect(Interest(2)(data).Cases)

	for _, c := range cases {
		old := readWidth(data, 0, 2)
		new := readWidth(c, 0, 2)
		assert.NotEqual(t, old, new)
		assert.False(t, couldBeBitflip(old, new))
		assert.False(t, couldBeArith(old, new, 2))
	}
}

func TestDictionaryOverwrite(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00}
	tokens := [][]byte{{0xAA, 0xBB}}
	stage := DictionaryOverwrite(tokens)(data)
	require.Equal(t, 3, stage.Count.N)

	cases := collect(stage.Cases)
	require.Len(t, cases, 3)
	assert.Equal(t, []byte{0xAA, 0xBB, 0x00, 0x00}, cases[0])
	assert.Equal(t, []byte{0x00, 0xAA, 0xBB, 0x00}, cases[1])
	assert.Equal(t, []byte{0x00, 0x00, 0xAA, 0xBB}, cases[2])
}

func TestDictionaryInsert(t *testing.T) {
	data := []byte{0x01, 0x02}
	tokens := [][]byte{{0xAA}}
	stage := DictionaryInsert(tokens)(data)
	require.Equal(t, 3, stage.Count.N)

	cases := collect(stage.Cases)
	require.Len(t, cases, 3)
	assert.Equal(t, []byte{0xAA, 0x01, 0x02}, cases[0])
	assert.Equal(t, []byte{0x01, 0xAA, 0x02}, cases[1])
	assert.Equal(t, []byte{0x01, 0x02, 0xAA}, cases[2])
}
