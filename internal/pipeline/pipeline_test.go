package pipeline

import (
	"testing"

	"github.com/fizil/fizil/internal/corpus"
	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunYieldsOriginalFirstPerExample(t *testing.T) {
	examples := []corpus.Example{
		{Data: []byte{0x00}, FileExtension: ".bin", SourceFile: "a.bin"},
		{Data: []byte{0xff}, FileExtension: ".bin", SourceFile: "b.bin"},
	}

	var cases []fuzzcase.TestCase
	for tc := range Run(examples, nil) {
		cases = append(cases, tc)
	}
	require.NotEmpty(t, cases)

	assert.Equal(t, "use_original", cases[0].Stage)
	assert.Equal(t, "a.bin", cases[0].SourceFile)
	assert.Equal(t, []byte{0x00}, cases[0].Data)

	// Find the first case belonging to the second example.
	foundSecond := false
	for _, tc := range cases {
		if tc.SourceFile == "b.bin" {
			assert.Equal(t, "use_original", tc.Stage)
			foundSecond = true
			break
		}
	}
	assert.True(t, foundSecond)
}

func TestRunMutationsHaveNoSourceFile(t *testing.T) {
	examples := []corpus.Example{{Data: []byte{0x00, 0x00}, SourceFile: "seed.bin"}}

	nonOriginalSeen := false
	for tc := range Run(examples, nil) {
		if tc.Stage == "use_original" {
			continue
		}
		nonOriginalSeen = true
		assert.Empty(t, tc.SourceFile)
	}
	assert.True(t, nonOriginalSeen)
}

func TestRunStopsEarlyWhenConsumerStops(t *testing.T) {
	examples := []corpus.Example{{Data: []byte{0x00, 0x00, 0x00, 0x00}}}

	count := 0
	for range Run(examples, nil) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestRunIncludesDictionaryStagesWhenDictProvided(t *testing.T) {
	examples := []corpus.Example{{Data: []byte{0x00, 0x00}}}
	dict := [][]byte{{0xAA}}

	sawDictionary := false
	for tc := range Run(examples, dict) {
		if tc.Stage == "dictionary_overwrite" || tc.Stage == "dictionary_insert" {
			sawDictionary = true
		}
	}
	assert.True(t, sawDictionary)
}

func TestTotalIsPositiveForNonEmptyExample(t *testing.T) {
	examples := []corpus.Example{{Data: []byte{0x00, 0x00, 0x00, 0x00}}}
	assert.Greater(t, Total(examples, nil), 0)
}
