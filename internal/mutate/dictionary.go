package mutate

import (
	"bytes"

	"github.com/fizil/fizil/internal/fuzzcase"
)

// DictionaryOverwrite returns the stage that, for each token, overwrites
// every position in the input the token could fit at with the token's
// bytes. Positions that already hold the token are skipped.
func DictionaryOverwrite(tokens [][]byte) Strategy {
	return func(data []byte) fuzzcase.Stage {
		total := 0
		for _, tok := range tokens {
			if len(data) >= len(tok) {
				total += len(data) - len(tok) + 1
			}
		}
		return fuzzcase.Stage{
			Name:  "dictionary_overwrite",
			Count: fuzzcase.Count{N: total},
			Cases: func(yield func([]byte) bool) {
				for _, tok := range tokens {
					for i := 0; i+len(tok) <= len(data); i++ {
						if bytes.Equal(data[i:i+len(tok)], tok) {
							continue
						}
						out := append([]byte(nil), data...)
						copy(out[i:i+len(tok)], tok)
						if !yield(out) {
							return
						}
					}
				}
			},
		}
	}
}

// DictionaryInsert returns the stage that, for each token, splices the
// token's bytes in at every position of the input (including before the
// first byte and after the last).
func DictionaryInsert(tokens [][]byte) Strategy {
	return func(data []byte) fuzzcase.Stage {
		total := (len(data) + 1) * len(tokens)
		return fuzzcase.Stage{
			Name:  "dictionary_insert",
			Count: fuzzcase.Count{N: total},
			Cases: func(yield func([]byte) bool) {
				for _, tok := range tokens {
					for i := 0; i <= len(data); i++ {
						out := make([]byte, 0, len(data)+len(tok))
						out = append(out, data[:i]...)
						out = append(out, tok...)
						out = append(out, data[i:]...)
						if !yield(out) {
							return
						}
					}
				}
			},
		}
	}
}
