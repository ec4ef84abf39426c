// Package mutate implements the mutation strategies that turn one example
// input into a stream of test cases: bit flips, byte flips, arithmetic
// perturbation, boundary-value substitution and dictionary-token splicing.
//
// Each strategy is pure: given the same input bytes it always yields the
// same sequence in the same order, and it never mutates the slice it was
// given.
package mutate

import "github.com/fizil/fizil/internal/fuzzcase"

// Strategy builds a Stage from one example's bytes. Calling it twice on the
// same input must produce an equivalent (not necessarily comparable, since
// Cases is a function value) Stage.
type Strategy func(data []byte) fuzzcase.Stage

// UseOriginal yields the example's bytes unchanged, exactly once. It always
// runs first in the pipeline so a target gets at least one execution against
// untouched input before any mutation stage begins.
func UseOriginal(data []byte) fuzzcase.Stage {
	return fuzzcase.Stage{
		Name:  "use_original",
		Count: fuzzcase.Count{N: 1},
		Cases: func(yield func([]byte) bool) {
			yield(append([]byte(nil), data...))
		},
	}
}
