// Package pipeline assembles the ordered mutation strategies (§4.1) and
// flat-maps them over every example and the loaded dictionary into a single
// lazy stream of test cases (§4.2).
package pipeline

import (
	"iter"

	"github.com/fizil/fizil/internal/corpus"
	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/mutate"
)

// Strategies returns the fixed, ordered list of mutation strategies: useOriginal
// first, then bit/byte flips, then arithmetic, then interesting values, and
// finally — only if dict is non-empty — the two dictionary stages.
func Strategies(dict [][]byte) []mutate.Strategy {
	strategies := []mutate.Strategy{
		mutate.UseOriginal,
		mutate.BitFlip(1), mutate.BitFlip(2), mutate.BitFlip(4),
		mutate.ByteFlip(1), mutate.ByteFlip(2), mutate.ByteFlip(4),
		mutate.Arith(1), mutate.Arith(2), mutate.Arith(4),
		mutate.Interest(1), mutate.Interest(2), mutate.Interest(4),
	}
	if len(dict) > 0 {
		strategies = append(strategies, mutate.DictionaryOverwrite(dict), mutate.DictionaryInsert(dict))
	}
	return strategies
}

// Run builds the single-pass sequence of TestCase values produced by running
// every strategy, in order, over every example, in order. The first case for
// each example is always its unmodified bytes (the useOriginal stage),
// tagged with that example's SourceFile; every other case is a mutation with
// no SourceFile, per §3's rule that crashes of unmutated seeds are never
// persisted as findings.
func Run(examples []corpus.Example, dict [][]byte) iter.Seq[fuzzcase.TestCase] {
	strategies := Strategies(dict)

	return func(yield func(fuzzcase.TestCase) bool) {
		for _, ex := range examples {
			for _, strategy := range strategies {
				stage := strategy(ex.Data)
				sourceFile := ""
				if stage.Name == "use_original" {
					sourceFile = ex.SourceFile
				}

				stop := false
				stage.Cases(func(data []byte) bool {
					tc := fuzzcase.TestCase{
						Data:          data,
						FileExtension: ex.FileExtension,
						SourceFile:    sourceFile,
						Stage:         stage.Name,
					}
					if !yield(tc) {
						stop = true
						return false
					}
					return true
				})
				if stop {
					return
				}
			}
		}
	}
}

// Total estimates the number of test cases Run will yield for the given
// examples and dictionary, for progress reporting. It is an upper bound:
// pruning inside arith/interest stages may cause the actual stream to be
// shorter.
func Total(examples []corpus.Example, dict [][]byte) int {
	strategies := Strategies(dict)
	total := 0
	for _, ex := range examples {
		for _, strategy := range strategies {
			stage := strategy(ex.Data)
			total += stage.Count.N
		}
	}
	return total
}
