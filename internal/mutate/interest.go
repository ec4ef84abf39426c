package mutate

import (
	"fmt"

	"github.com/fizil/fizil/internal/fuzzcase"
)

// Interest returns the stage that substitutes known boundary values (0,
// -1, INT_MAX-style constants, etc.) into every widthBytes-wide integer
// window of the input. Candidates already reachable by a bitflip, byteflip
// or arith stage are skipped.
func Interest(widthBytes int) Strategy {
	name := fmt.Sprintf("interest%d", widthBytes*8)
	list := interestingValues(widthBytes)
	return func(data []byte) fuzzcase.Stage {
		positions := 0
		if len(data) >= widthBytes {
			positions = len(data) - widthBytes + 1
		}
		return fuzzcase.Stage{
			Name:  name,
			Count: fuzzcase.Count{N: positions * len(list)},
			Cases: func(yield func([]byte) bool) {
				for i := 0; i+widthBytes <= len(data); i++ {
					old := readWidth(data, i, widthBytes)
					for _, v := range list {
						if v == old {
							continue
						}
						if couldBeBitflip(old, v) {
							continue
						}
						if couldBeArith(old, v, widthBytes) {
							continue
						}
						out := append([]byte(nil), data...)
						writeWidth(out, i, widthBytes, v)
						if !yield(out) {
							return
						}
					}
				}
			},
		}
	}
}
