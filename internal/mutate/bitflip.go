package mutate

import (
	"fmt"

	"github.com/fizil/fizil/internal/fuzzcase"
)

// BitFlip returns the stage that flips width consecutive bits (width is 1,
// 2 or 4) at every bit offset in the input, one mutation per offset.
func BitFlip(width int) Strategy {
	name := fmt.Sprintf("bitflip/%d", width)
	return func(data []byte) fuzzcase.Stage {
		total := len(data)*8 - (width - 1)
		if total < 0 {
			total = 0
		}
		return fuzzcase.Stage{
			Name:  name,
			Count: fuzzcase.Count{N: total},
			Cases: func(yield func([]byte) bool) {
				for i := 0; i < total; i++ {
					out := append([]byte(nil), data...)
					for b := 0; b < width; b++ {
						flipBit(out, i+b)
					}
					if !yield(out) {
						return
					}
				}
			},
		}
	}
}

// ByteFlip returns the stage that inverts width consecutive bytes (width is
// 1, 2 or 4) at every byte offset in the input, one mutation per offset.
func ByteFlip(width int) Strategy {
	name := fmt.Sprintf("byteflip/%d", width)
	return func(data []byte) fuzzcase.Stage {
		total := len(data) - width + 1
		if total < 0 {
			total = 0
		}
		return fuzzcase.Stage{
			Name:  name,
			Count: fuzzcase.Count{N: total},
			Cases: func(yield func([]byte) bool) {
				for i := 0; i < total; i++ {
					out := append([]byte(nil), data...)
					for b := 0; b < width; b++ {
						out[i+b] ^= 0xff
					}
					if !yield(out) {
						return
					}
				}
			},
		}
	}
}
