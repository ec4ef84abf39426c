package mutate

import (
	"fmt"

	"github.com/fizil/fizil/internal/fuzzcase"
)

// Arith returns the stage that adds and subtracts small deltas (1 to
// arithMax) from every widthBytes-wide integer window of the input, in both
// native and byte-swapped order. Candidates already reachable by a bitflip
// or byteflip stage are skipped.
func Arith(widthBytes int) Strategy {
	name := fmt.Sprintf("arith%d", widthBytes*8)
	return func(data []byte) fuzzcase.Stage {
		positions := 0
		if len(data) >= widthBytes {
			positions = len(data) - widthBytes + 1
		}
		perPosition := arithMax * 2
		if widthBytes > 1 {
			perPosition *= 2
		}
		return fuzzcase.Stage{
			Name:  name,
			Count: fuzzcase.Count{N: positions * perPosition},
			Cases: func(yield func([]byte) bool) {
				for i := 0; i+widthBytes <= len(data); i++ {
					old := readWidth(data, i, widthBytes)
					for delta := 1; delta <= arithMax; delta++ {
						for _, cand := range arithCandidates(old, delta, widthBytes) {
							if couldBeBitflip(old, cand) {
								continue
							}
							out := append([]byte(nil), data...)
							writeWidth(out, i, widthBytes, cand)
							if !yield(out) {
								return
							}
						}
					}
				}
			},
		}
	}
}

// arithCandidates computes old+delta and old-delta, wrapping within the
// width's range, plus the same two operations performed on the
// byte-swapped representation of old (and swapped back) when widthBytes>1.
func arithCandidates(old uint32, delta, widthBytes int) []uint32 {
	mod := int64(widthMax(widthBytes)) + 1
	add := uint32(((int64(old)+int64(delta))%mod + mod) % mod)
	sub := uint32(((int64(old)-int64(delta))%mod + mod) % mod)
	cands := []uint32{add, sub}

	if widthBytes > 1 {
		swappedOld := int64(byteSwap(old, widthBytes))
		sAdd := byteSwap(uint32(((swappedOld+int64(delta))%mod+mod)%mod), widthBytes)
		sSub := byteSwap(uint32(((swappedOld-int64(delta))%mod+mod)%mod), widthBytes)
		cands = append(cands, sAdd, sSub)
	}

	return cands
}
