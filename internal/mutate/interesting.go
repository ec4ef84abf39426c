package mutate

// interesting8/16/32 are the classic boundary-value lists used by the
// interest stages: values that commonly trip sign-extension, off-by-one and
// overflow bugs. Wider widths extend the 8-bit list with their own
// boundary values rather than replacing it.
var (
	interesting8 = []int32{-128, -1, 0, 1, 16, 32, 64, 100, 127}

	interesting16 = []int32{-32768, -129, 128, 255, 256, 512, 1000, 1024, 4096, 32767}

	interesting32 = []int32{-2147483648, -100663046, -32769, 32768, 65535, 65536, 100663045, 2147483647}
)

// interestingValues returns the combined interesting-value list for a width,
// as unsigned values already reduced modulo the width's range.
func interestingValues(widthBytes int) []uint32 {
	var signed []int32
	switch widthBytes {
	case 1:
		signed = interesting8
	case 2:
		signed = append(append([]int32{}, interesting8...), interesting16...)
	default:
		signed = append(append(append([]int32{}, interesting8...), interesting16...), interesting32...)
	}

	mod := int64(widthMax(widthBytes)) + 1
	out := make([]uint32, 0, len(signed))
	for _, s := range signed {
		v := int64(s) % mod
		if v < 0 {
			v += mod
		}
		out = append(out, uint32(v))
	}
	return out
}
