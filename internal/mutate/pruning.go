package mutate

// couldBeBitflip reports whether new could already be produced by one of the
// bitFlip or byteFlip stages applied to old, so that arith and interest
// stages can skip emitting a duplicate test case.
//
// This mirrors the classic bitflip-dedup check: find the lowest set bit of
// the xor delta, shift it out, and see if what's left is a short run of set
// bits (1, 3 or 15) that bitFlip(1/2/4) could produce at any bit offset, or,
// when the shift landed on a byte boundary, a run of whole bytes (0xff,
// 0xffff, 0xffffffff) that byteFlip(1/2/4) could produce.
func couldBeBitflip(old, new uint32) bool {
	xorVal := old ^ new
	if xorVal == 0 {
		return false
	}

	sh := 0
	for xorVal&1 == 0 {
		sh++
		xorVal >>= 1
	}

	if xorVal == 1 || xorVal == 3 || xorVal == 15 {
		return true
	}

	if sh%8 != 0 {
		return false
	}

	return xorVal == 0xff || xorVal == 0xffff || xorVal == 0xffffffff
}

// arithMax bounds the magnitude of deltas tried by the arith stages, matching
// the classic ARITH_MAX constant.
const arithMax = 35

// couldBeArith reports whether new is reachable from old by adding or
// subtracting some delta with 1 <= |delta| <= arithMax, at the given byte
// width. For widths greater than one byte, the check is also tried against
// the byte-swapped representation of both values, since the arith stage
// mutates multi-byte words in both native and swapped byte order.
func couldBeArith(old, new uint32, widthBytes int) bool {
	max := widthMax(widthBytes)
	if old > max || new > max {
		return false
	}

	if deltaWithinArithRange(old, new, widthBytes) {
		return true
	}

	if widthBytes > 1 {
		os := byteSwap(old, widthBytes)
		ns := byteSwap(new, widthBytes)
		if deltaWithinArithRange(os, ns, widthBytes) {
			return true
		}
	}

	return false
}

func deltaWithinArithRange(old, new uint32, widthBytes int) bool {
	mod := int64(widthMax(widthBytes)) + 1
	d := int64(new) - int64(old)
	for _, cand := range [3]int64{d, d + mod, d - mod} {
		if cand == 0 {
			continue
		}
		if abs64(cand) <= arithMax {
			return true
		}
	}
	return false
}

// couldBeInterest reports whether new is one of the known "interesting"
// values for the given width, optionally also checking the byte-swapped
// representation (checkLE mirrors the classic stage trying both byte
// orders for width > 1).
func couldBeInterest(new uint32, widthBytes int, checkLE bool) bool {
	list := interestingValues(widthBytes)
	for _, v := range list {
		if v == new {
			return true
		}
	}
	if checkLE && widthBytes > 1 {
		swapped := byteSwap(new, widthBytes)
		for _, v := range list {
			if v == swapped {
				return true
			}
		}
	}
	return false
}

func widthMax(widthBytes int) uint32 {
	if widthBytes >= 4 {
		return 0xffffffff
	}
	return (uint32(1) << (8 * widthBytes)) - 1
}

func byteSwap(v uint32, widthBytes int) uint32 {
	switch widthBytes {
	case 2:
		return ((v & 0xff) << 8) | ((v >> 8) & 0xff)
	case 4:
		return ((v & 0xff) << 24) | ((v & 0xff00) << 8) | ((v >> 8) & 0xff00) | ((v >> 24) & 0xff)
	default:
		return v
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
