package mutate

import "encoding/binary"

// flipBit toggles bit index n of data, counting bit 0 as the least
// significant bit of data[0].
func flipBit(data []byte, n int) {
	data[n>>3] ^= 1 << uint(n&7)
}

// readWidth reads a little-endian unsigned integer of widthBytes length
// starting at offset i.
func readWidth(data []byte, i, widthBytes int) uint32 {
	switch widthBytes {
	case 1:
		return uint32(data[i])
	case 2:
		return uint32(binary.LittleEndian.Uint16(data[i : i+2]))
	default:
		return binary.LittleEndian.Uint32(data[i : i+4])
	}
}

// writeWidth writes v back into data at offset i as a little-endian integer
// of widthBytes length.
func writeWidth(data []byte, i, widthBytes int, v uint32) {
	switch widthBytes {
	case 1:
		data[i] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(data[i:i+2], uint16(v))
	default:
		binary.LittleEndian.PutUint32(data[i:i+4], v)
	}
}
