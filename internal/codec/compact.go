package codec

import "fmt"

// Compact integer encoding for length prefixes: the two low bits of the
// first byte select the width (0 = single byte, 1 = two bytes, 2 = four
// bytes), remaining bits carry the value shifted left by two.

// appendCompact appends the compact encoding of v.
func appendCompact(buf []byte, v uint32) []byte {
	switch {
	case v < 1<<6:
		return append(buf, byte(v<<2))
	case v < 1<<14:
		n := v<<2 | 1
		return append(buf, byte(n), byte(n>>8))
	case v < 1<<30:
		n := v<<2 | 2
		return append(buf, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	default:
		// Four-byte big-value mode: marker byte then the full u32.
		return append(buf, 3, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
}

// readCompact decodes a compact integer and returns the value and the
// number of bytes consumed.
func readCompact(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, fmt.Errorf("compact: empty input")
	}
	switch buf[0] & 0b11 {
	case 0:
		return uint32(buf[0]) >> 2, 1, nil
	case 1:
		if len(buf) < 2 {
			return 0, 0, fmt.Errorf("compact: truncated two-byte value")
		}
		return (uint32(buf[0]) | uint32(buf[1])<<8) >> 2, 2, nil
	case 2:
		if len(buf) < 4 {
			return 0, 0, fmt.Errorf("compact: truncated four-byte value")
		}
		n := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		return n >> 2, 4, nil
	default:
		if len(buf) < 5 {
			return 0, 0, fmt.Errorf("compact: truncated big value")
		}
		n := uint32(buf[1]) | uint32(buf[2])<<8 | uint32(buf[3])<<16 | uint32(buf[4])<<24
		return n, 5, nil
	}
}
