package unii

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// BitPositions returns the ascending 1-based positions of the bits that are
// set in the given big-endian byte sequence, LSB first.
//
// 0x000A => [2, 4]
func BitPositions(data []byte) []int {
	var value uint64
	for _, b := range data {
		value = value<<8 | uint64(b)
	}
	var positions []int
	for i := 0; i < 31; i++ {
		if value&(1<<uint(i)) != 0 {
			positions = append(positions, i+1)
		}
	}
	return positions
}

// BCDEncode packs a numeric string as binary-coded decimal, right-padded
// with zeroes to 8 bytes.
func BCDEncode(digits string) ([]byte, error) {
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("bcd encode: %q is not numeric", digits)
		}
	}
	if len(digits) > 16 {
		return nil, fmt.Errorf("bcd encode: %q exceeds 16 digits", digits)
	}
	padded := digits + strings.Repeat("0", 16-len(digits))
	return hex.DecodeString(padded)
}

// NotApplicable marks a wire input index that falls in a reserved gap of the
// flat input address space.
const NotApplicable = -1

// TranslateInputNumber maps a raw wire input index to its logical input
// number. The wire uses a flat index space with reserved gaps; indices inside
// a gap translate to NotApplicable.
func TranslateInputNumber(index int) int {
	switch {
	case index >= 0 && index <= 511:
		return index + 1 // wired inputs 1..512
	case index >= 512 && index <= 543:
		return index + 189 // keypad inputs 701..732
	case index >= 576 && index <= 639:
		return index + 25 // wireless inputs 601..664
	case index >= 640 && index <= 688:
		return index + 161 // KNX inputs 801..849
	case index >= 706 && index <= 962:
		return index + 295 // door inputs 1001..1257
	}
	return NotApplicable
}

// decodeAndStrip decodes a byte slice as UTF-8 text, stripping surrounding
// whitespace and NUL padding.
func decodeAndStrip(data []byte) string {
	return strings.Trim(string(data), " \t\n\v\f\r\x00")
}
