// Package frame implements the bit-packed frame encoder and decoder (C4/C5):
// packing and unpacking (protocol, atom_number, payload) atoms into one of
// six wire styles, choosing the most compact, in the style of
// protocol/ttheader's header encode/decode pair (fixed fields packed ahead
// of a variable payload, symmetric encode/decode functions sharing the same
// field layout constants).
package frame

import "github.com/iconidentify/fdocodec/ferr"

// style is the 3-bit code occupying the top bits of a frame's first byte.
type style uint8

const (
	styleFull   style = 0
	styleLength style = 1
	styleData   style = 2
	styleAtom   style = 3
	// 4 is unused.
	styleZero style = 5
	styleOne  style = 6
	// 7 is unused.
)

// protoEscape is the low-5-bits sentinel meaning "protocol is out of [0,30]
// range; read an explicit following byte for the true value". Protocols in
// this codec run [0,127], two bits wider than the 5 bits FULL/DATA/LENGTH
// style headers set aside for the common case, so values at or above the
// sentinel (31 included) spill into an extra byte.
const protoEscape = 0x1F

func packStyleProto(s style, protocol uint8) []byte {
	if protocol < protoEscape {
		return []byte{byte(s)<<5 | protocol}
	}
	return []byte{byte(s)<<5 | protoEscape, protocol}
}

// encodeLength renders n using the frame length field's high-bit-variable
// form (spec.md §4.4, §9): a single byte for n in [0,127], or two bytes
// otherwise with the first byte's high bit set as the "two-byte" flag and
// its low 7 bits holding the upper bits of n. This is deliberately distinct
// from frameio's UNI_START_LARGE_ATOM length, which spec.md §4.5/§9 calls
// out as a plain, unflagged 16-bit big-endian value instead.
func encodeLength(n int) ([]byte, error) {
	if n < 0 || n > 0x7FFF {
		return nil, ferr.Newf(ferr.ValueTooLarge, "frame length %d out of [0,32767]", n)
	}
	if n <= 0x7F {
		return []byte{byte(n)}, nil
	}
	return []byte{byte(n>>8) | 0x80, byte(n)}, nil
}

