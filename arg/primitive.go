package arg

import (
	"strconv"
	"strings"

	"github.com/iconidentify/fdocodec/ferr"
)

// trimmedBE renders v as the minimum number of big-endian bytes (1-4) that
// represent its magnitude; zero renders as a single zero byte (spec §4.3.1).
func trimmedBE(v uint32) []byte {
	switch {
	case v == 0:
		return []byte{0}
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return []byte{byte(v >> 8), byte(v)}
	case v <= 0xFFFFFF:
		return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
}

// trimmedLE is trimmedBE's little-endian counterpart, used exclusively by
// BUF protocol numeric arguments.
func trimmedLE(v uint32) []byte {
	b := trimmedBE(v)
	out := make([]byte, len(b))
	for i, x := range b {
		out[len(b)-1-i] = x
	}
	return out
}

// fixed4BE always renders v as 4 big-endian bytes.
func fixed4BE(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// word2BE clamps v to unsigned 16 bits and renders it as 2 big-endian bytes.
func word2BE(v uint32) []byte {
	if v > 0xFFFF {
		v = 0xFFFF
	}
	return []byte{byte(v >> 8), byte(v)}
}

// unescapeString processes the C-like escapes spec §4.3.1 names
// (\n \r \t \\ \" and \xHH) and returns the UTF-8 bytes to place on the wire.
func unescapeString(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		case 'x':
			if i+2 >= len(s) {
				return nil, ferr.Newf(ferr.BadStringFormat, "truncated \\x escape in %q", s)
			}
			b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, ferr.Newf(ferr.BadStringFormat, "invalid \\x escape in %q", s)
			}
			out = append(out, byte(b))
			i += 2
		default:
			return nil, ferr.Newf(ferr.BadStringFormat, "unrecognized escape \\%c in %q", s[i], s)
		}
	}
	return out, nil
}

// parseHex decodes a "XXx" or bare "XX" hex literal into raw bytes.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSuffix(s, "x")
	s = strings.TrimSuffix(s, "X")
	if len(s)%2 != 0 {
		return nil, ferr.Newf(ferr.BadNumberFormat, "hex literal %q has odd digit count", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		b, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, ferr.Newf(ferr.BadNumberFormat, "invalid hex literal %q", s)
		}
		out[i] = byte(b)
	}
	return out, nil
}
