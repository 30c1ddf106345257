package frame

import (
	"github.com/iconidentify/fdocodec/bytesio"
	"github.com/iconidentify/fdocodec/ferr"
)

// AtomFrame is one (protocol, atom_number, payload) unit as it sits on the
// wire, before any interpretation of its payload as arguments.
type AtomFrame struct {
	Protocol   uint8
	AtomNumber uint8
	Payload    []byte
}

// Encode renders f using whichever of the six styles produces the fewest
// bytes. The applicable candidates never tie in length, so no tie-break
// rule comes into play.
func Encode(f AtomFrame) ([]byte, error) {
	if f.Protocol > 127 {
		return nil, ferr.Newf(ferr.BadArgumentFormat, "frame protocol %d out of [0,127]", f.Protocol)
	}

	best := encodeFull(f)
	if f.AtomNumber <= 31 {
		// ATOM/ZERO/ONE carry no protocol field and Decode reads them back
		// as protocol 0, so they are candidates only for protocol 0.
		if f.Protocol == 0 && len(f.Payload) == 0 {
			cand := []byte{byte(styleAtom)<<5 | f.AtomNumber}
			best = shorter(best, cand)
		}
		if f.Protocol == 0 && len(f.Payload) == 1 && f.Payload[0] == 0x00 {
			cand := []byte{byte(styleZero)<<5 | f.AtomNumber}
			best = shorter(best, cand)
		}
		if f.Protocol == 0 && len(f.Payload) == 1 && f.Payload[0] == 0x01 {
			cand := []byte{byte(styleOne)<<5 | f.AtomNumber}
			best = shorter(best, cand)
		}
		if len(f.Payload) == 1 && f.Payload[0] <= 7 {
			cand := append(packStyleProto(styleData, f.Protocol), f.Payload[0]<<5|f.AtomNumber)
			best = shorter(best, cand)
		}
		if len(f.Payload) <= 7 {
			head := packStyleProto(styleLength, f.Protocol)
			cand := append(append(head, byte(len(f.Payload))<<5|f.AtomNumber), f.Payload...)
			best = shorter(best, cand)
		}
	}
	return best, nil
}

func encodeFull(f AtomFrame) []byte {
	head := packStyleProto(styleFull, f.Protocol)
	lenBytes, err := encodeLength(len(f.Payload))
	if err != nil {
		// Callers never hit this: a single atom's payload is bounded by
		// max_frame_size well under the 32767 ceiling, and unsplit large
		// atoms never reach Encode directly (see frameio).
		lenBytes = []byte{0}
	}
	out := make([]byte, 0, len(head)+1+len(lenBytes)+len(f.Payload))
	out = append(out, head...)
	out = append(out, f.AtomNumber)
	out = append(out, lenBytes...)
	out = append(out, f.Payload...)
	return out
}

// shorter returns whichever of a, b is shorter, keeping a (the candidate
// chosen so far) on a tie.
func shorter(a, b []byte) []byte {
	if len(b) < len(a) {
		return b
	}
	return a
}

// Decode reads exactly one frame from the front of buf and reports how many
// bytes it consumed.
func Decode(buf []byte) (AtomFrame, int, error) {
	r := bytesio.NewReader(buf)
	b0, err := r.ReadByte()
	if err != nil {
		return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
	}
	s := style(b0 >> 5)
	low5 := b0 & 0x1F

	switch s {
	case styleAtom:
		return AtomFrame{Protocol: 0, AtomNumber: low5}, r.Pos(), nil
	case styleZero:
		return AtomFrame{Protocol: 0, AtomNumber: low5, Payload: []byte{0x00}}, r.Pos(), nil
	case styleOne:
		return AtomFrame{Protocol: 0, AtomNumber: low5, Payload: []byte{0x01}}, r.Pos(), nil
	case styleData:
		proto, err := finishProto(r, low5)
		if err != nil {
			return AtomFrame{}, 0, err
		}
		b1, err := r.ReadByte()
		if err != nil {
			return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
		}
		return AtomFrame{Protocol: proto, AtomNumber: b1 & 0x1F, Payload: []byte{b1 >> 5}}, r.Pos(), nil
	case styleLength:
		proto, err := finishProto(r, low5)
		if err != nil {
			return AtomFrame{}, 0, err
		}
		b1, err := r.ReadByte()
		if err != nil {
			return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
		}
		n := int(b1 >> 5)
		payload, err := r.Next(n)
		if err != nil {
			return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
		}
		out := make([]byte, n)
		copy(out, payload)
		return AtomFrame{Protocol: proto, AtomNumber: b1 & 0x1F, Payload: out}, r.Pos(), nil
	case styleFull:
		proto, err := finishProto(r, low5)
		if err != nil {
			return AtomFrame{}, 0, err
		}
		atomNum, err := r.ReadByte()
		if err != nil {
			return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
		}
		n, err := decodeLength(r)
		if err != nil {
			return AtomFrame{}, 0, err
		}
		payload, err := r.Next(n)
		if err != nil {
			return AtomFrame{}, 0, ferr.Wrap(ferr.UnexpectedEof, err)
		}
		out := make([]byte, n)
		copy(out, payload)
		return AtomFrame{Protocol: proto, AtomNumber: atomNum, Payload: out}, r.Pos(), nil
	default:
		return AtomFrame{}, 0, ferr.Newf(ferr.InvalidBinaryFormat, "unrecognized frame style bits %03b", s)
	}
}

// finishProto completes protocol decoding given the already-read first
// byte's low 5 bits, consuming the escape continuation byte if present.
func finishProto(r *bytesio.Reader, low5 byte) (uint8, error) {
	if low5 != protoEscape {
		return low5, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return 0, ferr.Wrap(ferr.UnexpectedEof, err)
	}
	return b, nil
}

func decodeLength(r *bytesio.Reader) (int, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, ferr.Wrap(ferr.UnexpectedEof, err)
	}
	if b0&0x80 == 0 {
		return int(b0), nil
	}
	b1, err := r.ReadByte()
	if err != nil {
		return 0, ferr.Wrap(ferr.UnexpectedEof, err)
	}
	return int(b0&0x7F)<<8 | int(b1), nil
}

// DecodeAll decodes every frame packed back-to-back in buf, in order.
func DecodeAll(buf []byte) ([]AtomFrame, error) {
	var out []AtomFrame
	for len(buf) > 0 {
		f, n, err := Decode(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		buf = buf[n:]
	}
	return out, nil
}
