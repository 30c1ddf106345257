// Package gid implements the Global ID (C2) codec: the variable-length
// encoding described in spec.md §4.1, generalized from
// protocol/thrift/binary.go's style of packing several small integer fields
// into a fixed byte layout (WriteFieldBegin, WriteMapBegin, ...).
package gid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iconidentify/fdocodec/ferr"
)

// GID is a Global ID in either 2-part (T-I) or 3-part (T-S-I) form.
type GID struct {
	threePart bool
	typ       uint8
	subtype   uint8 // meaningful only when threePart
	id        uint16
}

// TwoPart builds a 2-tuple (type, id) GID.
func TwoPart(typ uint8, id uint16) GID {
	return GID{threePart: false, typ: typ, id: id}
}

// ThreePart builds a 3-tuple (type, subtype, id) GID.
func ThreePart(typ, subtype uint8, id uint16) GID {
	return GID{threePart: true, typ: typ, subtype: subtype, id: id}
}

// IsThreePart reports whether g was constructed in 3-part form.
func (g GID) IsThreePart() bool { return g.threePart }

// Type returns the GID's type component.
func (g GID) Type() uint8 { return g.typ }

// Subtype returns the GID's subtype component; only meaningful when
// IsThreePart is true.
func (g GID) Subtype() uint8 { return g.subtype }

// ID returns the GID's id component.
func (g GID) ID() uint16 { return g.id }

// String renders the GID's literal textual shape: "T-I" for 2-part,
// "T-S-I" for 3-part. This is the shape-preserving form used for re-parsing;
// see DisplayString for the decode-time cosmetic collapse described in
// spec.md §4.1.
func (g GID) String() string {
	if !g.threePart {
		return fmt.Sprintf("%d-%d", g.typ, g.id)
	}
	return fmt.Sprintf("%d-%d-%d", g.typ, g.subtype, g.id)
}

// DisplayString applies spec.md §4.1's decode-time rendering rule: a 3-part
// GID with subtype 0 renders as "T-I", not "T-0-I". Internal shape (and
// therefore re-encoding) is unaffected; this only changes how the decompiler
// prints it.
func (g GID) DisplayString() string {
	if g.threePart && g.subtype == 0 {
		return fmt.Sprintf("%d-%d", g.typ, g.id)
	}
	return g.String()
}

// Parse reads a literal "T-I" or "T-S-I" textual GID.
func Parse(s string) (GID, error) {
	parts := strings.Split(s, "-")
	nums := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return GID{}, ferr.Newf(ferr.BadGidFormat, "invalid GID component %q in %q", p, s)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 2:
		if nums[0] > 255 || nums[1] > 65535 {
			return GID{}, ferr.Newf(ferr.BadGidFormat, "GID %q out of range", s)
		}
		return TwoPart(uint8(nums[0]), uint16(nums[1])), nil
	case 3:
		if nums[0] > 255 || nums[1] > 255 || nums[2] > 65535 {
			return GID{}, ferr.Newf(ferr.BadGidFormat, "GID %q out of range", s)
		}
		return ThreePart(uint8(nums[0]), uint8(nums[1]), uint16(nums[2])), nil
	default:
		return GID{}, ferr.Newf(ferr.BadGidFormat, "GID %q must have 2 or 3 components", s)
	}
}

// Encode produces the wire bytes for g per spec.md §4.1's four encode rules.
func Encode(g GID) []byte {
	if !g.threePart {
		// 2-part (T, I): always 3 bytes.
		return []byte{g.typ, byte(g.id >> 8), byte(g.id)}
	}
	if g.typ == 0 && g.subtype == 0 {
		if g.id <= 255 {
			return []byte{byte(g.id)}
		}
		return []byte{byte(g.id >> 8), byte(g.id)}
	}
	if g.typ == 0 {
		// subtype byte, no type byte
		return []byte{g.subtype, byte(g.id >> 8), byte(g.id)}
	}
	return []byte{g.typ, g.subtype, byte(g.id >> 8), byte(g.id)}
}

// Form disambiguates the one context-dependent decode shape described in
// spec.md §4.1: a 3-byte blob is either a 2-part (T, I) GID, or a 3-part
// GID with T=0 and subtype>0. The caller picks which; the arg package's GID
// type default always passes ThreeByteAsTwoPart.
type Form uint8

const (
	// ThreeByteAsTwoPart decodes a 3-byte blob as 2-part (T, I).
	ThreeByteAsTwoPart Form = iota
	// ThreeByteAsSubtype decodes a 3-byte blob as 3-part (0, S, I).
	ThreeByteAsSubtype
)

// Decode decodes the GID occupying the entirety of b; b must contain
// exactly the bytes belonging to this GID (callers slice out the argument's
// payload before calling, since frame/atom boundaries are already known).
// It returns the decoded GID and the number of bytes consumed (== len(b)
// on success).
func Decode(b []byte, form Form) (GID, int, error) {
	switch len(b) {
	case 1:
		return ThreePart(0, 0, uint16(b[0])), 1, nil
	case 2:
		return ThreePart(0, 0, uint16(b[0])<<8|uint16(b[1])), 2, nil
	case 3:
		id := uint16(b[1])<<8 | uint16(b[2])
		if form == ThreeByteAsTwoPart {
			return TwoPart(b[0], id), 3, nil
		}
		return ThreePart(0, b[0], id), 3, nil
	case 4:
		id := uint16(b[2])<<8 | uint16(b[3])
		return ThreePart(b[0], b[1], id), 4, nil
	default:
		return GID{}, 0, ferr.Newf(ferr.BadGidFormat, "GID blob of length %d has no valid decode shape", len(b))
	}
}
