// Package frameio implements the frame-aware encoder (C6): it packs a
// sequence of atoms into size-bounded wire frames, splitting any atom whose
// encoding alone exceeds the limit into a UNI_START/SEGMENT/END_LARGE_ATOM
// continuation sequence (spec.md §4.5). Each atom is fully encoded and
// measured before it is packed into the current frame or split; buffers
// handed off mid-split are borrowed from
// bytedance/gopkg/lang/mcache the way bufiox.DefaultReader.acquire borrows
// its read buffer, and returned once frame.Encode has copied out of them.
package frameio

import (
	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/iconidentify/fdocodec/ferr"
	"github.com/iconidentify/fdocodec/frame"
)

const (
	uniProtocol         = 0
	uniStartLargeAtom   = 4
	uniLargeAtomSegment = 5
	uniEndLargeAtom     = 6

	// continuationOverhead approximates a FULL-style frame's non-payload
	// bytes (style+protocol, atom_number, length field) for sizing
	// UNI_LARGE_ATOM_SEGMENT chunks; spec.md §4.5 calls this "overhead ≈ 4".
	continuationOverhead = 4
)

// Sink receives each flushed wire frame in production order. index is
// monotonically increasing from 0; isLast is true only on the final call.
type Sink func(frameBytes []byte, index int, isLast bool)

// Encoder packs AtomFrames into wire frames no larger than MaxFrameSize,
// splitting any single atom that can't fit on its own.
type Encoder struct {
	MaxFrameSize int
}

// NewEncoder validates max_frame_size (spec.md §4.5 requires ≥4) and
// returns a ready Encoder.
func NewEncoder(maxFrameSize int) (*Encoder, error) {
	if maxFrameSize < 4 {
		return nil, ferr.Newf(ferr.BadArgumentFormat, "max_frame_size %d below minimum of 4", maxFrameSize)
	}
	return &Encoder{MaxFrameSize: maxFrameSize}, nil
}

// EncodeAtoms greedily packs atoms into frames, calling sink once per
// flushed frame in order. An atom whose FULL-or-smaller encoding exceeds
// MaxFrameSize is split into a large-atom sequence instead of being packed.
func (e *Encoder) EncodeAtoms(atoms []frame.AtomFrame, sink Sink) error {
	frames, err := e.buildFrames(atoms)
	if err != nil {
		return err
	}
	for i, fb := range frames {
		sink(fb, i, i == len(frames)-1)
	}
	return nil
}

func (e *Encoder) buildFrames(atoms []frame.AtomFrame) ([][]byte, error) {
	var frames [][]byte
	var cur []byte

	flush := func() {
		frames = append(frames, cur)
		cur = nil
	}

	for _, af := range atoms {
		enc, err := frame.Encode(af)
		if err != nil {
			return nil, err
		}

		if len(enc) > e.MaxFrameSize {
			if len(cur) > 0 {
				flush()
			}
			split, err := splitLargeAtom(af, e.MaxFrameSize)
			if err != nil {
				return nil, err
			}
			frames = append(frames, split...)
			continue
		}

		if len(cur)+len(enc) > e.MaxFrameSize {
			flush()
		}
		cur = append(cur, enc...)
	}

	// A trailing empty buffer is only a real frame when nothing else has
	// been produced yet (the empty-stream case, §8 scenario 1); otherwise
	// it's just the reset state left behind by a split that ended the loop.
	if len(cur) > 0 || len(frames) == 0 {
		frames = append(frames, cur)
	}
	return frames, nil
}

// splitLargeAtom renders af as a UNI_START_LARGE_ATOM, zero or more
// UNI_LARGE_ATOM_SEGMENTs, and a UNI_END_LARGE_ATOM, per spec.md §4.5.
func splitLargeAtom(af frame.AtomFrame, maxFrameSize int) ([][]byte, error) {
	total := len(af.Payload)

	var lenBytes []byte
	switch {
	case total <= 0x7F:
		lenBytes = []byte{byte(total)}
	case total <= 0xFFFF:
		// Plain 16-bit big-endian, unlike the frame length field's
		// high-bit-variable form (spec.md §9's large-atom quirk note).
		lenBytes = []byte{byte(total >> 8), byte(total)}
	default:
		return nil, ferr.Newf(ferr.ValueTooLarge, "large atom payload of %d bytes exceeds the 16-bit length limit", total)
	}

	startPayload := make([]byte, 0, 2+len(lenBytes))
	startPayload = append(startPayload, af.Protocol, af.AtomNumber)
	startPayload = append(startPayload, lenBytes...)
	startBytes, err := frame.Encode(frame.AtomFrame{
		Protocol:   uniProtocol,
		AtomNumber: uniStartLargeAtom,
		Payload:    startPayload,
	})
	if err != nil {
		return nil, err
	}
	frames := [][]byte{startBytes}

	chunkSize := maxFrameSize - continuationOverhead
	if chunkSize < 1 {
		chunkSize = 1
	}

	remaining := af.Payload
	for len(remaining) > chunkSize {
		scratch := mcache.Malloc(chunkSize)
		copy(scratch, remaining[:chunkSize])
		segBytes, err := frame.Encode(frame.AtomFrame{
			Protocol:   uniProtocol,
			AtomNumber: uniLargeAtomSegment,
			Payload:    scratch,
		})
		mcache.Free(scratch)
		if err != nil {
			return nil, err
		}
		frames = append(frames, segBytes)
		remaining = remaining[chunkSize:]
	}

	endBytes, err := frame.Encode(frame.AtomFrame{
		Protocol:   uniProtocol,
		AtomNumber: uniEndLargeAtom,
		Payload:    remaining,
	})
	if err != nil {
		return nil, err
	}
	frames = append(frames, endBytes)
	return frames, nil
}
