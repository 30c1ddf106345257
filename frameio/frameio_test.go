package frameio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iconidentify/fdocodec/frame"
)

type capture struct {
	frames  [][]byte
	indexes []int
	lasts   []bool
}

func (c *capture) sink(b []byte, index int, isLast bool) {
	cp := append([]byte{}, b...)
	c.frames = append(c.frames, cp)
	c.indexes = append(c.indexes, index)
	c.lasts = append(c.lasts, isLast)
}

func TestEmptyStreamEmitsOneEmptyLastFrame(t *testing.T) {
	enc, err := NewEncoder(64)
	require.NoError(t, err)

	var c capture
	err = enc.EncodeAtoms(nil, c.sink)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{}}, c.frames)
	require.Equal(t, []bool{true}, c.lasts)
}

func TestSmallAtomsPackIntoOneFrame(t *testing.T) {
	enc, err := NewEncoder(64)
	require.NoError(t, err)

	atoms := []frame.AtomFrame{
		{Protocol: 0, AtomNumber: 1},
		{Protocol: 0, AtomNumber: 2},
	}
	var c capture
	err = enc.EncodeAtoms(atoms, c.sink)
	require.NoError(t, err)
	require.Len(t, c.frames, 1)
	require.True(t, c.lasts[0])

	dec, err := frame.DecodeAll(c.frames[0])
	require.NoError(t, err)
	require.Equal(t, atoms, dec)
}

func TestOverflowingAtomStartsNewFrame(t *testing.T) {
	// Each atom below encodes to 5 bytes (LENGTH style); a max_frame_size
	// of 6 fits one atom per frame but not two, forcing a flush between them.
	enc, err := NewEncoder(6)
	require.NoError(t, err)

	atoms := []frame.AtomFrame{
		{Protocol: 2, AtomNumber: 7, Payload: []byte{1, 2, 3}},
		{Protocol: 2, AtomNumber: 7, Payload: []byte{4, 5, 6}},
	}
	var c capture
	err = enc.EncodeAtoms(atoms, c.sink)
	require.NoError(t, err)
	require.Len(t, c.frames, 2)
	require.Equal(t, []bool{false, true}, c.lasts)

	var got []frame.AtomFrame
	for _, fb := range c.frames {
		fs, err := frame.DecodeAll(fb)
		require.NoError(t, err)
		got = append(got, fs...)
	}
	require.Equal(t, atoms, got)
}

func TestLargeAtomSplitsIntoContinuationSequence(t *testing.T) {
	// spec.md §8 scenario 4: a 300-byte payload on (protocol=27, atom=5)
	// with max_frame_size=119 splits into start/segment(s)/end.
	enc, err := NewEncoder(119)
	require.NoError(t, err)

	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	atoms := []frame.AtomFrame{{Protocol: 27, AtomNumber: 5, Payload: payload}}

	var c capture
	err = enc.EncodeAtoms(atoms, c.sink)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(c.frames), 3) // start + >=1 segment + end
	require.True(t, c.lasts[len(c.lasts)-1])
	for _, last := range c.lasts[:len(c.lasts)-1] {
		require.False(t, last)
	}

	start, _, err := frame.Decode(c.frames[0])
	require.NoError(t, err)
	require.Equal(t, uint8(uniProtocol), start.Protocol)
	require.Equal(t, uint8(uniStartLargeAtom), start.AtomNumber)
	require.Equal(t, []byte{27, 5, 0x01, 0x2C}, start.Payload)

	var reassembled []byte
	for _, fb := range c.frames[1:] {
		f, _, err := frame.Decode(fb)
		require.NoError(t, err)
		require.Equal(t, uint8(uniProtocol), f.Protocol)
		require.Contains(t, []uint8{uniLargeAtomSegment, uniEndLargeAtom}, f.AtomNumber)
		reassembled = append(reassembled, f.Payload...)
	}
	require.Equal(t, payload, reassembled)

	for i, fb := range c.frames {
		require.LessOrEqual(t, len(fb), 119, "frame %d exceeds max_frame_size", i)
	}
}

func TestLargeAtomFollowedByMoreAtomsKeepsGoing(t *testing.T) {
	enc, err := NewEncoder(32)
	require.NoError(t, err)

	big := make([]byte, 100)
	atoms := []frame.AtomFrame{
		{Protocol: 27, AtomNumber: 5, Payload: big},
		{Protocol: 0, AtomNumber: 2},
	}
	var c capture
	err = enc.EncodeAtoms(atoms, c.sink)
	require.NoError(t, err)
	require.True(t, c.lasts[len(c.lasts)-1])

	last, _, err := frame.Decode(c.frames[len(c.frames)-1])
	require.NoError(t, err)
	require.Equal(t, frame.AtomFrame{Protocol: 0, AtomNumber: 2}, last)
}

func TestRejectsMaxFrameSizeBelowMinimum(t *testing.T) {
	_, err := NewEncoder(3)
	require.Error(t, err)
}
