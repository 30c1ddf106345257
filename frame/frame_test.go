package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeUniStartStreamPrefersAtomStyle(t *testing.T) {
	// spec.md §8 scenario 2: uni_start_stream alone encodes as either
	// [0x00,0x01,0x00] (FULL) or [0x61] (ATOM); the minimizing encoder
	// picks the shorter ATOM form.
	got, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 1})
	require.NoError(t, err)
	require.Equal(t, []byte{0x61}, got)

	f, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, AtomFrame{Protocol: 0, AtomNumber: 1}, f)
}

func TestEncodeZeroAndOneStyles(t *testing.T) {
	zero, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 9, Payload: []byte{0x00}})
	require.NoError(t, err)
	require.Equal(t, []byte{byte(styleZero)<<5 | 9}, zero)

	one, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 9, Payload: []byte{0x01}})
	require.NoError(t, err)
	require.Equal(t, []byte{byte(styleOne)<<5 | 9}, one)
}

func TestEncodeDataStyleSmallPayload(t *testing.T) {
	got, err := Encode(AtomFrame{Protocol: 3, AtomNumber: 5, Payload: []byte{6}})
	require.NoError(t, err)
	require.Equal(t, 2, len(got))

	f, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, AtomFrame{Protocol: 3, AtomNumber: 5, Payload: []byte{6}}, f)
}

func TestEncodeLengthStyleShortPayload(t *testing.T) {
	payload := []byte{1, 2, 3}
	got, err := Encode(AtomFrame{Protocol: 2, AtomNumber: 7, Payload: payload})
	require.NoError(t, err)
	require.Equal(t, 5, len(got)) // 2-byte header + 3 payload bytes

	f, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, AtomFrame{Protocol: 2, AtomNumber: 7, Payload: payload}, f)
}

func TestEncodeFallsBackToFullForLargeAtomNumber(t *testing.T) {
	f := AtomFrame{Protocol: 0, AtomNumber: 200, Payload: []byte("hello")}
	got, err := Encode(f)
	require.NoError(t, err)

	dec, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, f, dec)
}

func TestEncodeFullStyleWithEscapedProtocol(t *testing.T) {
	// HFS-range protocol (51) exceeds the 5-bit inline field.
	// A payload longer than 7 bytes rules out LENGTH style, leaving FULL.
	f := AtomFrame{Protocol: 51, AtomNumber: 10, Payload: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	got, err := Encode(f)
	require.NoError(t, err)

	dec, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, f, dec)
}

func TestEncodeLongPayloadUsesTwoByteLength(t *testing.T) {
	payload := make([]byte, 200)
	for i := range payload {
		payload[i] = byte(i)
	}
	f := AtomFrame{Protocol: 2, AtomNumber: 4, Payload: payload}
	got, err := Encode(f)
	require.NoError(t, err)

	dec, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, f, dec)
}

func TestNestedSubstreamSplice(t *testing.T) {
	// spec.md §8 scenario 3's structural shape: an atom whose payload is
	// itself two encoded empty-payload frames.
	inner1, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 1})
	require.NoError(t, err)
	inner2, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 2})
	require.NoError(t, err)
	innerPayload := append(append([]byte{}, inner1...), inner2...)

	outer := AtomFrame{Protocol: 2, AtomNumber: 4, Payload: innerPayload}
	got, err := Encode(outer)
	require.NoError(t, err)

	dec, n, err := Decode(got)
	require.NoError(t, err)
	require.Equal(t, len(got), n)
	require.Equal(t, outer, dec)

	frames, err := DecodeAll(dec.Payload)
	require.NoError(t, err)
	require.Equal(t, []AtomFrame{
		{Protocol: 0, AtomNumber: 1},
		{Protocol: 0, AtomNumber: 2},
	}, frames)
}

func TestDecodeAllSequence(t *testing.T) {
	start, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 1})
	require.NoError(t, err)
	end, err := Encode(AtomFrame{Protocol: 0, AtomNumber: 2})
	require.NoError(t, err)

	buf := append(append([]byte{}, start...), end...)
	frames, err := DecodeAll(buf)
	require.NoError(t, err)
	require.Equal(t, []AtomFrame{
		{Protocol: 0, AtomNumber: 1},
		{Protocol: 0, AtomNumber: 2},
	}, frames)
}

func TestDecodeRejectsUnknownStyleBits(t *testing.T) {
	// style bits 100 (4) and 111 (7) are reserved/unused.
	_, _, err := Decode([]byte{0x80})
	require.Error(t, err)
	_, _, err = Decode([]byte{0xE0})
	require.Error(t, err)
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	require.Error(t, err)

	full, err := Encode(AtomFrame{Protocol: 2, AtomNumber: 4, Payload: []byte{1, 2, 3}})
	require.NoError(t, err)
	_, _, err = Decode(full[:len(full)-1])
	require.Error(t, err)
}

func TestEncodeRejectsProtocolOutOfRange(t *testing.T) {
	_, err := Encode(AtomFrame{Protocol: 200, AtomNumber: 1})
	require.Error(t, err)
}
