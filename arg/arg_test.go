package arg

import (
	"testing"

	"github.com/iconidentify/fdocodec/catalog"
	fgid "github.com/iconidentify/fdocodec/gid"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	entries := []catalog.AtomDefinition{
		{Protocol: 0, AtomNumber: 1, Name: "uni_start_stream", Type: catalog.RAW},
		{Protocol: 0, AtomNumber: 2, Name: "uni_end_stream", Type: catalog.RAW},
		{Protocol: 0, AtomNumber: 10, Name: "uni_start_typed_data", Type: catalog.RAW},
		{Protocol: 0, AtomNumber: 11, Name: "uni_use_last_atom_string", Type: catalog.ATOM},
		{Protocol: 1, AtomNumber: 1, Name: "man_set_context_relative", Type: catalog.DWORD},
		{Protocol: 2, AtomNumber: 4, Name: "act_replace_select_action", Type: catalog.STREAM},
		{Protocol: 2, AtomNumber: 5, Name: "act_set_criterion", Type: catalog.CRITERION},
		{Protocol: 5, AtomNumber: 1, Name: "obj_create_object", Type: catalog.OBJSTART},
		{Protocol: 5, AtomNumber: 2, Name: "obj_set_orient", Type: catalog.ORIENT},
		{Protocol: 5, AtomNumber: 3, Name: "obj_alert", Type: catalog.ALERT},
		{Protocol: 5, AtomNumber: 4, Name: "obj_set_bool", Type: catalog.BOOL},
		{Protocol: 5, AtomNumber: 5, Name: "obj_set_gid", Type: catalog.GID},
		{Protocol: 5, AtomNumber: 6, Name: "obj_set_string", Type: catalog.STRING},
		{Protocol: 12, AtomNumber: 1, Name: "var_set", Type: catalog.RAW},
		{Protocol: 2, AtomNumber: 6, Name: "act_send_token", Type: catalog.TOKEN},
	}
	c, err := catalog.New(entries)
	require.NoError(t, err)
	return c
}

func TestEncodeDecodeRawHex(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "uni_start_stream", Args: []Node{HexArg{Bytes: []byte{0xAB, 0xCD}}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, "uni_start_stream", got.Atoms[0].Name)
	require.Equal(t, []Node{HexArg{Bytes: []byte{0xAB, 0xCD}}}, got.Atoms[0].Args)
}

func TestEncodeDecodeDword(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "man_set_context_relative", Args: []Node{NumberArg{Value: 42}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 42}, b[len(b)-4:])

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{NumberArg{Value: 42}}, got.Atoms[0].Args)
}

func TestEncodeDecodeBool(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "obj_set_bool", Args: []Node{IdentifierArg{Name: "yes"}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{IdentifierArg{Name: "yes"}}, got.Atoms[0].Args)
}

func TestEncodeDecodeGid(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	g := fgid.TwoPart(32, 105)
	stream := StreamNode{Atoms: []AtomNode{
		{Name: "obj_set_gid", Args: []Node{GidArg{Value: g}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{GidArg{Value: g}}, got.Atoms[0].Args)
}

func TestEncodeDecodeObjStartAndAlert(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "obj_create_object", Args: []Node{ObjectTypeArg{Name: "boolean"}, StringArg{Value: "hi"}}},
		{Name: "obj_alert", Args: []Node{ObjectTypeArg{Name: "warning"}, StringArg{Value: "careful"}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, "boolean", got.Atoms[0].Args[0].(ObjectTypeArg).Name)
	require.Equal(t, "hi", got.Atoms[0].Args[1].(StringArg).Value)
	require.Equal(t, "warning", got.Atoms[1].Args[0].(ObjectTypeArg).Name)
	require.Equal(t, "careful", got.Atoms[1].Args[1].(StringArg).Value)
}

func TestEncodeDecodeCriterionByName(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "act_set_criterion", Args: []Node{IdentifierArg{Name: "destroyed"}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{IdentifierArg{Name: "destroyed"}}, got.Atoms[0].Args)
}

func TestEncodeDecodeAtomReference(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "uni_use_last_atom_string", Args: []Node{IdentifierArg{Name: "uni_end_stream"}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{IdentifierArg{Name: "uni_end_stream"}}, got.Atoms[0].Args)
}

func TestEncodeUnknownAtomRoundTrip(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "the_unknown", Args: []Node{
			NumberArg{Value: 99},
			NumberArg{Value: 7},
			HexArg{Bytes: []byte{1, 2, 3}},
		}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, "the_unknown", got.Atoms[0].Name)
	require.Equal(t, NumberArg{Value: 99}, got.Atoms[0].Args[0])
	require.Equal(t, NumberArg{Value: 7}, got.Atoms[0].Args[1])
	require.Equal(t, HexArg{Bytes: []byte{1, 2, 3}}, got.Atoms[0].Args[2])
}

func TestDecodePreservesUnknownMode(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)

	stream := StreamNode{Atoms: []AtomNode{
		{Name: "uni_start_stream"},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	dec := &Decoder{Catalog: c, PreserveUnknown: true}
	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, "the_unknown", got.Atoms[0].Name)
	require.Equal(t, NumberArg{Value: 0}, got.Atoms[0].Args[0])
	require.Equal(t, NumberArg{Value: 1}, got.Atoms[0].Args[1])
}

func TestNestedStreamAtomReferenceShape(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	// single-atom nested stream with an atom resolvable in the catalog
	// takes the compact [protocol, atom_number, args...] shape.
	stream := StreamNode{Atoms: []AtomNode{
		{Name: "act_replace_select_action", Args: []Node{NestedStreamArg{
			Inner: StreamNode{Atoms: []AtomNode{
				{Name: "act_set_criterion", Args: []Node{IdentifierArg{Name: "select"}}},
			}},
		}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, "act_replace_select_action", got.Atoms[0].Name)
	ns := got.Atoms[0].Args[0].(NestedStreamArg)
	require.Equal(t, "act_set_criterion", ns.Inner.Atoms[0].Name)
	require.Equal(t, []Node{IdentifierArg{Name: "select"}}, ns.Inner.Atoms[0].Args)
}

func TestEncodeDecodeTokenList(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	dec := NewDecoder(c)

	g1 := fgid.TwoPart(0, 12)
	g2 := fgid.TwoPart(0, 300)
	stream := StreamNode{Atoms: []AtomNode{
		{Name: "act_send_token", Args: []Node{GidArg{Value: g1}, GidArg{Value: g2}}},
	}}
	b, err := enc.EncodeStream(stream)
	require.NoError(t, err)

	got, err := dec.DecodeStream(b)
	require.NoError(t, err)
	require.Equal(t, []Node{GidArg{Value: g1}, GidArg{Value: g2}}, got.Atoms[0].Args)
}

func TestDecodeTokenListOddTrailingByte(t *testing.T) {
	got := decodeTokenList([]byte{0x00, 0x0C, 0x05})
	require.Equal(t, []Node{
		GidArg{Value: fgid.TwoPart(0, 12)},
		NumberArg{Value: 5},
	}, got)
}

func TestUnrecognizedAtomFails(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	_, err := enc.EncodeStream(StreamNode{Atoms: []AtomNode{{Name: "no_such_atom"}}})
	require.Error(t, err)
}

func TestEncodeErrorCarriesSourcePosition(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	_, err := enc.EncodeStream(StreamNode{Atoms: []AtomNode{
		{Name: "no_such_atom", Line: 12, Col: 3},
	}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "12:3")
}

func TestEncodeUsesPreResolvedDefinition(t *testing.T) {
	c := testCatalog(t)
	enc := NewEncoder(c)
	def, ok := c.FindByName("man_set_context_relative")
	require.True(t, ok)

	f, err := enc.EncodeAtomFrame(AtomNode{
		Name:       "this name is ignored when Definition is set",
		Definition: &def,
		Args:       []Node{NumberArg{Value: 7}},
	})
	require.NoError(t, err)
	require.Equal(t, def.Protocol, f.Protocol)
	require.Equal(t, def.AtomNumber, f.AtomNumber)
}
