package arg

import (
	"strings"

	"github.com/iconidentify/fdocodec/catalog"
	"github.com/iconidentify/fdocodec/enumtab"
	"github.com/iconidentify/fdocodec/ferr"
	"github.com/iconidentify/fdocodec/frame"
	"github.com/iconidentify/fdocodec/gid"
)

// Decoder turns wire bytes back into a StreamNode AST (C3+C5 combined, the
// reverse of Encoder). An unresolved (protocol, atom_number) decodes into a
// the_unknown atom rather than failing, per spec §4.3.9; when
// PreserveUnknown is set every atom (resolved or not) round-trips through
// the_unknown instead of its symbolic name.
type Decoder struct {
	Catalog         *catalog.Catalog
	PreserveUnknown bool
}

// NewDecoder returns a Decoder bound to c.
func NewDecoder(c *catalog.Catalog) *Decoder {
	return &Decoder{Catalog: c}
}

// DecodeStream is the decompile() entry point: every frame in buf is parsed
// and turned into an AtomNode, in order.
func (d *Decoder) DecodeStream(buf []byte) (StreamNode, error) {
	frames, err := frame.DecodeAll(buf)
	if err != nil {
		return StreamNode{}, err
	}
	s := StreamNode{Atoms: make([]AtomNode, 0, len(frames))}
	for _, f := range frames {
		a, err := d.decodeAtom(f)
		if err != nil {
			return StreamNode{}, err
		}
		s.Atoms = append(s.Atoms, a)
	}
	return s, nil
}

func (d *Decoder) decodeAtom(f frame.AtomFrame) (AtomNode, error) {
	def, ok := d.Catalog.FindByKey(f.Protocol, f.AtomNumber)
	if !ok || d.PreserveUnknown {
		return d.decodeUnknown(f), nil
	}
	args, err := d.decodeArgs(def, f.Payload)
	if err != nil {
		return AtomNode{}, err
	}
	return AtomNode{Name: def.Name, Args: args}, nil
}

func (d *Decoder) decodeUnknown(f frame.AtomFrame) AtomNode {
	args := []Node{
		NumberArg{Value: uint32(f.Protocol)},
		NumberArg{Value: uint32(f.AtomNumber)},
	}
	if len(f.Payload) > 0 {
		args = append(args, HexArg{Bytes: append([]byte{}, f.Payload...)})
	}
	return AtomNode{Name: "the_unknown", Args: args}
}

// decodeArgs mirrors Encoder.encodeArgs: name override -> protocol override
// -> type default.
func (d *Decoder) decodeArgs(def catalog.AtomDefinition, payload []byte) ([]Node, error) {
	if args, handled, err := d.decodeNameOverride(def, payload); handled {
		return args, err
	}
	if args, handled, err := d.decodeProtocolOverride(def, payload); handled {
		return args, err
	}
	return d.decodeTypeDefault(def.Type, payload)
}

func (d *Decoder) decodeNameOverride(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "uni_use_last_atom_string", "uni_use_last_atom_value", "buf_set_data_atom":
		args, err := d.decodeAtomReference(payload)
		return args, true, err
	case "man_set_context_relative", "man_set_context_index":
		if len(payload) != 4 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 4 bytes", name)
		}
		return []Node{NumberArg{Value: be32(payload)}}, true, nil
	case "phone_port_list", "phone_ready_to_connect", "comit_reboot", "comit_restart":
		if len(payload) != 2 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 2 bytes", name)
		}
		return []Node{NumberArg{Value: uint32(payload[0])<<8 | uint32(payload[1])}}, true, nil
	case "mat_font_sis":
		if len(payload) != 3 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "mat_font_sis payload must be 3 bytes")
		}
		names := decodePiped(uint32(payload[2]), enumtab.MatFontStyle)
		return []Node{
			NumberArg{Value: uint32(payload[0])},
			NumberArg{Value: uint32(payload[1])},
			PipedArg{Names: names},
		}, true, nil
	case "mat_size":
		switch len(payload) {
		case 2:
			return []Node{NumberArg{Value: uint32(payload[0])}, NumberArg{Value: uint32(payload[1])}}, true, nil
		case 4:
			return []Node{
				NumberArg{Value: uint32(payload[0])},
				NumberArg{Value: uint32(payload[1])},
				NumberArg{Value: uint32(payload[2])<<8 | uint32(payload[3])},
			}, true, nil
		}
		return nil, true, ferr.New(ferr.InvalidBinaryFormat, "mat_size payload must be 2 or 4 bytes")
	case "mat_auto_complete":
		args := make([]Node, 0, len(payload))
		for _, b := range payload {
			if n, ok := enumtab.MatAutoComplete.Name(uint32(b)); ok {
				args = append(args, IdentifierArg{Name: n})
			} else {
				args = append(args, NumberArg{Value: uint32(b)})
			}
		}
		return args, true, nil
	case "mat_log_object", "mat_sort_order", "mat_field_script", "mat_title_append_screen_name", "mat_position":
		if len(payload) != 1 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 1 byte", name)
		}
		return []Node{NumberArg{Value: uint32(payload[0])}}, true, nil
	case "mat_frame_style", "mat_trigger_style":
		tbl := enumtab.MatFrameStyle
		if name == "mat_trigger_style" {
			tbl = enumtab.MatTriggerStyle
		}
		if len(payload) == 1 {
			// Encoder renders a raw numeric argument as a single byte.
			return []Node{NumberArg{Value: uint32(payload[0])}}, true, nil
		}
		if len(payload) != 2 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 1 or 2 bytes", name)
		}
		code := uint32(payload[0])<<8 | uint32(payload[1])
		if n, ok := tbl.Name(code); ok {
			return []Node{IdentifierArg{Name: n}}, true, nil
		}
		return []Node{NumberArg{Value: code}}, true, nil
	case "man_get_display_characteristics":
		if len(payload) < 1 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "man_get_display_characteristics payload must be at least 1 byte")
		}
		out := []Node{}
		if n, ok := enumtab.ManDisplayCharacteristic.Name(uint32(payload[0])); ok {
			out = append(out, IdentifierArg{Name: n})
		} else {
			out = append(out, NumberArg{Value: uint32(payload[0])})
		}
		if len(payload) == 2 {
			out = append(out, NumberArg{Value: uint32(payload[1])})
		}
		return out, true, nil
	}
	return nil, false, nil
}

func (d *Decoder) decodeAtomReference(payload []byte) ([]Node, error) {
	if len(payload) != 2 {
		return nil, ferr.New(ferr.InvalidBinaryFormat, "atom reference payload must be 2 bytes")
	}
	def, ok := d.Catalog.FindByKey(payload[0], payload[1])
	if !ok {
		return nil, ferr.Newf(ferr.UnrecognizedAtom, "atom reference to unknown (protocol=%d, atom=%d)", payload[0], payload[1])
	}
	return []Node{IdentifierArg{Name: def.Name}}, nil
}

func (d *Decoder) decodeProtocolOverride(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	switch def.Protocol {
	case protoUNI:
		name := strings.ToLower(def.Name)
		if name == "uni_start_typed_data" || name == "uni_next_atom_typed" {
			if len(payload) != 2 {
				return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 2 bytes", name)
			}
			code := uint32(payload[0])<<8 | uint32(payload[1])
			if n, ok := enumtab.UniCharset.Name(code); ok {
				return []Node{IdentifierArg{Name: n}}, true, nil
			}
			return []Node{NumberArg{Value: code}}, true, nil
		}
	case protoVAR:
		if len(payload) == 0 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "VAR payload must not be empty")
		}
		letter := string('A' + payload[0])
		if len(payload) == 1 {
			return []Node{IdentifierArg{Name: letter}}, true, nil
		}
		return []Node{IdentifierArg{Name: letter}, NumberArg{Value: be32(payload[1:])}}, true, nil
	case protoACT:
		name := strings.ToLower(def.Name)
		if name == "act_set_criterion" || name == "act_do_action" {
			return d.decodeCriterionArgs(payload)
		}
	case protoDE:
		return d.decodeDe(def, payload)
	case protoBUF:
		return d.decodeBuf(def, payload)
	case protoFM:
		return d.decodeFm(def, payload)
	case protoIF:
		if len(payload) == 2 {
			return []Node{NumberArg{Value: uint32(payload[0])}, NumberArg{Value: uint32(payload[1])}}, true, nil
		}
	case 51: // HFS
		return d.decodeHfs(def, payload)
	}
	return nil, false, nil
}

func (d *Decoder) decodeCriterionArgs(payload []byte) ([]Node, bool, error) {
	n, err := decodeCriterion(payload)
	if err != nil {
		return nil, true, err
	}
	return []Node{n}, true, nil
}

func decodeCriterion(payload []byte) (Node, error) {
	v := be32(payload)
	if name, ok := enumtab.Criterion.Name(v); ok {
		return IdentifierArg{Name: name}, nil
	}
	return NumberArg{Value: v}, nil
}

func (d *Decoder) decodeDe(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "de_validate":
		if len(payload) != 1 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "de_validate payload must be 1 byte")
		}
		return []Node{PipedArg{Names: decodePiped(uint32(payload[0]), enumtab.DeValidateFlag)}}, true, nil
	case "de_start_extraction":
		if len(payload) == 1 && payload[0] == 0 {
			return []Node{NumberArg{Value: 0}}, true, nil
		}
		if len(payload) == 4 {
			return []Node{PipedArg{Names: decodePiped(be32(payload), enumtab.DeValidateFlag)}}, true, nil
		}
		return nil, true, ferr.New(ferr.InvalidBinaryFormat, "de_start_extraction payload must be 1 or 4 bytes")
	}
	return nil, false, nil
}

func (d *Decoder) decodeBuf(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	name := strings.ToLower(def.Name)
	if name == "buf_set_data_atom" {
		args, err := d.decodeAtomReference(payload)
		return args, true, err
	}
	switch name {
	case "buf_start_buffer", "buf_use_buffer", "buf_set_flags", "buf_get_flags":
		if len(payload) == 4 {
			return []Node{PipedArg{Names: decodePiped(be32(payload), enumtab.BufFlag)}}, true, nil
		}
		// BUF numeric arguments are little-endian on the wire.
		return []Node{NumberArg{Value: leToValue(payload)}}, true, nil
	}
	return nil, false, nil
}

func leToValue(b []byte) uint32 {
	var v uint32
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}

func (d *Decoder) decodeFm(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	if strings.ToLower(def.Name) == "fm_handle_error" {
		if len(payload) != 1 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "fm_handle_error payload must be 1 byte")
		}
		return []Node{PipedArg{Names: decodePiped(uint32(payload[0]), enumtab.FmHandleErrorFlag)}}, true, nil
	}
	return nil, false, nil
}

func (d *Decoder) decodeHfs(def catalog.AtomDefinition, payload []byte) ([]Node, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "hfs_attr_flags", "hfs_attr_database_type":
		if len(payload) != 4 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 4 bytes", name)
		}
		return []Node{NumberArg{Value: be32(payload)}}, true, nil
	case "hfs_attr_checkbox_mapping":
		if len(payload) < 4 {
			return nil, true, ferr.New(ferr.InvalidBinaryFormat, "hfs_attr_checkbox_mapping payload too short")
		}
		return []Node{
			NumberArg{Value: be32(payload[:4])},
			StringArg{Value: string(payload[4:])},
		}, true, nil
	case "hfs_attr_field_mapping", "hfs_attr_variable_mapping":
		if len(payload) != 8 {
			return nil, true, ferr.Newf(ferr.InvalidBinaryFormat, "%s payload must be 8 bytes", name)
		}
		return []Node{
			NumberArg{Value: be32(payload[:4])},
			NumberArg{Value: be32(payload[4:])},
		}, true, nil
	}
	return nil, false, nil
}

func decodePiped(v uint32, tbl enumtab.Table) []string {
	var names []string
	for bit := uint32(1); bit != 0 && bit <= v; bit <<= 1 {
		if v&bit == 0 {
			continue
		}
		if n, ok := tbl.Name(bit); ok {
			names = append(names, n)
		}
	}
	return names
}

func be32(b []byte) uint32 {
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v
}

// decodeTokenList is the reverse of Encoder.encodeTokenList (spec §4.3.8).
// The wire form concatenates each element's encoded bytes with no length
// prefix or delimiter, so a byte-for-byte inverse of the general case is
// undecidable: a run of bytes could equally be a STRING, a single-byte
// NUMBER, or the ID half of a 2-byte type-0 2-part GID. This decoder assumes
// the common, primary shape encode actually special-cases — a sequence of
// 2-byte type-0 2-part GIDs, the one fixed-width element encodeTokenList
// documents explicitly — walking payload two bytes at a time; a trailing odd
// byte (if any) becomes a single NUMBER element. See DESIGN.md.
func decodeTokenList(payload []byte) []Node {
	if len(payload) == 0 {
		return nil
	}
	out := make([]Node, 0, (len(payload)+1)/2)
	i := 0
	for ; i+1 < len(payload); i += 2 {
		id := uint16(payload[i])<<8 | uint16(payload[i+1])
		out = append(out, GidArg{Value: gid.TwoPart(0, id)})
	}
	if i < len(payload) {
		out = append(out, NumberArg{Value: uint32(payload[i])})
	}
	return out
}

// decodeTypeDefault mirrors Encoder.encodeTypeDefault.
func (d *Decoder) decodeTypeDefault(t catalog.Type, payload []byte) ([]Node, error) {
	switch t {
	case catalog.RAW:
		return []Node{HexArg{Bytes: append([]byte{}, payload...)}}, nil
	case catalog.DWORD:
		return []Node{NumberArg{Value: be32(payload)}}, nil
	case catalog.STRING, catalog.VARSTRING, catalog.VARLOOKUP:
		return []Node{StringArg{Value: copyString(payload)}}, nil
	case catalog.BOOL, catalog.BOOL_LEGACY:
		if len(payload) != 1 {
			return nil, ferr.New(ferr.InvalidBinaryFormat, "BOOL payload must be 1 byte")
		}
		if payload[0] == 0 {
			return []Node{IdentifierArg{Name: "no"}}, nil
		}
		return []Node{IdentifierArg{Name: "yes"}}, nil
	case catalog.GID:
		g, _, err := gid.Decode(payload, gid.ThreeByteAsTwoPart)
		if err != nil {
			return nil, err
		}
		return []Node{GidArg{Value: g}}, nil
	case catalog.STREAM, catalog.STREAM_LEGACY:
		inner, err := d.DecodeStream(payload)
		if err != nil {
			// Fall back to the compact [protocol, atom_number, args...] shape
			// Encoder.encodeStreamArg emits for a single catalog-resolved atom.
			if len(payload) >= 2 {
				if def, ok := d.Catalog.FindByKey(payload[0], payload[1]); ok {
					if args, aerr := d.decodeArgs(def, payload[2:]); aerr == nil {
						ref := AtomNode{Name: def.Name, Args: args}
						return []Node{NestedStreamArg{Inner: StreamNode{Atoms: []AtomNode{ref}}}}, nil
					}
				}
			}
			return nil, err
		}
		return []Node{NestedStreamArg{Inner: inner}}, nil
	case catalog.OBJSTART:
		if len(payload) < 1 {
			return nil, ferr.New(ferr.InvalidBinaryFormat, "OBJSTART payload must be at least 1 byte")
		}
		name, ok := enumtab.ObjectType.Name(uint32(payload[0]))
		if !ok {
			name = "unknown_" + itoa(uint32(payload[0]))
		}
		return []Node{ObjectTypeArg{Name: name}, StringArg{Value: copyString(payload[1:])}}, nil
	case catalog.ORIENT:
		if len(payload) != 1 {
			return nil, ferr.New(ferr.InvalidBinaryFormat, "ORIENT payload must be 1 byte")
		}
		return []Node{IdentifierArg{Name: decodeOrient(payload[0])}}, nil
	case catalog.ALERT, catalog.ALERT_LEGACY:
		if len(payload) < 1 {
			return nil, ferr.New(ferr.InvalidBinaryFormat, "ALERT payload must be at least 1 byte")
		}
		name, ok := enumtab.AlertCode.Name(uint32(payload[0]))
		if !ok {
			return nil, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized alert type code %d", payload[0])
		}
		return []Node{ObjectTypeArg{Name: name}, StringArg{Value: copyString(payload[1:])}}, nil
	case catalog.CRITERION, catalog.CRITERION_LEGACY:
		n, err := decodeCriterion(payload)
		if err != nil {
			return nil, err
		}
		return []Node{n}, nil
	case catalog.TOKEN, catalog.TOKENARG:
		return decodeTokenList(payload), nil
	case catalog.VARDWORD:
		return []Node{NumberArg{Value: be32(payload)}}, nil
	case catalog.BYTELIST, catalog.COLORDATA:
		return []Node{HexArg{Bytes: append([]byte{}, payload...)}}, nil
	case catalog.IGNORE:
		return nil, nil
	case catalog.ATOM:
		return d.decodeAtomReference(payload)
	default:
		return nil, ferr.Newf(ferr.BadArgumentFormat, "no type-default decoding for %s", t)
	}
}

func decodeOrient(b byte) string {
	dir := "h"
	if b&0x40 != 0 {
		dir = "v"
	}
	hj := justifyChar((uint32(b) >> 3) & 0x7)
	vj := justifyChar(uint32(b) & 0x7)
	return dir + hj + vj
}

func justifyChar(code uint32) string {
	for c, n := range enumtab.OrientJustify {
		if n == code {
			return string(c)
		}
	}
	return ""
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

