package arg

import (
	"strings"

	"github.com/iconidentify/fdocodec/catalog"
	"github.com/iconidentify/fdocodec/enumtab"
	"github.com/iconidentify/fdocodec/ferr"
	"github.com/iconidentify/fdocodec/frame"
	"github.com/iconidentify/fdocodec/gid"
)

// Protocol numbers named by spec §4.3.7's per-protocol overrides.
const (
	protoUNI = 0
	protoMAN = 1
	protoACT = 2
	protoDE  = 3
	protoBUF = 4
	protoFM  = 8
	protoIF  = 15
	protoVAR = 12
	protoMAT = 16
)

// Encoder turns a StreamNode AST into wire bytes, resolving atom names and
// argument shapes against a Catalog. It holds no other state and is safe
// for concurrent use across goroutines (spec §5 — the catalog is the only
// shared, read-only resource).
type Encoder struct {
	Catalog *catalog.Catalog
}

// NewEncoder returns an Encoder bound to c.
func NewEncoder(c *catalog.Catalog) *Encoder {
	return &Encoder{Catalog: c}
}

// EncodeStream is the compile() entry point (C3+C4 combined): every atom in
// s is resolved, argument-encoded, frame-encoded, and concatenated in order.
func (e *Encoder) EncodeStream(s StreamNode) ([]byte, error) {
	var out []byte
	for _, a := range s.Atoms {
		f, err := e.EncodeAtomFrame(a)
		if err != nil {
			return nil, err
		}
		b, err := frame.Encode(f)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// EncodeAtomFrame resolves and argument-encodes a single atom, without
// applying the frame wire encoding (used directly by callers building their
// own frame-aware transport, e.g. frameio). Any error is attached to a's
// Line/Col, when set, via ferr.Error.WithPos.
func (e *Encoder) EncodeAtomFrame(a AtomNode) (frame.AtomFrame, error) {
	if strings.EqualFold(a.Name, "the_unknown") {
		f, err := e.encodeUnknown(a)
		return f, withPos(err, a)
	}
	def := a.Definition
	if def == nil {
		d, ok := e.Catalog.FindByName(a.Name)
		if !ok {
			return frame.AtomFrame{}, withPos(ferr.Newf(ferr.UnrecognizedAtom, "unknown atom %q", a.Name), a)
		}
		def = &d
	}
	payload, err := e.encodeArgs(*def, a.Args)
	if err != nil {
		return frame.AtomFrame{}, withPos(err, a)
	}
	return frame.AtomFrame{Protocol: def.Protocol, AtomNumber: def.AtomNumber, Payload: payload}, nil
}

// withPos attaches a's source position to err, when both are present.
// Errors from this package are always *ferr.Error already, so ferr.Wrap's
// code argument is never actually applied; it only supplies a fallback code
// for a hypothetical plain error reaching here.
func withPos(err error, a AtomNode) error {
	if err == nil || a.Line == 0 {
		return err
	}
	return ferr.Wrap(ferr.BadArgumentFormat, err).WithPos(ferr.Pos{Line: a.Line, Col: a.Col})
}

func (e *Encoder) encodeUnknown(a AtomNode) (frame.AtomFrame, error) {
	if len(a.Args) < 2 {
		return frame.AtomFrame{}, ferr.New(ferr.BadArgumentFormat, "the_unknown requires protocol and atom_number arguments")
	}
	proto, ok := a.Args[0].(NumberArg)
	if !ok {
		return frame.AtomFrame{}, ferr.New(ferr.BadArgumentFormat, "the_unknown's protocol argument must be numeric")
	}
	atomNum, ok := a.Args[1].(NumberArg)
	if !ok {
		return frame.AtomFrame{}, ferr.New(ferr.BadArgumentFormat, "the_unknown's atom_number argument must be numeric")
	}
	data, err := e.encodeDataArgs(a.Args[2:])
	if err != nil {
		return frame.AtomFrame{}, err
	}
	return frame.AtomFrame{Protocol: uint8(proto.Value), AtomNumber: uint8(atomNum.Value), Payload: data}, nil
}

// encodeDataArgs concatenates a flat run of Hex/Number/String arguments into
// raw bytes, used by the_unknown's data tail and a NestedStreamArg's
// trailingData (spec §4.3.9, §4.3.10).
func (e *Encoder) encodeDataArgs(args []Node) ([]byte, error) {
	var out []byte
	for _, a := range args {
		switch v := a.(type) {
		case HexArg:
			out = append(out, v.Bytes...)
		case NumberArg:
			out = append(out, byte(v.Value))
		case StringArg:
			b, err := unescapeString(v.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		default:
			return nil, ferr.Newf(ferr.BadArgumentFormat, "unsupported trailing data argument %T", a)
		}
	}
	return out, nil
}

// encodeArgs applies the §4.3 override chain: atom-name-specific ->
// protocol-specific -> type-general default.
func (e *Encoder) encodeArgs(def catalog.AtomDefinition, args []Node) ([]byte, error) {
	if b, handled, err := e.encodeNameOverride(def, args); handled {
		return b, err
	}
	if b, handled, err := e.encodeProtocolOverride(def, args); handled {
		return b, err
	}
	return e.encodeTypeDefault(def.Type, args)
}

func asNumber(n Node) (uint32, bool) {
	switch v := n.(type) {
	case NumberArg:
		return v.Value, true
	case HexArg:
		var out uint32
		for _, b := range v.Bytes {
			out = out<<8 | uint32(b)
		}
		return out, true
	}
	return 0, false
}

func flatten(args []Node) []Node {
	if len(args) == 1 {
		if l, ok := args[0].(ListArg); ok {
			return l.Elements
		}
	}
	return args
}

// encodeNameOverride implements spec §4.3.7's named-atom rules that don't
// fall cleanly under a single protocol bullet (the MAT name-specific table
// and the two UNI atom-reference atoms).
func (e *Encoder) encodeNameOverride(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "uni_use_last_atom_string", "uni_use_last_atom_value":
		return e.encodeAtomReference(args)
	case "man_set_context_relative", "man_set_context_index":
		v, ok := asNumber(firstArg(args))
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" requires a numeric argument")
		}
		return fixed4BE(v), true, nil
	case "phone_port_list", "phone_ready_to_connect", "comit_reboot", "comit_restart":
		v, ok := asNumber(firstArg(args))
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" requires a numeric argument")
		}
		return word2BE(v), true, nil
	case "mat_font_sis":
		return e.encodeMatFontSis(flatten(args))
	case "mat_size":
		return e.encodeMatSize(flatten(args))
	case "mat_title_pos":
		return e.encodePipedOrSingle(args, enumtab.MatTitlePos)
	case "mat_text_on_picture_pos":
		return e.encodePipedOrSingle(args, enumtab.MatTextOnPicturePos)
	case "mat_frame_style":
		return e.encodeEnumOrNumber(args, enumtab.MatFrameStyle, 2)
	case "mat_trigger_style":
		return e.encodeEnumOrNumber(args, enumtab.MatTriggerStyle, 2)
	case "mat_auto_complete":
		return e.encodeMatAutoComplete(flatten(args))
	case "mat_position":
		return e.encodeEnumOrNumber(args, enumtab.MatPosition, 1)
	case "mat_log_object", "mat_sort_order", "mat_field_script", "mat_title_append_screen_name":
		v, ok := asNumber(firstArg(args))
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" requires a numeric argument")
		}
		return []byte{byte(v)}, true, nil
	case "man_get_display_characteristics":
		return e.encodeManDisplayCharacteristics(flatten(args))
	case "buf_set_data_atom":
		return e.encodeAtomReference(args)
	}
	return nil, false, nil
}

func firstArg(args []Node) Node {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func (e *Encoder) encodeAtomReference(args []Node) ([]byte, bool, error) {
	id, ok := firstArg(args).(IdentifierArg)
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "atom reference argument must be an identifier")
	}
	def, ok := e.Catalog.FindByName(id.Name)
	if !ok {
		return nil, true, ferr.Newf(ferr.UnrecognizedAtom, "atom reference to unknown atom %q", id.Name)
	}
	return []byte{def.Protocol, def.AtomNumber}, true, nil
}

func (e *Encoder) encodeMatFontSis(args []Node) ([]byte, bool, error) {
	if len(args) != 3 {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_font_sis requires <font_id, size, style>")
	}
	fontID, ok := asNumber(args[0])
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_font_sis font_id must be numeric")
	}
	size, ok := asNumber(args[1])
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_font_sis size must be numeric")
	}
	style, err := e.resolvePiped(args[2], enumtab.MatFontStyle)
	if err != nil {
		return nil, true, err
	}
	return []byte{byte(fontID), byte(size), byte(style)}, true, nil
}

func (e *Encoder) encodeMatSize(args []Node) ([]byte, bool, error) {
	switch len(args) {
	case 2:
		v1, ok1 := asNumber(args[0])
		v2, ok2 := asNumber(args[1])
		if !ok1 || !ok2 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_size values must be numeric")
		}
		return []byte{byte(v1), byte(v2)}, true, nil
	case 3:
		v1, ok1 := asNumber(args[0])
		v2, ok2 := asNumber(args[1])
		v3, ok3 := asNumber(args[2])
		if !ok1 || !ok2 || !ok3 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_size values must be numeric")
		}
		return []byte{byte(v1), byte(v2), byte(v3 >> 8), byte(v3)}, true, nil
	default:
		return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_size requires 2 or 3 elements")
	}
}

func (e *Encoder) encodeMatAutoComplete(args []Node) ([]byte, bool, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		id, ok := a.(IdentifierArg)
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "mat_auto_complete elements must be identifiers")
		}
		code, ok := enumtab.MatAutoComplete.Code(id.Name)
		if !ok {
			return nil, true, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized mat_auto_complete identifier %q", id.Name)
		}
		out = append(out, byte(code))
	}
	return out, true, nil
}

func (e *Encoder) encodeManDisplayCharacteristics(args []Node) ([]byte, bool, error) {
	if len(args) == 0 {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "man_get_display_characteristics requires an id argument")
	}
	id, ok := args[0].(IdentifierArg)
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "man_get_display_characteristics id must be an identifier")
	}
	code, ok := enumtab.ManDisplayCharacteristic.Code(id.Name)
	if !ok {
		return nil, true, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized display characteristic %q", id.Name)
	}
	if len(args) == 1 {
		return []byte{byte(code)}, true, nil
	}
	n, ok := asNumber(args[1])
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "man_get_display_characteristics second argument must be numeric")
	}
	return []byte{byte(code), byte(n)}, true, nil
}

// encodePipedOrSingle OR's together one or more identifiers resolved
// through tbl, accepting either a PipedArg or a bare IdentifierArg.
func (e *Encoder) encodePipedOrSingle(args []Node, tbl enumtab.Table) ([]byte, bool, error) {
	v, err := e.resolvePiped(firstArg(args), tbl)
	if err != nil {
		return nil, true, err
	}
	return []byte{byte(v)}, true, nil
}

func (e *Encoder) resolvePiped(n Node, tbl enumtab.Table) (uint32, error) {
	switch v := n.(type) {
	case PipedArg:
		var out uint32
		for _, name := range v.Names {
			code, ok := tbl.Code(name)
			if !ok {
				return 0, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized flag %q", name)
			}
			out |= code
		}
		return out, nil
	case IdentifierArg:
		code, ok := tbl.Code(v.Name)
		if !ok {
			return 0, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized flag %q", v.Name)
		}
		return code, nil
	case NumberArg:
		return v.Value, nil
	default:
		return 0, ferr.Newf(ferr.BadArgumentFormat, "expected flag/identifier/number, got %T", n)
	}
}

// encodeEnumOrNumber resolves a symbolic enum (rendered as width bytes big
// endian) or falls back to a raw numeric argument rendered as a single byte,
// matching mat_frame_style/mat_trigger_style's documented behavior.
func (e *Encoder) encodeEnumOrNumber(args []Node, tbl enumtab.Table, width int) ([]byte, bool, error) {
	n := firstArg(args)
	if id, ok := n.(IdentifierArg); ok {
		code, ok := tbl.Code(id.Name)
		if !ok {
			return nil, true, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized enum identifier %q", id.Name)
		}
		if width == 1 {
			return []byte{byte(code)}, true, nil
		}
		return word2BE(code), true, nil
	}
	v, ok := asNumber(n)
	if !ok {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "expected identifier or number")
	}
	return []byte{byte(v)}, true, nil
}

// encodeProtocolOverride implements spec §4.3.7's protocol-wide bullets
// (UNI charset words, VAR letter forms, ACT criterion, DE/BUF/FM/HFS/IF
// flag and enum rules).
func (e *Encoder) encodeProtocolOverride(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	switch def.Protocol {
	case protoUNI:
		name := strings.ToLower(def.Name)
		if name == "uni_start_typed_data" || name == "uni_next_atom_typed" {
			id, ok := firstArg(args).(IdentifierArg)
			code := uint32(enumtab.DefaultUniCharset)
			if ok {
				if c, found := enumtab.UniCharset.Code(id.Name); found {
					code = c
				}
			}
			return word2BE(code), true, nil
		}
	case protoVAR:
		return e.encodeVar(args)
	case protoACT:
		name := strings.ToLower(def.Name)
		if name == "act_set_criterion" || name == "act_do_action" {
			return e.encodeCriterion(firstArg(args))
		}
	case protoDE:
		return e.encodeDe(def, args)
	case protoBUF:
		return e.encodeBuf(def, args)
	case protoFM:
		return e.encodeFm(def, args)
	case protoIF:
		return e.encodeIf(flatten(args))
	case 51: // HFS
		return e.encodeHfs(def, args)
	}
	return nil, false, nil
}

func (e *Encoder) encodeVar(args []Node) ([]byte, bool, error) {
	elems := flatten(args)
	if len(elems) == 1 {
		id, ok := elems[0].(IdentifierArg)
		if !ok || len(id.Name) != 1 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "VAR single-letter argument must be one uppercase letter")
		}
		return []byte{letterByte(id.Name[0])}, true, nil
	}
	if len(elems) == 2 {
		id, ok := elems[0].(IdentifierArg)
		if !ok || len(id.Name) != 1 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "VAR list argument must start with a single letter")
		}
		lb := letterByte(id.Name[0])
		switch v := elems[1].(type) {
		case NumberArg:
			return append([]byte{lb}, trimmedBE(v.Value)...), true, nil
		case HexArg:
			var n uint32
			for _, b := range v.Bytes {
				n = n<<8 | uint32(b)
			}
			return append([]byte{lb}, trimmedBE(n)...), true, nil
		case StringArg:
			b, err := unescapeString(v.Value)
			if err != nil {
				return nil, true, err
			}
			return append([]byte{lb}, b...), true, nil
		}
	}
	return nil, false, nil
}

func letterByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c - 'A'
}

func (e *Encoder) encodeCriterion(n Node) ([]byte, bool, error) {
	switch v := n.(type) {
	case IdentifierArg:
		code, ok := enumtab.Criterion.Code(v.Name)
		if !ok {
			return nil, true, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized criterion %q", v.Name)
		}
		return trimmedBE(code), true, nil
	case NumberArg:
		return trimmedBE(v.Value), true, nil
	case HexArg:
		var x uint32
		for _, b := range v.Bytes {
			x = x<<8 | uint32(b)
		}
		return trimmedBE(x), true, nil
	default:
		return nil, true, ferr.New(ferr.BadArgumentFormat, "criterion argument must be an identifier or number")
	}
}

func (e *Encoder) encodeDe(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "de_validate":
		v, err := e.resolvePiped(firstArg(args), enumtab.DeValidateFlag)
		if err != nil {
			return nil, true, err
		}
		return []byte{byte(v)}, true, nil
	case "de_start_extraction":
		if p, ok := firstArg(args).(PipedArg); ok {
			var v uint32
			for _, name := range p.Names {
				code, ok := enumtab.DeValidateFlag.Code(name)
				if !ok {
					return nil, true, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized de_start_extraction flag %q", name)
				}
				v |= code
			}
			return fixed4BE(v), true, nil
		}
		if n, ok := firstArg(args).(NumberArg); ok && n.Value == 0 {
			return []byte{0x00}, true, nil
		}
		return nil, true, ferr.New(ferr.BadArgumentFormat, "de_start_extraction requires piped flags or a literal 0")
	}
	return nil, false, nil
}

func (e *Encoder) encodeBuf(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	name := strings.ToLower(def.Name)
	if name == "buf_set_data_atom" {
		return e.encodeAtomReference(args)
	}
	switch name {
	case "buf_start_buffer", "buf_use_buffer", "buf_set_flags", "buf_get_flags":
		n := firstArg(args)
		if id, ok := n.(IdentifierArg); ok {
			v, err := e.resolvePiped(id, enumtab.BufFlag)
			if err != nil {
				return nil, true, err
			}
			return fixed4BE(v), true, nil
		}
		if p, ok := n.(PipedArg); ok {
			v, err := e.resolvePiped(p, enumtab.BufFlag)
			if err != nil {
				return nil, true, err
			}
			return fixed4BE(v), true, nil
		}
		v, ok := asNumber(n)
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "BUF numeric argument required")
		}
		return trimmedLE(v), true, nil
	}
	return nil, false, nil
}

func (e *Encoder) encodeFm(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	name := strings.ToLower(def.Name)
	if name == "fm_handle_error" {
		v, err := e.resolvePiped(firstArg(args), enumtab.FmHandleErrorFlag)
		if err != nil {
			return nil, true, err
		}
		return []byte{byte(v)}, true, nil
	}
	return nil, false, nil
}

func (e *Encoder) encodeIf(args []Node) ([]byte, bool, error) {
	if len(args) != 2 {
		return nil, false, nil
	}
	v1, ok1 := asNumber(args[0])
	v2, ok2 := asNumber(args[1])
	if !ok1 || !ok2 {
		return nil, true, ferr.New(ferr.BadArgumentFormat, "IF protocol two-element argument must be numeric")
	}
	return []byte{byte(v1), byte(v2)}, true, nil
}

func (e *Encoder) encodeHfs(def catalog.AtomDefinition, args []Node) ([]byte, bool, error) {
	name := strings.ToLower(def.Name)
	switch name {
	case "hfs_attr_flags", "hfs_attr_database_type":
		v, ok := asNumber(firstArg(args))
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" requires a numeric/flag argument")
		}
		return fixed4BE(v), true, nil
	case "hfs_attr_checkbox_mapping":
		elems := flatten(args)
		if len(elems) != 2 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "hfs_attr_checkbox_mapping requires <number, string>")
		}
		n, ok := asNumber(elems[0])
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "hfs_attr_checkbox_mapping first argument must be numeric")
		}
		s, ok := elems[1].(StringArg)
		if !ok {
			return nil, true, ferr.New(ferr.BadArgumentFormat, "hfs_attr_checkbox_mapping second argument must be a string")
		}
		b, err := unescapeString(s.Value)
		if err != nil {
			return nil, true, err
		}
		return append(fixed4BE(n), b...), true, nil
	case "hfs_attr_field_mapping", "hfs_attr_variable_mapping":
		elems := flatten(args)
		if len(elems) != 2 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" requires two numeric arguments")
		}
		n1, ok1 := asNumber(elems[0])
		n2, ok2 := asNumber(elems[1])
		if !ok1 || !ok2 {
			return nil, true, ferr.New(ferr.BadArgumentFormat, name+" arguments must be numeric")
		}
		return append(fixed4BE(n1), fixed4BE(n2)...), true, nil
	}
	return nil, false, nil
}

// encodeTypeDefault is the §4.3.2 fallback applied once no name- or
// protocol-specific override claimed the atom.
func (e *Encoder) encodeTypeDefault(t catalog.Type, args []Node) ([]byte, error) {
	n := firstArg(args)
	switch t {
	case catalog.RAW:
		switch v := n.(type) {
		case nil:
			return nil, nil
		case HexArg:
			return v.Bytes, nil
		case NumberArg:
			return []byte{byte(v.Value)}, nil
		case StringArg:
			return unescapeString(v.Value)
		default:
			return nil, ferr.Newf(ferr.BadArgumentFormat, "RAW argument has unsupported shape %T", n)
		}
	case catalog.DWORD:
		v, ok := asNumber(n)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "DWORD argument must be numeric")
		}
		return trimmedBE(v), nil
	case catalog.STRING, catalog.VARSTRING:
		s, ok := n.(StringArg)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "STRING argument must be a string")
		}
		return unescapeString(s.Value)
	case catalog.BOOL, catalog.BOOL_LEGACY:
		return e.encodeBool(n)
	case catalog.GID:
		g, ok := n.(GidArg)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "GID argument must be a GID literal")
		}
		return gid.Encode(g.Value), nil
	case catalog.STREAM, catalog.STREAM_LEGACY:
		ns, ok := n.(NestedStreamArg)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "STREAM argument must be a nested stream")
		}
		return e.encodeStreamArg(ns)
	case catalog.OBJSTART:
		return e.encodeObjStart(args)
	case catalog.ORIENT:
		return e.encodeOrient(n)
	case catalog.ALERT, catalog.ALERT_LEGACY:
		return e.encodeAlert(args)
	case catalog.CRITERION, catalog.CRITERION_LEGACY:
		b, _, err := e.encodeCriterion(n)
		return b, err
	case catalog.TOKEN, catalog.TOKENARG:
		return e.encodeTokenList(args)
	case catalog.VARDWORD:
		v, ok := asNumber(n)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "VARDWORD argument must be numeric")
		}
		return trimmedBE(v), nil
	case catalog.BYTELIST:
		return e.encodeDataArgs(flatten(args))
	case catalog.COLORDATA:
		return e.encodeDataArgs(flatten(args))
	case catalog.IGNORE:
		return nil, nil
	case catalog.VARLOOKUP:
		s, ok := n.(StringArg)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "VARLOOKUP argument must be a string")
		}
		return unescapeString(s.Value)
	case catalog.ATOM:
		b, _, err := e.encodeAtomReference(args)
		return b, err
	default:
		return nil, ferr.Newf(ferr.BadArgumentFormat, "no type-default encoding for %s", t)
	}
}

func (e *Encoder) encodeBool(n Node) ([]byte, error) {
	switch v := n.(type) {
	case IdentifierArg:
		switch strings.ToLower(v.Name) {
		case "yes", "true":
			return []byte{1}, nil
		case "no", "false":
			return []byte{0}, nil
		}
		return nil, ferr.Newf(ferr.BadArgumentFormat, "unrecognized boolean identifier %q", v.Name)
	case NumberArg:
		return []byte{byte(v.Value)}, nil
	default:
		return nil, ferr.New(ferr.BadArgumentFormat, "BOOL argument must be yes/no/true/false or a number")
	}
}

func (e *Encoder) encodeObjStart(args []Node) ([]byte, error) {
	n := firstArg(args)
	var name string
	switch v := n.(type) {
	case ObjectTypeArg:
		name = v.Name
	case IdentifierArg:
		name = v.Name
	default:
		return nil, ferr.New(ferr.BadArgumentFormat, "OBJSTART type argument must be a symbolic name")
	}
	code, ok := enumtab.ObjectType.Code(name)
	if !ok && strings.HasPrefix(strings.ToLower(name), "unknown_") {
		if n, err := parseDecimal(name[len("unknown_"):]); err == nil {
			code = n
			ok = true
		}
	}
	if !ok {
		code = enumtab.DefaultObjectTypeCode
	}
	out := []byte{byte(code)}
	if len(args) > 1 {
		if s, ok := args[1].(StringArg); ok {
			b, err := unescapeString(s.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

func parseDecimal(s string) (uint32, error) {
	var v uint32
	if s == "" {
		return 0, ferr.New(ferr.BadNumberFormat, "empty numeral")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, ferr.New(ferr.BadNumberFormat, "non-decimal digit in numeral")
		}
		v = v*10 + uint32(c-'0')
	}
	return v, nil
}

func (e *Encoder) encodeOrient(n Node) ([]byte, error) {
	id, ok := n.(IdentifierArg)
	if !ok {
		return nil, ferr.New(ferr.BadArgumentFormat, "ORIENT argument must be a symbolic orientation")
	}
	sym := strings.ToLower(id.Name)
	if code, ok := enumtab.OrientCanonical[sym]; ok {
		return []byte{byte(code)}, nil
	}
	if len(sym) < 2 {
		return nil, ferr.Newf(ferr.UnrecognizedEnum, "malformed orientation %q", sym)
	}
	var dir byte
	switch sym[0] {
	case 'v':
		dir = 0x40
	case 'h':
		dir = 0
	default:
		return nil, ferr.Newf(ferr.UnrecognizedEnum, "orientation %q must start with v or h", sym)
	}
	hj, ok := enumtab.OrientJustify[sym[1]]
	if !ok {
		return nil, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized h-justify character in %q", sym)
	}
	var vj uint32
	if len(sym) >= 3 {
		vj, ok = enumtab.OrientJustify[sym[2]]
		if !ok {
			return nil, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized v-justify character in %q", sym)
		}
	}
	return []byte{dir | byte(hj<<3) | byte(vj)}, nil
}

func alertTypeName(n Node) (string, bool) {
	switch v := n.(type) {
	case ObjectTypeArg:
		return v.Name, true
	case IdentifierArg:
		return v.Name, true
	default:
		return "", false
	}
}

func (e *Encoder) encodeAlert(args []Node) ([]byte, error) {
	elems := flatten(args)
	var typeName string
	var rest string
	switch {
	case len(elems) == 2:
		name, ok := alertTypeName(elems[0])
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "ALERT type argument must be a symbolic name")
		}
		typeName = name
		s, ok := elems[1].(StringArg)
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "ALERT message argument must be a string")
		}
		rest = s.Value
	case len(elems) == 1:
		name, ok := alertTypeName(elems[0])
		if !ok {
			return nil, ferr.New(ferr.BadArgumentFormat, "ALERT argument must be an ObjectTypeArg or <type, message> list")
		}
		typeName = name
	default:
		return nil, ferr.New(ferr.BadArgumentFormat, "ALERT requires a type and message")
	}
	code, ok := enumtab.AlertCode.Code(typeName)
	if !ok {
		return nil, ferr.Newf(ferr.UnrecognizedEnum, "unrecognized alert type %q", typeName)
	}
	msg, err := unescapeString(rest)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(code)}, msg...), nil
}

// encodeTokenList implements spec §4.3.8: TOKEN/TOKENARG lists encode each
// element, with a special case for 2-part GID literals typed 0 (they drop
// their type byte).
func (e *Encoder) encodeTokenList(args []Node) ([]byte, error) {
	elems := flatten(args)
	var out []byte
	for _, el := range elems {
		switch v := el.(type) {
		case StringArg:
			b, err := unescapeString(v.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		case NumberArg:
			if v.Value > 255 {
				return nil, ferr.Newf(ferr.ValueTooLarge, "TOKEN numeric element %d exceeds a byte", v.Value)
			}
			out = append(out, byte(v.Value))
		case GidArg:
			if !v.Value.IsThreePart() && v.Value.Type() == 0 {
				id := v.Value.ID()
				out = append(out, byte(id>>8), byte(id))
				continue
			}
			out = append(out, gid.Encode(v.Value)...)
		default:
			return nil, ferr.Newf(ferr.BadArgumentFormat, "unsupported TOKEN element shape %T", el)
		}
	}
	return out, nil
}

// encodeStreamArg implements spec §4.3.10, including the "atom reference
// with data" single-atom special case.
func (e *Encoder) encodeStreamArg(n NestedStreamArg) ([]byte, error) {
	if len(n.Inner.Atoms) == 1 {
		inner := n.Inner.Atoms[0]
		if def, ok := e.Catalog.FindByName(inner.Name); ok {
			innerPayload, err := e.encodeArgs(def, inner.Args)
			if err != nil {
				return nil, err
			}
			out := append([]byte{def.Protocol, def.AtomNumber}, innerPayload...)
			trailing, err := e.encodeDataArgs(n.TrailingData)
			if err != nil {
				return nil, err
			}
			return append(out, trailing...), nil
		}
	}
	sub, err := e.EncodeStream(n.Inner)
	if err != nil {
		return nil, err
	}
	trailing, err := e.encodeDataArgs(n.TrailingData)
	if err != nil {
		return nil, err
	}
	return append(sub, trailing...), nil
}
