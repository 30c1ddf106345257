// Package arg implements the argument encoder/decoder (C3): the nine-shape
// ArgumentNode sum type and the (name, protocol, type) override chain
// described in spec.md §4.3, generalized from protocol/thrift/skipdecoder.go's
// type-keyed switch over wire shapes.
package arg

import (
	"github.com/iconidentify/fdocodec/catalog"
	"github.com/iconidentify/fdocodec/gid"
)

// Node is the sum type of every argument shape the parser can produce. The
// nine concrete types below are the only implementers.
type Node interface {
	isNode()
}

// NumberArg is a bare decimal numeral.
type NumberArg struct {
	Value uint32
}

func (NumberArg) isNode() {}

// HexArg is a "XXx"-style hex literal.
type HexArg struct {
	Bytes []byte
}

func (HexArg) isNode() {}

// StringArg is a quoted, escape-processed string.
type StringArg struct {
	Value string
}

func (StringArg) isNode() {}

// IdentifierArg is a bare symbolic name: an enum member, an atom-name
// reference (uni_use_last_atom_string), or a single letter (VAR protocol).
type IdentifierArg struct {
	Name string
}

func (IdentifierArg) isNode() {}

// GidArg is a literal "T-I" or "T-S-I" GID.
type GidArg struct {
	Value gid.GID
}

func (GidArg) isNode() {}

// ObjectTypeArg is a symbolic OBJSTART/ALERT type name, distinct from a
// plain IdentifierArg so the encoder's type-based default can dispatch on
// shape alone when no atom-specific override applies.
type ObjectTypeArg struct {
	Name string
}

func (ObjectTypeArg) isNode() {}

// PipedArg is one or more identifiers OR'd together ("bold|italic").
type PipedArg struct {
	Names []string
}

func (PipedArg) isNode() {}

// ListArg is a parenthesized/angle-bracketed sequence of sibling arguments
// consumed together by a single override (e.g. VAR's `<Letter, number>`).
type ListArg struct {
	Elements []Node
}

func (ListArg) isNode() {}

// NestedStreamArg is an inline `< atom1 atom2 ... >` stream argument; its
// inner atoms are recursively frame-encoded and spliced in as the payload
// per spec §4.3.10.
type NestedStreamArg struct {
	Inner        StreamNode
	TrailingData []Node // HexArg/NumberArg tail appended after the sub-stream
}

func (NestedStreamArg) isNode() {}

// AtomNode is one atom invocation: a catalog name plus its argument list.
// Definition, Line and Col are optional: a parser feeding Compile may
// pre-resolve the catalog entry and attach the source position it parsed
// the atom from, which Encoder threads into any resulting ferr.Error via
// WithPos so error messages can point back at the source text. The parser
// itself is an external collaborator this module doesn't implement (see
// SPEC_FULL.md); a caller that has no position info leaves Line/Col zero,
// which ferr.Pos already treats as "no line/col known".
type AtomNode struct {
	Name       string
	Args       []Node
	Definition *catalog.AtomDefinition
	Line, Col  int
}

// StreamNode is an ordered sequence of atom invocations — the AST the
// public compile/decompile API exchanges.
type StreamNode struct {
	Atoms []AtomNode
}
