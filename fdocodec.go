// Package fdocodec is the public entry point (§6): a thin facade over the
// catalog, argument, and frame codecs that mirrors protocol/ttheader's
// top-level EncodeToBytes/Decode pair sitting above its own section codecs.
package fdocodec

import (
	"github.com/iconidentify/fdocodec/arg"
	"github.com/iconidentify/fdocodec/catalog"
	"github.com/iconidentify/fdocodec/frame"
	"github.com/iconidentify/fdocodec/frameio"
)

// StreamNode and AtomNode are the AST the parser produces and the
// decompiler returns, re-exported from arg. The argument node types
// (arg.Node and its variants) are not re-exported and come from package arg.
type StreamNode = arg.StreamNode
type AtomNode = arg.AtomNode

// Codec binds the argument encoder/decoder to one Atom Catalog. A Codec is
// safe for concurrent use: the catalog is read-only and Compile/Decompile
// hold no mutable state of their own (spec.md §5).
type Codec struct {
	enc *arg.Encoder
	dec *arg.Decoder
}

// New builds a Codec over cat. cat is shared by reference and never
// mutated; build it once and reuse it across Codecs/goroutines.
func New(cat *catalog.Catalog) *Codec {
	return &Codec{
		enc: arg.NewEncoder(cat),
		dec: arg.NewDecoder(cat),
	}
}

// SetPreserveUnknown controls whether Decompile always emits `the_unknown`
// atoms instead of resolving catalog-known frames (useful for round-tripping
// a capture byte-for-byte without consulting per-atom override rules).
func (c *Codec) SetPreserveUnknown(preserve bool) {
	c.dec.PreserveUnknown = preserve
}

// Compile renders ast as a single contiguous byte stream.
func (c *Codec) Compile(ast StreamNode) ([]byte, error) {
	return c.enc.EncodeStream(ast)
}

// CompileToFrames renders ast the same way Compile does, but packs the
// result into wire frames no larger than maxFrameSize, splitting any atom
// that doesn't fit into a UNI continuation sequence (spec.md §4.5). sink is
// called once per emitted frame, in order, with isLast true only on the
// final call.
func (c *Codec) CompileToFrames(ast StreamNode, maxFrameSize int, sink frameio.Sink) error {
	atoms := make([]frame.AtomFrame, 0, len(ast.Atoms))
	for _, a := range ast.Atoms {
		af, err := c.enc.EncodeAtomFrame(a)
		if err != nil {
			return err
		}
		atoms = append(atoms, af)
	}

	fe, err := frameio.NewEncoder(maxFrameSize)
	if err != nil {
		return err
	}
	return fe.EncodeAtoms(atoms, sink)
}

// Decompile parses a byte stream back into a StreamNode, resolving each
// frame against the catalog (or yielding `the_unknown` when it can't).
func (c *Codec) Decompile(data []byte) (StreamNode, error) {
	return c.dec.DecodeStream(data)
}
