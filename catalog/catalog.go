// Package catalog holds the read-only Atom Catalog (C1): the
// (protocol, atom_number) <-> (name, type, flags) mapping loaded once at
// startup from an external source (not modeled here — the ~1,887-entry
// table itself is a collaborator, see spec.md §1) and shared by reference
// across every compile/decompile call thereafter.
package catalog

import "github.com/iconidentify/fdocodec/ferr"

// AtomDefinition is one immutable catalog entry.
type AtomDefinition struct {
	Protocol   uint8 // [0,127]
	AtomNumber uint8
	Name       string // canonical lowercase identifier
	Type       Type
	Flags      Flags
}

type key struct {
	protocol   uint8
	atomNumber uint8
}

// Catalog is a dense, build-once, read-many index over a set of
// AtomDefinitions. The zero value is not usable; construct with New.
type Catalog struct {
	entries []AtomDefinition
	byKey   map[key]int
	byName  map[string]int
}

// New builds a Catalog from entries, validating spec.md §3's invariants:
// no two definitions share (protocol, atom_number), and no two share name.
// The catalog takes ownership of entries; callers should not mutate the
// slice afterward.
func New(entries []AtomDefinition) (*Catalog, error) {
	c := &Catalog{
		entries: entries,
		byKey:   make(map[key]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if e.Protocol > 127 {
			return nil, ferr.Newf(ferr.BadArgumentFormat, "atom %q: protocol %d out of [0,127]", e.Name, e.Protocol)
		}
		k := key{e.Protocol, e.AtomNumber}
		if j, dup := c.byKey[k]; dup {
			return nil, ferr.Newf(ferr.BadArgumentFormat, "duplicate (protocol,atom_number)=(%d,%d) for %q and %q",
				e.Protocol, e.AtomNumber, entries[j].Name, e.Name)
		}
		c.byKey[k] = i
		name := lowerASCII(e.Name)
		if j, dup := c.byName[name]; dup {
			return nil, ferr.Newf(ferr.BadArgumentFormat, "duplicate atom name %q for (%d,%d) and (%d,%d)",
				e.Name, e.Protocol, e.AtomNumber, entries[j].Protocol, entries[j].AtomNumber)
		}
		c.byName[name] = i
	}
	return c, nil
}

// FindByName looks up an atom by its case-insensitive canonical name.
func (c *Catalog) FindByName(name string) (AtomDefinition, bool) {
	i, ok := c.byName[lowerASCII(name)]
	if !ok {
		return AtomDefinition{}, false
	}
	return c.entries[i], true
}

// FindByKey looks up an atom by its wire (protocol, atom_number) pair.
func (c *Catalog) FindByKey(protocol, atomNumber uint8) (AtomDefinition, bool) {
	i, ok := c.byKey[key{protocol, atomNumber}]
	if !ok {
		return AtomDefinition{}, false
	}
	return c.entries[i], true
}

// All iterates every definition in the catalog in load order.
func (c *Catalog) All(yield func(AtomDefinition) bool) {
	for _, e := range c.entries {
		if !yield(e) {
			return
		}
	}
}

// Len returns the number of loaded definitions.
func (c *Catalog) Len() int { return len(c.entries) }

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
