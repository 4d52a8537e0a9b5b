package nodeset

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/RoaringBitmap/roaring"
)

// Lookup translates internal node indices into external identifiers.
type Lookup interface {
	ExternalID(id uint32) string
}

// IDTable is a slice-backed Lookup: IDTable[i] is the external id of node i.
// Indices past the end fall back to their decimal form.
type IDTable []string

// ExternalID implements Lookup.
func (t IDTable) ExternalID(id uint32) string {
	if int(id) < len(t) {
		return t[id]
	}
	return strconv.FormatUint(uint64(id), 10)
}

// Set is an immutable set of node indices in [0, Universe()).
// The zero value is the empty set over an empty universe.
type Set struct {
	bits     *roaring.Bitmap
	universe uint32
}

// New builds a Set over [0, universe) containing ids. Duplicate ids are
// collapsed. Any id >= universe fails with a *DomainError naming the first
// offending id.
func New(universe uint32, ids ...uint32) (*Set, error) {
	for _, id := range ids {
		if id >= universe {
			return nil, &DomainError{ID: id, Universe: universe}
		}
	}
	bits := roaring.New()
	bits.AddMany(ids)
	bits.RunOptimize()
	return &Set{bits: bits, universe: universe}, nil
}

// MustNew is New for literals in tests and examples; it panics on a
// DomainError.
func MustNew(universe uint32, ids ...uint32) *Set {
	s, err := New(universe, ids...)
	if err != nil {
		panic(err)
	}
	return s
}

// Empty returns the empty set over [0, universe).
func Empty(universe uint32) *Set {
	return &Set{bits: roaring.New(), universe: universe}
}

// Universe returns the exclusive upper bound for members.
func (s *Set) Universe() uint32 {
	if s == nil {
		return 0
	}
	return s.universe
}

// Cardinality returns the number of members. The cost is proportional to
// the number of containers, not to the universe size.
func (s *Set) Cardinality() uint64 {
	if s == nil || s.bits == nil {
		return 0
	}
	return s.bits.GetCardinality()
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	return s.Cardinality() == 0
}

// Contains reports whether id is a member.
func (s *Set) Contains(id uint32) bool {
	if s == nil || s.bits == nil {
		return false
	}
	return s.bits.Contains(id)
}

// Equal reports whether s and o hold the same members. Universes are not
// compared.
func (s *Set) Equal(o *Set) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return s.IsEmpty() == o.IsEmpty()
	}
	return s.bits.Equals(o.bits)
}

// Members returns the members in ascending order.
func (s *Set) Members() []uint32 {
	if s == nil || s.bits == nil {
		return []uint32{}
	}
	return s.bits.ToArray()
}

// Max returns the largest member, or ok=false for an empty set.
func (s *Set) Max() (uint32, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.bits.Maximum(), true
}

// Iterate calls fn for each member in ascending order until fn returns false.
func (s *Set) Iterate(fn func(id uint32) bool) {
	if s == nil || s.bits == nil {
		return
	}
	s.bits.Iterate(fn)
}

// Flatten expands the set into external identifiers, ascending by internal
// index. A nil lookup emits the raw indices in decimal.
func (s *Set) Flatten(lookup Lookup) []string {
	out := make([]string, 0, s.Cardinality())
	s.Iterate(func(id uint32) bool {
		if lookup == nil {
			out = append(out, strconv.FormatUint(uint64(id), 10))
		} else {
			out = append(out, lookup.ExternalID(id))
		}
		return true
	})
	return out
}

// Union returns a new Set holding every member of every input. The result's
// universe is the largest input universe. Union of no sets is the empty set
// over an empty universe.
func Union(sets ...*Set) *Set {
	var universe uint32
	bitmaps := make([]*roaring.Bitmap, 0, len(sets))
	for _, s := range sets {
		if s == nil || s.bits == nil {
			continue
		}
		if s.universe > universe {
			universe = s.universe
		}
		bitmaps = append(bitmaps, s.bits)
	}
	switch len(bitmaps) {
	case 0:
		return Empty(universe)
	case 1:
		return &Set{bits: bitmaps[0].Clone(), universe: universe}
	}
	return &Set{bits: roaring.FastOr(bitmaps...), universe: universe}
}

// Union returns s ∪ o as a new Set.
func (s *Set) Union(o *Set) *Set {
	return Union(s, o)
}

// Intersect returns s ∩ o as a new Set over the larger universe.
func (s *Set) Intersect(o *Set) *Set {
	universe := max(s.Universe(), o.Universe())
	if s == nil || o == nil || s.bits == nil || o.bits == nil {
		return Empty(universe)
	}
	return &Set{bits: roaring.And(s.bits, o.bits), universe: universe}
}

// String renders the members as [a b c] for debugging.
func (s *Set) String() string {
	return fmt.Sprintf("%v", s.Members())
}

// MarshalBinary encodes the universe followed by the portable Roaring
// serialization of the members.
func (s *Set) MarshalBinary() ([]byte, error) {
	var bits *roaring.Bitmap
	var universe uint32
	if s != nil {
		bits, universe = s.bits, s.universe
	}
	if bits == nil {
		bits = roaring.New()
	}
	payload, err := bits.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("nodeset: marshal: %w", err)
	}
	out := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint32(out, universe)
	return append(out, payload...), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary. Members outside
// the encoded universe are rejected with a *DomainError.
func (s *Set) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("nodeset: unmarshal: short buffer (%d bytes)", len(data))
	}
	universe := binary.LittleEndian.Uint32(data)
	bits := roaring.New()
	if err := bits.UnmarshalBinary(data[4:]); err != nil {
		return fmt.Errorf("nodeset: unmarshal: %w", err)
	}
	if !bits.IsEmpty() && bits.Maximum() >= universe {
		return &DomainError{ID: bits.Maximum(), Universe: universe}
	}
	s.bits = bits
	s.universe = universe
	return nil
}
