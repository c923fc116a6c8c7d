package hako

import (
	"math/bits"
	"strconv"
	"strings"
)

// ComponentSet represents a set of up to 256 component IDs. It is the schema of
// an archetype and the filter of a query. Each bit corresponds to a component
// ID; two sets are equal iff they hold the same IDs, so a ComponentSet can be
// compared with == and used directly as a map key.
type ComponentSet [4]uint64

// NewComponentSet builds a set holding the given IDs.
func NewComponentSet(ids ...ComponentID) ComponentSet {
	var s ComponentSet
	for _, id := range ids {
		s.Set(id)
	}
	return s
}

// Set enables the bit corresponding to the given component ID.
func (s *ComponentSet) Set(id ComponentID) {
	i := id >> 6 // (id / 64) to find the uint64 index
	o := id & 63 // (id % 64) to find the bit offset
	s[i] |= uint64(1) << uint64(o)
}

// Unset disables the bit corresponding to the given component ID.
func (s *ComponentSet) Unset(id ComponentID) {
	i := id >> 6
	o := id & 63
	s[i] &= ^(uint64(1) << uint64(o))
}

// Has checks if a specific component ID is in the set.
func (s ComponentSet) Has(id ComponentID) bool {
	i := id >> 6
	o := id & 63
	return (s[i] & (uint64(1) << uint64(o))) != 0
}

// Contains checks if all the bits set in sub are also set in the receiver. This
// is used to determine if an archetype's component set is a superset of a
// query's required components.
func (s ComponentSet) Contains(sub ComponentSet) bool {
	return (s[0]&sub[0]) == sub[0] &&
		(s[1]&sub[1]) == sub[1] &&
		(s[2]&sub[2]) == sub[2] &&
		(s[3]&sub[3]) == sub[3]
}

// Intersects checks if the two sets have any ID in common.
func (s ComponentSet) Intersects(other ComponentSet) bool {
	return (s[0]&other[0] != 0) ||
		(s[1]&other[1] != 0) ||
		(s[2]&other[2] != 0) ||
		(s[3]&other[3] != 0)
}

// Union returns s ∪ other.
func (s ComponentSet) Union(other ComponentSet) ComponentSet {
	return ComponentSet{s[0] | other[0], s[1] | other[1], s[2] | other[2], s[3] | other[3]}
}

// Difference returns s ∖ other.
func (s ComponentSet) Difference(other ComponentSet) ComponentSet {
	return ComponentSet{s[0] &^ other[0], s[1] &^ other[1], s[2] &^ other[2], s[3] &^ other[3]}
}

// Len returns the number of IDs in the set.
func (s ComponentSet) Len() int {
	return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1]) +
		bits.OnesCount64(s[2]) + bits.OnesCount64(s[3])
}

// IsEmpty reports whether the set holds no IDs.
func (s ComponentSet) IsEmpty() bool {
	return s[0]|s[1]|s[2]|s[3] == 0
}

// IDs returns the members of the set in ascending order.
func (s ComponentSet) IDs() []ComponentID {
	ids := make([]ComponentID, 0, s.Len())
	for w, word := range s {
		for word != 0 {
			o := bits.TrailingZeros64(word)
			ids = append(ids, ComponentID(w*64+o))
			word &= word - 1
		}
	}
	return ids
}

func (s ComponentSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, id := range s.IDs() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(id)))
	}
	sb.WriteByte('}')
	return sb.String()
}
