package engine

import (
	"math/bits"
	"strings"
)

// IdentitySet is a bitset over the 25 base identities. The zero value is the
// empty set. Sets only ever shrink under elimination, so a snapshot compare
// against an older copy is a containment check.
type IdentitySet uint32

// AllIdentities is the set of every identity in the base card set.
const AllIdentities IdentitySet = (1 << (NumSuits * NumRanks)) - 1

// SingleIdentity returns the set containing only id.
func SingleIdentity(id Identity) IdentitySet {
	return 1 << id.Ord()
}

// IdentitySetOf builds a set from the given identities.
func IdentitySetOf(ids ...Identity) IdentitySet {
	var set IdentitySet
	for _, id := range ids {
		set |= 1 << id.Ord()
	}
	return set
}

// Len returns the number of identities in the set.
func (s IdentitySet) Len() int { return bits.OnesCount32(uint32(s)) }

// Empty reports whether the set contains no identities.
func (s IdentitySet) Empty() bool { return s == 0 }

// Contains reports whether id is in the set.
func (s IdentitySet) Contains(id Identity) bool {
	return s&(1<<id.Ord()) != 0
}

// With returns the set with id added.
func (s IdentitySet) With(id Identity) IdentitySet {
	return s | 1<<id.Ord()
}

// Without returns the set with id removed.
func (s IdentitySet) Without(id Identity) IdentitySet {
	return s &^ (1 << id.Ord())
}

// Intersect returns the intersection of the two sets.
func (s IdentitySet) Intersect(other IdentitySet) IdentitySet { return s & other }

// Union returns the union of the two sets.
func (s IdentitySet) Union(other IdentitySet) IdentitySet { return s | other }

// Difference returns the identities in s but not in other.
func (s IdentitySet) Difference(other IdentitySet) IdentitySet { return s &^ other }

// Single returns the sole identity in the set; ok is false unless Len()==1.
func (s IdentitySet) Single() (Identity, bool) {
	if s.Len() != 1 {
		return Identity{}, false
	}
	return IdentityFromOrd(bits.TrailingZeros32(uint32(s))), true
}

// Filter returns the subset of identities satisfying cond.
func (s IdentitySet) Filter(cond func(Identity) bool) IdentitySet {
	res := s
	for rem := uint32(s); rem != 0; rem &= rem - 1 {
		ord := bits.TrailingZeros32(rem)
		if !cond(IdentityFromOrd(ord)) {
			res &^= 1 << ord
		}
	}
	return res
}

// All reports whether every identity in the set satisfies cond. Vacuously
// true for the empty set.
func (s IdentitySet) All(cond func(Identity) bool) bool {
	for rem := uint32(s); rem != 0; rem &= rem - 1 {
		if !cond(IdentityFromOrd(bits.TrailingZeros32(rem))) {
			return false
		}
	}
	return true
}

// Any reports whether some identity in the set satisfies cond.
func (s IdentitySet) Any(cond func(Identity) bool) bool {
	return !s.Filter(cond).Empty()
}

// Identities returns the members of the set in ordinal order.
func (s IdentitySet) Identities() []Identity {
	ids := make([]Identity, 0, s.Len())
	for rem := uint32(s); rem != 0; rem &= rem - 1 {
		ids = append(ids, IdentityFromOrd(bits.TrailingZeros32(rem)))
	}
	return ids
}

// String renders the set as comma-separated short forms, e.g. "r1,y1,b2".
func (s IdentitySet) String() string {
	var b strings.Builder
	for i, id := range s.Identities() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	return b.String()
}
