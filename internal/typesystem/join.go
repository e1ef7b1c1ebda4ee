package typesystem

// Union joins two lattice entries: the result covers every value either side
// covers. Union is commutative, associative and idempotent.
func (k *Kind) Union(other *Kind) *Kind {
	if k == nil {
		return other.Copy()
	}
	if other == nil {
		return k.Copy()
	}
	return &Kind{
		prim:   k.prim | other.prim,
		object: k.object.union(other.object),
		array:  k.array.union(other.array),
	}
}

// Narrow intersects the entry with a kind mask, keeping the entry's own
// structural shapes for collection kinds the mask allows. Used after runtime
// type assertions; may produce "never" when the mask and entry are disjoint.
func (k *Kind) Narrow(mask *Kind) *Kind {
	out := &Kind{prim: k.prim & mask.prim}
	if k.object != nil && mask.object != nil {
		out.object = k.object.copy()
	}
	if k.array != nil && mask.array != nil {
		out.array = k.array.copy()
	}
	return out
}
