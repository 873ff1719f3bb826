package docmodel

// listPairCheck is the result of the quick null/size comparison applied
// to a pair of lists before any in-depth comparison.
type listPairCheck int

const (
	listPairEqual listPairCheck = iota
	listPairNotEqual
	listPairNeedsChecking
)

// quickPairCheck classifies a pair of list lengths: both empty is equal,
// one empty is unequal, otherwise the elements need checking. Accessors
// normalize empty lists to nil, so nil-vs-empty never misclassifies.
func quickPairCheck(lenA, lenB int) listPairCheck {
	switch {
	case lenA == 0 && lenB == 0:
		return listPairEqual
	case lenA == 0 || lenB == 0:
		return listPairNotEqual
	default:
		return listPairNeedsChecking
	}
}

// Equals is the deep structural-equality relation over two subtrees. It
// compares flags, types, metadata (order-insensitive), children and
// content-file references (order-sensitive), and both reference lists by
// edge type plus endpoint equality.
//
// Cross-tree references can induce cycles; before recursing into a
// referenced target the pair under comparison is recorded in a
// per-traversal visited map keyed by the other node's identity signature.
// Re-encountering a registered pair terminates that branch as verified.
// Separate maps serve the outgoing and incoming traversals.
func (n *StructNode) Equals(other *StructNode) bool {
	if n == nil || other == nil {
		return n == other
	}

	if n.logical != other.logical {
		return false
	}
	if n.physical != other.physical {
		return false
	}
	if n.refToAnchor != other.refToAnchor {
		return false
	}
	if !n.structType.Equals(other.structType) {
		return false
	}

	// Quick pass: a null/size mismatch on any list decides early, before
	// any recursive work.
	pairs := []struct{ lenA, lenB int }{
		{len(n.metadata), len(other.metadata)},
		{len(n.groups), len(other.groups)},
		{len(n.persons), len(other.persons)},
		{len(n.children), len(other.children)},
		{len(n.contentFileRefs), len(other.contentFileRefs)},
		{len(n.refsTo), len(other.refsTo)},
		{len(n.refsFrom), len(other.refsFrom)},
	}
	for _, p := range pairs {
		if quickPairCheck(p.lenA, p.lenB) == listPairNotEqual {
			return false
		}
		if p.lenA != p.lenB {
			return false
		}
	}

	// Children compare positionally.
	for i, child := range n.children {
		if !child.Equals(other.children[i]) {
			return false
		}
	}

	// Metadata, groups and persons compare as sets of equal-by-value items.
	for _, md := range n.metadata {
		found := false
		for _, md2 := range other.metadata {
			if md.Equals(md2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, g := range n.groups {
		found := false
		for _, g2 := range other.groups {
			if g.Equals(g2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, p := range n.persons {
		found := false
		for _, p2 := range other.persons {
			if p.Equals(p2) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Content-file references compare positionally.
	for i, ref := range n.contentFileRefs {
		if !ref.Equals(other.contentFileRefs[i]) {
			return false
		}
	}

	// Incoming references: every edge on the left needs an edge on the
	// right with the same type and an equal source.
	if len(n.refsFrom) > 0 {
		if !n.registerFromRef(other) {
			return true
		}
		for _, ref := range n.refsFrom {
			found := false
			for _, ref2 := range other.refsFrom {
				if ref.Type() == ref2.Type() && ref.Source().Equals(ref2.Source()) {
					found = true
					break
				}
			}
			if !found {
				n.unregisterFromRef(other)
				return false
			}
		}
		n.unregisterFromRef(other)
	}

	// Outgoing references: every edge on the left needs an edge on the
	// right with the same type and an equal target.
	if len(n.refsTo) > 0 {
		if !n.registerToRef(other) {
			return true
		}
		for _, ref := range n.refsTo {
			found := false
			for _, ref2 := range other.refsTo {
				if ref.Type() == ref2.Type() && ref.Target().Equals(ref2.Target()) {
					found = true
					break
				}
			}
			if !found {
				n.unregisterToRef(other)
				return false
			}
		}
		n.unregisterToRef(other)
	}

	return true
}

// registerToRef records the pair under comparison in the outgoing visited
// map. Returns false if the pair is already registered: the traversal
// looped and this branch counts as verified.
func (n *StructNode) registerToRef(other *StructNode) bool {
	if n.visitedTo == nil {
		n.visitedTo = make(map[string]*StructNode)
	}
	if _, ok := n.visitedTo[other.sig]; ok {
		return false
	}
	n.visitedTo[other.sig] = other
	return true
}

func (n *StructNode) unregisterToRef(other *StructNode) {
	delete(n.visitedTo, other.sig)
	if len(n.visitedTo) == 0 {
		n.visitedTo = nil
	}
}

// registerFromRef records the pair under comparison in the incoming
// visited map.
func (n *StructNode) registerFromRef(other *StructNode) bool {
	if n.visitedFrom == nil {
		n.visitedFrom = make(map[string]*StructNode)
	}
	if _, ok := n.visitedFrom[other.sig]; ok {
		return false
	}
	n.visitedFrom[other.sig] = other
	return true
}

func (n *StructNode) unregisterFromRef(other *StructNode) {
	delete(n.visitedFrom, other.sig)
	if len(n.visitedFrom) == 0 {
		n.visitedFrom = nil
	}
}
