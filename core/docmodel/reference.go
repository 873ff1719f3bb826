package docmodel

// Reference is a typed, directed, non-hierarchical edge between two
// structural nodes. A reference is jointly owned by its endpoints: it
// appears exactly once in the source's outgoing list and once in the
// target's incoming list, and both sides are mutated together.
type Reference struct {
	refType string
	source  *StructNode
	target  *StructNode
}

// LogicalPhysicalRefType is the conventional type for references linking
// logical units to the pages that carry them.
const LogicalPhysicalRefType = "logical_physical"

// NewReference creates a reference edge. Callers normally go through
// StructNode.AddReferenceTo / AddReferenceFrom, which maintain both
// endpoint lists.
func NewReference(refType string, source, target *StructNode) *Reference {
	return &Reference{refType: refType, source: source, target: target}
}

// Type returns the reference type.
func (r *Reference) Type() string {
	return r.refType
}

// Source returns the source node.
func (r *Reference) Source() *StructNode {
	return r.source
}

// Target returns the target node.
func (r *Reference) Target() *StructNode {
	return r.target
}

// SetSource rebinds the source node. Used by deep copy when rebuilding
// the edge into a copied arena.
func (r *Reference) SetSource(node *StructNode) {
	r.source = node
}

// SetTarget rebinds the target node.
func (r *Reference) SetTarget(node *StructNode) {
	r.target = node
}
