package docmodel

import (
	"github.com/google/uuid"
)

// Copy deep-copies the subtree rooted at this node.
//
// copyMetadata selects whether metadata, persons and groups are copied
// field by field. recursive is tri-state: RecurseAll copies all
// descendants, RecurseSameAnchor copies only descendants of the same
// anchor class as this node, RecurseNone copies no descendants.
//
// Content-file references, incoming and outgoing cross-references, and
// the administrative-metadata pointer are identity-bearing and never
// copied.
func (n *StructNode) Copy(copyMetadata bool, recursive Recursion) *StructNode {
	c := &StructNode{
		structType:  n.structType,
		sig:         n.TypeName() + ":" + uuid.NewString(),
		identifier:  n.identifier,
		refToAnchor: n.refToAnchor,
		logical:     n.logical,
		physical:    n.physical,
	}

	if copyMetadata {
		for _, md := range n.metadata {
			copied := md.Copy()
			copied.node = c
			c.metadata = append(c.metadata, copied)
		}
		for _, p := range n.persons {
			copied := p.Copy()
			copied.node = c
			c.persons = append(c.persons, copied)
		}
		for _, g := range n.groups {
			copied := g.Copy()
			copied.node = c
			c.groups = append(c.groups, copied)
		}
	}

	switch recursive {
	case RecurseNone:
	case RecurseAll:
		for _, child := range n.children {
			copiedChild := child.Copy(copyMetadata, recursive)
			copiedChild.parent = c
			c.children = append(c.children, copiedChild)
		}
	case RecurseSameAnchor:
		own := n.AnchorClass()
		for _, child := range n.children {
			if child.AnchorClass() != own {
				continue
			}
			copiedChild := child.Copy(copyMetadata, recursive)
			copiedChild.parent = c
			c.children = append(c.children, copiedChild)
		}
	}

	return c
}

// Recursion selects how Copy descends into children.
type Recursion int

const (
	// RecurseNone copies no descendants.
	RecurseNone Recursion = iota
	// RecurseAll copies all descendants.
	RecurseAll
	// RecurseSameAnchor copies only descendants sharing this node's
	// anchor class.
	RecurseSameAnchor
)

// truncMode classifies a node's role during a truncated copy.
type truncMode int

const (
	// truncFull: the node belongs to the requested anchor class on an
	// uninterrupted chain; all metadata is kept and all children visited.
	truncFull truncMode = iota
	// truncBridge: the node is outside the anchor class above or beside
	// it; it keeps label metadata only when a direct child belongs to
	// the class, and the descent continues.
	truncBridge
	// truncStub: the node sits directly below the anchor boundary; only
	// the pointer, label and order-label types are kept, and the descent
	// continues only into children re-entering the anchor class.
	truncStub
	// truncStubLeaf: a node of the anchor class reached through a stub
	// (interrupted chain); kept as an allow-listed stub, descent ends.
	truncStubLeaf
)

// CopyTruncated returns a partial copy of the subtree retaining the
// structural skeleton down to one level below the given anchor class.
// Nodes of the given anchor class keep all their metadata, persons and
// groups (the pointer element type excepted); nodes whose parent has the
// anchor class but whose own class differs keep only the pointer, label
// and order-label metadata types, and so do nodes of the anchor class
// found directly below them; all other nodes keep those allow-listed
// types when a direct child has the anchor class, and none otherwise.
func (n *StructNode) CopyTruncated(anchorClass string) *StructNode {
	parentMode := truncBridge
	if n.parent != nil && n.parent.AnchorClass() == anchorClass {
		parentMode = truncFull
	}
	return n.copyTruncated(anchorClass, n.parent, parentMode)
}

func (n *StructNode) copyTruncated(anchorClass string, parent *StructNode, parentMode truncMode) *StructNode {
	c := &StructNode{
		structType:  n.structType,
		sig:         n.TypeName() + ":" + uuid.NewString(),
		identifier:  n.identifier,
		refToAnchor: n.refToAnchor,
		logical:     n.logical,
		physical:    n.physical,
		parent:      parent,
	}

	own := n.AnchorClass()
	var mode truncMode
	switch {
	case parentMode == truncStub:
		mode = truncStubLeaf
	case own == anchorClass:
		mode = truncFull
	case parentMode == truncFull:
		mode = truncStub
	default:
		mode = truncBridge
	}

	switch mode {
	case truncFull:
		// Full metadata, minus the pointer element itself.
		for _, md := range n.metadata {
			if md.TypeName() == MetsPointerMetadataType {
				continue
			}
			copied := md.Copy()
			copied.node = c
			c.metadata = append(c.metadata, copied)
		}
		for _, p := range n.persons {
			copied := p.Copy()
			copied.node = c
			c.persons = append(c.persons, copied)
		}
		for _, g := range n.groups {
			copied := g.Copy()
			copied.node = c
			c.groups = append(c.groups, copied)
		}
	case truncStub, truncStubLeaf:
		for _, md := range n.metadata {
			if !foreignStubMetadataTypes[md.TypeName()] {
				continue
			}
			copied := md.Copy()
			copied.node = c
			c.metadata = append(c.metadata, copied)
		}
	case truncBridge:
		// A bridge node keeps its label metadata only when a direct
		// child belongs to the anchor class, so the stub chain stays
		// identifiable.
		for _, child := range n.children {
			if child.AnchorClass() != anchorClass {
				continue
			}
			for _, md := range n.metadata {
				if !foreignStubMetadataTypes[md.TypeName()] {
					continue
				}
				copied := md.Copy()
				copied.node = c
				c.metadata = append(c.metadata, copied)
			}
			break
		}
	}

	switch mode {
	case truncFull:
		for _, child := range n.children {
			c.children = append(c.children, child.copyTruncated(anchorClass, c, mode))
		}
	case truncBridge:
		for _, child := range n.children {
			if child.IsMetsPointerStruct() {
				continue
			}
			c.children = append(c.children, child.copyTruncated(anchorClass, c, mode))
		}
	case truncStub:
		// One level below the anchor boundary is the cutoff; only a
		// child re-entering the anchor class is kept, as a leaf stub.
		for _, child := range n.children {
			if child.AnchorClass() != anchorClass || child.IsMetsPointerStruct() {
				continue
			}
			c.children = append(c.children, child.copyTruncated(anchorClass, c, mode))
		}
	case truncStubLeaf:
	}

	return c
}
