package docmodel

import (
	"github.com/archivata/metaconv/core/errors"
)

// AnchorClass returns the anchor class of the node's structural type, or
// "" when the node has no type or the type has no anchor class.
func (n *StructNode) AnchorClass() string {
	if n.structType == nil {
		return ""
	}
	return n.structType.AnchorClass
}

// IsMetsPointerStruct reports whether this node carries a pointer stub
// itself, or whether its children, without exception, do.
func (n *StructNode) IsMetsPointerStruct() bool {
	if n.HasMetadataOfType(MetsPointerMetadataType) {
		return true
	}
	if len(n.children) == 0 {
		return false
	}
	for _, child := range n.children {
		if !child.IsMetsPointerStruct() {
			return false
		}
	}
	return true
}

// RealSuccessors descends through children of the same anchor class and
// returns, per branch, the first descendant that changes anchor class or
// has none, skipping pure pointer stubs.
func (n *StructNode) RealSuccessors() []*StructNode {
	var result []*StructNode
	own := n.AnchorClass()
	for _, child := range n.children {
		if child.AnchorClass() == own {
			result = append(result, child.RealSuccessors()...)
		} else if !child.HasMetadataOfType(MetsPointerMetadataType) {
			result = append(result, child)
		}
	}
	return result
}

// AllAnchorClasses walks the tree level by level and returns the ordered
// chain of anchor classes in use. At any level all anchored real
// successors must agree on one class, and no class may re-appear after
// the descent has left it.
func (n *StructNode) AllAnchorClasses() ([]string, error) {
	var result []string
	seen := make(map[string]bool)

	anchorClass := n.AnchorClass()
	if anchorClass == "" {
		return result, nil
	}
	result = append(result, anchorClass)
	seen[anchorClass] = true

	frontier := n.RealSuccessors()
	for len(frontier) > 0 {
		levelClass := ""
		var nextLevel []*StructNode
		for _, node := range frontier {
			nextLevel = append(nextLevel, node.RealSuccessors()...)
			class := node.AnchorClass()
			if class == "" {
				continue
			}
			if levelClass == "" {
				levelClass = class
			} else if levelClass != class {
				return nil, errors.NewPreferences(
					"different anchor classes at the same level: " +
						node.Parent().TypeName() + " has children of anchor classes " +
						levelClass + " and " + class)
			}
		}
		if levelClass != "" {
			if seen[levelClass] {
				last := result[len(result)-1]
				return nil, errors.NewPreferences(
					"interruption of anchor hierarchy: elements of the " + levelClass +
						" anchor are interrupted by elements of the " + last + " anchor")
			}
			result = append(result, levelClass)
			seen[levelClass] = true
		}
		frontier = nextLevel
	}
	return result, nil
}

// MustWriteDownwardsPointer reports whether, when serializing the file of
// the given anchor class, this node must be written as a downward pointer
// stub: its parent belongs to the file's class while the node itself does
// not.
func (n *StructNode) MustWriteDownwardsPointer(fileClass string) bool {
	if fileClass == "" || n.parent == nil {
		return false
	}
	return fileClass == n.parent.AnchorClass() && fileClass != n.AnchorClass()
}

// MustWriteUpwardsPointer reports whether, when serializing the file of
// the given anchor class, this node must be written as an upward pointer
// stub. That is the case when the node's own metadata is kept in a
// different file, and either the node is a root of a foreign class, or
// its parent belongs to a different class that precedes the file's class
// in the document's anchor chain.
func (n *StructNode) MustWriteUpwardsPointer(fileClass string) (bool, error) {
	anchorClass := n.AnchorClass()
	if fileClass == anchorClass {
		return false, nil
	}
	if n.parent == nil {
		return anchorClass != "", nil
	}
	parentClass := n.parent.AnchorClass()
	if parentClass == "" || parentClass == anchorClass {
		return false, nil
	}

	chain, err := n.TopStruct().AllAnchorClasses()
	if err != nil {
		return false, err
	}
	// The sentinel marks the classless tail of the chain; entries are
	// compared with an empty-guard because the sentinel carries no class.
	chain = append(chain, "")
	for _, link := range chain {
		if link == fileClass {
			return false, nil
		}
		if link == parentClass {
			break
		}
	}
	return true, nil
}
