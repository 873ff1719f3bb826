package docmodel

import (
	"github.com/archivata/metaconv/core/errors"
)

// ToReferences returns the outgoing reference list, or nil if empty.
func (n *StructNode) ToReferences() []*Reference {
	if len(n.refsTo) == 0 {
		return nil
	}
	return n.refsTo
}

// ToReferencesOfType returns the outgoing references of the given type.
func (n *StructNode) ToReferencesOfType(refType string) []*Reference {
	var result []*Reference
	for _, r := range n.refsTo {
		if r.Type() == refType {
			result = append(result, r)
		}
	}
	return result
}

// FromReferences returns the incoming reference list, or nil if empty.
func (n *StructNode) FromReferences() []*Reference {
	if len(n.refsFrom) == 0 {
		return nil
	}
	return n.refsFrom
}

// FromReferencesOfType returns the incoming references of the given type.
func (n *StructNode) FromReferencesOfType(refType string) []*Reference {
	var result []*Reference
	for _, r := range n.refsFrom {
		if r.Type() == refType {
			result = append(result, r)
		}
	}
	return result
}

// AddReferenceTo creates a reference from this node to the target and
// inserts it into both endpoint lists.
func (n *StructNode) AddReferenceTo(target *StructNode, refType string) *Reference {
	ref := NewReference(refType, n, target)
	n.refsTo = append(n.refsTo, ref)
	target.refsFrom = append(target.refsFrom, ref)
	return ref
}

// AddReferenceFrom creates a reference from the source to this node and
// inserts it into both endpoint lists.
func (n *StructNode) AddReferenceFrom(source *StructNode, refType string) *Reference {
	ref := NewReference(refType, source, n)
	source.refsTo = append(source.refsTo, ref)
	n.refsFrom = append(n.refsFrom, ref)
	return ref
}

// RemoveReferenceTo removes every outgoing reference to the target from
// both endpoint lists. Returns whether any edge was removed.
func (n *StructNode) RemoveReferenceTo(target *StructNode) bool {
	removed := false
	kept := n.refsTo[:0]
	for _, ref := range n.refsTo {
		if ref.Target() == target {
			target.dropIncoming(ref)
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	n.refsTo = kept
	return removed
}

// RemoveReferenceFrom removes every incoming reference from the source
// from both endpoint lists. Returns whether any edge was removed.
func (n *StructNode) RemoveReferenceFrom(source *StructNode) bool {
	removed := false
	kept := n.refsFrom[:0]
	for _, ref := range n.refsFrom {
		if ref.Source() == source {
			source.dropOutgoing(ref)
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	n.refsFrom = kept
	return removed
}

func (n *StructNode) dropIncoming(ref *Reference) {
	for i, r := range n.refsFrom {
		if r == ref {
			n.refsFrom = append(n.refsFrom[:i], n.refsFrom[i+1:]...)
			return
		}
	}
}

func (n *StructNode) dropOutgoing(ref *Reference) {
	for i, r := range n.refsTo {
		if r == ref {
			n.refsTo = append(n.refsTo[:i], n.refsTo[i+1:]...)
			return
		}
	}
}

// ContentFileReferences returns the node's content-file references in
// insertion order, or nil if empty.
func (n *StructNode) ContentFileReferences() []*ContentFileReference {
	if len(n.contentFileRefs) == 0 {
		return nil
	}
	return n.contentFileRefs
}

// ContentFiles returns the content files referenced by this node, or nil.
func (n *StructNode) ContentFiles() []*ContentFile {
	if len(n.contentFileRefs) == 0 {
		return nil
	}
	result := make([]*ContentFile, 0, len(n.contentFileRefs))
	for _, ref := range n.contentFileRefs {
		result = append(result, ref.File)
	}
	return result
}

// AddContentFile links a content file to this node. The owning document
// gets a file set if it has none; the file joins the set (set semantics),
// and the node is registered in the file's back-references.
func (n *StructNode) AddContentFile(cf *ContentFile) {
	n.AddContentFileArea(cf, nil)
}

// AddContentFileArea links a content file restricted to an area.
func (n *StructNode) AddContentFileArea(cf *ContentFile, area *ContentFileArea) {
	if cf == nil {
		return
	}
	if n.doc != nil {
		if n.doc.FileSet() == nil {
			n.doc.SetFileSet(NewFileSet())
		}
		cf = n.doc.FileSet().AddFile(cf)
	}
	n.contentFileRefs = append(n.contentFileRefs, &ContentFileReference{File: cf, Area: area})
	cf.registerRef(n)
}

// RemoveContentFile removes every reference to the file from this node
// and deregisters the node from the file's back-references. Fails if the
// node holds no reference to the file.
func (n *StructNode) RemoveContentFile(cf *ContentFile) error {
	if cf == nil {
		return errors.NewContentFileNotLinked("")
	}
	removed := false
	kept := n.contentFileRefs[:0]
	for _, ref := range n.contentFileRefs {
		if ref.File.Equals(cf) {
			ref.File.unregisterRef(n)
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	n.contentFileRefs = kept
	if !removed {
		return errors.NewContentFileNotLinked(cf.Location)
	}
	return nil
}

// ImageName returns the base location of the node's first content file,
// or "".
func (n *StructNode) ImageName() string {
	if len(n.contentFileRefs) == 0 {
		return ""
	}
	return n.contentFileRefs[0].File.Location
}

// AmdSec returns the administrative-metadata section attached to this
// node, or nil.
func (n *StructNode) AmdSec() *AmdSec {
	return n.amdSec
}

// SetAmdSec attaches an administrative-metadata section by reference.
func (n *StructNode) SetAmdSec(sec *AmdSec) {
	n.amdSec = sec
}

// TechMds returns the technical-metadata records attached to this node.
func (n *StructNode) TechMds() []*TechMd {
	return n.techMds
}

// AddTechMd attaches a technical-metadata record.
func (n *StructNode) AddTechMd(md *TechMd) {
	if md == nil {
		return
	}
	n.techMds = append(n.techMds, md)
}
