package docmodel

import (
	"github.com/archivata/metaconv/core/errors"
	"github.com/archivata/metaconv/core/ruleset"
)

// TechMd is one opaque technical-metadata record: an XML fragment kept
// by reference and never interpreted by the model.
type TechMd struct {
	ID       string
	Fragment []byte
}

// AmdSec is the administrative-metadata section of a document: a list of
// technical-metadata records. Nodes may point at it; the pointer is
// identity-bearing and survives copies by reference.
type AmdSec struct {
	ID      string
	techMds []*TechMd
}

// NewAmdSec creates an administrative-metadata section.
func NewAmdSec(id string) *AmdSec {
	return &AmdSec{ID: id}
}

// AddTechMd appends a technical-metadata record.
func (s *AmdSec) AddTechMd(md *TechMd) {
	if md == nil {
		return
	}
	s.techMds = append(s.techMds, md)
}

// TechMds returns the records in insertion order.
func (s *AmdSec) TechMds() []*TechMd {
	return s.techMds
}

// TechMd returns the record with the given ID, or nil.
func (s *AmdSec) TechMd(id string) *TechMd {
	for _, md := range s.techMds {
		if md.ID == id {
			return md
		}
	}
	return nil
}

// Document owns the logical and physical tree roots, the file set, and
// the administrative-metadata section of one digital document.
type Document struct {
	logical  *StructNode
	physical *StructNode
	fileSet  *FileSet
	amdSec   *AmdSec
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// CreateStructNode returns a fresh node of the given type bound to this
// document.
func (d *Document) CreateStructNode(structType *ruleset.StructType) (*StructNode, error) {
	node, err := NewStructNode(structType)
	if err != nil {
		return nil, err
	}
	node.doc = d
	return node, nil
}

// LogicalRoot returns the logical tree root, or nil.
func (d *Document) LogicalRoot() *StructNode {
	return d.logical
}

// SetLogicalRoot installs the logical tree root and propagates the
// logical flag and document binding through the subtree.
func (d *Document) SetLogicalRoot(root *StructNode) {
	d.logical = root
	if root != nil {
		root.SetLogical(true)
		root.setDocument(d)
	}
}

// PhysicalRoot returns the physical tree root, or nil.
func (d *Document) PhysicalRoot() *StructNode {
	return d.physical
}

// SetPhysicalRoot installs the physical tree root and propagates the
// physical flag and document binding through the subtree.
func (d *Document) SetPhysicalRoot(root *StructNode) {
	d.physical = root
	if root != nil {
		root.SetPhysical(true)
		root.setDocument(d)
	}
}

// FileSet returns the document's file set, or nil.
func (d *Document) FileSet() *FileSet {
	return d.fileSet
}

// SetFileSet installs the file set.
func (d *Document) SetFileSet(s *FileSet) {
	d.fileSet = s
}

// AmdSec returns the administrative-metadata section, or nil.
func (d *Document) AmdSec() *AmdSec {
	return d.amdSec
}

// SetAmdSec installs the administrative-metadata section by reference.
func (d *Document) SetAmdSec(s *AmdSec) {
	d.amdSec = s
}

// AllStructNodesByType returns every node of the named structural type in
// both trees, in depth-first order (logical tree first).
func (d *Document) AllStructNodesByType(typeName string) []*StructNode {
	var result []*StructNode
	collect := func(root *StructNode) {
		if root == nil {
			return
		}
		var walk func(n *StructNode)
		walk = func(n *StructNode) {
			if n.TypeName() == typeName {
				result = append(result, n)
			}
			for _, c := range n.children {
				walk(c)
			}
		}
		walk(root)
	}
	collect(d.logical)
	collect(d.physical)
	return result
}

// SortMetadataRecursively walks both trees and reorders each node's
// metadata and persons by the declaration order of their types in the
// rule set.
func (d *Document) SortMetadataRecursively(rs *ruleset.RuleSet) {
	sortTree(d.logical, func(n *StructNode) { n.SortMetadata(rs) })
	sortTree(d.physical, func(n *StructNode) { n.SortMetadata(rs) })
}

// SortMetadataRecursivelyAlphabetical walks both trees and reorders each
// node's metadata and persons by type name.
func (d *Document) SortMetadataRecursivelyAlphabetical() {
	sortTree(d.logical, (*StructNode).SortMetadataAlphabetical)
	sortTree(d.physical, (*StructNode).SortMetadataAlphabetical)
}

func sortTree(root *StructNode, sortNode func(*StructNode)) {
	if root == nil {
		return
	}
	sortNode(root)
	for _, c := range root.children {
		sortTree(c, sortNode)
	}
}

// Equals reports whether two documents are structurally equal: both
// logical roots equal under the deep relation, and both physical roots.
// Nil pairs compare equal; a nil against a non-nil root does not.
func (d *Document) Equals(other *Document) bool {
	if other == nil {
		return false
	}
	if (d.logical == nil) != (other.logical == nil) {
		return false
	}
	if (d.physical == nil) != (other.physical == nil) {
		return false
	}
	if d.logical != nil && !d.logical.Equals(other.logical) {
		return false
	}
	if d.physical != nil && !d.physical.Equals(other.physical) {
		return false
	}
	return true
}

// Copy returns a deep copy of the document. The reference graph between
// the copied trees (parent links, cross-references, content-file links)
// is rebuilt into the copied arena through a node translation map, so no
// pointer escapes into the source document. The administrative-metadata
// section holds opaque fragments and is re-attached by reference.
func (d *Document) Copy() (*Document, error) {
	c := NewDocument()
	translation := make(map[*StructNode]*StructNode)
	var ordered []*StructNode

	if d.logical != nil {
		c.logical = copyNodeInto(d.logical, nil, c, translation, &ordered)
	}
	if d.physical != nil {
		c.physical = copyNodeInto(d.physical, nil, c, translation, &ordered)
	}

	// Second pass: rebuild cross-references and content-file links over
	// the translated nodes.
	if d.fileSet != nil {
		c.fileSet = NewFileSet()
		for _, g := range d.fileSet.VirtualFileGroups() {
			groupCopy := *g
			c.fileSet.AddVirtualFileGroup(&groupCopy)
		}
	}
	fileTranslation := make(map[*ContentFile]*ContentFile)
	if d.fileSet != nil {
		for _, f := range d.fileSet.Files() {
			fileCopy := &ContentFile{
				Location:       f.Location,
				MimeType:       f.MimeType,
				Identifier:     f.Identifier,
				Representative: f.Representative,
			}
			c.fileSet.AddFile(fileCopy)
			fileTranslation[f] = fileCopy
		}
	}

	relink := func(src *StructNode) error {
		dst := translation[src]
		for _, ref := range src.refsTo {
			target, ok := translation[ref.Target()]
			if !ok {
				return errors.NewPreferences(
					"reference target " + ref.Target().TypeName() + " is outside the document trees")
			}
			dst.AddReferenceTo(target, ref.Type())
		}
		for _, cfr := range src.contentFileRefs {
			fileCopy, ok := fileTranslation[cfr.File]
			if !ok {
				fileCopy = &ContentFile{
					Location:       cfr.File.Location,
					MimeType:       cfr.File.MimeType,
					Identifier:     cfr.File.Identifier,
					Representative: cfr.File.Representative,
				}
				fileTranslation[cfr.File] = fileCopy
			}
			dst.AddContentFileArea(fileCopy, cfr.Area.Copy())
		}
		// AmdSec pointers survive by reference.
		dst.amdSec = src.amdSec
		dst.techMds = append([]*TechMd(nil), src.techMds...)
		return nil
	}

	for _, src := range ordered {
		if err := relink(src); err != nil {
			return nil, err
		}
	}

	c.amdSec = d.amdSec
	return c, nil
}

// copyNodeInto deep-copies a node with metadata and all descendants into
// the document c, recording every translated pair in tree order.
func copyNodeInto(n *StructNode, parent *StructNode, c *Document, translation map[*StructNode]*StructNode, ordered *[]*StructNode) *StructNode {
	dst := n.Copy(true, RecurseNone)
	dst.parent = parent
	dst.doc = c
	translation[n] = dst
	*ordered = append(*ordered, n)
	for _, child := range n.children {
		dst.children = append(dst.children, copyNodeInto(child, dst, c, translation, ordered))
	}
	return dst
}
