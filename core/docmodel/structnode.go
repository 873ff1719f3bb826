package docmodel

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/archivata/metaconv/core/errors"
	"github.com/archivata/metaconv/core/ruleset"
)

// Metadata type names with structural meaning during serialization.
const (
	// MetsPointerMetadataType carries the URL of a pointer stub written in
	// one serialization file to reference content living in an anchor file.
	MetsPointerMetadataType = "MetsPointerURL"

	// LabelMetadataType is the attribute type serialized as a node label.
	LabelMetadataType = "TitleDocMain"

	// OrderLabelMetadataType is the attribute type serialized as a node
	// order label.
	OrderLabelMetadataType = "TitleDocMainShort"
)

// foreignStubMetadataTypes are the only metadata types retained on
// foreign-class stub nodes by CopyTruncated.
var foreignStubMetadataTypes = map[string]bool{
	MetsPointerMetadataType: true,
	LabelMetadataType:       true,
	OrderLabelMetadataType:  true,
}

// StructNode is one node of the logical or physical tree. It holds the
// node's structural type, its metadata, persons and groups, content-file
// references, cross-tree reference lists, and the parent/children links.
type StructNode struct {
	structType *ruleset.StructType
	doc        *Document

	// sig is the identity signature used by the cycle-safe equality
	// traversal to key its visited maps.
	sig string

	identifier  string
	refToAnchor string
	logical     bool
	physical    bool

	parent   *StructNode
	children []*StructNode

	metadata []*Metadata
	persons  []*Person
	groups   []*MetadataGroup

	contentFileRefs []*ContentFileReference
	refsTo          []*Reference
	refsFrom        []*Reference

	amdSec  *AmdSec
	techMds []*TechMd

	// sortMu makes the sorting operations atomic with respect to other
	// operations on this node.
	sortMu sync.Mutex

	visitedTo   map[string]*StructNode
	visitedFrom map[string]*StructNode
}

// NewStructNode creates a detached node of the given type. The factory
// path for nodes belonging to a document is Document.CreateStructNode.
func NewStructNode(structType *ruleset.StructType) (*StructNode, error) {
	if structType == nil {
		return nil, errors.NewTypeNotAllowedForParent("")
	}
	return &StructNode{
		structType: structType,
		sig:        structType.Name + ":" + uuid.NewString(),
	}, nil
}

// Type returns the structural type, or nil.
func (n *StructNode) Type() *ruleset.StructType {
	return n.structType
}

// SetType replaces the structural type.
func (n *StructNode) SetType(t *ruleset.StructType) {
	n.structType = t
	name := ""
	if t != nil {
		name = t.Name
	}
	n.sig = name + ":" + uuid.NewString()
}

// TypeName returns the structural type name, or "".
func (n *StructNode) TypeName() string {
	if n.structType == nil {
		return ""
	}
	return n.structType.Name
}

// Identifier returns the local identifier.
func (n *StructNode) Identifier() string {
	return n.identifier
}

// SetIdentifier sets the local identifier. No uniqueness check is
// performed.
func (n *StructNode) SetIdentifier(id string) {
	n.identifier = id
}

// ReferenceToAnchor returns the reference-to-anchor string.
func (n *StructNode) ReferenceToAnchor() string {
	return n.refToAnchor
}

// SetReferenceToAnchor sets the reference-to-anchor string.
func (n *StructNode) SetReferenceToAnchor(ref string) {
	n.refToAnchor = ref
}

// IsLogical reports whether the node descends from the logical root.
func (n *StructNode) IsLogical() bool {
	return n.logical
}

// SetLogical sets the logical flag on this node and all descendants.
func (n *StructNode) SetLogical(logical bool) {
	n.logical = logical
	for _, c := range n.children {
		c.SetLogical(logical)
	}
}

// IsPhysical reports whether the node descends from the physical root.
func (n *StructNode) IsPhysical() bool {
	return n.physical
}

// SetPhysical sets the physical flag on this node and all descendants.
func (n *StructNode) SetPhysical(physical bool) {
	n.physical = physical
	for _, c := range n.children {
		c.SetPhysical(physical)
	}
}

// Document returns the owning document, or nil for a detached subtree.
func (n *StructNode) Document() *Document {
	return n.doc
}

func (n *StructNode) setDocument(doc *Document) {
	n.doc = doc
	for _, c := range n.children {
		c.setDocument(doc)
	}
}

// Parent returns the parent node, or nil for a tree root.
func (n *StructNode) Parent() *StructNode {
	return n.parent
}

// TopStruct returns the root of the tree this node belongs to.
func (n *StructNode) TopStruct() *StructNode {
	if n.parent == nil {
		return n
	}
	return n.parent.TopStruct()
}

// Children returns the ordered child list, or nil if there are none.
func (n *StructNode) Children() []*StructNode {
	if len(n.children) == 0 {
		return nil
	}
	return n.children
}

// IsChildTypeAllowed reports whether the named structural type may be
// added as a child of this node.
func (n *StructNode) IsChildTypeAllowed(typeName string) bool {
	return n.structType != nil && n.structType.IsChildTypeAllowed(typeName)
}

// AddChild appends a child node. The child's type must be listed among
// this node's allowed children. The child is detached from any previous
// parent, and the logical/physical flags and document binding propagate
// to the attached subtree.
func (n *StructNode) AddChild(child *StructNode) error {
	return n.AddChildAt(len(n.children), child)
}

// AddChildAt inserts a child node at the given index, clamped to
// [0, len(children)].
func (n *StructNode) AddChildAt(index int, child *StructNode) error {
	if child == nil {
		return errors.NewTypeNotAllowedAsChild("", n.TypeName())
	}
	if n.structType == nil {
		return errors.NewNoType("add child")
	}
	if !n.structType.IsChildTypeAllowed(child.TypeName()) {
		return errors.NewTypeNotAllowedAsChild(child.TypeName(), n.TypeName())
	}

	if child.parent != nil {
		child.parent.RemoveChild(child)
	}

	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child

	child.parent = n
	child.SetLogical(n.logical)
	child.SetPhysical(n.physical)
	if n.doc != nil {
		child.setDocument(n.doc)
	}
	return nil
}

// RemoveChild detaches a child, clearing its parent link. Returns whether
// the child was actually present.
func (n *StructNode) RemoveChild(child *StructNode) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// MoveChild reorders a child to the given position, clamped to
// [0, len(children)]. The relative order of the other children is
// preserved. Returns whether the child was found.
func (n *StructNode) MoveChild(child *StructNode, position int) bool {
	from := -1
	for i, c := range n.children {
		if c == child {
			from = i
			break
		}
	}
	if from < 0 {
		return false
	}

	n.children = append(n.children[:from], n.children[from+1:]...)
	if position < 0 {
		position = 0
	}
	if position > len(n.children) {
		position = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[position+1:], n.children[position:])
	n.children[position] = child
	return true
}

// MoveChildAfter moves child directly behind the sibling below. Returns
// whether both were found.
func (n *StructNode) MoveChildAfter(child, below *StructNode) bool {
	pos := n.PositionOfChild(below)
	if pos < 0 {
		return false
	}
	return n.MoveChild(child, pos+1)
}

// MoveChildBefore moves child directly in front of the sibling above.
// Returns whether both were found.
func (n *StructNode) MoveChildBefore(child, above *StructNode) bool {
	pos := n.PositionOfChild(above)
	if pos < 0 {
		return false
	}
	return n.MoveChild(child, pos)
}

// PositionOfChild returns the index of the child, or -1.
func (n *StructNode) PositionOfChild(child *StructNode) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// NextChild returns the sibling after the given child, or nil.
func (n *StructNode) NextChild(child *StructNode) *StructNode {
	pos := n.PositionOfChild(child)
	if pos < 0 || pos+1 >= len(n.children) {
		return nil
	}
	return n.children[pos+1]
}

// PreviousChild returns the sibling before the given child, or nil.
func (n *StructNode) PreviousChild(child *StructNode) *StructNode {
	pos := n.PositionOfChild(child)
	if pos <= 0 {
		return nil
	}
	return n.children[pos-1]
}

// GetChildPath resolves a numeric child path such as "0,2,1": the first
// number indexes into this node's children, the second into that child's
// children, and so on.
func (n *StructNode) GetChildPath(path string) (*StructNode, error) {
	head := path
	rest := ""
	if sep := strings.IndexByte(path, ','); sep >= 0 {
		head, rest = path[:sep], path[sep+1:]
	}
	index, err := strconv.Atoi(head)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid child path %q", path)
	}
	if index < 0 || index >= len(n.children) {
		return nil, errors.Wrapf(errors.ErrNotLinked, "child index %d out of range", index)
	}
	child := n.children[index]
	if rest == "" {
		return child, nil
	}
	return child.GetChildPath(rest)
}

// GetAllChildrenByTypeAndMetadataType returns the direct children whose
// structural type matches structName and which carry at least one
// metadata or person of type mdName. The wildcard "*" matches any.
func (n *StructNode) GetAllChildrenByTypeAndMetadataType(structName, mdName string) []*StructNode {
	var result []*StructNode
	for _, child := range n.children {
		if structName != "*" && child.TypeName() != structName {
			continue
		}
		if mdName != "*" && !child.HasMetadataOfType(mdName) {
			continue
		}
		result = append(result, child)
	}
	return result
}

// HasMetadataOfType reports whether the node carries at least one
// metadata or person of the named type.
func (n *StructNode) HasMetadataOfType(name string) bool {
	return n.CountMetadataOfType(name) > 0
}

// CountMetadataOfType counts metadata and person entries of the named type.
func (n *StructNode) CountMetadataOfType(name string) int {
	count := 0
	for _, md := range n.metadata {
		if md.TypeName() == name {
			count++
		}
	}
	for _, p := range n.persons {
		if p.TypeName() == name {
			count++
		}
	}
	return count
}

// MetadataList returns the node's metadata in insertion order, or nil if
// there is none.
func (n *StructNode) MetadataList() []*Metadata {
	if len(n.metadata) == 0 {
		return nil
	}
	return n.metadata
}

// MetadataByType returns the metadata entries of the named type in order.
func (n *StructNode) MetadataByType(name string) []*Metadata {
	var result []*Metadata
	for _, md := range n.metadata {
		if md.TypeName() == name {
			result = append(result, md)
		}
	}
	return result
}

// Persons returns the node's persons in insertion order, or nil.
func (n *StructNode) Persons() []*Person {
	if len(n.persons) == 0 {
		return nil
	}
	return n.persons
}

// PersonsByType returns the person entries of the named type in order.
func (n *StructNode) PersonsByType(name string) []*Person {
	var result []*Person
	for _, p := range n.persons {
		if p.TypeName() == name {
			result = append(result, p)
		}
	}
	return result
}

// Groups returns the node's metadata groups in insertion order, or nil.
func (n *StructNode) Groups() []*MetadataGroup {
	if len(n.groups) == 0 {
		return nil
	}
	return n.groups
}

// GroupsByType returns the groups of the named type in order.
func (n *StructNode) GroupsByType(name string) []*MetadataGroup {
	var result []*MetadataGroup
	for _, g := range n.groups {
		if g.TypeName() == name {
			result = append(result, g)
		}
	}
	return result
}

// checkInsertable applies the cardinality rules for adding one more
// entry of the named metadata or group type. Reports whether the entry
// may be inserted, with the rejection error when it may not.
func (n *StructNode) checkInsertable(name string, declared ruleset.Cardinality, declaredHere bool) (bool, error) {
	if isHiddenName(name) {
		return true, nil
	}
	if !declaredHere {
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	}
	switch declared {
	case ruleset.CardinalityAny, ruleset.CardinalityAtLeastOne:
		return true, nil
	case ruleset.CardinalityOptional, ruleset.CardinalityOne:
		if n.CountMetadataOfType(name) < 1 {
			return true, nil
		}
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	default:
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	}
}

// AddMetadata attaches a metadata entry to this node. The entry's type
// must be declared on the node's structural type (or be hidden), and the
// declared cardinality must not be exhausted. On success the entry's type
// is rebound to the canonical copy owned by the structural type and the
// back-pointer is set.
func (n *StructNode) AddMetadata(md *Metadata) error {
	if md == nil {
		return errors.NewMetadataTypeNotAllowed("", n.TypeName())
	}
	if n.structType == nil {
		return errors.NewNoType("add metadata")
	}

	name := md.TypeName()
	canonical := n.structType.MetadataTypeByName(name)
	declaredHere := canonical != nil
	ok, err := n.checkInsertable(name, n.structType.NumberOfMetadataType(name), declaredHere)
	if !ok {
		return err
	}
	if !isHiddenName(name) {
		md.SetType(canonical)
	}
	md.node = n
	n.metadata = append(n.metadata, md)
	return nil
}

// RemoveMetadata detaches a metadata entry. The back-pointer is cleared
// first. Cardinality minima are not enforced here; see
// CanMetadataBeRemoved. Returns whether the entry was present.
func (n *StructNode) RemoveMetadata(md *Metadata) bool {
	for i, existing := range n.metadata {
		if existing == md {
			md.node = nil
			n.metadata = append(n.metadata[:i], n.metadata[i+1:]...)
			return true
		}
	}
	return false
}

// ChangeMetadata replaces an entry by another of the same type,
// preserving the list position.
func (n *StructNode) ChangeMetadata(oldMd, newMd *Metadata) bool {
	if oldMd == nil || newMd == nil || oldMd.TypeName() != newMd.TypeName() {
		return false
	}
	for i, existing := range n.metadata {
		if existing == oldMd {
			oldMd.node = nil
			newMd.node = n
			n.metadata[i] = newMd
			return true
		}
	}
	return false
}

// CanMetadataBeRemoved reports whether removing one entry of the named
// type would keep the declared cardinality minimum satisfied.
func (n *StructNode) CanMetadataBeRemoved(name string) bool {
	if n.structType == nil || isHiddenName(name) {
		return true
	}
	switch n.structType.NumberOfMetadataType(name) {
	case ruleset.CardinalityOne, ruleset.CardinalityAtLeastOne:
		return n.CountMetadataOfType(name) > 1
	default:
		return true
	}
}

// AddPerson attaches a person entry, applying the same rule-set checks as
// AddMetadata. A person without a type is rejected as incomplete.
func (n *StructNode) AddPerson(p *Person) error {
	if p == nil || p.Type() == nil {
		return errors.NewIncompletePerson("person has no metadata type")
	}
	if n.structType == nil {
		return errors.NewNoType("add person")
	}

	name := p.TypeName()
	canonical := n.structType.MetadataTypeByName(name)
	declaredHere := canonical != nil
	ok, err := n.checkInsertable(name, n.structType.NumberOfMetadataType(name), declaredHere)
	if !ok {
		return err
	}
	if !isHiddenName(name) {
		p.SetType(canonical)
	}
	p.node = n
	n.persons = append(n.persons, p)
	return nil
}

// RemovePerson detaches a person entry. A person without a type is
// rejected as incomplete. Returns whether the entry was present.
func (n *StructNode) RemovePerson(p *Person) (bool, error) {
	if p == nil || p.Type() == nil {
		return false, errors.NewIncompletePerson("person has no metadata type")
	}
	for i, existing := range n.persons {
		if existing == p {
			p.node = nil
			n.persons = append(n.persons[:i], n.persons[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// AddMetadataGroup attaches a group entry, applying the rule-set checks
// for group types.
func (n *StructNode) AddMetadataGroup(g *MetadataGroup) error {
	if g == nil {
		return errors.NewMetadataTypeNotAllowed("", n.TypeName())
	}
	if n.structType == nil {
		return errors.NewNoType("add metadata group")
	}

	name := g.TypeName()
	canonical := n.structType.MetadataGroupTypeByName(name)
	declaredHere := canonical != nil
	ok, err := n.checkGroupInsertable(name, declaredHere)
	if !ok {
		return err
	}
	g.node = n
	n.groups = append(n.groups, g)
	return nil
}

func (n *StructNode) checkGroupInsertable(name string, declaredHere bool) (bool, error) {
	if isHiddenName(name) {
		return true, nil
	}
	if !declaredHere {
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	}
	switch n.structType.NumberOfMetadataGroupType(name) {
	case ruleset.CardinalityAny, ruleset.CardinalityAtLeastOne:
		return true, nil
	case ruleset.CardinalityOptional, ruleset.CardinalityOne:
		if len(n.GroupsByType(name)) < 1 {
			return true, nil
		}
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	default:
		return false, errors.NewMetadataTypeNotAllowed(name, n.TypeName())
	}
}

// RemoveMetadataGroup detaches a group entry. Returns whether it was
// present.
func (n *StructNode) RemoveMetadataGroup(g *MetadataGroup) bool {
	for i, existing := range n.groups {
		if existing == g {
			g.node = nil
			n.groups = append(n.groups[:i], n.groups[i+1:]...)
			return true
		}
	}
	return false
}

// ChangeMetadataGroup replaces a group by another of the same type,
// preserving the list position.
func (n *StructNode) ChangeMetadataGroup(oldG, newG *MetadataGroup) bool {
	if oldG == nil || newG == nil || oldG.TypeName() != newG.TypeName() {
		return false
	}
	for i, existing := range n.groups {
		if existing == oldG {
			oldG.node = nil
			newG.node = n
			n.groups[i] = newG
			return true
		}
	}
	return false
}

// CanMetadataGroupBeRemoved reports whether removing one group of the
// named type would keep the declared minimum satisfied.
func (n *StructNode) CanMetadataGroupBeRemoved(name string) bool {
	if n.structType == nil || isHiddenName(name) {
		return true
	}
	switch n.structType.NumberOfMetadataGroupType(name) {
	case ruleset.CardinalityOne, ruleset.CardinalityAtLeastOne:
		return len(n.GroupsByType(name)) > 1
	default:
		return true
	}
}

// AllVisibleMetadata returns the metadata entries whose type is not
// hidden, or nil if there are none.
func (n *StructNode) AllVisibleMetadata() []*Metadata {
	var result []*Metadata
	for _, md := range n.metadata {
		if !isHiddenName(md.TypeName()) {
			result = append(result, md)
		}
	}
	return result
}

// AllIdentifierMetadata returns the metadata entries whose type is flagged
// as an identifier.
func (n *StructNode) AllIdentifierMetadata() []*Metadata {
	var result []*Metadata
	for _, md := range n.metadata {
		if md.Type() != nil && md.Type().IsIdentifier {
			result = append(result, md)
		}
	}
	return result
}

// AddableMetadataTypes returns the declared, non-hidden metadata types
// whose cardinality still admits another entry on this node.
func (n *StructNode) AddableMetadataTypes() []*ruleset.MetadataType {
	if n.structType == nil {
		return nil
	}
	var result []*ruleset.MetadataType
	for _, mdType := range n.structType.MetadataTypes() {
		if mdType.IsHidden() {
			continue
		}
		switch n.structType.NumberOfMetadataType(mdType.Name) {
		case ruleset.CardinalityOptional, ruleset.CardinalityOne:
			if n.CountMetadataOfType(mdType.Name) > 0 {
				continue
			}
		}
		result = append(result, mdType)
	}
	return result
}

// DefaultDisplayMetadataTypes returns the declared default-display types
// that have no entry on this node yet.
func (n *StructNode) DefaultDisplayMetadataTypes() []*ruleset.MetadataType {
	if n.structType == nil {
		return nil
	}
	var result []*ruleset.MetadataType
	for _, mdType := range n.structType.DefaultDisplayMetadataTypes() {
		if mdType.IsHidden() || n.HasMetadataOfType(mdType.Name) {
			continue
		}
		result = append(result, mdType)
	}
	return result
}

// DeleteUnusedPersonsAndMetadata drops metadata entries with an empty
// value and persons with neither first nor last name.
func (n *StructNode) DeleteUnusedPersonsAndMetadata() {
	kept := n.metadata[:0]
	for _, md := range n.metadata {
		if md.Value == "" {
			md.node = nil
			continue
		}
		kept = append(kept, md)
	}
	n.metadata = kept

	keptPersons := n.persons[:0]
	for _, p := range n.persons {
		if p.Firstname == "" && p.Lastname == "" {
			p.node = nil
			continue
		}
		keptPersons = append(keptPersons, p)
	}
	n.persons = keptPersons
}
