package docmodel

import (
	"strings"

	"github.com/archivata/metaconv/core/ruleset"
)

// Metadata is one typed value attached to a structural node, optionally
// carrying a qualifier pair and an authority triple.
type Metadata struct {
	mdType *ruleset.MetadataType
	node   *StructNode

	// Value is the metadata value.
	Value string

	// ValueQualifier and QualifierType form the optional qualifier pair.
	ValueQualifier string
	QualifierType  string

	// AuthorityID, AuthorityURI and AuthorityValue form the optional
	// authority triple.
	AuthorityID    string
	AuthorityURI   string
	AuthorityValue string
}

// NewMetadata creates a metadata carrier of the given type.
func NewMetadata(mdType *ruleset.MetadataType) *Metadata {
	return &Metadata{mdType: mdType}
}

// Type returns the metadata type.
func (m *Metadata) Type() *ruleset.MetadataType {
	return m.mdType
}

// SetType replaces the metadata type. Attaching a metadata to a node
// rebinds the type to the canonical copy owned by the node's struct type.
func (m *Metadata) SetType(t *ruleset.MetadataType) {
	m.mdType = t
}

// TypeName returns the type name, or "" for an untyped carrier.
func (m *Metadata) TypeName() string {
	if m.mdType == nil {
		return ""
	}
	return m.mdType.Name
}

// Node returns the structural node this metadata is attached to, or nil.
func (m *Metadata) Node() *StructNode {
	return m.node
}

// SetValueQualifier sets the qualifier pair.
func (m *Metadata) SetValueQualifier(qualifier, qualifierType string) {
	m.ValueQualifier = qualifier
	m.QualifierType = qualifierType
}

// SetAuthorityFile sets the authority triple.
func (m *Metadata) SetAuthorityFile(id, uri, value string) {
	m.AuthorityID = id
	m.AuthorityURI = uri
	m.AuthorityValue = value
}

// Equals compares two metadata carriers field by field with null safety.
// The owning node is identity-bearing and not part of the comparison.
func (m *Metadata) Equals(other *Metadata) bool {
	if m == nil || other == nil {
		return m == other
	}
	if !m.mdType.Equals(other.mdType) {
		return false
	}
	return m.Value == other.Value &&
		m.ValueQualifier == other.ValueQualifier &&
		m.QualifierType == other.QualifierType &&
		m.AuthorityID == other.AuthorityID &&
		m.AuthorityURI == other.AuthorityURI &&
		m.AuthorityValue == other.AuthorityValue
}

// Copy returns a detached field-by-field copy of the metadata.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	c := &Metadata{
		mdType:         m.mdType,
		Value:          m.Value,
		ValueQualifier: m.ValueQualifier,
		QualifierType:  m.QualifierType,
		AuthorityID:    m.AuthorityID,
		AuthorityURI:   m.AuthorityURI,
		AuthorityValue: m.AuthorityValue,
	}
	return c
}

// Person is a metadata carrier whose value is a person or corporate body.
type Person struct {
	Metadata

	Firstname   string
	Lastname    string
	DisplayName string
	Affiliation string
	Institution string

	// Role defaults to the metadata type name when empty.
	Role string

	// PersonType is a free tag distinguishing person categories.
	PersonType string

	// IsCorporation marks corporate bodies.
	IsCorporation bool
}

// NewPerson creates a person carrier of the given type. The role defaults
// to the type name.
func NewPerson(mdType *ruleset.MetadataType) *Person {
	p := &Person{Metadata: Metadata{mdType: mdType}}
	if mdType != nil {
		p.Role = mdType.Name
	}
	return p
}

// Display returns the display name, falling back to "Lastname, Firstname".
func (p *Person) Display() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	switch {
	case p.Lastname != "" && p.Firstname != "":
		return p.Lastname + ", " + p.Firstname
	case p.Lastname != "":
		return p.Lastname
	default:
		return p.Firstname
	}
}

// Equals compares two persons field by field with null safety.
func (p *Person) Equals(other *Person) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !p.Metadata.Equals(&other.Metadata) {
		return false
	}
	return p.Firstname == other.Firstname &&
		p.Lastname == other.Lastname &&
		p.DisplayName == other.DisplayName &&
		p.Affiliation == other.Affiliation &&
		p.Institution == other.Institution &&
		p.Role == other.Role &&
		p.PersonType == other.PersonType &&
		p.IsCorporation == other.IsCorporation
}

// Copy returns a detached field-by-field copy of the person.
func (p *Person) Copy() *Person {
	if p == nil {
		return nil
	}
	c := *p
	c.node = nil
	return &c
}

// MetadataGroup is a labeled bundle of metadata and person entries
// attached to a structural node as one unit.
type MetadataGroup struct {
	groupType *ruleset.MetadataGroupType
	node      *StructNode

	metadata []*Metadata
	persons  []*Person
}

// NewMetadataGroup creates a group of the given type.
func NewMetadataGroup(groupType *ruleset.MetadataGroupType) *MetadataGroup {
	return &MetadataGroup{groupType: groupType}
}

// Type returns the group type.
func (g *MetadataGroup) Type() *ruleset.MetadataGroupType {
	return g.groupType
}

// TypeName returns the group type name, or "" for an untyped group.
func (g *MetadataGroup) TypeName() string {
	if g.groupType == nil {
		return ""
	}
	return g.groupType.Name
}

// Node returns the structural node this group is attached to, or nil.
func (g *MetadataGroup) Node() *StructNode {
	return g.node
}

// AddMetadata appends a metadata entry to the group.
func (g *MetadataGroup) AddMetadata(md *Metadata) {
	if md == nil {
		return
	}
	g.metadata = append(g.metadata, md)
}

// AddPerson appends a person entry to the group.
func (g *MetadataGroup) AddPerson(p *Person) {
	if p == nil {
		return
	}
	g.persons = append(g.persons, p)
}

// MetadataList returns the group's metadata entries in insertion order.
func (g *MetadataGroup) MetadataList() []*Metadata {
	return g.metadata
}

// PersonList returns the group's person entries in insertion order.
func (g *MetadataGroup) PersonList() []*Person {
	return g.persons
}

// SetMetadataList replaces the group's metadata entries.
func (g *MetadataGroup) SetMetadataList(list []*Metadata) {
	g.metadata = list
}

// SetPersonList replaces the group's person entries.
func (g *MetadataGroup) SetPersonList(list []*Person) {
	g.persons = list
}

// Equals compares two groups: same type, and set equality over their
// metadata and person entries.
func (g *MetadataGroup) Equals(other *MetadataGroup) bool {
	if g == nil || other == nil {
		return g == other
	}
	if !g.groupType.Equals(other.groupType) {
		return false
	}
	if len(g.metadata) != len(other.metadata) || len(g.persons) != len(other.persons) {
		return false
	}
	for _, md := range g.metadata {
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
	for _, p := range g.persons {
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
	return true
}

// Copy returns a detached deep copy of the group.
func (g *MetadataGroup) Copy() *MetadataGroup {
	if g == nil {
		return nil
	}
	c := NewMetadataGroup(g.groupType)
	for _, md := range g.metadata {
		c.metadata = append(c.metadata, md.Copy())
	}
	for _, p := range g.persons {
		c.persons = append(c.persons, p.Copy())
	}
	return c
}

// isHiddenName reports whether a metadata type name marks an internal type.
func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ruleset.HiddenPrefix)
}
