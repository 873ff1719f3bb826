// Package ruleset holds the typed schema that governs a digital document:
// which structural types exist, which children and metadata they allow, and
// with what cardinality. A RuleSet is read-only after loading.
package ruleset

// Cardinality restricts how often a metadata type may occur on one
// structural node.
type Cardinality string

// Cardinality tokens as they appear in rule-set files.
const (
	// CardinalityOptional allows zero or one occurrence ("1o").
	CardinalityOptional Cardinality = "1o"
	// CardinalityOne requires exactly one occurrence ("1m").
	CardinalityOne Cardinality = "1m"
	// CardinalityAny allows any number of occurrences ("*").
	CardinalityAny Cardinality = "*"
	// CardinalityAtLeastOne requires one or more occurrences ("+").
	CardinalityAtLeastOne Cardinality = "+"
)

// validCardinalities is the set of recognized tokens.
var validCardinalities = map[Cardinality]bool{
	CardinalityOptional:   true,
	CardinalityOne:        true,
	CardinalityAny:        true,
	CardinalityAtLeastOne: true,
}

// IsValid returns true if the cardinality token is recognized.
func (c Cardinality) IsValid() bool {
	return validCardinalities[c]
}

// HiddenPrefix marks internal metadata types. Types whose name begins with
// this prefix are not user-visible and carry unlimited cardinality.
const HiddenPrefix = "_"

// MetadataType describes one kind of metadata that can be attached to a
// structural node.
type MetadataType struct {
	// Name is the stable key of this type for the lifetime of the rule set.
	Name string

	// Labels maps a language code to the localized display label.
	Labels map[string]string

	// IsPerson marks types whose values are persons rather than plain strings.
	IsPerson bool

	// IsIdentifier marks types whose values identify the document.
	IsIdentifier bool
}

// Label returns the localized label for the given language, falling back
// to the type name.
func (t *MetadataType) Label(language string) string {
	if t == nil {
		return ""
	}
	if l, ok := t.Labels[language]; ok {
		return l
	}
	return t.Name
}

// IsHidden returns true for internal types (name begins with "_").
func (t *MetadataType) IsHidden() bool {
	return t != nil && len(t.Name) > 0 && t.Name[:1] == HiddenPrefix
}

// Equals compares two metadata types field by field with null safety.
func (t *MetadataType) Equals(other *MetadataType) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name &&
		t.IsPerson == other.IsPerson &&
		t.IsIdentifier == other.IsIdentifier
}

// Copy returns an independent copy of the metadata type.
func (t *MetadataType) Copy() *MetadataType {
	if t == nil {
		return nil
	}
	c := &MetadataType{
		Name:         t.Name,
		IsPerson:     t.IsPerson,
		IsIdentifier: t.IsIdentifier,
	}
	if t.Labels != nil {
		c.Labels = make(map[string]string, len(t.Labels))
		for k, v := range t.Labels {
			c.Labels[k] = v
		}
	}
	return c
}

// MetadataGroupType describes a labeled bundle of metadata types that can
// be attached to a structural node as one unit.
type MetadataGroupType struct {
	// Name is the stable key of this group type.
	Name string

	// Labels maps a language code to the localized display label.
	Labels map[string]string

	// members lists the metadata types belonging to the group, with their
	// in-group cardinality, in declaration order.
	members []*metadataBinding
}

// Label returns the localized label for the given language, falling back
// to the group type name.
func (g *MetadataGroupType) Label(language string) string {
	if g == nil {
		return ""
	}
	if l, ok := g.Labels[language]; ok {
		return l
	}
	return g.Name
}

// AddMetadataType declares a member metadata type with its cardinality.
func (g *MetadataGroupType) AddMetadataType(t *MetadataType, num Cardinality) {
	if t == nil {
		return
	}
	g.members = append(g.members, &metadataBinding{mdType: t, num: num})
}

// MetadataTypes returns the member metadata types in declaration order.
func (g *MetadataGroupType) MetadataTypes() []*MetadataType {
	result := make([]*MetadataType, 0, len(g.members))
	for _, b := range g.members {
		result = append(result, b.mdType)
	}
	return result
}

// NumberOfMetadataType returns the in-group cardinality for the named
// member, or "" if the type is not a member.
func (g *MetadataGroupType) NumberOfMetadataType(name string) Cardinality {
	for _, b := range g.members {
		if b.mdType.Name == name {
			return b.num
		}
	}
	return ""
}

// Equals compares two group types by name with null safety.
func (g *MetadataGroupType) Equals(other *MetadataGroupType) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.Name == other.Name
}

// metadataBinding attaches a cardinality and display flag to a metadata
// type declared on a structural type or group type.
type metadataBinding struct {
	mdType         *MetadataType
	num            Cardinality
	defaultDisplay bool
}

// groupBinding attaches a cardinality to a group type declared on a
// structural type.
type groupBinding struct {
	groupType      *MetadataGroupType
	num            Cardinality
	defaultDisplay bool
}

// StructType describes one kind of structural node: a conceptual unit such
// as a monograph, chapter, or page.
type StructType struct {
	// Name is the stable key of this type for the lifetime of the rule set.
	Name string

	// AnchorClass labels types that live in a separate serialization unit
	// from their descendants. Empty means no anchor class.
	AnchorClass string

	// Labels maps a language code to the localized display label.
	Labels map[string]string

	allowedChildren []string
	metadata        []*metadataBinding
	groups          []*groupBinding
}

// Equals compares two struct types field by field with null safety.
func (t *StructType) Equals(other *StructType) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Name == other.Name && t.AnchorClass == other.AnchorClass
}

// Label returns the localized label for the given language, falling back
// to the type name.
func (t *StructType) Label(language string) string {
	if t == nil {
		return ""
	}
	if l, ok := t.Labels[language]; ok {
		return l
	}
	return t.Name
}

// AddAllowedChildType declares a structural type name as an allowed child.
func (t *StructType) AddAllowedChildType(name string) {
	for _, n := range t.allowedChildren {
		if n == name {
			return
		}
	}
	t.allowedChildren = append(t.allowedChildren, name)
}

// AllowedChildTypes returns the allowed child type names in declaration order.
func (t *StructType) AllowedChildTypes() []string {
	result := make([]string, len(t.allowedChildren))
	copy(result, t.allowedChildren)
	return result
}

// IsChildTypeAllowed reports whether the named type may be added as a child.
func (t *StructType) IsChildTypeAllowed(name string) bool {
	for _, n := range t.allowedChildren {
		if n == name {
			return true
		}
	}
	return false
}

// AddMetadataType declares a metadata type on this structural type with
// its cardinality and default-display flag. The struct type keeps its own
// canonical copy of the metadata type; metadata attached to a node of this
// type is rebound to that copy.
func (t *StructType) AddMetadataType(mdType *MetadataType, num Cardinality, defaultDisplay bool) {
	if mdType == nil {
		return
	}
	for _, b := range t.metadata {
		if b.mdType.Name == mdType.Name {
			b.num = num
			b.defaultDisplay = defaultDisplay
			return
		}
	}
	t.metadata = append(t.metadata, &metadataBinding{mdType: mdType.Copy(), num: num, defaultDisplay: defaultDisplay})
}

// MetadataTypes returns all declared metadata types in declaration order.
// The returned pointers are the canonical copies owned by this type;
// metadata attached to a node of this type is rebound to them.
func (t *StructType) MetadataTypes() []*MetadataType {
	result := make([]*MetadataType, 0, len(t.metadata))
	for _, b := range t.metadata {
		result = append(result, b.mdType)
	}
	return result
}

// MetadataTypeByName returns the canonical declared type with the given
// name, or nil if it is not declared here.
func (t *StructType) MetadataTypeByName(name string) *MetadataType {
	for _, b := range t.metadata {
		if b.mdType.Name == name {
			return b.mdType
		}
	}
	return nil
}

// NumberOfMetadataType returns the cardinality declared for the named
// metadata type, or "" if the type is not declared here.
func (t *StructType) NumberOfMetadataType(name string) Cardinality {
	for _, b := range t.metadata {
		if b.mdType.Name == name {
			return b.num
		}
	}
	return ""
}

// DefaultDisplayMetadataTypes returns the declared metadata types flagged
// as default-display, in declaration order.
func (t *StructType) DefaultDisplayMetadataTypes() []*MetadataType {
	var result []*MetadataType
	for _, b := range t.metadata {
		if b.defaultDisplay {
			result = append(result, b.mdType)
		}
	}
	return result
}

// AddMetadataGroupType declares a group type on this structural type.
func (t *StructType) AddMetadataGroupType(groupType *MetadataGroupType, num Cardinality, defaultDisplay bool) {
	if groupType == nil {
		return
	}
	for _, b := range t.groups {
		if b.groupType.Name == groupType.Name {
			b.num = num
			b.defaultDisplay = defaultDisplay
			return
		}
	}
	t.groups = append(t.groups, &groupBinding{groupType: groupType, num: num, defaultDisplay: defaultDisplay})
}

// MetadataGroupTypes returns all declared group types in declaration order.
func (t *StructType) MetadataGroupTypes() []*MetadataGroupType {
	result := make([]*MetadataGroupType, 0, len(t.groups))
	for _, b := range t.groups {
		result = append(result, b.groupType)
	}
	return result
}

// MetadataGroupTypeByName returns the canonical declared group type with
// the given name, or nil.
func (t *StructType) MetadataGroupTypeByName(name string) *MetadataGroupType {
	for _, b := range t.groups {
		if b.groupType.Name == name {
			return b.groupType
		}
	}
	return nil
}

// NumberOfMetadataGroupType returns the cardinality declared for the named
// group type, or "" if the group is not declared here.
func (t *StructType) NumberOfMetadataGroupType(name string) Cardinality {
	for _, b := range t.groups {
		if b.groupType.Name == name {
			return b.num
		}
	}
	return ""
}

// DefaultDisplayMetadataGroupTypes returns the declared group types
// flagged as default-display, in declaration order.
func (t *StructType) DefaultDisplayMetadataGroupTypes() []*MetadataGroupType {
	var result []*MetadataGroupType
	for _, b := range t.groups {
		if b.defaultDisplay {
			result = append(result, b.groupType)
		}
	}
	return result
}

// RuleSet is the catalog of structural and metadata types. It is built
// once (by LoadFile, Parse or the Add methods) and read-only afterwards.
type RuleSet struct {
	structTypes map[string]*StructType
	mdTypes     map[string]*MetadataType
	groupTypes  map[string]*MetadataGroupType

	// declaration order, for deterministic iteration
	structOrder []string
	mdOrder     []string
	groupOrder  []string
}

// New returns an empty rule set.
func New() *RuleSet {
	return &RuleSet{
		structTypes: make(map[string]*StructType),
		mdTypes:     make(map[string]*MetadataType),
		groupTypes:  make(map[string]*MetadataGroupType),
	}
}

// AddStructType registers a structural type. A type with the same name
// replaces the previous registration but keeps its position.
func (r *RuleSet) AddStructType(t *StructType) {
	if t == nil || t.Name == "" {
		return
	}
	if _, ok := r.structTypes[t.Name]; !ok {
		r.structOrder = append(r.structOrder, t.Name)
	}
	r.structTypes[t.Name] = t
}

// AddMetadataType registers a metadata type.
func (r *RuleSet) AddMetadataType(t *MetadataType) {
	if t == nil || t.Name == "" {
		return
	}
	if _, ok := r.mdTypes[t.Name]; !ok {
		r.mdOrder = append(r.mdOrder, t.Name)
	}
	r.mdTypes[t.Name] = t
}

// AddMetadataGroupType registers a metadata group type.
func (r *RuleSet) AddMetadataGroupType(t *MetadataGroupType) {
	if t == nil || t.Name == "" {
		return
	}
	if _, ok := r.groupTypes[t.Name]; !ok {
		r.groupOrder = append(r.groupOrder, t.Name)
	}
	r.groupTypes[t.Name] = t
}

// StructTypeByName returns the structural type with the given name, or nil.
func (r *RuleSet) StructTypeByName(name string) *StructType {
	return r.structTypes[name]
}

// MetadataTypeByName returns the metadata type with the given name, or nil.
func (r *RuleSet) MetadataTypeByName(name string) *MetadataType {
	return r.mdTypes[name]
}

// MetadataGroupTypeByName returns the group type with the given name, or nil.
func (r *RuleSet) MetadataGroupTypeByName(name string) *MetadataGroupType {
	return r.groupTypes[name]
}

// StructTypes returns all structural types in declaration order.
func (r *RuleSet) StructTypes() []*StructType {
	result := make([]*StructType, 0, len(r.structOrder))
	for _, name := range r.structOrder {
		result = append(result, r.structTypes[name])
	}
	return result
}

// MetadataTypes returns all metadata types in declaration order.
func (r *RuleSet) MetadataTypes() []*MetadataType {
	result := make([]*MetadataType, 0, len(r.mdOrder))
	for _, name := range r.mdOrder {
		result = append(result, r.mdTypes[name])
	}
	return result
}

// MetadataGroupTypes returns all group types in declaration order.
func (r *RuleSet) MetadataGroupTypes() []*MetadataGroupType {
	result := make([]*MetadataGroupType, 0, len(r.groupOrder))
	for _, name := range r.groupOrder {
		result = append(result, r.groupTypes[name])
	}
	return result
}
