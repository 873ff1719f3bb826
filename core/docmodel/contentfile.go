package docmodel

// ContentFile references one physical file on disk, shared between the
// document's FileSet (owner) and any number of structural nodes (weak
// back-references).
type ContentFile struct {
	// Location is the file-system location.
	Location string

	// MimeType is the MIME type of the file.
	MimeType string

	// Identifier is an optional stable identifier for serialization.
	Identifier string

	// Representative marks the file chosen to represent the document.
	Representative bool

	backRefs []*StructNode
}

// NewContentFile creates a content file reference.
func NewContentFile(location, mimeType string) *ContentFile {
	return &ContentFile{Location: location, MimeType: mimeType}
}

// ReferencedBy returns the structural nodes holding a reference to this file.
func (f *ContentFile) ReferencedBy() []*StructNode {
	return f.backRefs
}

// registerRef records a node as referencing this file. Idempotent.
func (f *ContentFile) registerRef(node *StructNode) {
	for _, n := range f.backRefs {
		if n == node {
			return
		}
	}
	f.backRefs = append(f.backRefs, node)
}

// unregisterRef removes a node's back-reference.
func (f *ContentFile) unregisterRef(node *StructNode) {
	for i, n := range f.backRefs {
		if n == node {
			f.backRefs = append(f.backRefs[:i], f.backRefs[i+1:]...)
			return
		}
	}
}

// Equals compares two content files by content identity: location and
// MIME type.
func (f *ContentFile) Equals(other *ContentFile) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Location == other.Location && f.MimeType == other.MimeType
}

// ContentFileReference pairs a content file with an optional area within it.
type ContentFileReference struct {
	File *ContentFile
	Area *ContentFileArea
}

// Equals compares references by file content identity and area.
func (r *ContentFileReference) Equals(other *ContentFileReference) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !r.File.Equals(other.File) {
		return false
	}
	if r.Area == nil || other.Area == nil {
		return r.Area == other.Area
	}
	return r.Area.Equals(other.Area)
}

// VirtualFileGroup describes one derived rendition of the content files
// (e.g. thumbnails, full-resolution images) for serialization.
type VirtualFileGroup struct {
	Name        string
	PathToFiles string
	MimeType    string
	FileSuffix  string
	IDSuffix    string

	// Ordinary file groups enumerate every content file; non-ordinary
	// groups only the representative one.
	Ordinary bool
}

// FileSet owns the content files of one document. Inclusion is by content
// identity (location + MIME type).
type FileSet struct {
	files      []*ContentFile
	fileGroups []*VirtualFileGroup
}

// NewFileSet creates an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{}
}

// Files returns the content files in insertion order.
func (s *FileSet) Files() []*ContentFile {
	return s.files
}

// AddFile adds a content file with set semantics: a file equal by content
// identity to an existing member is not added twice. Returns the member
// actually held by the set.
func (s *FileSet) AddFile(f *ContentFile) *ContentFile {
	if f == nil {
		return nil
	}
	for _, existing := range s.files {
		if existing.Equals(f) {
			return existing
		}
	}
	s.files = append(s.files, f)
	return f
}

// RemoveFile removes the member equal to f by content identity. Returns
// whether a member was removed.
func (s *FileSet) RemoveFile(f *ContentFile) bool {
	for i, existing := range s.files {
		if existing.Equals(f) {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a file equal by content identity is a member.
func (s *FileSet) Contains(f *ContentFile) bool {
	for _, existing := range s.files {
		if existing.Equals(f) {
			return true
		}
	}
	return false
}

// AddVirtualFileGroup registers a derived rendition description.
func (s *FileSet) AddVirtualFileGroup(g *VirtualFileGroup) {
	if g == nil {
		return
	}
	s.fileGroups = append(s.fileGroups, g)
}

// VirtualFileGroups returns the registered renditions in insertion order.
func (s *FileSet) VirtualFileGroups() []*VirtualFileGroup {
	return s.fileGroups
}
