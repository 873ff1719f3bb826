// Package mets reads and writes the METS metadata format: two structMap
// trees over shared dmdSec descriptive blocks, a fileSec for the content
// files, smLink edges for the cross-tree references, mptr stubs for
// anchored content, and an amdSec carrying opaque technical metadata.
package mets

import (
	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/fileformat"
	"github.com/archivata/metaconv/core/ruleset"
)

// FormatName identifies the adapter in errors and logs.
const FormatName = "METS"

// Namespaces declared on the mets root.
const (
	metsNamespace  = "http://www.loc.gov/METS/"
	goobiNamespace = "http://meta.goobi.org/v1.5.1/"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// Format is the METS adapter. It carries the rule set used to resolve
// type names and the document being read or written.
type Format struct {
	rs  *ruleset.RuleSet
	doc *docmodel.Document
}

// New creates a METS adapter bound to a rule set.
func New(rs *ruleset.RuleSet) *Format {
	return &Format{rs: rs}
}

// Document returns the adapter's document.
func (f *Format) Document() *docmodel.Document {
	return f.doc
}

// SetDocument installs the document to serialize.
func (f *Format) SetDocument(doc *docmodel.Document) {
	f.doc = doc
}

// Update is not supported; METS files are rewritten as a whole.
func (f *Format) Update(path string) error {
	return fileformat.UpdateUnsupported(FormatName)
}

var _ fileformat.FileFormat = (*Format)(nil)
