// Package rdf reads and writes the legacy RDF-style XML metadata format.
//
// The format stores both structure trees as nested DocStruct elements
// inside an RDF:RDF root, followed by a Links section resolving the
// non-hierarchical references by node ID.
package rdf

import (
	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/fileformat"
	"github.com/archivata/metaconv/core/ruleset"
)

// FormatName identifies the adapter in errors and logs.
const FormatName = "RDF"

// rdfNamespace is declared on the document root.
const rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// Format is the RDF adapter. It carries the rule set used to resolve
// type names and the document being read or written.
type Format struct {
	rs  *ruleset.RuleSet
	doc *docmodel.Document
}

// New creates an RDF adapter bound to a rule set.
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

// Update is not supported for the legacy format.
func (f *Format) Update(path string) error {
	return fileformat.UpdateUnsupported(FormatName)
}

var _ fileformat.FileFormat = (*Format)(nil)
