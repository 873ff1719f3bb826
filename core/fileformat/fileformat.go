// Package fileformat defines the capability contract between the document
// model and the serialization adapters. The core never depends on a
// concrete wire format; adapters implement FileFormat and exchange a
// shared Document with the caller.
package fileformat

import (
	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/errors"
)

// FileFormat is the read/write contract a serialization adapter fulfils.
//
// Read parses the file at path and populates the adapter's document. It
// fails with a ReadError on a parse error, with an underlying
// fs.ErrNotExist for a missing file, and with a PreferencesError when the
// file references types the rule set does not declare.
//
// Write serializes the adapter's current document. It fails with a
// WriteError.
//
// Update optionally rewrites a file in place; adapters without in-place
// support return ErrUnsupported.
type FileFormat interface {
	Read(path string) error
	Write(path string) error
	Update(path string) error
	Document() *docmodel.Document
	SetDocument(doc *docmodel.Document)
}

// UpdateUnsupported is the Update result for adapters without in-place
// update support.
func UpdateUnsupported(format string) error {
	return errors.Wrapf(errors.ErrUnsupported, "%s does not support in-place update", format)
}
