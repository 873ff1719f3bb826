package rdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/archivata/metaconv/core/ruleset"
)

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ruleset.HiddenPrefix)
}

// hiddenType builds the ad-hoc type object for internal metadata, which
// rule sets never declare.
func (f *Format) hiddenType(name string) *ruleset.MetadataType {
	return &ruleset.MetadataType{Name: name}
}
