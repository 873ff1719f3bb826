// Package validate provides the equivalence predicates the conversion
// driver certifies documents with: deep structural equality of two
// documents, rule-set content validation of one document, and a
// token-level comparison of two XML files.
package validate

import (
	"github.com/archivata/metaconv/core/docmodel"
)

// Equals reports whether two documents are structurally equal: both
// logical roots equal under the deep relation, and both physical roots.
// Nil root pairs are handled on a fast path before any recursion.
func Equals(a, b *docmodel.Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}
