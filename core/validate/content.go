package validate

import (
	"fmt"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/ruleset"
)

// ContentResult is the outcome of a content validation: the list of
// violations found, or none.
type ContentResult struct {
	// ID labels the document in the violation messages.
	ID string

	// Violations holds one human-readable line per finding.
	Violations []string
}

// OK reports whether the document passed without findings.
func (r *ContentResult) OK() bool {
	return len(r.Violations) == 0
}

func (r *ContentResult) addf(format string, args ...interface{}) {
	r.Violations = append(r.Violations, fmt.Sprintf("[%s] %s", r.ID, fmt.Sprintf(format, args...)))
}

// Content validates one document against the rule set: the logical root
// exists, every non-anchor logical unit references at least one page,
// every page is referenced by some logical unit, and the declared
// metadata cardinalities hold in the logical tree. Violations are
// collected, not aborted on.
func Content(doc *docmodel.Document, rs *ruleset.RuleSet, id string) *ContentResult {
	result := &ContentResult{ID: id}

	if doc == nil {
		result.addf("no document")
		return result
	}

	logicalTop := doc.LogicalRoot()
	if logicalTop == nil {
		result.addf("no logical document structure")
		return result
	}

	checkUnitsWithoutPages(logicalTop, result)
	checkPagesWithoutUnits(doc, result)
	checkCardinalities(logicalTop, result)

	return result
}

// checkUnitsWithoutPages reports logical units with no outgoing reference
// to a page; anchored units are exempt, their content lives elsewhere.
func checkUnitsWithoutPages(node *docmodel.StructNode, result *ContentResult) {
	if node.ToReferences() == nil && node.AnchorClass() == "" {
		result.addf("structure %s has no pages assigned", node.TypeName())
	}
	for _, child := range node.Children() {
		checkUnitsWithoutPages(child, result)
	}
}

// checkPagesWithoutUnits reports pages with no incoming reference from a
// logical unit, labeled by their page-number metadata.
func checkPagesWithoutUnits(doc *docmodel.Document, result *ContentResult) {
	physicalTop := doc.PhysicalRoot()
	if physicalTop == nil || physicalTop.Children() == nil {
		return
	}
	for _, page := range physicalTop.Children() {
		if page.FromReferences() != nil {
			continue
		}
		physical := ""
		logical := ""
		for _, md := range page.MetadataList() {
			switch md.TypeName() {
			case docmodel.PhysPageNumberMetadataType:
				physical = md.Value
			case docmodel.LogicalPageNumberMetadataType:
				logical = " (" + md.Value + ")"
			}
		}
		result.addf("page %s%s has no structure assigned", physical, logical)
	}
}

// checkCardinalities verifies the declared metadata cardinalities for
// every struct type in the logical subtree: a 1m field exists exactly
// once and is non-empty, a 1o field at most once, and a + field at least
// once and, used as an upper bound, at most once.
func checkCardinalities(node *docmodel.StructNode, result *ContentResult) {
	structType := node.Type()
	if structType != nil {
		for _, mdType := range structType.MetadataTypes() {
			num := structType.NumberOfMetadataType(mdType.Name)
			count := node.CountMetadataOfType(mdType.Name)
			switch num {
			case ruleset.CardinalityOne:
				if count != 1 {
					result.addf("%s in %s must exist 1 time but exists %d times",
						mdType.Name, structType.Name, count)
				} else if isValueEmpty(node, mdType.Name) {
					result.addf("%s in %s is empty", mdType.Name, structType.Name)
				}
			case ruleset.CardinalityOptional:
				if count > 1 {
					result.addf("%s in %s must not exist more than 1 time but exists %d times",
						mdType.Name, structType.Name, count)
				}
			case ruleset.CardinalityAtLeastOne:
				if count < 1 {
					result.addf("%s in %s must exist at least 1 time but is missing",
						mdType.Name, structType.Name)
				}
				if count > 1 {
					result.addf("%s in %s must not exist more than 1 time but exists %d times",
						mdType.Name, structType.Name, count)
				}
			}
		}
	}
	for _, child := range node.Children() {
		checkCardinalities(child, result)
	}
}

// isValueEmpty reports whether the single entry of the named type holds
// an empty value. Persons count as non-empty when any name part is set.
func isValueEmpty(node *docmodel.StructNode, name string) bool {
	for _, md := range node.MetadataByType(name) {
		return md.Value == ""
	}
	for _, p := range node.PersonsByType(name) {
		return p.Firstname == "" && p.Lastname == "" && p.DisplayName == ""
	}
	return false
}
