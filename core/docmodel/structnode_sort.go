package docmodel

import (
	"sort"

	"github.com/archivata/metaconv/core/ruleset"
)

// SortMetadata reorders this node's metadata and persons so that their
// order follows the declaration order of their types on the node's
// structural type in the rule set. Items whose type is not declared there
// are appended afterwards in their original order. The replacement of the
// lists is atomic with respect to other operations on this node.
func (n *StructNode) SortMetadata(rs *ruleset.RuleSet) {
	n.sortMu.Lock()
	defer n.sortMu.Unlock()

	if n.structType == nil || rs == nil {
		return
	}
	declared := rs.StructTypeByName(n.structType.Name)
	if declared == nil {
		return
	}

	newMetadata := make([]*Metadata, 0, len(n.metadata))
	newPersons := make([]*Person, 0, len(n.persons))
	oldMetadata := append([]*Metadata(nil), n.metadata...)
	oldPersons := append([]*Person(nil), n.persons...)

	for _, mdType := range declared.MetadataTypes() {
		kept := oldPersons[:0]
		for _, p := range oldPersons {
			if p.TypeName() == mdType.Name {
				newPersons = append(newPersons, p)
			} else {
				kept = append(kept, p)
			}
		}
		oldPersons = kept

		keptMd := oldMetadata[:0]
		for _, md := range oldMetadata {
			if md.TypeName() == mdType.Name {
				newMetadata = append(newMetadata, md)
			} else {
				keptMd = append(keptMd, md)
			}
		}
		oldMetadata = keptMd
	}

	// Leftovers keep their original order.
	newMetadata = append(newMetadata, oldMetadata...)
	newPersons = append(newPersons, oldPersons...)

	n.metadata = newMetadata
	n.persons = newPersons
	// Groups are not sorted.
}

// SortMetadataAlphabetical reorders this node's metadata and persons by
// type name lexicographically. The sort is stable, so entries of one type
// keep their relative order.
func (n *StructNode) SortMetadataAlphabetical() {
	n.sortMu.Lock()
	defer n.sortMu.Unlock()

	sort.SliceStable(n.metadata, func(i, j int) bool {
		return n.metadata[i].TypeName() < n.metadata[j].TypeName()
	})
	sort.SliceStable(n.persons, func(i, j int) bool {
		return n.persons[i].TypeName() < n.persons[j].TypeName()
	})
}
