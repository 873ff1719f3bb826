// Package docmodel is the in-memory representation of a digital document:
// a logical tree of conceptual units and a physical tree of pages, plus
// metadata, persons, content-file references, non-hierarchical
// cross-tree references, and an administrative-metadata section.
//
// Mutating operators are rule-checked against the ruleset package at
// insertion time. The deep structural-equality relation survives the
// cycles that cross-tree references induce, and the copy operations
// rebuild the reference graph into the copied arena instead of sharing
// pointers with the source.
package docmodel
