package docmodel

import (
	"github.com/archivata/metaconv/core/ruleset"
)

// testRuleSet builds the rule set shared by the model tests: a Monograph
// with chapters and pages, plus an anchored Journal/Volume/Article family
// for the anchor-class tests.
func testRuleSet() *ruleset.RuleSet {
	rs := ruleset.New()

	title := &ruleset.MetadataType{Name: "TitleDocMain"}
	shortTitle := &ruleset.MetadataType{Name: "TitleDocMainShort"}
	author := &ruleset.MetadataType{Name: "Author", IsPerson: true}
	catalogID := &ruleset.MetadataType{Name: "CatalogIDDigital", IsIdentifier: true}
	physPage := &ruleset.MetadataType{Name: "physPageNumber"}
	logPage := &ruleset.MetadataType{Name: "logicalPageNumber"}
	pathImages := &ruleset.MetadataType{Name: "pathimagefiles"}
	place := &ruleset.MetadataType{Name: "PlaceOfPublication"}
	year := &ruleset.MetadataType{Name: "PublicationYear"}
	mptr := &ruleset.MetadataType{Name: "MetsPointerURL"}
	for _, t := range []*ruleset.MetadataType{title, shortTitle, author, catalogID, physPage, logPage, pathImages, place, year, mptr} {
		rs.AddMetadataType(t)
	}

	publication := &ruleset.MetadataGroupType{Name: "Publication"}
	publication.AddMetadataType(place, ruleset.CardinalityOptional)
	publication.AddMetadataType(year, ruleset.CardinalityOne)
	rs.AddMetadataGroupType(publication)

	monograph := &ruleset.StructType{Name: "Monograph"}
	monograph.AddAllowedChildType("Chapter")
	monograph.AddMetadataType(title, ruleset.CardinalityOne, true)
	monograph.AddMetadataType(shortTitle, ruleset.CardinalityOptional, false)
	monograph.AddMetadataType(author, ruleset.CardinalityAny, false)
	monograph.AddMetadataType(catalogID, ruleset.CardinalityOptional, false)
	monograph.AddMetadataGroupType(publication, ruleset.CardinalityOptional, false)
	rs.AddStructType(monograph)

	chapter := &ruleset.StructType{Name: "Chapter"}
	chapter.AddMetadataType(title, ruleset.CardinalityOptional, false)
	chapter.AddMetadataType(author, ruleset.CardinalityAny, false)
	rs.AddStructType(chapter)

	boundBook := &ruleset.StructType{Name: "BoundBook"}
	boundBook.AddAllowedChildType("page")
	boundBook.AddMetadataType(pathImages, ruleset.CardinalityOptional, false)
	rs.AddStructType(boundBook)

	page := &ruleset.StructType{Name: "page"}
	page.AddMetadataType(physPage, ruleset.CardinalityOne, false)
	page.AddMetadataType(logPage, ruleset.CardinalityOptional, false)
	rs.AddStructType(page)

	journal := &ruleset.StructType{Name: "Journal", AnchorClass: "J"}
	journal.AddAllowedChildType("Volume")
	journal.AddMetadataType(title, ruleset.CardinalityOne, true)
	journal.AddMetadataType(shortTitle, ruleset.CardinalityOptional, false)
	journal.AddMetadataType(mptr, ruleset.CardinalityAny, false)
	rs.AddStructType(journal)

	volume := &ruleset.StructType{Name: "Volume"}
	volume.AddAllowedChildType("Article")
	volume.AddMetadataType(title, ruleset.CardinalityOptional, false)
	volume.AddMetadataType(shortTitle, ruleset.CardinalityOptional, false)
	volume.AddMetadataType(mptr, ruleset.CardinalityAny, false)
	rs.AddStructType(volume)

	article := &ruleset.StructType{Name: "Article", AnchorClass: "J"}
	article.AddAllowedChildType("Section")
	article.AddMetadataType(title, ruleset.CardinalityOptional, false)
	article.AddMetadataType(author, ruleset.CardinalityAny, false)
	article.AddMetadataType(mptr, ruleset.CardinalityAny, false)
	rs.AddStructType(article)

	section := &ruleset.StructType{Name: "Section"}
	section.AddMetadataType(title, ruleset.CardinalityOptional, false)
	rs.AddStructType(section)

	// Second anchored family for multi-class chains.
	series := &ruleset.StructType{Name: "Series", AnchorClass: "S"}
	series.AddAllowedChildType("Journal")
	series.AddMetadataType(title, ruleset.CardinalityOptional, false)
	rs.AddStructType(series)

	return rs
}

// testHiddenType is a hidden metadata type used by tests across the
// package; hidden types are never declared in the rule set.
var testHiddenType = ruleset.MetadataType{Name: "_extra"}

// mustNode creates a detached node of the named type from the rule set.
func mustNode(rs *ruleset.RuleSet, typeName string) *StructNode {
	node, err := NewStructNode(rs.StructTypeByName(typeName))
	if err != nil {
		panic(err)
	}
	return node
}

// mustAddMetadata attaches a metadata value, panicking on rule rejection.
func mustAddMetadata(n *StructNode, rs *ruleset.RuleSet, typeName, value string) *Metadata {
	md := NewMetadata(rs.MetadataTypeByName(typeName))
	md.Value = value
	if err := n.AddMetadata(md); err != nil {
		panic(err)
	}
	return md
}
