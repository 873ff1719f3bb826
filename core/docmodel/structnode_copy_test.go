package docmodel

import (
	"testing"
)

func TestCopyRecursiveWithMetadata(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")
	chapter := mustNode(rs, "Chapter")
	mustAddMetadata(chapter, rs, "TitleDocMain", "One")
	if err := mono.AddChild(chapter); err != nil {
		t.Fatal(err)
	}

	c := mono.Copy(true, RecurseAll)

	if !c.Equals(mono) {
		t.Error("a full copy must compare equal to the original")
	}
	if c == mono || c.Children()[0] == chapter {
		t.Error("copy must not share nodes with the original")
	}
	if c.Children()[0].Parent() != c {
		t.Error("copied children must point at the copied parent")
	}
	if c.MetadataList()[0] == mono.MetadataList()[0] {
		t.Error("metadata must be copied, not shared")
	}

	// Mutating the copy must not touch the original.
	c.MetadataList()[0].Value = "Changed"
	if mono.MetadataList()[0].Value != "Hello" {
		t.Error("copy mutation leaked into the original")
	}
}

func TestCopyWithoutMetadata(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")
	chapter := mustNode(rs, "Chapter")
	if err := mono.AddChild(chapter); err != nil {
		t.Fatal(err)
	}

	c := mono.Copy(false, RecurseAll)
	if c.MetadataList() != nil {
		t.Error("copy without metadata should have an empty metadata list")
	}
	if len(c.Children()) != 1 {
		t.Error("structure should still be copied")
	}
}

func TestCopyNonRecursive(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	chapter := mustNode(rs, "Chapter")
	if err := mono.AddChild(chapter); err != nil {
		t.Fatal(err)
	}

	c := mono.Copy(true, RecurseNone)
	if c.Children() != nil {
		t.Error("non-recursive copy should have no children")
	}
}

func TestCopySameAnchorRecursion(t *testing.T) {
	rs := testRuleSet()
	series := mustNode(rs, "Series")
	journal := mustNode(rs, "Journal")
	if err := series.AddChild(journal); err != nil {
		t.Fatal(err)
	}

	// The journal belongs to a different anchor class than the series, so
	// same-anchor recursion stops above it.
	c := series.Copy(true, RecurseSameAnchor)
	if c.Children() != nil {
		t.Error("same-anchor copy should not descend into another anchor class")
	}
}

func TestCopyDoesNotShareIdentityBearingParts(t *testing.T) {
	rs := testRuleSet()
	doc := NewDocument()
	chapter, _ := doc.CreateStructNode(rs.StructTypeByName("Chapter"))
	page, _ := doc.CreateStructNode(rs.StructTypeByName("page"))
	chapter.AddReferenceTo(page, LogicalPhysicalRefType)
	page.AddContentFile(NewContentFile("/images/00000001.tif", "image/tiff"))
	sec := NewAmdSec("AMD")
	chapter.SetAmdSec(sec)

	c := chapter.Copy(true, RecurseAll)
	if c.ToReferences() != nil {
		t.Error("cross-references are identity-bearing and must not be copied")
	}
	if c.AmdSec() != nil {
		t.Error("the administrative-metadata pointer must not be copied")
	}

	pageCopy := page.Copy(true, RecurseAll)
	if pageCopy.ContentFileReferences() != nil {
		t.Error("content-file references must not be copied")
	}
}

// Scenario: Journal(J) -> Volume -> Article(J) -> Section, truncated at
// anchor class J. The root keeps its metadata in full, the volume and the
// article survive as allow-listed stubs, and the section is cut off.
func TestCopyTruncated(t *testing.T) {
	rs := testRuleSet()
	journal := mustNode(rs, "Journal")
	mustAddMetadata(journal, rs, "TitleDocMain", "The Journal")
	volume := mustNode(rs, "Volume")
	mustAddMetadata(volume, rs, "TitleDocMain", "Vol. 1")
	mustAddMetadata(volume, rs, "TitleDocMainShort", "1")
	article := mustNode(rs, "Article")
	mustAddMetadata(article, rs, "TitleDocMain", "An Article")
	author := NewPerson(rs.MetadataTypeByName("Author"))
	author.Lastname = "Doe"
	if err := article.AddPerson(author); err != nil {
		t.Fatal(err)
	}
	section := mustNode(rs, "Section")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}
	if err := volume.AddChild(article); err != nil {
		t.Fatal(err)
	}
	if err := article.AddChild(section); err != nil {
		t.Fatal(err)
	}

	c := journal.CopyTruncated("J")

	if c.TypeName() != "Journal" {
		t.Fatalf("root type = %q", c.TypeName())
	}
	if got := c.MetadataList(); len(got) != 1 || got[0].Value != "The Journal" {
		t.Errorf("root should keep its metadata in full, got %v", got)
	}

	if len(c.Children()) != 1 {
		t.Fatalf("root should keep the volume, children = %d", len(c.Children()))
	}
	volumeCopy := c.Children()[0]
	if volumeCopy.TypeName() != "Volume" {
		t.Fatalf("first child = %q", volumeCopy.TypeName())
	}
	// The stub keeps only label/orderlabel/pointer metadata.
	for _, md := range volumeCopy.MetadataList() {
		if !foreignStubMetadataTypes[md.TypeName()] {
			t.Errorf("stub kept disallowed metadata %q", md.TypeName())
		}
	}
	if got := len(volumeCopy.MetadataList()); got != 2 {
		t.Errorf("stub should keep its two label entries, got %d", got)
	}

	if len(volumeCopy.Children()) != 1 {
		t.Fatalf("volume stub should retain the article, children = %d", len(volumeCopy.Children()))
	}
	articleCopy := volumeCopy.Children()[0]
	if articleCopy.TypeName() != "Article" {
		t.Fatalf("second level = %q", articleCopy.TypeName())
	}
	if articleCopy.Persons() != nil {
		t.Error("the interrupted article survives only as a stub without persons")
	}

	if articleCopy.Children() != nil {
		t.Error("the section is below the cutoff and must not be present")
	}
}

func TestCopyTruncatedBottomFile(t *testing.T) {
	rs := testRuleSet()
	journal := mustNode(rs, "Journal")
	mustAddMetadata(journal, rs, "TitleDocMain", "The Journal")
	volume := mustNode(rs, "Volume")
	mustAddMetadata(volume, rs, "TitleDocMain", "Vol. 1")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}

	// Truncating at the empty class keeps the classless volume in full
	// and reduces the anchored root to its label metadata.
	c := journal.CopyTruncated("")
	if got := len(c.MetadataList()); got != 1 {
		t.Errorf("bridge root should keep its label metadata, got %d entries", got)
	}
	volumeCopy := c.Children()[0]
	if got := volumeCopy.MetadataList(); len(got) != 1 || got[0].Value != "Vol. 1" {
		t.Errorf("classless volume should keep its metadata in full, got %v", got)
	}
}
