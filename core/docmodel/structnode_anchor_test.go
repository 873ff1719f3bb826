package docmodel

import (
	"testing"

	"github.com/archivata/metaconv/core/errors"
)

// journalTree builds Journal(J) -> Volume -> Article(J) -> Section, the
// shape whose anchor chain is interrupted.
func journalTree(t *testing.T) (journal, volume, article, section *StructNode) {
	t.Helper()
	rs := testRuleSet()
	journal = mustNode(rs, "Journal")
	volume = mustNode(rs, "Volume")
	article = mustNode(rs, "Article")
	section = mustNode(rs, "Section")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}
	if err := volume.AddChild(article); err != nil {
		t.Fatal(err)
	}
	if err := article.AddChild(section); err != nil {
		t.Fatal(err)
	}
	return journal, volume, article, section
}

func TestRealSuccessorsSkipSameClassAndStubs(t *testing.T) {
	rs := testRuleSet()
	series := mustNode(rs, "Series")
	journal := mustNode(rs, "Journal")
	if err := series.AddChild(journal); err != nil {
		t.Fatal(err)
	}
	volume := mustNode(rs, "Volume")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}

	// The journal changes anchor class (S -> J), so it is the real
	// successor; the volume below is not reached.
	got := series.RealSuccessors()
	if len(got) != 1 || got[0] != journal {
		t.Errorf("RealSuccessors = %v", got)
	}

	// A pointer stub is not a real successor.
	stub := mustNode(rs, "Journal")
	mustAddMetadata(stub, rs, "MetsPointerURL", "http://example.org/anchor.xml")
	if err := series.AddChild(stub); err != nil {
		t.Fatal(err)
	}
	got = series.RealSuccessors()
	if len(got) != 1 {
		t.Errorf("stub should be skipped, got %v", got)
	}
}

func TestAllAnchorClassesChain(t *testing.T) {
	rs := testRuleSet()
	series := mustNode(rs, "Series")
	journal := mustNode(rs, "Journal")
	if err := series.AddChild(journal); err != nil {
		t.Fatal(err)
	}
	volume := mustNode(rs, "Volume")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}

	chain, err := series.AllAnchorClasses()
	if err != nil {
		t.Fatalf("AllAnchorClasses failed: %v", err)
	}
	if len(chain) != 2 || chain[0] != "S" || chain[1] != "J" {
		t.Errorf("chain = %v, want [S J]", chain)
	}
}

func TestAllAnchorClassesNoAnchor(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	chain, err := mono.AllAnchorClasses()
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 0 {
		t.Errorf("chain = %v, want empty", chain)
	}
}

// Scenario: Journal(J) -> Volume -> Article(J) re-enters class J after
// leaving it, which is an interruption of the anchor hierarchy.
func TestAllAnchorClassesInterruption(t *testing.T) {
	journal, _, _, _ := journalTree(t)

	_, err := journal.AllAnchorClasses()
	if err == nil {
		t.Fatal("interrupted anchor hierarchy should fail")
	}
	if !errors.Is(err, errors.ErrPreferences) {
		t.Errorf("error should be a preferences error, got %v", err)
	}
}

func TestAllAnchorClassesConflictAtOneLevel(t *testing.T) {
	rs := testRuleSet()
	series := mustNode(rs, "Series")
	journal := mustNode(rs, "Journal")
	// A second child of a different anchor class at the same level.
	other := mustNode(rs, "Article")
	series.Type().AddAllowedChildType("Article")
	if err := series.AddChild(journal); err != nil {
		t.Fatal(err)
	}
	if err := series.AddChild(other); err != nil {
		t.Fatal(err)
	}
	// Rule-set tweak so the two anchored children disagree.
	other.Type().AnchorClass = "X"

	_, err := series.AllAnchorClasses()
	if err == nil {
		t.Fatal("conflicting anchor classes at one level should fail")
	}
	if !errors.Is(err, errors.ErrPreferences) {
		t.Errorf("error should be a preferences error, got %v", err)
	}
}

func TestMustWriteDownwardsPointer(t *testing.T) {
	rs := testRuleSet()
	journal := mustNode(rs, "Journal")
	volume := mustNode(rs, "Volume")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}

	// Parent of class J, node of a different class: downward pointer in
	// the J file.
	if !volume.MustWriteDownwardsPointer("J") {
		t.Error("volume should write a downward pointer in the J file")
	}
	if volume.MustWriteDownwardsPointer("X") {
		t.Error("no downward pointer for an unrelated file class")
	}
	if journal.MustWriteDownwardsPointer("J") {
		t.Error("a root writes no downward pointer")
	}
}

func TestMustWriteUpwardsPointer(t *testing.T) {
	rs := testRuleSet()
	journal := mustNode(rs, "Journal")
	volume := mustNode(rs, "Volume")
	if err := journal.AddChild(volume); err != nil {
		t.Fatal(err)
	}

	// The journal's metadata lives in the J file; in the bottom file
	// (no anchor class) the journal is written as an upward pointer.
	up, err := journal.MustWriteUpwardsPointer("")
	if err != nil {
		t.Fatal(err)
	}
	if !up {
		t.Error("anchored root should write an upward pointer in the bottom file")
	}

	// In its own file it is written in full.
	up, err = journal.MustWriteUpwardsPointer("J")
	if err != nil {
		t.Fatal(err)
	}
	if up {
		t.Error("no upward pointer in the node's own file")
	}

	// The volume's parent belongs to J, which precedes the bottom file in
	// the chain, so the volume writes no upward pointer there.
	up, err = volume.MustWriteUpwardsPointer("")
	if err != nil {
		t.Fatal(err)
	}
	if up {
		t.Error("volume needs no upward pointer in the bottom file")
	}
}

func TestIsMetsPointerStruct(t *testing.T) {
	rs := testRuleSet()
	journal := mustNode(rs, "Journal")
	if journal.IsMetsPointerStruct() {
		t.Error("plain node is not a pointer struct")
	}
	mustAddMetadata(journal, rs, "MetsPointerURL", "http://example.org/a.xml")
	if !journal.IsMetsPointerStruct() {
		t.Error("node carrying a pointer is a pointer struct")
	}

	// A node whose children are all pointer structs is one itself.
	parent := mustNode(rs, "Journal")
	stub := mustNode(rs, "Volume")
	mustAddMetadata(stub, rs, "MetsPointerURL", "http://example.org/b.xml")
	if err := parent.AddChild(stub); err != nil {
		t.Fatal(err)
	}
	if !parent.IsMetsPointerStruct() {
		t.Error("node with only pointer children is a pointer struct")
	}
}
