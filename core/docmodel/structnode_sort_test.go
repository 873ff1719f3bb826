package docmodel

import (
	"testing"
)

func metadataOrder(n *StructNode) []string {
	var names []string
	for _, md := range n.MetadataList() {
		names = append(names, md.TypeName())
	}
	return names
}

func TestSortMetadataDeclaredOrder(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	// Insert in the reverse of the declared order, plus a hidden leftover.
	mustAddMetadata(mono, rs, "CatalogIDDigital", "PPN1")
	mustAddMetadata(mono, rs, "TitleDocMainShort", "H")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")
	hidden := NewMetadata(&testHiddenType)
	hidden.Value = "x"
	if err := mono.AddMetadata(hidden); err != nil {
		t.Fatal(err)
	}

	mono.SortMetadata(rs)

	want := []string{"TitleDocMain", "TitleDocMainShort", "CatalogIDDigital", "_extra"}
	got := metadataOrder(mono)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortMetadataIdempotent(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	mustAddMetadata(mono, rs, "CatalogIDDigital", "PPN1")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")
	p := NewPerson(rs.MetadataTypeByName("Author"))
	p.Lastname = "Doe"
	if err := mono.AddPerson(p); err != nil {
		t.Fatal(err)
	}

	mono.SortMetadata(rs)
	once := metadataOrder(mono)
	mono.SortMetadata(rs)
	twice := metadataOrder(mono)

	if len(once) != len(twice) {
		t.Fatalf("idempotence violated: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("idempotence violated: %v vs %v", once, twice)
		}
	}
}

func TestSortMetadataKeepsRelativeOrderOfSameType(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	a := mustAddMetadata(mono, rs, "Author", "first")
	b := mustAddMetadata(mono, rs, "Author", "second")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")

	mono.SortMetadata(rs)

	list := mono.MetadataList()
	if list[0].TypeName() != "TitleDocMain" {
		t.Errorf("TitleDocMain is declared first, order = %v", metadataOrder(mono))
	}
	if list[1] != a || list[2] != b {
		t.Error("entries of one type must keep their relative order")
	}
}

func TestSortMetadataAlphabetical(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")
	mustAddMetadata(mono, rs, "CatalogIDDigital", "PPN1")
	mustAddMetadata(mono, rs, "Author", "X")

	mono.SortMetadataAlphabetical()

	got := metadataOrder(mono)
	want := []string{"Author", "CatalogIDDigital", "TitleDocMain"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortMetadataSortsPersonsSeparately(t *testing.T) {
	rs := testRuleSet()
	mono := mustNode(rs, "Monograph")
	p := NewPerson(rs.MetadataTypeByName("Author"))
	p.Lastname = "Doe"
	if err := mono.AddPerson(p); err != nil {
		t.Fatal(err)
	}
	mustAddMetadata(mono, rs, "TitleDocMain", "Hello")

	mono.SortMetadata(rs)

	if got := len(mono.Persons()); got != 1 {
		t.Fatalf("persons lost during sort, %d left", got)
	}
	if got := len(mono.MetadataList()); got != 1 {
		t.Fatalf("metadata lost during sort, %d left", got)
	}
}
