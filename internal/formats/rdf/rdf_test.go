package rdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/errors"
	"github.com/archivata/metaconv/core/ruleset"
)

func testRuleSet() *ruleset.RuleSet {
	rs := ruleset.New()
	title := &ruleset.MetadataType{Name: "TitleDocMain"}
	author := &ruleset.MetadataType{Name: "Author", IsPerson: true}
	physPage := &ruleset.MetadataType{Name: "physPageNumber"}
	logPage := &ruleset.MetadataType{Name: "logicalPageNumber"}
	place := &ruleset.MetadataType{Name: "PlaceOfPublication"}
	year := &ruleset.MetadataType{Name: "PublicationYear"}
	for _, t := range []*ruleset.MetadataType{title, author, physPage, logPage, place, year} {
		rs.AddMetadataType(t)
	}

	publication := &ruleset.MetadataGroupType{Name: "Publication"}
	publication.AddMetadataType(place, ruleset.CardinalityOptional)
	publication.AddMetadataType(year, ruleset.CardinalityOne)
	rs.AddMetadataGroupType(publication)

	mono := &ruleset.StructType{Name: "Monograph"}
	mono.AddAllowedChildType("Chapter")
	mono.AddMetadataType(title, ruleset.CardinalityOne, true)
	mono.AddMetadataType(author, ruleset.CardinalityAny, false)
	mono.AddMetadataGroupType(publication, ruleset.CardinalityOptional, false)
	rs.AddStructType(mono)

	chapter := &ruleset.StructType{Name: "Chapter"}
	chapter.AddMetadataType(title, ruleset.CardinalityOptional, false)
	rs.AddStructType(chapter)

	book := &ruleset.StructType{Name: "BoundBook"}
	book.AddAllowedChildType("page")
	rs.AddStructType(book)

	page := &ruleset.StructType{Name: "page"}
	page.AddMetadataType(physPage, ruleset.CardinalityOne, false)
	page.AddMetadataType(logPage, ruleset.CardinalityOptional, false)
	rs.AddStructType(page)

	return rs
}

// sampleDoc builds the document the round-trip tests serialize: a
// monograph with a chapter over two pages, persons, a group, content
// files and cross-tree links.
func sampleDoc(t *testing.T, rs *ruleset.RuleSet) *docmodel.Document {
	t.Helper()
	doc := docmodel.NewDocument()

	mono, err := doc.CreateStructNode(rs.StructTypeByName("Monograph"))
	if err != nil {
		t.Fatal(err)
	}
	title := docmodel.NewMetadata(rs.MetadataTypeByName("TitleDocMain"))
	title.Value = "Hello <World> & Friends"
	title.SetAuthorityFile("gnd", "http://d-nb.info/gnd/", "118540238")
	if err := mono.AddMetadata(title); err != nil {
		t.Fatal(err)
	}
	author := docmodel.NewPerson(rs.MetadataTypeByName("Author"))
	author.Firstname = "John"
	author.Lastname = "Doe"
	author.Institution = "Library"
	if err := mono.AddPerson(author); err != nil {
		t.Fatal(err)
	}
	group := docmodel.NewMetadataGroup(rs.MetadataGroupTypeByName("Publication"))
	year := docmodel.NewMetadata(rs.MetadataTypeByName("PublicationYear"))
	year.Value = "1901"
	group.AddMetadata(year)
	if err := mono.AddMetadataGroup(group); err != nil {
		t.Fatal(err)
	}

	chapter, _ := doc.CreateStructNode(rs.StructTypeByName("Chapter"))
	chTitle := docmodel.NewMetadata(rs.MetadataTypeByName("TitleDocMain"))
	chTitle.Value = "Chapter One"
	chTitle.SetValueQualifier("eng", "language")
	if err := chapter.AddMetadata(chTitle); err != nil {
		t.Fatal(err)
	}
	if err := mono.AddChild(chapter); err != nil {
		t.Fatal(err)
	}

	book, _ := doc.CreateStructNode(rs.StructTypeByName("BoundBook"))
	for i, labels := range [][2]string{{"1", "i"}, {"2", "ii"}} {
		page, _ := doc.CreateStructNode(rs.StructTypeByName("page"))
		physNo := docmodel.NewMetadata(rs.MetadataTypeByName("physPageNumber"))
		physNo.Value = labels[0]
		if err := page.AddMetadata(physNo); err != nil {
			t.Fatal(err)
		}
		logNo := docmodel.NewMetadata(rs.MetadataTypeByName("logicalPageNumber"))
		logNo.Value = labels[1]
		if err := page.AddMetadata(logNo); err != nil {
			t.Fatal(err)
		}
		if err := book.AddChild(page); err != nil {
			t.Fatal(err)
		}
		cf := docmodel.NewContentFile("/images/0000000"+labels[0]+".tif", "image/tiff")
		cf.Representative = i == 0
		page.AddContentFile(cf)
	}

	doc.SetLogicalRoot(mono)
	doc.SetPhysicalRoot(book)

	pages := book.Children()
	mono.AddReferenceTo(pages[0], docmodel.LogicalPhysicalRefType)
	mono.AddReferenceTo(pages[1], docmodel.LogicalPhysicalRefType)
	chapter.AddReferenceTo(pages[1], docmodel.LogicalPhysicalRefType)
	return doc
}

func TestWriteReadRoundTrip(t *testing.T) {
	rs := testRuleSet()
	doc := sampleDoc(t, rs)
	path := filepath.Join(t.TempDir(), "meta.xml")

	out := New(rs)
	out.SetDocument(doc)
	if err := out.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	in := New(rs)
	if err := in.Read(path); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if !doc.Equals(in.Document()) {
		t.Error("round-tripped document must compare equal to the original")
	}

	// The reference graph is rebuilt into the reloaded arena.
	reloaded := in.Document()
	if got := len(reloaded.LogicalRoot().ToReferences()); got != 2 {
		t.Errorf("root references = %d, want 2", got)
	}
	page := reloaded.PhysicalRoot().Children()[1]
	if got := len(page.FromReferences()); got != 2 {
		t.Errorf("page incoming references = %d, want 2", got)
	}
	if got := len(reloaded.FileSet().Files()); got != 2 {
		t.Errorf("file set = %d files, want 2", got)
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	rs := testRuleSet()
	doc := sampleDoc(t, rs)
	dir := t.TempDir()

	out := New(rs)
	out.SetDocument(doc)
	pathA := filepath.Join(dir, "a.xml")
	pathB := filepath.Join(dir, "b.xml")
	if err := out.Write(pathA); err != nil {
		t.Fatal(err)
	}
	if err := out.Write(pathB); err != nil {
		t.Fatal(err)
	}

	dataA, _ := os.ReadFile(pathA)
	dataB, _ := os.ReadFile(pathB)
	if string(dataA) != string(dataB) {
		t.Error("two writes of one document must be byte-identical")
	}
}

func TestReadMissingFile(t *testing.T) {
	in := New(testRuleSet())
	err := in.Read(filepath.Join(t.TempDir(), "missing.xml"))
	if !errors.Is(err, errors.ErrRead) {
		t.Errorf("missing file error = %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should carry the not-exist cause, got %v", err)
	}
}

func TestReadUnknownStructType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.xml")
	content := `<RDF:RDF xmlns:RDF="` + rdfNamespace + `">
  <DocStruct Type="Mystery" ID="LOG_0000" IsLogical="true"/>
</RDF:RDF>`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	in := New(testRuleSet())
	err := in.Read(path)
	if err == nil {
		t.Fatal("unknown struct type should fail")
	}
	if !errors.Is(err, errors.ErrPreferences) {
		t.Errorf("error should carry the preferences cause, got %v", err)
	}
}

func TestReadMalformedXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.xml")
	if err := os.WriteFile(path, []byte("not xml at all"), 0644); err != nil {
		t.Fatal(err)
	}
	in := New(testRuleSet())
	if err := in.Read(path); !errors.Is(err, errors.ErrRead) {
		t.Errorf("malformed XML error = %v", err)
	}
}

func TestUpdateUnsupported(t *testing.T) {
	f := New(testRuleSet())
	if err := f.Update("meta.xml"); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("Update should be unsupported, got %v", err)
	}
}

func TestWriteEscapesMarkup(t *testing.T) {
	rs := testRuleSet()
	doc := sampleDoc(t, rs)
	path := filepath.Join(t.TempDir(), "meta.xml")

	out := New(rs)
	out.SetDocument(doc)
	if err := out.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Hello <World>") {
		t.Error("markup in values must be escaped")
	}
	if !strings.Contains(string(data), "Hello &lt;World&gt; &amp; Friends") {
		t.Error("escaped value missing from output")
	}
}
