package rdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/encoding"
	"github.com/archivata/metaconv/core/errors"
)

// link is one resolved cross-reference, collected while the trees are
// written and emitted as the trailing Links section.
type link struct {
	refType string
	from    string
	to      string
}

// writer carries the serialization state of one Write call.
type writer struct {
	buf     bytes.Buffer
	ids     map[*docmodel.StructNode]string
	logic   int
	physic  int
	links   []link
}

// Write serializes the adapter's document.
func (f *Format) Write(path string) error {
	if f.doc == nil {
		return errors.NewWrite(FormatName, path, errors.ErrIncomplete)
	}

	w := &writer{ids: make(map[*docmodel.StructNode]string)}
	w.buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	w.buf.WriteString("<RDF:RDF xmlns:RDF=\"" + rdfNamespace + "\">\n")

	// Pre-assign IDs over both trees so links can be resolved no matter
	// which side is written first.
	w.assignIDs(f.doc.LogicalRoot(), true)
	w.assignIDs(f.doc.PhysicalRoot(), false)

	if root := f.doc.LogicalRoot(); root != nil {
		w.writeNode(root, 1)
	}
	if root := f.doc.PhysicalRoot(); root != nil {
		w.writeNode(root, 1)
	}
	w.collectLinks(f.doc.LogicalRoot())
	w.collectLinks(f.doc.PhysicalRoot())
	w.writeLinks()

	w.buf.WriteString("</RDF:RDF>\n")

	if err := os.WriteFile(path, w.buf.Bytes(), 0644); err != nil {
		return errors.NewWrite(FormatName, path, err)
	}
	return nil
}

func (w *writer) assignIDs(node *docmodel.StructNode, logical bool) {
	if node == nil {
		return
	}
	if logical {
		w.ids[node] = fmt.Sprintf("LOG_%04d", w.logic)
		w.logic++
	} else {
		w.ids[node] = fmt.Sprintf("PHYS_%04d", w.physic)
		w.physic++
	}
	for _, child := range node.Children() {
		w.assignIDs(child, logical)
	}
}

func (w *writer) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.buf.WriteString("  ")
	}
}

func (w *writer) writeNode(node *docmodel.StructNode, depth int) {
	w.indent(depth)
	w.buf.WriteString("<DocStruct Type=\"" + encoding.EscapeXMLAttr(node.TypeName()) + "\"")
	w.buf.WriteString(" ID=\"" + w.ids[node] + "\"")
	if node.IsLogical() {
		w.buf.WriteString(" IsLogical=\"true\"")
	}
	if node.IsPhysical() {
		w.buf.WriteString(" IsPhysical=\"true\"")
	}
	if node.ReferenceToAnchor() != "" {
		w.buf.WriteString(" AnchorRef=\"" + encoding.EscapeXMLAttr(node.ReferenceToAnchor()) + "\"")
	}
	w.buf.WriteString(">\n")

	for _, md := range node.MetadataList() {
		w.writeMetadata(md, depth+1)
	}
	for _, p := range node.Persons() {
		w.writePerson(p, depth+1)
	}
	for _, g := range node.Groups() {
		w.writeGroup(g, depth+1)
	}
	for _, cfr := range node.ContentFileReferences() {
		w.writeContentFileRef(cfr, depth+1)
	}
	for _, child := range node.Children() {
		w.writeNode(child, depth+1)
	}

	w.indent(depth)
	w.buf.WriteString("</DocStruct>\n")
}

func (w *writer) writeMetadata(md *docmodel.Metadata, depth int) {
	w.indent(depth)
	w.buf.WriteString("<Metadata Name=\"" + encoding.EscapeXMLAttr(md.TypeName()) + "\"")
	if md.ValueQualifier != "" && md.QualifierType != "" {
		w.buf.WriteString(" Qualifier=\"" + encoding.EscapeXMLAttr(md.ValueQualifier) + "\"")
		w.buf.WriteString(" QualifierType=\"" + encoding.EscapeXMLAttr(md.QualifierType) + "\"")
	}
	w.writeAuthority(md.AuthorityID, md.AuthorityURI, md.AuthorityValue)
	w.buf.WriteString(">" + encoding.EscapeXMLText(md.Value) + "</Metadata>\n")
}

func (w *writer) writeAuthority(id, uri, value string) {
	if id == "" || uri == "" || value == "" {
		return
	}
	w.buf.WriteString(" AuthorityID=\"" + encoding.EscapeXMLAttr(id) + "\"")
	w.buf.WriteString(" AuthorityURI=\"" + encoding.EscapeXMLAttr(uri) + "\"")
	w.buf.WriteString(" AuthorityValue=\"" + encoding.EscapeXMLAttr(value) + "\"")
}

func (w *writer) writePerson(p *docmodel.Person, depth int) {
	w.indent(depth)
	w.buf.WriteString("<Person Name=\"" + encoding.EscapeXMLAttr(p.TypeName()) + "\"")
	writeOptAttr(&w.buf, "Firstname", p.Firstname)
	writeOptAttr(&w.buf, "Lastname", p.Lastname)
	writeOptAttr(&w.buf, "DisplayName", p.DisplayName)
	writeOptAttr(&w.buf, "Affiliation", p.Affiliation)
	writeOptAttr(&w.buf, "Institution", p.Institution)
	writeOptAttr(&w.buf, "Role", p.Role)
	writeOptAttr(&w.buf, "PersonType", p.PersonType)
	if p.IsCorporation {
		w.buf.WriteString(" IsCorporation=\"true\"")
	}
	w.writeAuthority(p.AuthorityID, p.AuthorityURI, p.AuthorityValue)
	w.buf.WriteString("/>\n")
}

func writeOptAttr(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString(" " + name + "=\"" + encoding.EscapeXMLAttr(value) + "\"")
}

func (w *writer) writeGroup(g *docmodel.MetadataGroup, depth int) {
	w.indent(depth)
	w.buf.WriteString("<Group Name=\"" + encoding.EscapeXMLAttr(g.TypeName()) + "\">\n")
	for _, md := range g.MetadataList() {
		w.writeMetadata(md, depth+1)
	}
	for _, p := range g.PersonList() {
		w.writePerson(p, depth+1)
	}
	w.indent(depth)
	w.buf.WriteString("</Group>\n")
}

func (w *writer) writeContentFileRef(cfr *docmodel.ContentFileReference, depth int) {
	w.indent(depth)
	w.buf.WriteString("<ContentFile Location=\"" + encoding.EscapeXMLAttr(cfr.File.Location) + "\"")
	w.buf.WriteString(" MimeType=\"" + encoding.EscapeXMLAttr(cfr.File.MimeType) + "\"")
	if cfr.File.Representative {
		w.buf.WriteString(" Representative=\"true\"")
	}
	if cfr.Area != nil {
		writeOptAttr(&w.buf, "AreaType", cfr.Area.AreaType)
		writeOptAttr(&w.buf, "AreaCoords", cfr.Area.Coordinates)
	}
	w.buf.WriteString("/>\n")
}

func (w *writer) collectLinks(node *docmodel.StructNode) {
	if node == nil {
		return
	}
	for _, ref := range node.ToReferences() {
		to, ok := w.ids[ref.Target()]
		if !ok {
			continue
		}
		w.links = append(w.links, link{refType: ref.Type(), from: w.ids[node], to: to})
	}
	for _, child := range node.Children() {
		w.collectLinks(child)
	}
}

func (w *writer) writeLinks() {
	if len(w.links) == 0 {
		return
	}
	w.buf.WriteString("  <Links>\n")
	for _, l := range w.links {
		w.buf.WriteString("    <Link Type=\"" + encoding.EscapeXMLAttr(l.refType) + "\"")
		w.buf.WriteString(" From=\"" + l.from + "\" To=\"" + l.to + "\"/>\n")
	}
	w.buf.WriteString("  </Links>\n")
}
