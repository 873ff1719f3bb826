package mets

import (
	"bytes"
	"fmt"
	"os"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/encoding"
	"github.com/archivata/metaconv/core/errors"
)

// writer carries the serialization state of one Write call.
type writer struct {
	buf     bytes.Buffer
	divIDs  map[*docmodel.StructNode]string
	dmdIDs  map[*docmodel.StructNode]string
	fileIDs map[*docmodel.ContentFile]string
	logic   int
	physic  int
}

// Write serializes the adapter's document.
func (f *Format) Write(path string) error {
	if f.doc == nil {
		return errors.NewWrite(FormatName, path, errors.ErrIncomplete)
	}

	w := &writer{
		divIDs:  make(map[*docmodel.StructNode]string),
		dmdIDs:  make(map[*docmodel.StructNode]string),
		fileIDs: make(map[*docmodel.ContentFile]string),
	}

	if err := checkAreas(f.doc.PhysicalRoot()); err != nil {
		return errors.NewWrite(FormatName, path, err)
	}
	if err := checkAreas(f.doc.LogicalRoot()); err != nil {
		return errors.NewWrite(FormatName, path, err)
	}

	w.assignIDs(f.doc.LogicalRoot(), true)
	w.assignIDs(f.doc.PhysicalRoot(), false)
	if fs := f.doc.FileSet(); fs != nil {
		for i, file := range fs.Files() {
			w.fileIDs[file] = fmt.Sprintf("FILE_%04d", i)
		}
	}

	w.buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	w.buf.WriteString("<mets:mets xmlns:mets=\"" + metsNamespace + "\"")
	w.buf.WriteString(" xmlns:goobi=\"" + goobiNamespace + "\"")
	w.buf.WriteString(" xmlns:xlink=\"" + xlinkNamespace + "\">\n")

	w.writeDmdSecs(f.doc.LogicalRoot())
	w.writeDmdSecs(f.doc.PhysicalRoot())
	w.writeAmdSec(f.doc.AmdSec())
	w.writeFileSec(f.doc)
	w.writeStructMap(f.doc.LogicalRoot(), "LOGICAL")
	w.writeStructMap(f.doc.PhysicalRoot(), "PHYSICAL")
	w.writeStructLink(f.doc)

	w.buf.WriteString("</mets:mets>\n")

	if err := os.WriteFile(path, w.buf.Bytes(), 0644); err != nil {
		return errors.NewWrite(FormatName, path, err)
	}
	return nil
}

// checkAreas rejects malformed area coordinate expressions before any
// output is produced.
func checkAreas(node *docmodel.StructNode) error {
	if node == nil {
		return nil
	}
	for _, cfr := range node.ContentFileReferences() {
		if cfr.Area != nil && cfr.Area.Coordinates != "" {
			if _, err := docmodel.ParseAreaExpr(cfr.Area.Coordinates); err != nil {
				return err
			}
		}
	}
	for _, child := range node.Children() {
		if err := checkAreas(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) assignIDs(node *docmodel.StructNode, logical bool) {
	if node == nil {
		return
	}
	if logical {
		w.divIDs[node] = fmt.Sprintf("LOG_%04d", w.logic)
		if hasDescriptiveMetadata(node) {
			w.dmdIDs[node] = fmt.Sprintf("DMDLOG_%04d", w.logic)
		}
		w.logic++
	} else {
		w.divIDs[node] = fmt.Sprintf("PHYS_%04d", w.physic)
		if hasDescriptiveMetadata(node) {
			w.dmdIDs[node] = fmt.Sprintf("DMDPHYS_%04d", w.physic)
		}
		w.physic++
	}
	for _, child := range node.Children() {
		w.assignIDs(child, logical)
	}
}

// hasDescriptiveMetadata reports whether a node needs a dmdSec: any
// metadata apart from the pointer element, or persons, or groups.
func hasDescriptiveMetadata(node *docmodel.StructNode) bool {
	for _, md := range node.MetadataList() {
		if md.TypeName() != docmodel.MetsPointerMetadataType {
			return true
		}
	}
	return len(node.Persons()) > 0 || len(node.Groups()) > 0
}

func (w *writer) writeDmdSecs(node *docmodel.StructNode) {
	if node == nil {
		return
	}
	if dmdID, ok := w.dmdIDs[node]; ok {
		w.buf.WriteString("  <mets:dmdSec ID=\"" + dmdID + "\">\n")
		w.buf.WriteString("    <mets:mdWrap MDTYPE=\"OTHER\" OTHERMDTYPE=\"GOOBI\">\n")
		w.buf.WriteString("      <mets:xmlData>\n")
		w.buf.WriteString("        <goobi:goobi>\n")
		for _, md := range node.MetadataList() {
			if md.TypeName() == docmodel.MetsPointerMetadataType {
				continue
			}
			w.writeMetadata(md, 10)
		}
		for _, p := range node.Persons() {
			w.writePerson(p, 10)
		}
		for _, g := range node.Groups() {
			w.writeGroup(g, 10)
		}
		w.buf.WriteString("        </goobi:goobi>\n")
		w.buf.WriteString("      </mets:xmlData>\n")
		w.buf.WriteString("    </mets:mdWrap>\n")
		w.buf.WriteString("  </mets:dmdSec>\n")
	}
	for _, child := range node.Children() {
		w.writeDmdSecs(child)
	}
}

func (w *writer) indent(depth int) {
	for i := 0; i < depth; i++ {
		w.buf.WriteString(" ")
	}
}

func (w *writer) writeMetadata(md *docmodel.Metadata, depth int) {
	w.indent(depth)
	w.buf.WriteString("<goobi:metadata name=\"" + encoding.EscapeXMLAttr(md.TypeName()) + "\"")
	if md.ValueQualifier != "" && md.QualifierType != "" {
		w.buf.WriteString(" qualifier=\"" + encoding.EscapeXMLAttr(md.ValueQualifier) + "\"")
		w.buf.WriteString(" qualifierType=\"" + encoding.EscapeXMLAttr(md.QualifierType) + "\"")
	}
	w.writeAuthority(md.AuthorityID, md.AuthorityURI, md.AuthorityValue)
	w.buf.WriteString(">" + encoding.EscapeXMLText(md.Value) + "</goobi:metadata>\n")
}

func (w *writer) writeAuthority(id, uri, value string) {
	if id == "" || uri == "" || value == "" {
		return
	}
	w.buf.WriteString(" authorityID=\"" + encoding.EscapeXMLAttr(id) + "\"")
	w.buf.WriteString(" authorityURI=\"" + encoding.EscapeXMLAttr(uri) + "\"")
	w.buf.WriteString(" authorityValue=\"" + encoding.EscapeXMLAttr(value) + "\"")
}

func (w *writer) writePerson(p *docmodel.Person, depth int) {
	w.indent(depth)
	w.buf.WriteString("<goobi:metadata name=\"" + encoding.EscapeXMLAttr(p.TypeName()) + "\" type=\"person\"")
	w.writeAuthority(p.AuthorityID, p.AuthorityURI, p.AuthorityValue)
	w.buf.WriteString(">\n")
	w.writePersonField("firstName", p.Firstname, depth+2)
	w.writePersonField("lastName", p.Lastname, depth+2)
	w.writePersonField("displayName", p.DisplayName, depth+2)
	w.writePersonField("affiliation", p.Affiliation, depth+2)
	w.writePersonField("institution", p.Institution, depth+2)
	w.writePersonField("role", p.Role, depth+2)
	w.writePersonField("personType", p.PersonType, depth+2)
	if p.IsCorporation {
		w.writePersonField("isCorporation", "true", depth+2)
	}
	w.indent(depth)
	w.buf.WriteString("</goobi:metadata>\n")
}

func (w *writer) writePersonField(name, value string, depth int) {
	if value == "" {
		return
	}
	w.indent(depth)
	w.buf.WriteString("<goobi:" + name + ">" + encoding.EscapeXMLText(value) + "</goobi:" + name + ">\n")
}

func (w *writer) writeGroup(g *docmodel.MetadataGroup, depth int) {
	w.indent(depth)
	w.buf.WriteString("<goobi:metadata name=\"" + encoding.EscapeXMLAttr(g.TypeName()) + "\" type=\"group\">\n")
	for _, md := range g.MetadataList() {
		w.writeMetadata(md, depth+2)
	}
	for _, p := range g.PersonList() {
		w.writePerson(p, depth+2)
	}
	w.indent(depth)
	w.buf.WriteString("</goobi:metadata>\n")
}

func (w *writer) writeAmdSec(sec *docmodel.AmdSec) {
	if sec == nil || len(sec.TechMds()) == 0 {
		return
	}
	id := sec.ID
	if id == "" {
		id = "AMD"
	}
	w.buf.WriteString("  <mets:amdSec ID=\"" + encoding.EscapeXMLAttr(id) + "\">\n")
	for _, md := range sec.TechMds() {
		w.buf.WriteString("    <mets:techMD ID=\"" + encoding.EscapeXMLAttr(md.ID) + "\">\n")
		w.buf.WriteString("      <mets:mdWrap MDTYPE=\"OTHER\">\n")
		w.buf.WriteString("        <mets:xmlData>")
		// The fragment is opaque XML, stored verbatim.
		w.buf.Write(md.Fragment)
		w.buf.WriteString("</mets:xmlData>\n")
		w.buf.WriteString("      </mets:mdWrap>\n")
		w.buf.WriteString("    </mets:techMD>\n")
	}
	w.buf.WriteString("  </mets:amdSec>\n")
}

func (w *writer) writeFileSec(doc *docmodel.Document) {
	fs := doc.FileSet()
	if fs == nil || len(fs.Files()) == 0 {
		return
	}
	w.buf.WriteString("  <mets:fileSec>\n")
	w.buf.WriteString("    <mets:fileGrp USE=\"LOCAL\">\n")
	for _, file := range fs.Files() {
		w.buf.WriteString("      <mets:file ID=\"" + w.fileIDs[file] + "\"")
		w.buf.WriteString(" MIMETYPE=\"" + encoding.EscapeXMLAttr(file.MimeType) + "\"")
		if file.Representative {
			w.buf.WriteString(" USE=\"banner\"")
		}
		w.buf.WriteString(">\n")
		w.buf.WriteString("        <mets:FLocat LOCTYPE=\"URL\" xlink:href=\"" +
			encoding.EscapeXMLAttr(file.Location) + "\"/>\n")
		w.buf.WriteString("      </mets:file>\n")
	}
	w.buf.WriteString("    </mets:fileGrp>\n")
	w.buf.WriteString("  </mets:fileSec>\n")
}

func (w *writer) writeStructMap(root *docmodel.StructNode, mapType string) {
	if root == nil {
		return
	}
	w.buf.WriteString("  <mets:structMap TYPE=\"" + mapType + "\">\n")
	w.writeDiv(root, 2)
	w.buf.WriteString("  </mets:structMap>\n")
}

func (w *writer) writeDiv(node *docmodel.StructNode, depth int) {
	w.indent(depth * 2)
	w.buf.WriteString("<mets:div ID=\"" + w.divIDs[node] + "\"")
	w.buf.WriteString(" TYPE=\"" + encoding.EscapeXMLAttr(node.TypeName()) + "\"")
	if dmdID, ok := w.dmdIDs[node]; ok {
		w.buf.WriteString(" DMDID=\"" + dmdID + "\"")
	}
	if node.ReferenceToAnchor() != "" {
		w.buf.WriteString(" ANCHORID=\"" + encoding.EscapeXMLAttr(node.ReferenceToAnchor()) + "\"")
	}
	if node.IsPhysical() {
		for _, md := range node.MetadataList() {
			switch md.TypeName() {
			case docmodel.PhysPageNumberMetadataType:
				w.buf.WriteString(" ORDER=\"" + encoding.EscapeXMLAttr(md.Value) + "\"")
			case docmodel.LogicalPageNumberMetadataType:
				w.buf.WriteString(" ORDERLABEL=\"" + encoding.EscapeXMLAttr(md.Value) + "\"")
			}
		}
	}

	pointers := node.MetadataByType(docmodel.MetsPointerMetadataType)
	fileRefs := node.ContentFileReferences()
	children := node.Children()
	if len(pointers) == 0 && len(fileRefs) == 0 && len(children) == 0 {
		w.buf.WriteString("/>\n")
		return
	}
	w.buf.WriteString(">\n")

	for _, md := range pointers {
		w.indent(depth*2 + 2)
		w.buf.WriteString("<mets:mptr LOCTYPE=\"URL\" xlink:href=\"" +
			encoding.EscapeXMLAttr(md.Value) + "\"/>\n")
	}
	for _, cfr := range fileRefs {
		w.indent(depth*2 + 2)
		w.buf.WriteString("<mets:fptr FILEID=\"" + w.fileIDs[cfr.File] + "\"")
		if cfr.Area != nil {
			w.buf.WriteString(">\n")
			w.indent(depth*2 + 4)
			w.buf.WriteString("<mets:area")
			if cfr.Area.AreaType != "" {
				w.buf.WriteString(" BETYPE=\"" + encoding.EscapeXMLAttr(cfr.Area.AreaType) + "\"")
			}
			if cfr.Area.Coordinates != "" {
				w.buf.WriteString(" COORDS=\"" + encoding.EscapeXMLAttr(cfr.Area.Coordinates) + "\"")
			}
			w.buf.WriteString("/>\n")
			w.indent(depth*2 + 2)
			w.buf.WriteString("</mets:fptr>\n")
		} else {
			w.buf.WriteString("/>\n")
		}
	}
	for _, child := range children {
		w.writeDiv(child, depth+1)
	}

	w.indent(depth * 2)
	w.buf.WriteString("</mets:div>\n")
}

func (w *writer) writeStructLink(doc *docmodel.Document) {
	type edge struct {
		refType  string
		from, to string
	}
	var edges []edge
	var collect func(node *docmodel.StructNode)
	collect = func(node *docmodel.StructNode) {
		if node == nil {
			return
		}
		for _, ref := range node.ToReferences() {
			to, ok := w.divIDs[ref.Target()]
			if !ok {
				continue
			}
			edges = append(edges, edge{refType: ref.Type(), from: w.divIDs[node], to: to})
		}
		for _, child := range node.Children() {
			collect(child)
		}
	}
	collect(doc.LogicalRoot())
	collect(doc.PhysicalRoot())

	if len(edges) == 0 {
		return
	}
	w.buf.WriteString("  <mets:structLink>\n")
	for _, e := range edges {
		w.buf.WriteString("    <mets:smLink xlink:from=\"" + e.from + "\" xlink:to=\"" + e.to + "\"")
		w.buf.WriteString(" goobi:type=\"" + encoding.EscapeXMLAttr(e.refType) + "\"/>\n")
	}
	w.buf.WriteString("  </mets:structLink>\n")
}
