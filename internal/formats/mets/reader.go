package mets

import (
	"bytes"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/errors"
	"github.com/archivata/metaconv/core/ruleset"
)

// fileEntry is a content file parsed from the fileSec, keyed by file ID.
type fileEntry struct {
	location       string
	mimeType       string
	representative bool
}

// Read parses the file at path into a fresh document.
func (f *Format) Read(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewRead(FormatName, path, err)
	}

	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return errors.NewRead(FormatName, path, err)
	}

	metsRoot := xmlquery.FindOne(root, "//mets")
	if metsRoot == nil {
		return errors.NewRead(FormatName, path, errors.NewPreferences("no mets root element"))
	}

	doc := docmodel.NewDocument()

	dmdSecs := make(map[string]*xmlquery.Node)
	for _, sec := range xmlquery.Find(metsRoot, "./dmdSec") {
		if id := sec.SelectAttr("ID"); id != "" {
			dmdSecs[id] = sec
		}
	}

	files := make(map[string]*fileEntry)
	for _, fileEl := range xmlquery.Find(metsRoot, "./fileSec/fileGrp/file") {
		id := fileEl.SelectAttr("ID")
		if id == "" {
			continue
		}
		entry := &fileEntry{mimeType: fileEl.SelectAttr("MIMETYPE")}
		entry.representative = fileEl.SelectAttr("USE") == "banner"
		if loc := xmlquery.FindOne(fileEl, "./FLocat"); loc != nil {
			entry.location = localAttr(loc, "href")
		}
		files[id] = entry
	}

	f.readAmdSec(doc, metsRoot)

	byDivID := make(map[string]*docmodel.StructNode)
	for _, structMap := range xmlquery.Find(metsRoot, "./structMap") {
		divEl := xmlquery.FindOne(structMap, "./div")
		if divEl == nil {
			continue
		}
		node, err := f.readDiv(doc, divEl, dmdSecs, files, byDivID)
		if err != nil {
			return errors.NewRead(FormatName, path, err)
		}
		switch structMap.SelectAttr("TYPE") {
		case "LOGICAL":
			doc.SetLogicalRoot(node)
		case "PHYSICAL":
			doc.SetPhysicalRoot(node)
		default:
			return errors.NewRead(FormatName, path,
				errors.NewPreferences("structMap of unknown TYPE "+structMap.SelectAttr("TYPE")))
		}
	}

	for _, linkEl := range xmlquery.Find(metsRoot, "./structLink/smLink") {
		from := byDivID[localAttr(linkEl, "from")]
		to := byDivID[localAttr(linkEl, "to")]
		if from == nil || to == nil {
			return errors.NewRead(FormatName, path,
				errors.NewPreferences("smLink references an unknown div ID"))
		}
		refType := localAttr(linkEl, "type")
		if refType == "" {
			refType = docmodel.LogicalPhysicalRefType
		}
		from.AddReferenceTo(to, refType)
	}

	f.doc = doc
	return nil
}

func (f *Format) readAmdSec(doc *docmodel.Document, metsRoot *xmlquery.Node) {
	amdEl := xmlquery.FindOne(metsRoot, "./amdSec")
	if amdEl == nil {
		return
	}
	sec := docmodel.NewAmdSec(amdEl.SelectAttr("ID"))
	for _, techEl := range xmlquery.Find(amdEl, "./techMD") {
		xmlData := xmlquery.FindOne(techEl, "./mdWrap/xmlData")
		if xmlData == nil {
			continue
		}
		var fragment bytes.Buffer
		for child := xmlData.FirstChild; child != nil; child = child.NextSibling {
			fragment.WriteString(child.OutputXML(true))
		}
		sec.AddTechMd(&docmodel.TechMd{
			ID:       techEl.SelectAttr("ID"),
			Fragment: fragment.Bytes(),
		})
	}
	doc.SetAmdSec(sec)
}

func (f *Format) readDiv(doc *docmodel.Document, el *xmlquery.Node, dmdSecs map[string]*xmlquery.Node, files map[string]*fileEntry, byDivID map[string]*docmodel.StructNode) (*docmodel.StructNode, error) {
	typeName := el.SelectAttr("TYPE")
	structType := f.rs.StructTypeByName(typeName)
	if structType == nil {
		return nil, errors.NewPreferences("unknown struct type " + typeName)
	}

	node, err := doc.CreateStructNode(structType)
	if err != nil {
		return nil, err
	}
	if id := el.SelectAttr("ID"); id != "" {
		node.SetIdentifier(id)
		byDivID[id] = node
	}
	if anchorID := el.SelectAttr("ANCHORID"); anchorID != "" {
		node.SetReferenceToAnchor(anchorID)
	}

	if dmdID := el.SelectAttr("DMDID"); dmdID != "" {
		sec, ok := dmdSecs[dmdID]
		if !ok {
			return nil, errors.NewPreferences("div references unknown dmdSec " + dmdID)
		}
		if err := f.readDescriptive(node, sec); err != nil {
			return nil, err
		}
	}

	for _, mptrEl := range xmlquery.Find(el, "./mptr") {
		mdType := f.rs.MetadataTypeByName(docmodel.MetsPointerMetadataType)
		if mdType == nil {
			return nil, errors.NewPreferences(
				"file carries mets pointers but the rule set does not declare " + docmodel.MetsPointerMetadataType)
		}
		md := docmodel.NewMetadata(mdType)
		md.Value = localAttr(mptrEl, "href")
		if err := node.AddMetadata(md); err != nil {
			return nil, err
		}
	}

	for _, fptrEl := range xmlquery.Find(el, "./fptr") {
		entry, ok := files[fptrEl.SelectAttr("FILEID")]
		if !ok {
			return nil, errors.NewPreferences("fptr references unknown file " + fptrEl.SelectAttr("FILEID"))
		}
		cf := docmodel.NewContentFile(entry.location, entry.mimeType)
		cf.Representative = entry.representative
		var area *docmodel.ContentFileArea
		if areaEl := xmlquery.FindOne(fptrEl, "./area"); areaEl != nil {
			area = &docmodel.ContentFileArea{
				AreaType:    areaEl.SelectAttr("BETYPE"),
				Coordinates: areaEl.SelectAttr("COORDS"),
			}
		}
		node.AddContentFileArea(cf, area)
	}

	for _, childEl := range xmlquery.Find(el, "./div") {
		child, err := f.readDiv(doc, childEl, dmdSecs, files, byDivID)
		if err != nil {
			return nil, err
		}
		if err := node.AddChild(child); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *Format) readDescriptive(node *docmodel.StructNode, sec *xmlquery.Node) error {
	goobiEl := xmlquery.FindOne(sec, "./mdWrap/xmlData/goobi")
	if goobiEl == nil {
		return errors.NewPreferences("dmdSec " + sec.SelectAttr("ID") + " has no descriptive block")
	}
	for _, mdEl := range xmlquery.Find(goobiEl, "./metadata") {
		switch mdEl.SelectAttr("type") {
		case "person":
			p, err := f.readPerson(mdEl)
			if err != nil {
				return err
			}
			if err := node.AddPerson(p); err != nil {
				return err
			}
		case "group":
			g, err := f.readGroup(mdEl)
			if err != nil {
				return err
			}
			if err := node.AddMetadataGroup(g); err != nil {
				return err
			}
		default:
			md, err := f.readMetadata(mdEl)
			if err != nil {
				return err
			}
			if err := node.AddMetadata(md); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Format) readMetadata(el *xmlquery.Node) (*docmodel.Metadata, error) {
	name := el.SelectAttr("name")
	mdType := f.rs.MetadataTypeByName(name)
	if mdType == nil && !strings.HasPrefix(name, ruleset.HiddenPrefix) {
		return nil, errors.NewPreferences("unknown metadata type " + name)
	}
	if mdType == nil {
		mdType = &ruleset.MetadataType{Name: name}
	}
	md := docmodel.NewMetadata(mdType)
	md.Value = el.InnerText()
	if q := el.SelectAttr("qualifier"); q != "" {
		md.SetValueQualifier(q, el.SelectAttr("qualifierType"))
	}
	md.SetAuthorityFile(el.SelectAttr("authorityID"), el.SelectAttr("authorityURI"), el.SelectAttr("authorityValue"))
	return md, nil
}

func (f *Format) readPerson(el *xmlquery.Node) (*docmodel.Person, error) {
	name := el.SelectAttr("name")
	mdType := f.rs.MetadataTypeByName(name)
	if mdType == nil {
		return nil, errors.NewPreferences("unknown person type " + name)
	}
	p := docmodel.NewPerson(mdType)
	p.Firstname = childText(el, "firstName")
	p.Lastname = childText(el, "lastName")
	p.DisplayName = childText(el, "displayName")
	p.Affiliation = childText(el, "affiliation")
	p.Institution = childText(el, "institution")
	if role := childText(el, "role"); role != "" {
		p.Role = role
	}
	p.PersonType = childText(el, "personType")
	p.IsCorporation = childText(el, "isCorporation") == "true"
	p.SetAuthorityFile(el.SelectAttr("authorityID"), el.SelectAttr("authorityURI"), el.SelectAttr("authorityValue"))
	return p, nil
}

func (f *Format) readGroup(el *xmlquery.Node) (*docmodel.MetadataGroup, error) {
	name := el.SelectAttr("name")
	groupType := f.rs.MetadataGroupTypeByName(name)
	if groupType == nil {
		return nil, errors.NewPreferences("unknown group type " + name)
	}
	g := docmodel.NewMetadataGroup(groupType)
	for _, childEl := range xmlquery.Find(el, "./metadata") {
		if childEl.SelectAttr("type") == "person" {
			p, err := f.readPerson(childEl)
			if err != nil {
				return nil, err
			}
			g.AddPerson(p)
		} else {
			md, err := f.readMetadata(childEl)
			if err != nil {
				return nil, err
			}
			g.AddMetadata(md)
		}
	}
	return g, nil
}

// localAttr matches an attribute by its local name, no matter how the
// parser represented its namespace prefix.
func localAttr(el *xmlquery.Node, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func childText(el *xmlquery.Node, name string) string {
	child := xmlquery.FindOne(el, "./"+name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}
