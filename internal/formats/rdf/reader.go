package rdf

import (
	"os"

	"github.com/antchfx/xmlquery"

	"github.com/archivata/metaconv/core/docmodel"
	"github.com/archivata/metaconv/core/errors"
)

// Read parses the file at path into a fresh document.
func (f *Format) Read(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewRead(FormatName, path, err)
	}

	root, err := xmlquery.Parse(bytesReader(data))
	if err != nil {
		return errors.NewRead(FormatName, path, err)
	}

	rdfRoot := xmlquery.FindOne(root, "//RDF:RDF")
	if rdfRoot == nil {
		return errors.NewRead(FormatName, path, errors.NewPreferences("no RDF root element"))
	}

	doc := docmodel.NewDocument()
	byID := make(map[string]*docmodel.StructNode)

	for _, structEl := range xmlquery.Find(rdfRoot, "./DocStruct") {
		node, err := f.readNode(doc, structEl, byID)
		if err != nil {
			return errors.NewRead(FormatName, path, err)
		}
		switch {
		case structEl.SelectAttr("IsLogical") == "true":
			doc.SetLogicalRoot(node)
		case structEl.SelectAttr("IsPhysical") == "true":
			doc.SetPhysicalRoot(node)
		default:
			return errors.NewRead(FormatName, path,
				errors.NewPreferences("top-level DocStruct is neither logical nor physical"))
		}
	}

	for _, linkEl := range xmlquery.Find(rdfRoot, "./Links/Link") {
		from := byID[linkEl.SelectAttr("From")]
		to := byID[linkEl.SelectAttr("To")]
		if from == nil || to == nil {
			return errors.NewRead(FormatName, path,
				errors.NewPreferences("link references an unknown DocStruct ID"))
		}
		from.AddReferenceTo(to, linkEl.SelectAttr("Type"))
	}

	f.doc = doc
	return nil
}

func (f *Format) readNode(doc *docmodel.Document, el *xmlquery.Node, byID map[string]*docmodel.StructNode) (*docmodel.StructNode, error) {
	typeName := el.SelectAttr("Type")
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
		byID[id] = node
	}
	if anchorRef := el.SelectAttr("AnchorRef"); anchorRef != "" {
		node.SetReferenceToAnchor(anchorRef)
	}

	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "Metadata":
			md, err := f.readMetadata(child)
			if err != nil {
				return nil, err
			}
			if err := node.AddMetadata(md); err != nil {
				return nil, err
			}
		case "Person":
			p, err := f.readPerson(child)
			if err != nil {
				return nil, err
			}
			if err := node.AddPerson(p); err != nil {
				return nil, err
			}
		case "Group":
			g, err := f.readGroup(child)
			if err != nil {
				return nil, err
			}
			if err := node.AddMetadataGroup(g); err != nil {
				return nil, err
			}
		case "ContentFile":
			f.readContentFile(node, child)
		case "DocStruct":
			childNode, err := f.readNode(doc, child, byID)
			if err != nil {
				return nil, err
			}
			if err := node.AddChild(childNode); err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

func (f *Format) readMetadata(el *xmlquery.Node) (*docmodel.Metadata, error) {
	name := el.SelectAttr("Name")
	mdType := f.rs.MetadataTypeByName(name)
	if mdType == nil && !isHidden(name) {
		return nil, errors.NewPreferences("unknown metadata type " + name)
	}
	if mdType == nil {
		mdType = f.hiddenType(name)
	}
	md := docmodel.NewMetadata(mdType)
	md.Value = el.InnerText()
	if q := el.SelectAttr("Qualifier"); q != "" {
		md.SetValueQualifier(q, el.SelectAttr("QualifierType"))
	}
	md.SetAuthorityFile(el.SelectAttr("AuthorityID"), el.SelectAttr("AuthorityURI"), el.SelectAttr("AuthorityValue"))
	return md, nil
}

func (f *Format) readPerson(el *xmlquery.Node) (*docmodel.Person, error) {
	name := el.SelectAttr("Name")
	mdType := f.rs.MetadataTypeByName(name)
	if mdType == nil {
		return nil, errors.NewPreferences("unknown person type " + name)
	}
	p := docmodel.NewPerson(mdType)
	p.Firstname = el.SelectAttr("Firstname")
	p.Lastname = el.SelectAttr("Lastname")
	p.DisplayName = el.SelectAttr("DisplayName")
	p.Affiliation = el.SelectAttr("Affiliation")
	p.Institution = el.SelectAttr("Institution")
	if role := el.SelectAttr("Role"); role != "" {
		p.Role = role
	}
	p.PersonType = el.SelectAttr("PersonType")
	p.IsCorporation = el.SelectAttr("IsCorporation") == "true"
	p.SetAuthorityFile(el.SelectAttr("AuthorityID"), el.SelectAttr("AuthorityURI"), el.SelectAttr("AuthorityValue"))
	return p, nil
}

func (f *Format) readGroup(el *xmlquery.Node) (*docmodel.MetadataGroup, error) {
	name := el.SelectAttr("Name")
	groupType := f.rs.MetadataGroupTypeByName(name)
	if groupType == nil {
		return nil, errors.NewPreferences("unknown group type " + name)
	}
	g := docmodel.NewMetadataGroup(groupType)
	for child := el.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xmlquery.ElementNode {
			continue
		}
		switch child.Data {
		case "Metadata":
			md, err := f.readMetadata(child)
			if err != nil {
				return nil, err
			}
			g.AddMetadata(md)
		case "Person":
			p, err := f.readPerson(child)
			if err != nil {
				return nil, err
			}
			g.AddPerson(p)
		}
	}
	return g, nil
}

func (f *Format) readContentFile(node *docmodel.StructNode, el *xmlquery.Node) {
	cf := docmodel.NewContentFile(el.SelectAttr("Location"), el.SelectAttr("MimeType"))
	cf.Representative = el.SelectAttr("Representative") == "true"
	var area *docmodel.ContentFileArea
	if coords := el.SelectAttr("AreaCoords"); coords != "" || el.SelectAttr("AreaType") != "" {
		area = &docmodel.ContentFileArea{
			AreaType:    el.SelectAttr("AreaType"),
			Coordinates: coords,
		}
	}
	node.AddContentFileArea(cf, area)
}
