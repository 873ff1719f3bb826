package ruleset

import (
	"bytes"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/archivata/metaconv/core/errors"
)

// LoadFile reads a rule-set XML file from disk.
//
// The expected shape is a <Preferences> root holding <MetadataType>,
// <Group> and <DocStrctType> declarations:
//
//	<Preferences>
//	  <MetadataType type="person">
//	    <Name>Author</Name>
//	    <language name="en">Author</language>
//	  </MetadataType>
//	  <DocStrctType anchor="Periodical">
//	    <Name>Journal</Name>
//	    <allowedchildtype>Volume</allowedchildtype>
//	    <metadata num="1m" DefaultDisplay="true">TitleDocMain</metadata>
//	    <group num="*">Publication</group>
//	  </DocStrctType>
//	</Preferences>
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRead("ruleset", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, errors.NewRead("ruleset", path, err)
	}
	return rs, nil
}

// Parse builds a rule set from rule-set XML data.
func Parse(data []byte) (*RuleSet, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "parsing rule set XML")
	}

	prefs := xmlquery.FindOne(root, "//Preferences")
	if prefs == nil {
		return nil, errors.NewPreferences("no Preferences element in rule set")
	}

	rs := New()

	// Metadata types first: struct types and groups refer to them by name.
	for _, node := range xmlquery.Find(prefs, "./MetadataType") {
		mdType, err := parseMetadataType(node)
		if err != nil {
			return nil, err
		}
		rs.AddMetadataType(mdType)
	}

	for _, node := range xmlquery.Find(prefs, "./Group") {
		groupType, err := parseGroupType(node, rs)
		if err != nil {
			return nil, err
		}
		rs.AddMetadataGroupType(groupType)
	}

	for _, node := range xmlquery.Find(prefs, "./DocStrctType") {
		structType, err := parseStructType(node, rs)
		if err != nil {
			return nil, err
		}
		rs.AddStructType(structType)
	}

	// Allowed children must name declared struct types.
	for _, st := range rs.StructTypes() {
		for _, childName := range st.AllowedChildTypes() {
			if rs.StructTypeByName(childName) == nil {
				return nil, errors.NewPreferences(
					"struct type " + st.Name + " allows undeclared child type " + childName)
			}
		}
	}

	return rs, nil
}

func parseMetadataType(node *xmlquery.Node) (*MetadataType, error) {
	name := childText(node, "Name")
	if name == "" {
		return nil, errors.NewPreferences("MetadataType without Name")
	}
	kind := node.SelectAttr("type")
	mdType := &MetadataType{
		Name:         name,
		IsPerson:     kind == "person",
		IsIdentifier: kind == "identifier",
		Labels:       parseLabels(node),
	}
	return mdType, nil
}

func parseGroupType(node *xmlquery.Node, rs *RuleSet) (*MetadataGroupType, error) {
	name := childText(node, "Name")
	if name == "" {
		return nil, errors.NewPreferences("Group without Name")
	}
	groupType := &MetadataGroupType{
		Name:   name,
		Labels: parseLabels(node),
	}
	for _, member := range xmlquery.Find(node, "./metadata") {
		mdName := strings.TrimSpace(member.InnerText())
		mdType := rs.MetadataTypeByName(mdName)
		if mdType == nil {
			return nil, errors.NewPreferences(
				"group " + name + " lists undeclared metadata type " + mdName)
		}
		groupType.AddMetadataType(mdType, parseNum(member))
	}
	return groupType, nil
}

func parseStructType(node *xmlquery.Node, rs *RuleSet) (*StructType, error) {
	name := childText(node, "Name")
	if name == "" {
		return nil, errors.NewPreferences("DocStrctType without Name")
	}
	structType := &StructType{
		Name:        name,
		AnchorClass: node.SelectAttr("anchor"),
		Labels:      parseLabels(node),
	}

	for _, child := range xmlquery.Find(node, "./allowedchildtype") {
		structType.AddAllowedChildType(strings.TrimSpace(child.InnerText()))
	}

	for _, member := range xmlquery.Find(node, "./metadata") {
		mdName := strings.TrimSpace(member.InnerText())
		mdType := rs.MetadataTypeByName(mdName)
		if mdType == nil {
			return nil, errors.NewPreferences(
				"struct type " + name + " lists undeclared metadata type " + mdName)
		}
		structType.AddMetadataType(mdType, parseNum(member), isDefaultDisplay(member))
	}

	for _, member := range xmlquery.Find(node, "./group") {
		groupName := strings.TrimSpace(member.InnerText())
		groupType := rs.MetadataGroupTypeByName(groupName)
		if groupType == nil {
			return nil, errors.NewPreferences(
				"struct type " + name + " lists undeclared group type " + groupName)
		}
		structType.AddMetadataGroupType(groupType, parseNum(member), isDefaultDisplay(member))
	}

	return structType, nil
}

func parseLabels(node *xmlquery.Node) map[string]string {
	labels := make(map[string]string)
	for _, lang := range xmlquery.Find(node, "./language") {
		name := lang.SelectAttr("name")
		if name != "" {
			labels[name] = strings.TrimSpace(lang.InnerText())
		}
	}
	return labels
}

// parseNum reads the num attribute; unrecognized or absent tokens fall
// back to "*", matching the permissive reading of legacy rule sets.
func parseNum(node *xmlquery.Node) Cardinality {
	num := Cardinality(node.SelectAttr("num"))
	if !num.IsValid() {
		return CardinalityAny
	}
	return num
}

func isDefaultDisplay(node *xmlquery.Node) bool {
	return strings.EqualFold(node.SelectAttr("DefaultDisplay"), "true")
}

func childText(node *xmlquery.Node, name string) string {
	child := xmlquery.FindOne(node, "./"+name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}
