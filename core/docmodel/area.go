package docmodel

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/archivata/metaconv/core/errors"
)

// ContentFileArea restricts a content-file reference to a part of the
// file: a rectangle on a page image, or a span of units within the file.
type ContentFileArea struct {
	// AreaType names the addressing scheme (e.g. "coordinates", "byte").
	AreaType string

	// Coordinates is the textual area expression, e.g.
	// "RECT 10,20,110,220" or "SPAN 3-7".
	Coordinates string
}

// Equals compares areas field by field with null safety.
func (a *ContentFileArea) Equals(other *ContentFileArea) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.AreaType == other.AreaType && a.Coordinates == other.Coordinates
}

// Copy returns an independent copy of the area.
func (a *ContentFileArea) Copy() *ContentFileArea {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// AreaExpr is the parsed form of an area coordinate expression.
//
// The grammar accepts a shape keyword followed by comma-separated values,
// each value either a single number or a range:
//
//	expr  = shape value ("," value)*
//	value = int ("-" int)?
type AreaExpr struct {
	Shape  string       `parser:"@Ident"`
	Values []*AreaValue `parser:"@@ (',' @@)*"`
}

// AreaValue is one coordinate or unit range within an area expression.
type AreaValue struct {
	Start int  `parser:"@Int"`
	End   *int `parser:"('-' @Int)?"`
}

var areaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var areaParser = participle.MustBuild[AreaExpr](
	participle.Lexer(areaLexer),
	participle.Elide("Whitespace"),
)

// ParseAreaExpr parses an area coordinate expression. Adapters use this to
// check area strings before writing them and to interpret them after
// reading.
func ParseAreaExpr(input string) (*AreaExpr, error) {
	expr, err := areaParser.ParseString("", input)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid area expression %q", input)
	}
	for _, v := range expr.Values {
		if v.End != nil && *v.End < v.Start {
			return nil, errors.Wrapf(errors.ErrNotAllowed,
				"invalid area expression %q: descending range", input)
		}
	}
	return expr, nil
}

// Valid reports whether the area's coordinate expression parses. An empty
// expression is valid (the area then covers the whole file).
func (a *ContentFileArea) Valid() bool {
	if a == nil || a.Coordinates == "" {
		return true
	}
	_, err := ParseAreaExpr(a.Coordinates)
	return err == nil
}
