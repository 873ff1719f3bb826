package docmodel

import "testing"

func TestParseAreaExpr(t *testing.T) {
	expr, err := ParseAreaExpr("RECT 10,20,110,220")
	if err != nil {
		t.Fatalf("ParseAreaExpr failed: %v", err)
	}
	if expr.Shape != "RECT" {
		t.Errorf("Shape = %q", expr.Shape)
	}
	if len(expr.Values) != 4 || expr.Values[2].Start != 110 {
		t.Errorf("Values = %v", expr.Values)
	}

	expr, err = ParseAreaExpr("SPAN 3-7")
	if err != nil {
		t.Fatalf("ParseAreaExpr failed: %v", err)
	}
	v := expr.Values[0]
	if v.Start != 3 || v.End == nil || *v.End != 7 {
		t.Errorf("range = %+v", v)
	}
}

func TestParseAreaExprRejects(t *testing.T) {
	for _, input := range []string{"", "10,20", "RECT", "SPAN 7-3", "RECT x,y"} {
		if _, err := ParseAreaExpr(input); err == nil {
			t.Errorf("ParseAreaExpr(%q) should fail", input)
		}
	}
}

func TestAreaValid(t *testing.T) {
	if !(&ContentFileArea{AreaType: "coordinates", Coordinates: "RECT 1,2,3,4"}).Valid() {
		t.Error("well-formed area should be valid")
	}
	if !(&ContentFileArea{}).Valid() {
		t.Error("empty area covers the whole file and is valid")
	}
	if (&ContentFileArea{Coordinates: "1,2"}).Valid() {
		t.Error("expression without a shape should be invalid")
	}

	var nilArea *ContentFileArea
	if !nilArea.Valid() {
		t.Error("nil area is valid")
	}
}

func TestAreaEqualsAndCopy(t *testing.T) {
	a := &ContentFileArea{AreaType: "coordinates", Coordinates: "RECT 1,2,3,4"}
	b := a.Copy()
	if !a.Equals(b) {
		t.Error("copy should compare equal")
	}
	b.Coordinates = "RECT 1,2,3,5"
	if a.Equals(b) {
		t.Error("differing coordinates should compare unequal")
	}
}
