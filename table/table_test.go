package table

import (
	"errors"
	"testing"

	"github.com/gridlabs/tablecalc-cli/sheet"
)

func TestExtractFormula(t *testing.T) {
	tests := []struct {
		text    string
		formula string
		found   bool
	}{
		{"={2}", "2", true},
		{"={a1 * b2} $", "a1 * b2", true},
		{"plain text", "0", false},
		{"", "0", false},
		// only the first occurrence is honored
		{"={1} and ={2}", "1", true},
		{"={sum(\"a1:a4\")}", "sum(\"a1:a4\")", true},
	}
	for _, tt := range tests {
		formula, found := ExtractFormula(tt.text)
		if formula != tt.formula || found != tt.found {
			t.Errorf("ExtractFormula(%q) = (%q, %v), want (%q, %v)",
				tt.text, formula, found, tt.formula, tt.found)
		}
	}
}

func TestResolveMarkers(t *testing.T) {
	tests := []struct {
		text     string
		col, row int
		want     string
	}{
		// cell at column 0, row 0: @ -> "a", # -> "1"
		{"@1 + #", 0, 0, "a1 + 1"},
		{"b# * f#", 2, 4, "b5 * f5"},
		{"@1 + @2", 1, 7, "b1 + b2"},
		{"a1 * a2", 0, 0, "a1 * a2"},
		{"sum(\"@1:@4\")", 26, 0, "sum(\"aa1:aa4\")"},
	}
	for _, tt := range tests {
		if got := ResolveMarkers(tt.text, tt.col, tt.row); got != tt.want {
			t.Errorf("ResolveMarkers(%q, %d, %d) = %q, want %q",
				tt.text, tt.col, tt.row, got, tt.want)
		}
	}
}

func TestSubstituteValue(t *testing.T) {
	tests := []struct {
		text string
		v    float64
		want string
	}{
		{"={a# * b#} $", 12, "12 $"},
		{"x ={1+1} y", 2, "x 2 y"},
		{"no formula", 5, "no formula"},
		{"={a1/b1}", 2.5, "2.5"},
	}
	for _, tt := range tests {
		if got := SubstituteValue(tt.text, tt.v); got != tt.want {
			t.Errorf("SubstituteValue(%q, %v) = %q, want %q", tt.text, tt.v, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{5, "5"},
		{0, "0"},
		{-3, "-3"},
		{2.5, "2.5"},
		{1000000, "1000000"},
		{0.125, "0.125"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestResolve_QuantityPriceTable(t *testing.T) {
	body := [][]Cell{
		{{Text: "={2}"}, {Text: "={1} $"}, {Text: "={a# * b#} $"}},
		{{Text: "={4}"}, {Text: "={3} $"}, {Text: "={a# * b#} $"}},
		{{Text: "={1}"}, {Text: "={5} $"}, {Text: "={a# * b#} $"}},
		{{Text: "={3}"}, {Text: "={7} $"}, {Text: "={a# * b#} $"}},
		{{Text: "*Total*", MoreCols: 1}, {Text: "={sum(\"c1:c4\")} $"}},
	}
	values, err := Resolve(body)
	if err != nil {
		t.Fatal(err)
	}

	wantTexts := [][]string{
		{"2", "1 $", "2 $"},
		{"4", "3 $", "12 $"},
		{"1", "5 $", "5 $"},
		{"3", "7 $", "21 $"},
		{"*Total*", "40 $"},
	}
	for r, row := range wantTexts {
		for c, want := range row {
			if got := body[r][c].Text; got != want {
				t.Errorf("cell (%d, %d) = %q, want %q", r, c, got, want)
			}
		}
	}

	// the total cell sits after a 2-column span, so it is column c
	last := values[len(values)-1]
	if last.Coord != "c5" {
		t.Errorf("total coordinate = %q, want c5", last.Coord)
	}
	if last.Value != 40 {
		t.Errorf("total = %v, want 40", last.Value)
	}
}

func TestResolve_ColumnSpanOffset(t *testing.T) {
	// a 2-column-spanning cell at position 0 pushes the next cell to column c
	body := [][]Cell{
		{{Text: "={5}", MoreCols: 1}, {Text: "={a1 * 2}"}},
	}
	values, err := Resolve(body)
	if err != nil {
		t.Fatal(err)
	}
	if values[1].Coord != "c1" {
		t.Errorf("second cell coordinate = %q, want c1", values[1].Coord)
	}
	if body[0][1].Text != "10" {
		t.Errorf("second cell = %q, want %q", body[0][1].Text, "10")
	}
}

func TestResolve_PlainCellsDefaultToZero(t *testing.T) {
	body := [][]Cell{
		{{Text: "Qty"}, {Text: "={a1 + 1}"}},
	}
	values, err := Resolve(body)
	if err != nil {
		t.Fatal(err)
	}
	if body[0][0].Text != "Qty" {
		t.Errorf("plain cell rewritten to %q", body[0][0].Text)
	}
	if values[0].HadFormula {
		t.Error("plain cell reported as formula cell")
	}
	if values[1].Value != 1 {
		t.Errorf("b1 = %v, want 1 (a1 defaults to 0)", values[1].Value)
	}
}

func TestResolve_ForwardReference(t *testing.T) {
	// write phase completes before any read, so a cell may reference one
	// that appears later in the grid
	body := [][]Cell{
		{{Text: "={a2 * 10}"}},
		{{Text: "={7}"}},
	}
	values, err := Resolve(body)
	if err != nil {
		t.Fatal(err)
	}
	if values[0].Value != 70 {
		t.Errorf("a1 = %v, want 70", values[0].Value)
	}
}

func TestResolve_CycleFailsWithCoordinate(t *testing.T) {
	body := [][]Cell{
		{{Text: "={b1}"}, {Text: "={a1}"}},
	}
	_, err := Resolve(body)
	if !errors.Is(err, sheet.ErrCircularReference) {
		t.Fatalf("error = %v, want ErrCircularReference", err)
	}
}

func TestResolveSheet_CallerOwnedEngine(t *testing.T) {
	s := sheet.New()
	s.MaxDepth = 4
	body := [][]Cell{
		{{Text: "={a2}"}},
		{{Text: "={a3}"}},
		{{Text: "={a4}"}},
		{{Text: "={a5}"}},
		{{Text: "={a6}"}},
		{{Text: "={1}"}},
	}
	_, err := ResolveSheet(s, body)
	if !errors.Is(err, sheet.ErrEvalDepth) {
		t.Fatalf("error = %v, want ErrEvalDepth", err)
	}
}
