// Package table is the adapter between a 2D grid of raw cell text and the
// formula engine: it assigns spreadsheet coordinates to physical grid
// positions (honoring column spans), extracts embedded ={...} formulas,
// resolves the relative @ and # markers, and writes computed values back
// into the cell text.
package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gridlabs/tablecalc-cli/sheet"
)

// formulaRe finds an embedded formula ={...} in cell text. Only the first
// occurrence per cell is honored.
var formulaRe = regexp.MustCompile(`=\{(.*?)\}`)

// Cell is one table body cell. MoreCols is the number of extra columns the
// cell spans beyond its own; cells after it in the same row shift right by
// that amount when coordinates are assigned.
type Cell struct {
	Text     string
	MoreCols int
}

// CellValue reports one resolved coordinate, for diagnostics and listings.
type CellValue struct {
	Coord      string  `json:"coord"`
	Formula    string  `json:"formula"`
	Value      float64 `json:"value"`
	HadFormula bool    `json:"had_formula"`
}

// Resolve evaluates every embedded formula in body and replaces it with its
// computed value, modifying body in place. It is shorthand for ResolveSheet
// with a fresh engine, which is the normal lifecycle: one engine per table.
func Resolve(body [][]Cell) ([]CellValue, error) {
	return ResolveSheet(sheet.New(), body)
}

// ResolveSheet runs the two-phase pass against an engine supplied by the
// caller: first every cell's formula is stored (so references work in any
// direction), then every cell is evaluated and its text rewritten. The
// returned values are ordered row-major by physical position.
func ResolveSheet(s *sheet.Sheet, body [][]Cell) ([]CellValue, error) {
	// Write phase: populate the engine in full before any value is read.
	for row := range body {
		offset := 0
		for col := range body[row] {
			cell := &body[row][col]
			text, _ := ExtractFormula(cell.Text)
			s.SetFormula(
				sheet.EncodeCoord(col+offset, row),
				ResolveMarkers(text, col+offset, row),
			)
			offset += cell.MoreCols
		}
	}

	// Read phase: substitute computed values back into the cell text.
	values := make([]CellValue, 0, len(body))
	for row := range body {
		offset := 0
		for col := range body[row] {
			cell := &body[row][col]
			ax := sheet.EncodeCoord(col+offset, row)
			v, err := s.Value(ax)
			if err != nil {
				return nil, err
			}
			formula, _ := s.Formula(ax)
			_, had := ExtractFormula(cell.Text)
			cell.Text = SubstituteValue(cell.Text, v)
			values = append(values, CellValue{Coord: ax, Formula: formula, Value: v, HadFormula: had})
			offset += cell.MoreCols
		}
	}
	return values, nil
}

// ExtractFormula returns the first ={...} formula embedded in text. Cells
// without one get the default formula "0", reported with found=false.
func ExtractFormula(text string) (formula string, found bool) {
	if m := formulaRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "0", false
}

// ResolveMarkers substitutes the relative markers in formula text: @ becomes
// the current column's letters and # the current 1-based row number. The
// engine itself never sees the markers.
func ResolveMarkers(text string, col, row int) string {
	text = strings.ReplaceAll(text, "@", sheet.EncodeColumn(col))
	text = strings.ReplaceAll(text, "#", sheet.EncodeRow(row))
	return text
}

// SubstituteValue replaces the first ={...} occurrence in text with the
// formatted value. Text without a formula is returned unchanged.
func SubstituteValue(text string, v float64) string {
	loc := formulaRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + FormatValue(v) + text[loc[1]:]
}

// FormatValue renders a computed value the way it should read in a document:
// integral values print without a decimal point.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
