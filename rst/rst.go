// Package rst locates reStructuredText grid tables in a document, feeds
// their body cells through the formula engine and splices the resolved
// tables back in. It stands in for the docutils traversal the directive
// form of this tool would get from a document processor.
package rst

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gridlabs/tablecalc-cli/sheet"
	"github.com/gridlabs/tablecalc-cli/table"
)

// DefaultDirective is the marker whose content tables are resolved:
// ".. simplespreadsheet::".
const DefaultDirective = "simplespreadsheet"

var (
	borderRe = regexp.MustCompile(`^\+(-+\+)+$`)
	headSepRe = regexp.MustCompile(`^\+(=+\+)+$`)
)

// Options controls a document pass.
type Options struct {
	// Directive is the directive name marking resolvable tables.
	// Empty means DefaultDirective.
	Directive string
	// AllTables resolves every grid table, not only directive content.
	AllTables bool
	// MaxDepth overrides the engine's reference-depth bound when > 0.
	MaxDepth int
}

// Stats summarizes a document pass.
type Stats struct {
	Tables   int               `json:"tables"`
	Cells    int               `json:"cells"`
	Formulas int               `json:"formulas"`
	Values   []table.CellValue `json:"values,omitempty"`
}

// Process resolves spreadsheet tables in a reStructuredText document and
// returns the rewritten document. A resolved directive block is replaced by
// its computed table at the directive's own indentation. Errors name the
// document line of the failing table and the offending cell.
func Process(src string, opts Options) (string, Stats, error) {
	directive := opts.Directive
	if directive == "" {
		directive = DefaultDirective
	}
	directiveRe := regexp.MustCompile(`^(\s*)\.\.\s+` + regexp.QuoteMeta(directive) + `::\s*$`)

	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	var stats Stats

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := directiveRe.FindStringSubmatch(line); m != nil {
			rendered, next, err := resolveDirective(lines, i, len(m[1]), opts, &stats)
			if err != nil {
				return "", stats, fmt.Errorf("%s directive at line %d: %w", directive, i+1, err)
			}
			for _, l := range rendered {
				out = append(out, m[1]+l)
			}
			i = next
			continue
		}

		if opts.AllTables {
			if tblLines, indent, next, ok := scanTable(lines, i); ok {
				rendered, err := resolveTable(tblLines, opts, &stats)
				if err != nil {
					return "", stats, fmt.Errorf("table at line %d: %w", i+1, err)
				}
				for _, l := range rendered {
					out = append(out, indent+l)
				}
				i = next
				continue
			}
		}

		out = append(out, line)
		i++
	}

	return strings.Join(out, "\n"), stats, nil
}

// resolveDirective consumes the table inside a directive block starting at
// the directive line index and returns the rendered replacement lines
// (without indentation) plus the index of the first unconsumed line.
func resolveDirective(lines []string, idx, dirIndent int, opts Options, stats *Stats) ([]string, int, error) {
	j := idx + 1
	for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
		j++
	}
	if j >= len(lines) {
		return nil, 0, fmt.Errorf("directive has no content")
	}
	indent := leadingSpace(lines[j])
	if len(indent) <= dirIndent {
		return nil, 0, fmt.Errorf("directive has no indented content")
	}

	tblLines, _, next, ok := scanTable(lines, j)
	if !ok {
		return nil, 0, fmt.Errorf("directive content is not a grid table")
	}

	rendered, err := resolveTable(tblLines, opts, stats)
	if err != nil {
		return nil, 0, err
	}
	return rendered, next, nil
}

// scanTable recognizes a grid table starting at lines[idx]: a border line
// followed by at least one cell row at the same indentation. It returns the
// table's lines with the indentation stripped.
func scanTable(lines []string, idx int) (tbl []string, indent string, next int, ok bool) {
	indent = leadingSpace(lines[idx])
	first := lines[idx][len(indent):]
	if !borderRe.MatchString(strings.TrimRight(first, " \t")) {
		return nil, "", 0, false
	}
	j := idx
	for j < len(lines) {
		if !strings.HasPrefix(lines[j], indent) {
			break
		}
		t := strings.TrimRight(lines[j][len(indent):], " \t")
		if t == "" || (t[0] != '+' && t[0] != '|') {
			break
		}
		tbl = append(tbl, t)
		j++
	}
	if len(tbl) < 2 || tbl[1] == "" || tbl[1][0] != '|' {
		return nil, "", 0, false
	}
	return tbl, indent, j, true
}

// grid is a parsed table: header rows are kept verbatim and never resolved
// (header rows are not numbered and not referenceable), body rows carry the
// formulas.
type grid struct {
	ncols  int
	header [][]table.Cell
	body   [][]table.Cell
}

func parseGrid(tbl []string) (*grid, error) {
	bounds := junctions(tbl[0])
	if len(bounds) < 2 {
		return nil, fmt.Errorf("malformed table border %q", tbl[0])
	}

	g := &grid{ncols: len(bounds) - 1}
	var group []string
	flush := func() {
		if len(group) > 0 {
			g.body = append(g.body, parseRow(group, bounds))
			group = nil
		}
	}
	for _, line := range tbl[1:] {
		switch {
		case headSepRe.MatchString(line):
			flush()
			// rows above the "=" separator are the header
			g.header = append(g.header, g.body...)
			g.body = nil
		case line[0] == '+':
			flush()
		default:
			group = append(group, line)
		}
	}
	flush()
	return g, nil
}

// junctions returns the column positions of '+' in a border line.
func junctions(border string) []int {
	var pos []int
	for i := 0; i < len(border); i++ {
		if border[i] == '+' {
			pos = append(pos, i)
		}
	}
	return pos
}

// parseRow slices one row's content lines into cells. A cell spans every
// column up to the next boundary where all of the row's lines carry a "|";
// a missing separator means the cell spans on (docutils "morecols").
func parseRow(group []string, bounds []int) []table.Cell {
	var cells []table.Cell
	b := 0
	for b < len(bounds)-1 {
		e := b + 1
		for e < len(bounds)-1 && !allSeparated(group, bounds[e]) {
			e++
		}
		parts := make([]string, 0, len(group))
		for _, ln := range group {
			parts = append(parts, strings.TrimSpace(sliceAt(ln, bounds[b]+1, bounds[e])))
		}
		text := strings.Trim(strings.Join(parts, "\n"), "\n")
		cells = append(cells, table.Cell{Text: text, MoreCols: e - b - 1})
		b = e
	}
	return cells
}

func allSeparated(group []string, pos int) bool {
	for _, ln := range group {
		if pos >= len(ln) || ln[pos] != '|' {
			return false
		}
	}
	return true
}

func sliceAt(s string, start, end int) string {
	if start >= len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// resolveTable parses, resolves and re-renders one table. A fresh engine is
// constructed per table; nothing persists across tables.
func resolveTable(tbl []string, opts Options, stats *Stats) ([]string, error) {
	g, err := parseGrid(tbl)
	if err != nil {
		return nil, err
	}

	s := sheet.New()
	if opts.MaxDepth > 0 {
		s.MaxDepth = opts.MaxDepth
	}
	values, err := table.ResolveSheet(s, g.body)
	if err != nil {
		return nil, err
	}

	stats.Tables++
	stats.Cells += len(values)
	for _, v := range values {
		if v.HadFormula {
			stats.Formulas++
		}
	}
	stats.Values = append(stats.Values, values...)

	return renderGrid(g), nil
}

// renderGrid re-renders a table with column widths recomputed from the
// substituted cell text.
func renderGrid(g *grid) []string {
	widths := make([]int, g.ncols)
	for i := range widths {
		widths[i] = 2
	}
	rows := make([][]table.Cell, 0, len(g.header)+len(g.body))
	rows = append(rows, g.header...)
	rows = append(rows, g.body...)

	for _, row := range rows {
		c := 0
		for _, cell := range row {
			span := cell.MoreCols + 1
			if span == 1 {
				if w := maxLineLen(cell.Text) + 2; w > widths[c] {
					widths[c] = w
				}
			}
			c += span
		}
	}
	// spanning cells that still do not fit widen their last column
	for _, row := range rows {
		c := 0
		for _, cell := range row {
			span := cell.MoreCols + 1
			if span > 1 {
				need := maxLineLen(cell.Text) + 2
				have := sumWidths(widths, c, span)
				if need > have {
					widths[c+span-1] += need - have
				}
			}
			c += span
		}
	}

	out := []string{borderLine(widths, '-')}
	for i, row := range g.header {
		out = append(out, renderRow(row, widths)...)
		if i == len(g.header)-1 {
			out = append(out, borderLine(widths, '='))
		} else {
			out = append(out, borderLine(widths, '-'))
		}
	}
	for _, row := range g.body {
		out = append(out, renderRow(row, widths)...)
		out = append(out, borderLine(widths, '-'))
	}
	return out
}

func renderRow(row []table.Cell, widths []int) []string {
	height := 1
	cellLines := make([][]string, len(row))
	for i, cell := range row {
		cellLines[i] = strings.Split(cell.Text, "\n")
		if n := len(cellLines[i]); n > height {
			height = n
		}
	}
	lines := make([]string, height)
	for k := 0; k < height; k++ {
		var b strings.Builder
		b.WriteByte('|')
		c := 0
		for i, cell := range row {
			span := cell.MoreCols + 1
			w := sumWidths(widths, c, span)
			text := ""
			if k < len(cellLines[i]) {
				text = cellLines[i][k]
			}
			b.WriteByte(' ')
			b.WriteString(text)
			b.WriteString(strings.Repeat(" ", w-len(text)-1))
			b.WriteByte('|')
			c += span
		}
		lines[k] = b.String()
	}
	return lines
}

func borderLine(widths []int, ch byte) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat(string(ch), w))
		b.WriteByte('+')
	}
	return b.String()
}

// sumWidths is the inner width of a cell spanning n columns from c,
// including the swallowed separators.
func sumWidths(widths []int, c, n int) int {
	total := n - 1
	for _, w := range widths[c : c+n] {
		total += w
	}
	return total
}

func maxLineLen(text string) int {
	m := 0
	for _, l := range strings.Split(text, "\n") {
		if len(l) > m {
			m = len(l)
		}
	}
	return m
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
