// Package sheet is a minimal spreadsheet: a mapping from coordinate strings
// ("a1", "b12") to formula text, evaluated lazily with cross-cell references
// resolved by recursion. One Sheet serves one table-resolution pass.
package sheet

import "fmt"

// DefaultMaxDepth bounds cross-cell reference chains. True cycles are caught
// by the reentrancy marker; the depth bound guards pathological non-cyclic
// chains against stack exhaustion.
const DefaultMaxDepth = 128

// Func is a registered formula function. It receives the owning sheet so it
// can resolve further cell values, plus the single quoted argument from the
// call site: sum("a1:c5") passes "a1:c5".
type Func func(s *Sheet, arg string) (float64, error)

// Sheet maps coordinates to formula text and evaluates cells on demand.
// The zero value is not usable; construct with New.
type Sheet struct {
	// MaxDepth bounds the depth of cross-cell reference chains.
	// Values <= 0 fall back to DefaultMaxDepth.
	MaxDepth int

	cells map[string]string
	funcs map[string]Func
	busy  map[string]bool
	depth int
}

// New returns an empty sheet with the built-in functions registered.
func New() *Sheet {
	s := &Sheet{
		MaxDepth: DefaultMaxDepth,
		cells:    make(map[string]string),
		funcs:    make(map[string]Func),
		busy:     make(map[string]bool),
	}
	registerBuiltins(s)
	return s
}

// SetFormula stores or overwrites the formula for coord. The text is not
// validated here; errors surface when the cell is evaluated.
func (s *Sheet) SetFormula(coord, text string) {
	s.cells[coord] = text
}

// Formula returns the stored formula text for coord, or ErrUnknownCell.
func (s *Sheet) Formula(coord string) (string, error) {
	f, ok := s.cells[coord]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCell, coord)
	}
	return f, nil
}

// Register adds or replaces a formula function. Registering an existing name
// again simply replaces the previous entry.
func (s *Sheet) Register(name string, fn Func) {
	s.funcs[name] = fn
}

// Value evaluates coord's formula. A coordinate with no stored formula has
// value 0. Coordinate identifiers inside the formula are resolved by
// recursively evaluating the named cells; re-entering a cell that is already
// being evaluated is ErrCircularReference.
func (s *Sheet) Value(coord string) (float64, error) {
	text, ok := s.cells[coord]
	if !ok {
		return 0, nil
	}
	if s.busy[coord] {
		return 0, fmt.Errorf("%w: cell %s (formula %q) depends on itself", ErrCircularReference, coord, text)
	}
	if s.depth >= s.maxDepth() {
		return 0, fmt.Errorf("%w: at cell %s", ErrEvalDepth, coord)
	}
	node, err := parseExpr(text)
	if err != nil {
		return 0, fmt.Errorf("cell %s (formula %q): %w", coord, text, err)
	}
	s.busy[coord] = true
	s.depth++
	v, err := node.eval(s)
	s.depth--
	delete(s.busy, coord)
	return v, err
}

// Eval evaluates formula text directly, without storing it at a coordinate.
// Identifiers still resolve against the sheet's cells.
func (s *Sheet) Eval(text string) (float64, error) {
	node, err := parseExpr(text)
	if err != nil {
		return 0, fmt.Errorf("formula %q: %w", text, err)
	}
	return node.eval(s)
}

// Len reports how many coordinates have a stored formula.
func (s *Sheet) Len() int {
	return len(s.cells)
}

func (s *Sheet) maxDepth() int {
	if s.MaxDepth > 0 {
		return s.MaxDepth
	}
	return DefaultMaxDepth
}
