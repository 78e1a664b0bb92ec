package sheet

// Built-in range functions. Each takes a range literal like "a1:c5" and
// aggregates the values of every cell in the inclusive rectangle it spans.
// New sheets get all of them; Register replaces or extends the set.

func registerBuiltins(s *Sheet) {
	s.Register("sum", builtinSum)
	s.Register("avg", builtinAvg)
	s.Register("min", builtinMin)
	s.Register("max", builtinMax)
	s.Register("count", builtinCount)
}

// rangeValues resolves every cell value in the rectangle named by arg.
// Range limits are included.
func (s *Sheet) rangeValues(arg string) ([]float64, error) {
	c1, r1, c2, r2, err := ParseRange(arg)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, 0, (c2-c1+1)*(r2-r1+1))
	for c := c1; c <= c2; c++ {
		for r := r1; r <= r2; r++ {
			v, err := s.Value(EncodeCoord(c, r))
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func builtinSum(s *Sheet, arg string) (float64, error) {
	vals, err := s.rangeValues(arg)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total, nil
}

func builtinAvg(s *Sheet, arg string) (float64, error) {
	vals, err := s.rangeValues(arg)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range vals {
		total += v
	}
	// A range always spans at least one cell.
	return total / float64(len(vals)), nil
}

func builtinMin(s *Sheet, arg string) (float64, error) {
	vals, err := s.rangeValues(arg)
	if err != nil {
		return 0, err
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m, nil
}

func builtinMax(s *Sheet, arg string) (float64, error) {
	vals, err := s.rangeValues(arg)
	if err != nil {
		return 0, err
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// builtinCount counts the cells in the range that have a formula set,
// mirroring the "empty cell = 0" rule: empty cells exist but are not counted.
func builtinCount(s *Sheet, arg string) (float64, error) {
	c1, r1, c2, r2, err := ParseRange(arg)
	if err != nil {
		return 0, err
	}
	n := 0
	for c := c1; c <= c2; c++ {
		for r := r1; r <= r2; r++ {
			if _, ok := s.cells[EncodeCoord(c, r)]; ok {
				n++
			}
		}
	}
	return float64(n), nil
}
