package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// coordRe matches a cell coordinate like a1, b12, aa100.
var coordRe = regexp.MustCompile(`^([a-z]+)([0-9]+)$`)

// EncodeColumn converts a zero-based column index to its letter form.
// The encoding is bijective base-26 (there is no "zero" letter):
// 0 is "a", 25 is "z", 26 is "aa", 701 is "zz", 702 is "aaa".
func EncodeColumn(col int) string {
	s := ""
	for col >= 0 {
		s = string(rune('a'+col%26)) + s
		col = col/26 - 1
	}
	return s
}

// EncodeRow converts a zero-based row index to its 1-based decimal form.
func EncodeRow(row int) string {
	return strconv.Itoa(row + 1)
}

// EncodeCoord returns the coordinate string for a zero-based (column, row)
// pair, e.g. (2, 0) is "c1".
func EncodeCoord(col, row int) string {
	return EncodeColumn(col) + EncodeRow(row)
}

// DecodeCoord parses a coordinate like "aa100" back into its zero-based
// (column, row) pair. Because the letter encoding has no zero digit, each
// letter is folded in with a +1 offset and the total is shifted down by one
// at the end; a plain base-26 fold would decode "aa" as column 0.
func DecodeCoord(s string) (col, row int, err error) {
	m := coordRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}
	for _, c := range m[1] {
		col = col*26 + int(c-'a') + 1
	}
	col--
	n, err := strconv.Atoi(m[2])
	if err != nil || n == 0 {
		return 0, 0, fmt.Errorf("%w: %q: row must be a positive number", ErrMalformedCoordinate, s)
	}
	return col, n - 1, nil
}

// ParseRange parses a range literal like "a1:c5" into two zero-based corner
// pairs. The corners are normalized so that (c1, r1) is the top-left one.
func ParseRange(s string) (c1, r1, c2, r2 int, err error) {
	if strings.Count(s, ":") != 1 {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q: want exactly one \":\"", ErrMalformedRange, s)
	}
	first, last, _ := strings.Cut(s, ":")
	c1, r1, err = DecodeCoord(first)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q: invalid first corner %q", ErrMalformedRange, s, first)
	}
	c2, r2, err = DecodeCoord(last)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("%w: %q: invalid last corner %q", ErrMalformedRange, s, last)
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return c1, r1, c2, r2, nil
}
