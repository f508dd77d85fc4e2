// Package triplet implements the best/typ/worst value triplet shared by
// SPEF parasitics and SDF delays.
package triplet

import (
	"fmt"
	"strconv"
	"strings"
)

// Triplet holds a best/typ/worst measurement. Parsers accept either a
// bare number (all three equal, a "singleton") or a colon-separated
// "best:typ:worst" form.
type Triplet struct {
	Best  float64
	Typ   float64
	Worst float64
}

// Single returns a singleton triplet where all three values are v.
func Single(v float64) Triplet {
	return Triplet{Best: v, Typ: v, Worst: v}
}

// IsSingleton reports whether all three values are equal.
func (t Triplet) IsSingleton() bool {
	return t.Best == t.Typ && t.Typ == t.Worst
}

// String renders the canonical textual form: a bare number when
// singleton, otherwise "best:typ:worst".
func (t Triplet) String() string {
	if t.IsSingleton() {
		return formatNumber(t.Typ)
	}
	return fmt.Sprintf("%s:%s:%s", formatNumber(t.Best), formatNumber(t.Typ), formatNumber(t.Worst))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse parses a triplet from text already split into at most three
// ':'-separated numeric fields (the caller, typically a parser driven by
// a token stream, supplies the already-tokenized pieces so number
// formatting oddities in the source text never matter).
func Parse(fields ...string) (Triplet, error) {
	switch len(fields) {
	case 1:
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Triplet{}, fmt.Errorf("triplet: invalid number %q: %w", fields[0], err)
		}
		return Single(v), nil
	case 3:
		vals := make([]float64, 3)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return Triplet{}, fmt.Errorf("triplet: invalid number %q: %w", f, err)
			}
			vals[i] = v
		}
		return Triplet{Best: vals[0], Typ: vals[1], Worst: vals[2]}, nil
	default:
		return Triplet{}, fmt.Errorf("triplet: expected 1 or 3 fields, got %d", len(fields))
	}
}

// ParseText parses "v" or "b:t:w" directly from one token's text.
func ParseText(text string) (Triplet, error) {
	parts := strings.Split(text, ":")
	return Parse(parts...)
}

// Complex is a complex-valued triplet (real + imaginary parts), used by
// SPEF reduced-net pole/residue values.
type Complex struct {
	Re Triplet
	Im Triplet
}

// String renders "re" when Im is all-zero, otherwise "re im".
func (c Complex) String() string {
	if c.Im == (Triplet{}) {
		return c.Re.String()
	}
	return c.Re.String() + " " + c.Im.String()
}
