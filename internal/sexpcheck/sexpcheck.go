// Package sexpcheck provides a structural sanity check for the SDF
// printer's output, independent of the SDF grammar's own recursive
// descent parser. It wraps github.com/chewxy/sexp to re-parse printed
// SDF text as generic s-expressions and compare gross shape (form
// count, total leaf count) against what the printer believed it
// emitted.
package sexpcheck

import (
	"fmt"

	"github.com/chewxy/sexp"
)

// Shape summarizes a parsed text's gross s-expression structure.
type Shape struct {
	Forms     int // number of top-level parenthesized forms
	LeafCount int // total leaves across all top-level forms
}

// Parse re-parses text as generic s-expressions and reports its shape.
// It returns an error if text is not balanced, well-formed
// s-expression syntax — which, for printer output, signals a printer
// bug (an unbalanced paren slipped through) rather than a grammar issue.
func Parse(text string) (Shape, error) {
	depth, inStr := 0, false
	for i := 0; i < len(text) && depth >= 0; i++ {
		switch c := text[i]; {
		case inStr && c == '\\':
			i++
		case c == '"':
			inStr = !inStr
		case !inStr && c == '(':
			depth++
		case !inStr && c == ')':
			depth--
		}
	}
	if depth != 0 || inStr {
		return Shape{}, fmt.Errorf("sexpcheck: unbalanced parentheses or quotes")
	}
	forms, err := sexp.ParseString(text)
	if err != nil {
		return Shape{}, fmt.Errorf("sexpcheck: %w", err)
	}
	var sh Shape
	sh.Forms = len(forms)
	for _, f := range forms {
		if f == nil {
			continue
		}
		if f.IsLeaf() {
			sh.LeafCount++
		} else {
			sh.LeafCount += f.LeafCount()
		}
	}
	return sh, nil
}

// Matches reports whether two shapes agree — used by round-trip tests
// to assert that printing and re-printing a model yields the same gross
// structure.
func (s Shape) Matches(o Shape) bool {
	return s.Forms == o.Forms && s.LeafCount == o.LeafCount
}
