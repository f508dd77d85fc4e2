package sdf

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// The conditional expression grammar is precedence-climbing over eight
// levels, loosest to tightest: || (or), && (and), | (bitwise or), ^
// (xor), & (bitwise and), ==/!= (equality), prefix ~/! (not), then
// primaries (parenthesized sub-expressions, 1'b0/1'b1 constants, and
// bare identifiers naming a signal). Because this scanner tokenizes
// punctuation one byte at a time, the two-character operators are
// recognized as a pair of adjacent single-char tokens with no
// whitespace between them.

// haveOp advances past a one- or two-character operator spelled as op
// and reports whether it matched.
func (r *Reader) haveOp(op string) bool {
	if len(op) == 1 {
		if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != op {
			return false
		}
		r.l.Push()
		r.l.Have(lextok.Punct, op)
		// A single '&' or '|' directly followed by the same character is
		// the first half of "&&" / "||", which belongs to a looser tier.
		if (op == "&" || op == "|") && r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == op && r.l.Whitespace() == "" {
			r.l.Set()
			return false
		}
		r.l.Pop()
		return true
	}
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != op[:1] {
		return false
	}
	r.l.Push()
	r.l.Have(lextok.Punct, op[:1])
	if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == op[1:2] && r.l.Whitespace() == "" {
		r.l.Have(lextok.Punct, op[1:2])
		r.l.Pop()
		return true
	}
	r.l.Set()
	return false
}

func (r *Reader) parseExprOr() (*ConditionalExpr, error) {
	left, err := r.parseExprAnd()
	if err != nil {
		return nil, err
	}
	for r.haveOp("||") {
		right, err := r.parseExprAnd()
		if err != nil {
			return nil, err
		}
		left = &ConditionalExpr{Kind: ExprOr, Left: left, Right: right}
	}
	return left, nil
}

func (r *Reader) parseExprAnd() (*ConditionalExpr, error) {
	left, err := r.parseExprBitOr()
	if err != nil {
		return nil, err
	}
	for r.haveOp("&&") {
		right, err := r.parseExprBitOr()
		if err != nil {
			return nil, err
		}
		left = &ConditionalExpr{Kind: ExprAnd, Left: left, Right: right}
	}
	return left, nil
}

func (r *Reader) parseExprBitOr() (*ConditionalExpr, error) {
	left, err := r.parseExprXor()
	if err != nil {
		return nil, err
	}
	for r.haveOp("|") {
		right, err := r.parseExprXor()
		if err != nil {
			return nil, err
		}
		left = &ConditionalExpr{Kind: ExprOr, Left: left, Right: right}
	}
	return left, nil
}

func (r *Reader) parseExprXor() (*ConditionalExpr, error) {
	left, err := r.parseExprBitAnd()
	if err != nil {
		return nil, err
	}
	for r.haveOp("^") {
		right, err := r.parseExprBitAnd()
		if err != nil {
			return nil, err
		}
		left = &ConditionalExpr{Kind: ExprXor, Left: left, Right: right}
	}
	return left, nil
}

func (r *Reader) parseExprBitAnd() (*ConditionalExpr, error) {
	left, err := r.parseExprEq()
	if err != nil {
		return nil, err
	}
	for r.haveOp("&") {
		right, err := r.parseExprEq()
		if err != nil {
			return nil, err
		}
		left = &ConditionalExpr{Kind: ExprAnd, Left: left, Right: right}
	}
	return left, nil
}

func (r *Reader) parseExprEq() (*ConditionalExpr, error) {
	left, err := r.parseExprUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case r.haveOp("=="):
			right, err := r.parseExprUnary()
			if err != nil {
				return nil, err
			}
			left = &ConditionalExpr{Kind: ExprEq, Left: left, Right: right}
		case r.haveOp("!="):
			right, err := r.parseExprUnary()
			if err != nil {
				return nil, err
			}
			left = &ConditionalExpr{Kind: ExprNe, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (r *Reader) parseExprUnary() (*ConditionalExpr, error) {
	if r.haveOp("~") || r.haveOp("!") {
		operand, err := r.parseExprUnary()
		if err != nil {
			return nil, err
		}
		return &ConditionalExpr{Kind: ExprNot, Left: operand}, nil
	}
	return r.parseExprPrimary()
}

func (r *Reader) parseExprPrimary() (*ConditionalExpr, error) {
	if r.l.Have(lextok.Punct, "(") {
		e, err := r.parseExprOr()
		if err != nil {
			return nil, err
		}
		if err := r.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	}

	if c, ok, err := r.tryParseBitConstant(); err != nil {
		return nil, err
	} else if ok {
		return c, nil
	}

	v, ok, err := r.parseHierIdOptional()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "signal, constant, or '('", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "conditional expression",
		}
	}
	return &ConditionalExpr{Kind: ExprVar, Var: v}, nil
}

// tryParseBitConstant recognizes the scalar-literal shapes
// 1'b0, 1'b1, 1'b0n, 1'b1n — the trailing 'n' variants mark a
// don't-care/"negative" sense in some SDF dialects and are treated
// identically to their base value here.
func (r *Reader) tryParseBitConstant() (*ConditionalExpr, bool, error) {
	if r.l.Sym().Kind != lextok.Integer || r.l.Sym().Int != 1 {
		return nil, false, nil
	}
	r.l.Push()
	r.l.Have(lextok.Integer, "")
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != "'" || r.l.Whitespace() != "" {
		r.l.Set()
		return nil, false, nil
	}
	r.l.Have(lextok.Punct, "'")
	if r.l.Sym().Kind != lextok.Ident || r.l.Whitespace() != "" {
		r.l.Set()
		return nil, false, nil
	}
	switch r.l.Text() {
	case "b0", "b0n":
		r.l.Have(lextok.Ident, "")
		r.l.Pop()
		return &ConditionalExpr{Kind: ExprFalse}, true, nil
	case "b1", "b1n":
		r.l.Have(lextok.Ident, "")
		r.l.Pop()
		return &ConditionalExpr{Kind: ExprTrue}, true, nil
	default:
		r.l.Set()
		return nil, false, nil
	}
}
