package sdf

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
	"github.com/OpenTraceLab/icexchange/pkg/triplet"
)

// parseCell consumes one (CELL (CELLTYPE "...") (INSTANCE ...|*)
// (DELAY ...) ...) block and registers the resulting Cell under its
// CELLTYPE, either as the wildcard entry (bare "*" INSTANCE) or keyed
// by the specific instance path.
func (r *Reader) parseCell(extended bool) error {
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("CELL")

	if !r.atParen("CELLTYPE") {
		return r.cellErr("CELLTYPE")
	}
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("CELLTYPE")
	cellTypeName, err := r.expectString("CELLTYPE")
	if err != nil {
		return err
	}
	if err := r.expectPunct(")"); err != nil {
		return err
	}

	if !r.atParen("INSTANCE") {
		return r.cellErr("INSTANCE")
	}
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("INSTANCE")
	wildcard := false
	var instance *hierid.HierId
	if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "*" {
		r.l.Have(lextok.Punct, "*")
		wildcard = true
	} else {
		instance, err = r.parseHierId("INSTANCE")
		if err != nil {
			return err
		}
	}
	if err := r.expectPunct(")"); err != nil {
		return err
	}

	cell := &Cell{}

	for {
		switch {
		case r.atParen("DELAY"):
			if err := r.parseDelayBlock(cell); err != nil {
				return err
			}
		case extended && r.atParen("ENERGY"):
			if err := r.parseEnergyBlock(cell); err != nil {
				return err
			}
		case extended && r.atParen("LEAKAGE"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("LEAKAGE")
			v, err := r.parseTriplet("LEAKAGE")
			if err != nil {
				return err
			}
			cell.HasLeakage, cell.Leakage = true, v
			if err := r.expectPunct(")"); err != nil {
				return err
			}
		case r.atParen("TIMINGCHECK"), r.atParen("TIMINGENV"), r.atParen("LABEL"):
			r.skipBalanced()
		default:
			goto done
		}
	}
done:

	if err := r.expectPunct(")"); err != nil {
		return err
	}

	ct := r.sdf.cellType(cellTypeName)
	if wildcard {
		ct.Wildcard = cell
	} else {
		key := instance.String(r.sdf.Header.Divider)
		if _, exists := ct.Instances[key]; exists {
			return r.warn("duplicate-cell-instance", "instance "+key+" redefined in CELLTYPE "+cellTypeName)
		}
		ct.InstanceOrder = append(ct.InstanceOrder, key)
		ct.Instances[key] = cell
	}
	return nil
}

// parseEnergyBlock consumes the extended-dialect (ENERGY (ABSOLUTE
// path*) | (INCREMENT path*))+ block, mirroring parseDelayBlock but
// with a single triplet per path rather than a rise/fall pair.
func (r *Reader) parseEnergyBlock(cell *Cell) error {
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("ENERGY")

	for r.atParen("ABSOLUTE") || r.atParen("INCREMENT") {
		r.l.Have(lextok.Punct, "(")
		if !r.l.HaveKeyword("INCREMENT") {
			r.l.HaveKeyword("ABSOLUTE")
		}
		for {
			pt, ok := r.pathKeywordHere()
			if !ok {
				break
			}
			r.l.Have(lextok.Punct, "(")
			r.l.Have(lextok.Ident, "")

			from, err := r.parseHierId("energy path source")
			if err != nil {
				return err
			}
			var to *hierid.HierId
			if pt != PathDevice && pt != PathPort {
				to, err = r.parseHierId("energy path target")
				if err != nil {
					return err
				}
			}
			val, err := r.parseTriplet("energy value")
			if err != nil {
				return err
			}
			if err := r.expectPunct(")"); err != nil {
				return err
			}
			cell.EnergyPaths = append(cell.EnergyPaths, EnergyPath{Type: pt, From: from, To: to, Value: val})
		}
		if err := r.expectPunct(")"); err != nil {
			return err
		}
	}
	return r.expectPunct(")")
}

func (r *Reader) cellErr(expected string) error {
	return &diag.ParseError{
		Kind: diag.KindUnexpectedToken, Expected: "(" + expected, Found: r.l.Text(),
		Line: r.l.Line(), Col: r.l.Col(), Context: "CELL",
	}
}

// parseDelayBlock consumes (DELAY (ABSOLUTE path*) | (INCREMENT
// path*))+, appending to cell.Paths.
func (r *Reader) parseDelayBlock(cell *Cell) error {
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("DELAY")

	for r.atParen("ABSOLUTE") || r.atParen("INCREMENT") {
		r.l.Have(lextok.Punct, "(")
		increment := r.l.HaveKeyword("INCREMENT")
		if !increment {
			r.l.HaveKeyword("ABSOLUTE")
		}
		for {
			path, ok, err := r.parsePath(increment)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			cell.Paths = append(cell.Paths, path)
		}
		if err := r.expectPunct(")"); err != nil {
			return err
		}
	}
	return r.expectPunct(")")
}

var pathKeywords = map[string]PathType{
	"IOPATH":       PathIOPath,
	"PORT":         PathPort,
	"INTERCONNECT": PathInterconnect,
	"DEVICE":       PathDevice,
	"NETDELAY":     PathNetDelay,
}

func (r *Reader) pathKeywordHere() (PathType, bool) {
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != "(" {
		return 0, false
	}
	for kw, pt := range pathKeywords {
		r.l.Push()
		r.l.Have(lextok.Punct, "(")
		ok := r.l.HaveKeyword(kw)
		r.l.Set()
		if ok {
			return pt, true
		}
	}
	return 0, false
}

// parsePath consumes one timing-arc entry: a bare
// "(TYPE [cond] from [to] delval delval)" form, or a
// "(COND expr (IOPATH ...))" / "(COND ELSE (IOPATH ...))" wrapper.
func (r *Reader) parsePath(increment bool) (Path, bool, error) {
	if r.atParen("COND") {
		return r.parseCondWrappedPath(increment)
	}
	pt, ok := r.pathKeywordHere()
	if !ok {
		return Path{}, false, nil
	}
	return r.parseBarePath(pt, increment, nil, false)
}

func (r *Reader) parseCondWrappedPath(increment bool) (Path, bool, error) {
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword("COND")

	isElse := false
	var cond *ConditionalExpr
	if r.l.HaveKeyword("ELSE") {
		isElse = true
	} else {
		e, err := r.parseExprOr()
		if err != nil {
			return Path{}, false, err
		}
		cond = e
	}

	pt, ok := r.pathKeywordHere()
	if !ok {
		return Path{}, false, r.cellErr("IOPATH/PORT/INTERCONNECT/DEVICE/NETDELAY")
	}
	p, _, err := r.parseBarePath(pt, increment, cond, isElse)
	if err != nil {
		return Path{}, false, err
	}
	return p, true, r.expectPunct(")")
}

func (r *Reader) parseBarePath(pt PathType, increment bool, cond *ConditionalExpr, isElse bool) (Path, bool, error) {
	r.l.Have(lextok.Punct, "(")
	r.l.Have(lextok.Ident, "") // the path-type keyword itself

	edge := EdgeNone
	if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "(" {
		if e, ok, err := r.tryParseEdge(); err != nil {
			return Path{}, false, err
		} else if ok {
			edge = e
		}
	}

	from, err := r.parseHierId("path source")
	if err != nil {
		return Path{}, false, err
	}
	if edge != EdgeNone {
		if err := r.expectPunct(")"); err != nil {
			return Path{}, false, err
		}
	}

	var to *hierid.HierId
	if pt != PathDevice && pt != PathPort {
		to, err = r.parseHierId("path target")
		if err != nil {
			return Path{}, false, err
		}
	} else if r.l.Sym().Kind == lextok.Ident {
		// DEVICE/PORT may still name a target pin.
		to, err = r.parseHierId("path target")
		if err != nil {
			return Path{}, false, err
		}
	}

	delay, err := r.parseDelvalList()
	if err != nil {
		return Path{}, false, err
	}

	if err := r.expectPunct(")"); err != nil {
		return Path{}, false, err
	}

	return Path{
		Type: pt, Increment: increment, Edge: edge,
		Cond: cond, CondIsElse: isElse,
		From: from, To: to, Delay: delay,
	}, true, nil
}

// tryParseEdge recognizes a parenthesized edge qualifier, e.g.
// "(posedge A)", rewriting From to the bare identifier that follows.
// Returns ok=false if the parenthesized group is not an edge form.
func (r *Reader) tryParseEdge() (Edge, bool, error) {
	names := map[string]Edge{
		"posedge": EdgePosedge, "negedge": EdgeNegedge,
		"01": Edge01, "10": Edge10, "0z": Edge0Z, "z1": EdgeZ1, "1z": Edge1Z, "z0": EdgeZ0,
	}
	r.l.Push()
	r.l.Have(lextok.Punct, "(")
	if r.l.Sym().Kind != lextok.Ident {
		r.l.Set()
		return 0, false, nil
	}
	edge, ok := names[r.l.Text()]
	if !ok {
		r.l.Set()
		return 0, false, nil
	}
	r.l.Have(lextok.Ident, "")
	r.l.Pop()
	return edge, true, nil
}

// parseDelvalList consumes one or two parenthesized delval groups (the
// z2o and o2z delay triplets); per IEEE 1497 a delval list may carry up
// to twelve strength-qualified values, of which only the first two are
// retained here. Each group is either a bare "(rvalue)" or a composite
// "((rvalue)(rlimit)[(elimit)])"; any trailing delvals beyond the
// second, and any rlimit/elimit sub-groups, are skipped.
func (r *Reader) parseDelvalList() (Delay, error) {
	var d Delay
	index := 0
	for r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "(" {
		r.l.Have(lextok.Punct, "(")

		var val triplet.Triplet
		hasVal := false
		if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "(" {
			r.l.Have(lextok.Punct, "(")
			if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != ")" {
				v, err := r.parseTriplet("delval")
				if err != nil {
					return Delay{}, err
				}
				val, hasVal = v, true
			}
			if err := r.expectPunct(")"); err != nil {
				return Delay{}, err
			}
			for r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "(" {
				r.skipBalanced()
			}
		} else if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != ")" {
			v, err := r.parseTriplet("delval")
			if err != nil {
				return Delay{}, err
			}
			val, hasVal = v, true
		}
		if err := r.expectPunct(")"); err != nil {
			return Delay{}, err
		}
		if hasVal {
			switch index {
			case 0:
				d.Z2O, d.HasZ2O = val, true
			case 1:
				d.O2Z, d.HasO2Z = val, true
			}
		}
		index++
	}
	if !d.HasO2Z && d.HasZ2O {
		d.O2Z, d.HasO2Z = d.Z2O, true
	}
	return d, nil
}
