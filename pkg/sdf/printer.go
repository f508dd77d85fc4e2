package sdf

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/icexchange/pkg/hierid"
)

// Print writes s back out as SDF text.
//
// SDF_TRUE renders as "1'b1" and SDF_FALSE as "1'b0" — the
// straightforward mapping. (A constant-folding reference
// implementation surveyed during this reader's design printed these
// inverted; this printer does not reproduce that bug.)
func Print(w io.Writer, s *SDF) error {
	p := &sdfPrinter{w: w, s: s}
	return p.run()
}

type sdfPrinter struct {
	w   io.Writer
	s   *SDF
	err error
}

func (p *sdfPrinter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *sdfPrinter) id(h *hierid.HierId) string {
	if h == nil {
		return ""
	}
	return h.String(p.s.Header.Divider)
}

func (p *sdfPrinter) run() error {
	// ENERGYSCALE, ENERGY and LEAKAGE are only read back under XDELAYFILE.
	keyword := "DELAYFILE"
	if p.s.Header.HasEnergyscale {
		keyword = "XDELAYFILE"
	}
	for _, ct := range p.s.CellTypes {
		cells := []*Cell{ct.Wildcard}
		for _, c := range ct.Instances {
			cells = append(cells, c)
		}
		for _, c := range cells {
			if c != nil && (len(c.EnergyPaths) > 0 || c.HasLeakage) {
				keyword = "XDELAYFILE"
			}
		}
	}
	p.printf("(%s\n", keyword)
	p.printHeader()
	for _, name := range p.s.CellOrder {
		ct := p.s.CellTypes[name]
		if ct.Wildcard != nil {
			p.printCell(name, "*", ct.Wildcard)
		}
		for _, inst := range ct.InstanceOrder {
			p.printCell(name, inst, ct.Instances[inst])
		}
	}
	p.printf(")\n")
	return p.err
}

func rescaleTimescale(v float64) (float64, string) {
	switch {
	case v >= 1:
		return v, "s"
	case v >= 1e-3:
		return v / 1e-3, "ms"
	case v >= 1e-6:
		return v / 1e-6, "us"
	case v >= 1e-9:
		return v / 1e-9, "ns"
	case v >= 1e-12:
		return v / 1e-12, "ps"
	default:
		return v / 1e-15, "fs"
	}
}

func rescaleEnergyscale(v float64) (float64, string) {
	switch {
	case v >= 1:
		return v, "J"
	case v >= 1e-3:
		return v / 1e-3, "mJ"
	case v >= 1e-6:
		return v / 1e-6, "uJ"
	case v >= 1e-9:
		return v / 1e-9, "nJ"
	case v >= 1e-12:
		return v / 1e-12, "pJ"
	default:
		return v / 1e-15, "fJ"
	}
}

func (p *sdfPrinter) printHeader() {
	h := &p.s.Header
	p.printf("  (SDFVERSION %q)\n", h.Version)
	p.printf("  (DESIGN %q)\n", h.Design)
	p.printf("  (DATE %q)\n", h.Date)
	p.printf("  (VENDOR %q)\n", h.Vendor)
	p.printf("  (PROGRAM %q)\n", h.Program)
	p.printf("  (VERSION %q)\n", h.ProgramVersion)
	p.printf("  (DIVIDER %c)\n", h.Divider)
	if h.HasVoltage {
		p.printf("  (VOLTAGE %s)\n", h.Voltage)
	}
	if h.HasProcess {
		p.printf("  (PROCESS %q)\n", h.Process)
	}
	if h.HasTemp {
		p.printf("  (TEMPERATURE %s)\n", h.Temperature)
	}
	v, suf := rescaleTimescale(h.Timescale)
	p.printf("  (TIMESCALE %g%s)\n", v, suf)
	if h.HasEnergyscale {
		v, suf := rescaleEnergyscale(h.Energyscale)
		p.printf("  (ENERGYSCALE %g%s)\n", v, suf)
	}
}

func (p *sdfPrinter) printCell(cellType, instance string, c *Cell) {
	p.printf("  (CELL\n")
	p.printf("    (CELLTYPE %q)\n", cellType)
	if instance == "*" {
		p.printf("    (INSTANCE *)\n")
	} else {
		p.printf("    (INSTANCE %s)\n", instance)
	}

	abs, inc := splitByIncrement(c.Paths)
	if len(abs) > 0 {
		p.printf("    (DELAY\n      (ABSOLUTE\n")
		for _, path := range abs {
			p.printPath(path)
		}
		p.printf("      )\n    )\n")
	}
	if len(inc) > 0 {
		p.printf("    (DELAY\n      (INCREMENT\n")
		for _, path := range inc {
			p.printPath(path)
		}
		p.printf("      )\n    )\n")
	}

	if len(c.EnergyPaths) > 0 {
		p.printf("    (ENERGY\n      (ABSOLUTE\n")
		for _, ep := range c.EnergyPaths {
			p.printf("        (%s %s", ep.Type, p.id(ep.From))
			if ep.To != nil {
				p.printf(" %s", p.id(ep.To))
			}
			p.printf(" %s)\n", ep.Value)
		}
		p.printf("      )\n    )\n")
	}

	if c.HasLeakage {
		p.printf("    (LEAKAGE %s)\n", c.Leakage)
	}

	p.printf("  )\n")
}

func splitByIncrement(paths []Path) (abs, inc []Path) {
	for _, p := range paths {
		if p.Increment {
			inc = append(inc, p)
		} else {
			abs = append(abs, p)
		}
	}
	return abs, inc
}

func (p *sdfPrinter) printPath(path Path) {
	p.printf("        ")
	if path.Cond != nil || path.CondIsElse {
		p.printf("(COND ")
		if path.CondIsElse {
			p.printf("ELSE ")
		} else {
			p.printf("%s ", exprString(path.Cond, p.s.Header.Divider))
		}
	}

	p.printf("(%s ", path.Type)
	if path.Edge != EdgeNone {
		p.printf("(%s %s) ", path.Edge, p.id(path.From))
	} else {
		p.printf("%s ", p.id(path.From))
	}
	if path.To != nil {
		p.printf("%s ", p.id(path.To))
	}
	p.printDelay(path.Delay)
	p.printf(")")
	if path.Cond != nil || path.CondIsElse {
		p.printf(")")
	}
	p.printf("\n")
}

func (p *sdfPrinter) printDelay(d Delay) {
	if d.HasZ2O {
		p.printf("(%s)", d.Z2O)
	} else {
		p.printf("()")
	}
	if d.HasO2Z {
		p.printf("(%s)", d.O2Z)
	}
}

// exprString renders a ConditionalExpr in SDF's infix syntax with full
// parenthesization, so the printed form never depends on an implicit
// precedence a reader might get wrong.
func exprString(e *ConditionalExpr, divider byte) string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprVar:
		if e.Var == nil {
			return ""
		}
		return e.Var.String(divider)
	case ExprTrue:
		return "1'b1"
	case ExprFalse:
		return "1'b0"
	case ExprNot:
		return "!" + exprString(e.Left, divider)
	case ExprAnd:
		return "(" + exprString(e.Left, divider) + " && " + exprString(e.Right, divider) + ")"
	case ExprOr:
		return "(" + exprString(e.Left, divider) + " || " + exprString(e.Right, divider) + ")"
	case ExprXor:
		return "(" + exprString(e.Left, divider) + " ^ " + exprString(e.Right, divider) + ")"
	case ExprEq:
		return "(" + exprString(e.Left, divider) + " == " + exprString(e.Right, divider) + ")"
	case ExprNe:
		return "(" + exprString(e.Left, divider) + " != " + exprString(e.Right, divider) + ")"
	case ExprElse:
		return "ELSE"
	default:
		return ""
	}
}
