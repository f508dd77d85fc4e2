package sdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/OpenTraceLab/icexchange/internal/config"
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/internal/sexpcheck"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
)

const sampleSdf = `(DELAYFILE
  (SDFVERSION "3.0")
  (DESIGN "test_design")
  (DATE "today")
  (VENDOR "v")
  (PROGRAM "p")
  (VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL
    (CELLTYPE "BUF")
    (INSTANCE top.u1)
    (DELAY
      (ABSOLUTE
        (COND a1 && a2 (IOPATH A Y (1.0)(1.5)))
        (COND ELSE (IOPATH A Y (2.0)(2.5)))
      )
    )
  )
)
`

func TestReadHeaderAndTimescale(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(sampleSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !s.IsValid() {
		t.Fatal("expected a valid model")
	}
	if s.Header.Design != "test_design" {
		t.Fatalf("got design %q", s.Header.Design)
	}
	if s.Header.Divider != '.' {
		t.Fatalf("got divider %c", s.Header.Divider)
	}
	if s.Header.Timescale != 1e-9 {
		t.Fatalf("got timescale %v, want 1ns", s.Header.Timescale)
	}
}

func TestReadConditionalIOPath(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(sampleSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	cell, ok := s.CellTypes["BUF"].Instances["top.u1"]
	if !ok {
		t.Fatal("expected a BUF/top.u1 cell entry")
	}
	if len(cell.Paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(cell.Paths))
	}

	first := cell.Paths[0]
	if first.Cond == nil || first.Cond.Kind != ExprAnd {
		t.Fatalf("got first path cond %+v, want an AND node", first.Cond)
	}
	if first.Cond.Left.Kind != ExprVar || first.Cond.Left.Var.String('.') != "a1" {
		t.Fatalf("got left operand %+v", first.Cond.Left)
	}
	if first.Cond.Right.Kind != ExprVar || first.Cond.Right.Var.String('.') != "a2" {
		t.Fatalf("got right operand %+v", first.Cond.Right)
	}
	if !first.Delay.HasZ2O || first.Delay.Z2O.Typ != 1.0 {
		t.Fatalf("got z2o %+v", first.Delay)
	}
	if !first.Delay.HasO2Z || first.Delay.O2Z.Typ != 1.5 {
		t.Fatalf("got o2z %+v", first.Delay)
	}

	second := cell.Paths[1]
	if !second.CondIsElse {
		t.Fatal("expected the second path to be the COND ELSE branch")
	}
	if second.Delay.Z2O.Typ != 2.0 || second.Delay.O2Z.Typ != 2.5 {
		t.Fatalf("got else-branch delay %+v", second.Delay)
	}
}

func condSdf(expr string) string {
	return `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE
      (COND ` + expr + ` (IOPATH A Y (1.0)))
    ))
  )
)
`
}

func TestConditionalExpressionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want func(t *testing.T, e *ConditionalExpr)
	}{
		{
			name: "bitwise and binds tighter than bitwise or",
			expr: "a | b & c",
			want: func(t *testing.T, e *ConditionalExpr) {
				if e.Kind != ExprOr {
					t.Fatalf("got root kind %v, want ExprOr", e.Kind)
				}
				if e.Left.Kind != ExprVar || e.Left.Var.String('.') != "a" {
					t.Fatalf("got left %+v, want var a", e.Left)
				}
				if e.Right.Kind != ExprAnd {
					t.Fatalf("got right %+v, want an AND node", e.Right)
				}
				if e.Right.Left.Var.String('.') != "b" || e.Right.Right.Var.String('.') != "c" {
					t.Fatalf("got AND operands %+v / %+v", e.Right.Left, e.Right.Right)
				}
			},
		},
		{
			name: "logical and binds tighter than logical or",
			expr: "a && b || c",
			want: func(t *testing.T, e *ConditionalExpr) {
				if e.Kind != ExprOr {
					t.Fatalf("got root kind %v, want ExprOr", e.Kind)
				}
				if e.Left.Kind != ExprAnd {
					t.Fatalf("got left %+v, want an AND node", e.Left)
				}
				if e.Left.Left.Var.String('.') != "a" || e.Left.Right.Var.String('.') != "b" {
					t.Fatalf("got AND operands %+v / %+v", e.Left.Left, e.Left.Right)
				}
				if e.Right.Kind != ExprVar || e.Right.Var.String('.') != "c" {
					t.Fatalf("got right %+v, want var c", e.Right)
				}
			},
		},
		{
			name: "prefix not binds tighter than equality",
			expr: "~a == b",
			want: func(t *testing.T, e *ConditionalExpr) {
				if e.Kind != ExprEq {
					t.Fatalf("got root kind %v, want ExprEq", e.Kind)
				}
				if e.Left.Kind != ExprNot {
					t.Fatalf("got left %+v, want a NOT node", e.Left)
				}
				if e.Left.Left.Var.String('.') != "a" {
					t.Fatalf("got NOT operand %+v, want var a", e.Left.Left)
				}
				if e.Right.Kind != ExprVar || e.Right.Var.String('.') != "b" {
					t.Fatalf("got right %+v, want var b", e.Right)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(false, nil, nil)
			s, err := r.Read(strings.NewReader(condSdf(tc.expr)))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			cell := s.CellTypes["BUF"].Instances["top.u1"]
			if len(cell.Paths) != 1 || cell.Paths[0].Cond == nil {
				t.Fatalf("expected a single conditioned path, got %+v", cell.Paths)
			}
			tc.want(t, cell.Paths[0].Cond)
		})
	}
}

func instanceID(parts ...string) *hierid.HierId {
	var cs []hierid.Component
	for _, p := range parts {
		cs = append(cs, hierid.Component{Name: p})
	}
	return &hierid.HierId{Parts: cs}
}

const wildcardSdf = `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "INV") (INSTANCE *)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0)))))
  (CELL (CELLTYPE "INV") (INSTANCE top.u2)
    (DELAY (ABSOLUTE (IOPATH A Y (2.0)(2.0)))))
)
`

func TestWildcardFallbackAndReportUnused(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(wildcardSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if unused := s.ReportUnused(); len(unused) != 2 {
		t.Fatalf("got %d unused cells before any lookup, want 2: %+v", len(unused), unused)
	}

	u1 := instanceID("top", "u1")
	c1, ok := s.GetCell("INV", u1)
	if !ok {
		t.Fatal("expected a fallback to the wildcard entry for top.u1")
	}
	if c1.Paths[0].Delay.Z2O.Typ != 1.0 {
		t.Fatalf("got wildcard delay %+v, want the wildcard's own value", c1.Paths[0].Delay)
	}

	u2 := instanceID("top", "u2")
	c2, ok := s.GetCell("INV", u2)
	if !ok {
		t.Fatal("expected a specific entry for top.u2")
	}
	if c2.Paths[0].Delay.Z2O.Typ != 2.0 {
		t.Fatalf("got specific delay %+v, want the instance's own value", c2.Paths[0].Delay)
	}

	if _, ok := s.GetInstance("INV", u1); ok {
		t.Fatal("GetInstance must not fall back to the wildcard")
	}
	if _, ok := s.GetInstance("INV", u2); !ok {
		t.Fatal("GetInstance should find the specific top.u2 entry")
	}

	if unused := s.ReportUnused(); len(unused) != 0 {
		t.Fatalf("got %d unused cells after both were looked up, want 0: %+v", len(unused), unused)
	}
}

func TestGetCellType(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(wildcardSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	ct, ok := s.GetCellType("INV")
	if !ok {
		t.Fatal("expected a CellType entry for INV")
	}
	if ct.Wildcard == nil {
		t.Fatal("expected the INV CellType to carry a wildcard entry")
	}
	if len(ct.InstanceOrder) != 1 || ct.InstanceOrder[0] != "top.u2" {
		t.Fatalf("got instance order %v, want [top.u2]", ct.InstanceOrder)
	}

	if _, ok := s.GetCellType("NOSUCH"); ok {
		t.Fatal("expected no CellType entry for an unknown name")
	}
}

func TestHasPerInstance(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(wildcardSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !s.HasPerInstance() {
		t.Fatal("expected HasPerInstance to be true: INV has a top.u2 instance entry")
	}

	wildcardOnly := `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "INV") (INSTANCE *)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0)))))
)
`
	r2 := NewReader(false, nil, nil)
	s2, err := r2.Read(strings.NewReader(wildcardOnly))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if s2.HasPerInstance() {
		t.Fatal("expected HasPerInstance to be false when only a wildcard entry exists")
	}
}

func TestDuplicateCellInstanceWarns(t *testing.T) {
	doubled := `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0)))))
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (2.0)(2.0)))))
)
`
	var sink diag.Collector
	r := NewReader(false, nil, &sink)
	if _, err := r.Read(strings.NewReader(doubled)); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(sink.Entries) == 0 {
		t.Fatal("expected a duplicate-cell-instance warning")
	}
}

func TestMaxWarningsAbortsParsing(t *testing.T) {
	doubled := `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0)))))
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (2.0)(2.0)))))
)
`
	cfg := &config.ReaderConfig{MaxWarnings: 0}
	r := NewReaderFromConfig(cfg, nil)
	if _, err := r.Read(strings.NewReader(doubled)); err != nil {
		t.Fatalf("with MaxWarnings=0 (unbounded) parsing should succeed, got: %v", err)
	}

	cfg2 := &config.ReaderConfig{MaxWarnings: 1}
	r2 := NewReaderFromConfig(cfg2, nil)
	tripled := `(DELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0)))))
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (2.0)(2.0)))))
  (CELL (CELLTYPE "BUF") (INSTANCE top.u2)
    (DELAY (ABSOLUTE (IOPATH A Y (3.0)(3.0)))))
  (CELL (CELLTYPE "BUF") (INSTANCE top.u2)
    (DELAY (ABSOLUTE (IOPATH A Y (4.0)(4.0)))))
)
`
	if _, err := r2.Read(strings.NewReader(tripled)); err == nil {
		t.Fatal("expected parsing to abort once the warning budget was exceeded")
	}
}

func TestPrintRoundTrip(t *testing.T) {
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(sampleSdf))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Print(&buf, s); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	r2 := NewReader(false, nil, nil)
	s2, err := r2.Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("re-parsing printed output failed: %v\n%s", err, buf.String())
	}
	if s2.Header.Design != s.Header.Design {
		t.Fatalf("design mismatch after round-trip: %q vs %q", s2.Header.Design, s.Header.Design)
	}
	if len(s2.CellOrder) != len(s.CellOrder) {
		t.Fatalf("cell count mismatch after round-trip: %d vs %d", len(s2.CellOrder), len(s.CellOrder))
	}

	shape, err := sexpcheck.Parse(buf.String())
	if err != nil {
		t.Fatalf("printed output is not well-formed s-expression text: %v", err)
	}

	var buf2 bytes.Buffer
	if err := Print(&buf2, s2); err != nil {
		t.Fatalf("second Print failed: %v", err)
	}
	shape2, err := sexpcheck.Parse(buf2.String())
	if err != nil {
		t.Fatalf("re-printed output is not well-formed s-expression text: %v", err)
	}
	if !shape.Matches(shape2) {
		t.Fatalf("gross s-expression shape changed across a print/reparse/print cycle: %+v vs %+v", shape, shape2)
	}
}

func TestExtendedDialectEnergyAndLeakage(t *testing.T) {
	text := `(XDELAYFILE
  (SDFVERSION "3.0")(DESIGN "d")(DATE "d")(VENDOR "v")(PROGRAM "p")(VERSION "1.0")
  (DIVIDER .)
  (TIMESCALE 1ns)
  (ENERGYSCALE 1pJ)
  (CELL (CELLTYPE "BUF") (INSTANCE top.u1)
    (DELAY (ABSOLUTE (IOPATH A Y (1.0)(1.0))))
    (ENERGY (ABSOLUTE (IOPATH A Y 5.0)))
    (LEAKAGE 0.1)
  )
)
`
	r := NewReader(false, nil, nil)
	s, err := r.Read(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !s.Header.HasEnergyscale || s.Header.Energyscale != 1e-12 {
		t.Fatalf("got energyscale %+v, want 1pJ", s.Header)
	}
	cell := s.CellTypes["BUF"].Instances["top.u1"]
	if len(cell.EnergyPaths) != 1 || cell.EnergyPaths[0].Value.Typ != 5.0 {
		t.Fatalf("got energy paths %+v", cell.EnergyPaths)
	}
	if !cell.HasLeakage || cell.Leakage.Typ != 0.1 {
		t.Fatalf("got leakage %+v", cell)
	}
}
