// Package sdf implements an IEEE 1497 SDF (Standard Delay Format)
// reader, in-memory data model, and pretty printer, sharing its token
// scanner and hierarchical identifier reconstruction with the SPEF
// reader.
package sdf

import (
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/triplet"
)

// Header carries the free-form identification fields plus the
// environment/timing parameters declared once per file.
type Header struct {
	Version string // SDFVERSION
	Design  string
	Date    string
	Vendor  string
	Program string
	ProgramVersion string
	Divider byte // HIERARCHY_DIVIDER, one of . /

	Voltage     triplet.Triplet
	HasVoltage  bool
	Process     string
	HasProcess  bool
	Temperature triplet.Triplet
	HasTemp     bool

	Timescale float64 // seconds per unit delay value
	// Extended dialect (XDELAYFILE): an optional energy unit scale.
	HasEnergyscale bool
	Energyscale    float64
}

// PathType is the kind of timing arc a Path describes.
type PathType int

const (
	PathIOPath PathType = iota
	PathPort
	PathInterconnect
	PathDevice
	PathNetDelay
)

func (t PathType) String() string {
	switch t {
	case PathIOPath:
		return "IOPATH"
	case PathPort:
		return "PORT"
	case PathInterconnect:
		return "INTERCONNECT"
	case PathDevice:
		return "DEVICE"
	case PathNetDelay:
		return "NETDELAY"
	default:
		return "?"
	}
}

// Edge qualifies a transition on a Path's source pin; EdgeNone means
// the path is unconditioned on an edge.
type Edge int

const (
	EdgeNone Edge = iota
	EdgePosedge
	EdgeNegedge
	Edge01
	Edge10
	Edge0Z
	EdgeZ1
	Edge1Z
	EdgeZ0
)

func (e Edge) String() string {
	switch e {
	case EdgePosedge:
		return "posedge"
	case EdgeNegedge:
		return "negedge"
	case Edge01:
		return "01"
	case Edge10:
		return "10"
	case Edge0Z:
		return "0z"
	case EdgeZ1:
		return "z1"
	case Edge1Z:
		return "1z"
	case EdgeZ0:
		return "z0"
	default:
		return ""
	}
}

// ExprKind tags a ConditionalExpr node.
type ExprKind int

const (
	ExprVar ExprKind = iota
	ExprNot
	ExprAnd
	ExprOr
	ExprXor
	ExprEq
	ExprNe
	ExprTrue
	ExprFalse
	ExprElse
)

// ConditionalExpr is a node in the boolean condition tree attached to a
// conditional IOPATH. Leaf kinds (Var, True, False, Else) carry no
// children; ExprNot carries Left only; all others carry both Left and
// Right.
type ConditionalExpr struct {
	Kind  ExprKind
	Var   *hierid.HierId // ExprVar only
	Left  *ConditionalExpr
	Right *ConditionalExpr
}

// Delay is the two-triplet rise/fall timing value attached to a Path.
// Per IEEE 1497, a delval list may carry up to twelve values (covering
// every output-strength transition); only the first two — z2o and o2z —
// are retained, matching how real SDF consumers degrade a full delval
// list to a two-value delay.
type Delay struct {
	HasZ2O bool
	Z2O    triplet.Triplet
	HasO2Z bool
	O2Z    triplet.Triplet
}

// Path is one timing arc: an IOPATH/PORT/INTERCONNECT/DEVICE/NETDELAY
// entry inside a cell's DELAY block.
type Path struct {
	Type       PathType
	Increment  bool // true for entries of an (INCREMENT ...) block, false for (ABSOLUTE ...)
	Edge       Edge
	Cond       *ConditionalExpr // nil if unconditioned
	CondIsElse bool

	From *hierid.HierId
	To   *hierid.HierId // nil for DEVICE/PORT paths with only one endpoint

	Delay Delay
}

// EnergyPath is one ENERGY block entry: like Path but carrying a single
// triplet (no rise/fall split) in the extended XDELAYFILE dialect.
type EnergyPath struct {
	Type  PathType
	From  *hierid.HierId
	To    *hierid.HierId
	Value triplet.Triplet
}

// Cell is one CELL block: a CELLTYPE plus the ordered delay (and,
// in the extended dialect, energy) paths for one instance or for the
// wildcard "*" applying to every instance of that cell type not
// otherwise overridden.
type Cell struct {
	Paths       []Path
	EnergyPaths []EnergyPath
	HasLeakage  bool
	Leakage     triplet.Triplet
	used        bool
}

// CellType is the set of Cell entries sharing one CELLTYPE name: an
// optional wildcard entry (INSTANCE *) and zero or more instance-keyed
// entries.
type CellType struct {
	Name     string
	Wildcard *Cell
	Instances map[string]*Cell
	// InstanceOrder preserves first-seen order for deterministic
	// printing.
	InstanceOrder []string
}

// SDF is the full parsed SDF model.
type SDF struct {
	Header     Header
	CellTypes  map[string]*CellType
	CellOrder  []string

	valid bool
}

func newSDF() *SDF {
	return &SDF{
		Header:    Header{Divider: '.'},
		CellTypes: make(map[string]*CellType),
	}
}

// IsValid reports whether the most recent Read succeeded.
func (s *SDF) IsValid() bool { return s.valid }

func (s *SDF) cellType(name string) *CellType {
	ct, ok := s.CellTypes[name]
	if !ok {
		ct = &CellType{Name: name, Instances: make(map[string]*Cell)}
		s.CellTypes[name] = ct
		s.CellOrder = append(s.CellOrder, name)
	}
	return ct
}

// GetCell looks up the Cell that applies to instance within cellType,
// preferring an instance-specific entry and falling back to the
// wildcard entry. It marks whichever entry is returned as used, so a
// later ReportUnused can flag CELL blocks nothing ever referenced.
func (s *SDF) GetCell(cellType string, instance *hierid.HierId) (*Cell, bool) {
	ct, ok := s.CellTypes[cellType]
	if !ok {
		return nil, false
	}
	if instance != nil {
		key := instance.String(s.Header.Divider)
		if c, ok := ct.Instances[key]; ok {
			c.used = true
			return c, true
		}
	}
	if ct.Wildcard != nil {
		ct.Wildcard.used = true
		return ct.Wildcard, true
	}
	return nil, false
}

// GetInstance returns the Cell entry registered for exactly
// cellType/instance, without falling back to the wildcard.
func (s *SDF) GetInstance(cellType string, instance *hierid.HierId) (*Cell, bool) {
	ct, ok := s.CellTypes[cellType]
	if !ok || instance == nil {
		return nil, false
	}
	c, ok := ct.Instances[instance.String(s.Header.Divider)]
	return c, ok
}

// GetCellType returns the whole CellType entry registered under name,
// with no instance resolution.
func (s *SDF) GetCellType(name string) (*CellType, bool) {
	ct, ok := s.CellTypes[name]
	return ct, ok
}

// HasPerInstance reports whether any CellType in s carries at least
// one instance-specific Cell entry, as opposed to relying purely on
// wildcard entries.
func (s *SDF) HasPerInstance() bool {
	for _, ct := range s.CellTypes {
		if len(ct.Instances) > 0 {
			return true
		}
	}
	return false
}

// UnusedCell names one CELL entry that GetCell never returned
// (GetInstance does not mark entries as used).
type UnusedCell struct {
	CellType string
	Instance string // "*" for the wildcard entry
}

// ReportUnused lists every CELL entry that was never looked up via
// GetCell, in CellType declaration order.
func (s *SDF) ReportUnused() []UnusedCell {
	var out []UnusedCell
	for _, name := range s.CellOrder {
		ct := s.CellTypes[name]
		if ct.Wildcard != nil && !ct.Wildcard.used {
			out = append(out, UnusedCell{CellType: name, Instance: "*"})
		}
		for _, inst := range ct.InstanceOrder {
			if c := ct.Instances[inst]; !c.used {
				out = append(out, UnusedCell{CellType: name, Instance: inst})
			}
		}
	}
	return out
}
