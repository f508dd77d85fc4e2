// Package spef implements an IEEE 1481 SPEF (Standard Parasitic
// Exchange Format) reader, in-memory data model, and pretty printer.
package spef

import (
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/triplet"
)

// Header carries the free-form identification strings and the four
// single-character separator knobs.
type Header struct {
	SpefVersion string
	Design      string
	Date        string
	Vendor      string
	Program     string
	Version     string
	DesignFlow  []string

	Divider    byte // hier-divider: . / : |
	Delimiter  byte // pin-delimiter: . / : |
	BusPrefix  byte // [ { ( < : .
	BusSuffix  byte // ] } ) > , or 0 if absent
}

// Units holds the four unit scale factors, each stored as a
// multiplier that converts a file value into SI units.
type Units struct {
	Time        float64 // seconds
	Capacitance float64 // farads
	Resistance  float64 // ohms
	Inductance  float64 // henries
}

// Direction is a port/connection direction.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirBidir
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "I"
	case DirOut:
		return "O"
	case DirBidir:
		return "B"
	default:
		return "?"
	}
}

// Attributes is the optional *C/*L/*S/*D attribute bundle attachable to
// ports and connections.
type Attributes struct {
	Simple bool // carried for structural fidelity; never set by the grammar today

	HasCoord bool
	CX, CY   float64

	HasLoad bool
	Load    triplet.Triplet

	HasSlew   bool
	Slew1     triplet.Triplet // rising
	Slew2     triplet.Triplet // falling
	HasThresh bool
	Thresh1   triplet.Triplet
	Thresh2   triplet.Triplet

	HasDrive bool
	Drive    *hierid.HierId
}

// Port is a logical or physical port declaration.
type Port struct {
	Instance *hierid.HierId // nil for a plain logical port
	Pin      *hierid.HierId
	Dir      Direction
	Attrs    *Attributes
}

// Define is a *DEFINE / *PDEFINE hierarchical sub-SPEF reference.
type Define struct {
	Physical   bool // true for *PDEFINE
	Instance   *hierid.HierId
	DesignName string
	Sub        *Spef // populated by a hierarchical loader; nil otherwise
}

// ConnType is the kind of a *CONN entry.
type ConnType int

const (
	ConnPort ConnType = iota // *P
	ConnInst                 // *I
	ConnNode                 // *N
)

// Connection is one endpoint in a detailed net's *CONN section.
type Connection struct {
	Type     ConnType
	Instance *hierid.HierId // nil for *P without an instance
	Pin      *hierid.HierId
	Dir      Direction
	Attrs    *Attributes

	// *N only:
	NodeIdx int
	HasCoord bool
	CX, CY   float64
}

// Node identifies one endpoint of a parasitic value: an instance:pin
// pair, or an internal node by integer index.
type Node struct {
	Instance *hierid.HierId // may be nil
	Pin      *hierid.HierId
	HasIdx   bool
	Idx      int
}

// Parasitic is one entry in a *CAP/*RES/*INDUC list.
type Parasitic struct {
	ID    int
	N1    Node
	N2    *Node // nil for a non-coupling capacitor
	Value triplet.Triplet
}

// DetailedNet is the body of a *D_NET/*D_PNET.
type DetailedNet struct {
	Connections []Connection
	Caps        []Parasitic
	Res         []Parasitic
	Induc       []Parasitic
}

// PoleResidue is an optional (idx, complex re, complex im) pair on an
// RC descriptor.
type PoleResidue struct {
	Idx int // -1 if not specified
	Re  triplet.Triplet
	Im  triplet.Triplet
}

// RCDescriptor is one load endpoint of a reduced-net driver.
type RCDescriptor struct {
	Instance *hierid.HierId
	Pin      *hierid.HierId
	Value    triplet.Triplet
	HasPole    bool
	Pole       PoleResidue
	HasResidue bool
	Residue    PoleResidue
}

// ReducedDriver is one *DRIVER entry in a *R_NET.
type ReducedDriver struct {
	Instance *hierid.HierId
	Pin      *hierid.HierId
	CellType *hierid.HierId
	C2, R1, C1 triplet.Triplet
	Loads      []RCDescriptor
}

// ReducedNet is the body of a *R_NET/*R_PNET.
type ReducedNet struct {
	Drivers []ReducedDriver
}

// NetKind distinguishes the four net section shapes.
type NetKind int

const (
	NetDetailed NetKind = iota
	NetReduced
	NetDetailedPhysical
	NetReducedPhysical
)

// Net is one parsed net section (*D_NET/*R_NET/*D_PNET/*R_PNET).
type Net struct {
	Kind             NetKind
	Name             *hierid.HierId
	TotalCap         triplet.Triplet
	RoutingConfidence int // -1 if absent

	Detailed *DetailedNet // set when Kind is NetDetailed or NetDetailedPhysical
	Reduced  *ReducedNet  // set when Kind is NetReduced or NetReducedPhysical
}

// IsDetailed reports whether this net carries a DetailedNet body.
func (n *Net) IsDetailed() bool {
	return n.Kind == NetDetailed || n.Kind == NetDetailedPhysical
}

// Spef is the full parsed SPEF model plus reader state.
type Spef struct {
	Header Header
	Units  Units

	NameMap *hierid.NameMap

	PowerNets  []*hierid.HierId
	GroundNets []*hierid.HierId

	Ports        []Port
	PhysicalPorts []Port

	Defines []Define

	// Nets is keyed by the net's logical hierarchical name string,
	// rendered with the file's own Divider. Duplicate nets are rejected:
	// first one wins, a warning is emitted for the rest.
	Nets map[string]*Net
	// NetOrder preserves first-seen order for deterministic printing.
	NetOrder []string

	valid bool
}

func newSpef() *Spef {
	return &Spef{
		Header: Header{Divider: '.', Delimiter: '.', BusPrefix: '[', BusSuffix: ']'},
		Nets:   make(map[string]*Net),
	}
}

// IsValid reports whether the most recent Read succeeded.
func (s *Spef) IsValid() bool { return s.valid }

// IsSplit reports whether name appears in the parsed net table.
func (s *Spef) IsSplit(name string) bool {
	_, ok := s.Nets[name]
	return ok
}
