package spef

import (
	"fmt"

	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// parseNetSection consumes one *D_NET/*R_NET/*D_PNET/*R_PNET block
// through its closing *END, registers it in the net table (rejecting a
// duplicate name with a warning, first occurrence wins), and records
// insertion order for deterministic printing.
func (r *Reader) parseNetSection(kind NetKind) error {
	name, err := r.parsePathOrIndex("net name")
	if err != nil {
		return err
	}
	totCap, err := r.parseTriplet("net total capacitance")
	if err != nil {
		return err
	}

	n := &Net{Kind: kind, Name: name, TotalCap: totCap, RoutingConfidence: -1}

	if r.l.HaveStarKeyword("V") {
		v, err := r.expectNumber("routing confidence")
		if err != nil {
			return err
		}
		n.RoutingConfidence = int(v)
	}

	switch kind {
	case NetDetailed, NetDetailedPhysical:
		dn, err := r.parseDetailedNetBody()
		if err != nil {
			return err
		}
		n.Detailed = dn
	case NetReduced, NetReducedPhysical:
		rn, err := r.parseReducedNetBody()
		if err != nil {
			return err
		}
		n.Reduced = rn
	}

	if !r.l.HaveStarKeyword("END") {
		return &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "*END", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "net section",
		}
	}

	key := name.String(r.spf.Header.Divider)
	if _, exists := r.spf.Nets[key]; exists {
		return r.warn("duplicate-net", fmt.Sprintf("net %q redefined, keeping first definition", key))
	}
	r.spf.Nets[key] = n
	r.spf.NetOrder = append(r.spf.NetOrder, key)
	return nil
}

func (r *Reader) parseDetailedNetBody() (*DetailedNet, error) {
	dn := &DetailedNet{}

	if r.l.HaveStarKeyword("CONN") {
		for {
			c, ok, err := r.parseConnection()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			dn.Connections = append(dn.Connections, c)
		}
	}
	if r.l.HaveStarKeyword("CAP") {
		list, err := r.parseParasiticList("capacitance")
		if err != nil {
			return nil, err
		}
		dn.Caps = list
	}
	if r.l.HaveStarKeyword("RES") {
		list, err := r.parseParasiticList("resistance")
		if err != nil {
			return nil, err
		}
		dn.Res = list
	}
	if r.l.HaveStarKeyword("INDUC") {
		list, err := r.parseParasiticList("inductance")
		if err != nil {
			return nil, err
		}
		dn.Induc = list
	}
	return dn, nil
}

func (r *Reader) parseConnection() (Connection, bool, error) {
	switch {
	case r.l.HaveStarKeyword("P"):
		pin, err := r.parsePathOrIndex("connection pin")
		if err != nil {
			return Connection{}, false, err
		}
		dir, err := r.expectDirection()
		if err != nil {
			return Connection{}, false, err
		}
		attrs, err := r.parseAttributes()
		if err != nil {
			return Connection{}, false, err
		}
		return Connection{Type: ConnPort, Pin: pin, Dir: dir, Attrs: attrs}, true, nil

	case r.l.HaveStarKeyword("I"):
		inst, err := r.parsePathOrIndex("connection instance")
		if err != nil {
			return Connection{}, false, err
		}
		pin, err := r.parsePathOrIndex("connection pin")
		if err != nil {
			return Connection{}, false, err
		}
		dir, err := r.expectDirection()
		if err != nil {
			return Connection{}, false, err
		}
		attrs, err := r.parseAttributes()
		if err != nil {
			return Connection{}, false, err
		}
		return Connection{Type: ConnInst, Instance: inst, Pin: pin, Dir: dir, Attrs: attrs}, true, nil

	case r.l.HaveStarKeyword("N"):
		idx, err := r.expectNumber("internal node index")
		if err != nil {
			return Connection{}, false, err
		}
		c := Connection{Type: ConnNode, NodeIdx: int(idx)}
		if r.l.HaveStarKeyword("C") {
			cx, err := r.expectNumber("node coordinate x")
			if err != nil {
				return Connection{}, false, err
			}
			cy, err := r.expectNumber("node coordinate y")
			if err != nil {
				return Connection{}, false, err
			}
			c.HasCoord, c.CX, c.CY = true, cx, cy
		}
		return c, true, nil

	default:
		return Connection{}, false, nil
	}
}

func (r *Reader) parseNode() (Node, error) {
	if r.l.HaveStarKeyword("N") {
		idx, err := r.expectNumber("parasitic node index")
		if err != nil {
			return Node{}, err
		}
		return Node{HasIdx: true, Idx: int(idx)}, nil
	}
	inst, err := r.parsePathOrIndex("parasitic node")
	if err != nil {
		return Node{}, err
	}
	if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == string(r.spf.Header.Delimiter) {
		r.l.Have(lextok.Punct, string(r.spf.Header.Delimiter))
		pin, err := r.parsePathOrIndex("parasitic node pin")
		if err != nil {
			return Node{}, err
		}
		return Node{Instance: inst, Pin: pin}, nil
	}
	return Node{Pin: inst}, nil
}

func (r *Reader) parseParasiticList(ctx string) ([]Parasitic, error) {
	var list []Parasitic
	for r.l.Sym().Kind == lextok.Integer {
		id := int(r.l.Sym().Int)
		r.l.Have(lextok.Integer, "")

		n1, err := r.parseNode()
		if err != nil {
			return nil, err
		}

		var n2 *Node
		// A second node is present only for a coupling entry; the value
		// always trails whichever node(s) were given, so we try the
		// second node first and fall back if what follows is a number.
		if r.l.Sym().Kind != lextok.Integer && r.l.Sym().Kind != lextok.Real {
			n, err := r.parseNode()
			if err != nil {
				return nil, err
			}
			n2 = &n
		}

		val, err := r.parseTriplet(ctx)
		if err != nil {
			return nil, err
		}
		list = append(list, Parasitic{ID: id, N1: n1, N2: n2, Value: val})
	}
	return list, nil
}

func (r *Reader) parseReducedNetBody() (*ReducedNet, error) {
	rn := &ReducedNet{}
	for r.l.HaveStarKeyword("DRIVER") {
		inst, err := r.parsePathOrIndex("driver instance")
		if err != nil {
			return nil, err
		}
		pin, err := r.parsePathOrIndex("driver pin")
		if err != nil {
			return nil, err
		}
		drv := ReducedDriver{Instance: inst, Pin: pin}

		if r.l.HaveStarKeyword("CELL") {
			cell, err := r.parsePathOrIndex("driver cell type")
			if err != nil {
				return nil, err
			}
			drv.CellType = cell
		}
		if r.l.HaveStarKeyword("C2_R1_C1") {
			c2, err := r.parseTriplet("c2")
			if err != nil {
				return nil, err
			}
			r1, err := r.parseTriplet("r1")
			if err != nil {
				return nil, err
			}
			c1, err := r.parseTriplet("c1")
			if err != nil {
				return nil, err
			}
			drv.C2, drv.R1, drv.C1 = c2, r1, c1
		}
		if r.l.HaveStarKeyword("LOADS") {
			for {
				load, ok, err := r.parseRCDescriptor()
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				drv.Loads = append(drv.Loads, load)
			}
		}
		rn.Drivers = append(rn.Drivers, drv)
	}
	return rn, nil
}

func (r *Reader) parseRCDescriptor() (RCDescriptor, bool, error) {
	inst, err := r.tryPathOrIndex()
	if err != nil {
		return RCDescriptor{}, false, err
	}
	if inst == nil {
		return RCDescriptor{}, false, nil
	}
	pin, err := r.parsePathOrIndex("load pin")
	if err != nil {
		return RCDescriptor{}, false, err
	}
	val, err := r.parseTriplet("load value")
	if err != nil {
		return RCDescriptor{}, false, err
	}
	d := RCDescriptor{Instance: inst, Pin: pin, Value: val}

	if r.l.HaveStarKeyword("Q") {
		pr, err := r.parsePoleResidue()
		if err != nil {
			return RCDescriptor{}, false, err
		}
		d.HasPole, d.Pole = true, pr
	}
	if r.l.HaveStarKeyword("IQ") {
		pr, err := r.parsePoleResidue()
		if err != nil {
			return RCDescriptor{}, false, err
		}
		d.HasResidue, d.Residue = true, pr
	}
	return d, true, nil
}

func (r *Reader) parsePoleResidue() (PoleResidue, error) {
	pr := PoleResidue{Idx: -1}
	if r.l.Sym().Kind == lextok.Integer {
		pr.Idx = int(r.l.Sym().Int)
		r.l.Have(lextok.Integer, "")
	}
	re, err := r.parseTriplet("pole/residue real part")
	if err != nil {
		return PoleResidue{}, err
	}
	pr.Re = re
	if r.l.Sym().Kind == lextok.Integer || r.l.Sym().Kind == lextok.Real {
		im, err := r.parseTriplet("pole/residue imaginary part")
		if err != nil {
			return PoleResidue{}, err
		}
		pr.Im = im
	}
	return pr, nil
}
