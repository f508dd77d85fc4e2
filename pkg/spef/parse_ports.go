package spef

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// parsePorts consumes a *PORTS or *PHYSICAL_PORTS block: a sequence of
// "<path> <I|O|B> [attributes]" entries terminated by a token that
// cannot start another entry.
func (r *Reader) parsePorts(physical bool) error {
	for {
		var name *hierid.HierId
		var err error
		if physical {
			name, _, err = hierid.ParsePhysicalRef(r.l, r.spf.Header.Divider)
			if err == nil && name == nil {
				break
			}
		} else {
			name, err = r.tryPathOrIndex()
			if err == nil && name == nil {
				break
			}
		}
		if err != nil {
			return err
		}

		dir, err := r.expectDirection()
		if err != nil {
			return err
		}
		attrs, err := r.parseAttributes()
		if err != nil {
			return err
		}

		p := Port{Pin: name, Dir: dir, Attrs: attrs}
		if physical {
			r.spf.PhysicalPorts = append(r.spf.PhysicalPorts, p)
		} else {
			r.spf.Ports = append(r.spf.Ports, p)
		}
	}
	return nil
}

func (r *Reader) expectDirection() (Direction, error) {
	if r.l.Sym().Kind != lextok.Ident {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "I, O, or B", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "port direction",
		}
	}
	switch r.l.Text() {
	case "I":
		r.l.Have(lextok.Ident, "I")
		return DirIn, nil
	case "O":
		r.l.Have(lextok.Ident, "O")
		return DirOut, nil
	case "B":
		r.l.Have(lextok.Ident, "B")
		return DirBidir, nil
	default:
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "I, O, or B", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "port direction",
		}
	}
}

// parseDefine consumes a single *DEFINE or *PDEFINE entry: an instance
// reference followed by a quoted sub-design name. Multiple *DEFINE
// instances may share one trailing design name; each still produces
// its own Define record.
func (r *Reader) parseDefine(physical bool) error {
	var insts []*hierid.HierId
	for {
		var inst *hierid.HierId
		var err error
		if physical {
			inst, _, err = hierid.ParsePhysicalRef(r.l, r.spf.Header.Divider)
		} else {
			inst, err = r.parsePathOrIndex("define instance")
		}
		if err != nil {
			return err
		}
		insts = append(insts, inst)
		if inst == nil || r.l.Sym().Kind == lextok.String {
			break
		}
	}
	name, err := r.expectString("define design name")
	if err != nil {
		return err
	}
	for _, inst := range insts {
		r.spf.Defines = append(r.spf.Defines, Define{
			Physical: physical, Instance: inst, DesignName: name,
		})
	}
	return nil
}
