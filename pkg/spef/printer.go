package spef

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/icexchange/pkg/hierid"
)

// Print writes s back out in canonical SPEF text: one net per *D_NET
// (etc.) block, terminated by *END, with every identifier rendered
// through HierId.String using the file's own divider. Unit values are
// re-derived to one of that unit kind's suffixes (NS/PS, PF/FF,
// OHM/KOHM, HENRY/MH/UH) by magnitude rather than preserving whatever scale the source file declared, since
// the in-memory model only retains the absolute SI multiplier.
func Print(w io.Writer, s *Spef) error {
	p := &printer{w: w, s: s}
	return p.run()
}

type printer struct {
	w   io.Writer
	s   *Spef
	err error
}

func (p *printer) run() error {
	p.printHeader()
	p.printUnits()
	p.printNameMap()
	p.printNetList("*POWER_NETS", p.s.PowerNets)
	p.printNetList("*GROUND_NETS", p.s.GroundNets)
	p.printPorts("*PORTS", p.s.Ports)
	p.printPorts("*PHYSICAL_PORTS", p.s.PhysicalPorts)
	p.printDefines()
	for _, key := range p.s.NetOrder {
		p.printNet(p.s.Nets[key])
	}
	return p.err
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) div() byte { return p.s.Header.Divider }

func (p *printer) id(h *hierid.HierId) string {
	if h == nil {
		return ""
	}
	return h.String(p.div())
}

func (p *printer) printHeader() {
	h := &p.s.Header
	p.printf("*SPEF %q\n", h.SpefVersion)
	p.printf("*DESIGN %q\n", h.Design)
	p.printf("*DATE %q\n", h.Date)
	p.printf("*VENDOR %q\n", h.Vendor)
	p.printf("*PROGRAM %q\n", h.Program)
	p.printf("*VERSION %q\n", h.Version)
	if len(h.DesignFlow) > 0 {
		p.printf("*DESIGN_FLOW")
		for _, s := range h.DesignFlow {
			p.printf(" %q", s)
		}
		p.printf("\n")
	}
	p.printf("*DIVIDER %c\n", h.Divider)
	p.printf("*DELIMITER %c\n", h.Delimiter)
	if h.BusSuffix != 0 {
		p.printf("*BUS_DELIMITER %c %c\n", h.BusPrefix, h.BusSuffix)
	} else {
		p.printf("*BUS_DELIMITER %c\n", h.BusPrefix)
	}
}

func rescaleTime(v float64) (float64, string) {
	switch {
	case v >= 1e-9:
		return v / 1e-9, "NS"
	default:
		return v / 1e-12, "PS"
	}
}

func rescaleCap(v float64) (float64, string) {
	switch {
	case v >= 1e-12:
		return v / 1e-12, "PF"
	default:
		return v / 1e-15, "FF"
	}
}

func rescaleRes(v float64) (float64, string) {
	switch {
	case v >= 1e3:
		return v / 1e3, "KOHM"
	default:
		return v / 1, "OHM"
	}
}

func rescaleInduc(v float64) (float64, string) {
	switch {
	case v >= 1:
		return v, "HENRY"
	case v >= 1e-3:
		return v / 1e-3, "MH"
	default:
		return v / 1e-6, "UH"
	}
}

func (p *printer) printUnits() {
	v, suf := rescaleTime(p.s.Units.Time)
	p.printf("*T_UNIT %g %s\n", v, suf)
	v, suf = rescaleCap(p.s.Units.Capacitance)
	p.printf("*C_UNIT %g %s\n", v, suf)
	v, suf = rescaleRes(p.s.Units.Resistance)
	p.printf("*R_UNIT %g %s\n", v, suf)
	v, suf = rescaleInduc(p.s.Units.Inductance)
	p.printf("*L_UNIT %g %s\n", v, suf)
}

func (p *printer) printNameMap() {
	if p.s.NameMap == nil {
		return
	}
	// Every identifier below is printed fully spelled out rather than as
	// a compressed *<int> reference, so there is no shorthand left for a
	// *NAME_MAP section to define; omitting it keeps the printer's output
	// self-contained and still parses back to the same net/port graph.
}

func (p *printer) printNetList(keyword string, ids []*hierid.HierId) {
	if len(ids) == 0 {
		return
	}
	p.printf("%s", keyword)
	for _, id := range ids {
		p.printf(" %s", p.id(id))
	}
	p.printf("\n")
}

func (p *printer) printPorts(keyword string, ports []Port) {
	if len(ports) == 0 {
		return
	}
	p.printf("%s\n", keyword)
	for _, port := range ports {
		p.printf("%s %s", p.id(port.Pin), port.Dir)
		p.printAttrs(port.Attrs)
		p.printf("\n")
	}
}

func (p *printer) printAttrs(a *Attributes) {
	if a == nil {
		return
	}
	if a.HasCoord {
		p.printf(" *C %g %g", a.CX, a.CY)
	}
	if a.HasLoad {
		p.printf(" *L %s", a.Load)
	}
	if a.HasSlew {
		p.printf(" *S %s %s", a.Slew1, a.Slew2)
		if a.HasThresh {
			p.printf(" *T %s %s", a.Thresh1, a.Thresh2)
		}
	}
	if a.HasDrive {
		p.printf(" *D %s", p.id(a.Drive))
	}
}

func (p *printer) printDefines() {
	for _, d := range p.s.Defines {
		kw := "*DEFINE"
		if d.Physical {
			kw = "*PDEFINE"
		}
		p.printf("%s %s %q\n", kw, p.id(d.Instance), d.DesignName)
	}
}

// netKindKeyword returns the *D_NET/*R_NET/etc. keyword for kind.
var netKindKeyword = map[NetKind]string{
	NetDetailed: "*D_NET", NetReduced: "*R_NET",
	NetDetailedPhysical: "*D_PNET", NetReducedPhysical: "*R_PNET",
}

// DumpRC writes a stripped listing of every net in s: one line per net
// giving its *D_NET/*R_NET/*D_PNET/*R_PNET kind and name, omitting the
// parasitic body entirely.
func DumpRC(w io.Writer, s *Spef) error {
	for _, key := range s.NetOrder {
		n := s.Nets[key]
		if _, err := fmt.Fprintf(w, "%s %s\n", netKindKeyword[n.Kind], n.Name.String(s.Header.Divider)); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) printNet(n *Net) {
	p.printf("%s %s %s\n", netKindKeyword[n.Kind], p.id(n.Name), n.TotalCap)
	if n.RoutingConfidence >= 0 {
		p.printf("*V %d\n", n.RoutingConfidence)
	}
	if n.Detailed != nil {
		p.printDetailed(n.Detailed)
	}
	if n.Reduced != nil {
		p.printReduced(n.Reduced)
	}
	p.printf("*END\n")
}

func (p *printer) printDetailed(dn *DetailedNet) {
	if len(dn.Connections) > 0 {
		p.printf("*CONN\n")
		for _, c := range dn.Connections {
			p.printConnection(c)
		}
	}
	p.printParasiticList("*CAP", dn.Caps)
	p.printParasiticList("*RES", dn.Res)
	p.printParasiticList("*INDUC", dn.Induc)
}

func (p *printer) printConnection(c Connection) {
	switch c.Type {
	case ConnPort:
		p.printf("*P %s %s", p.id(c.Pin), c.Dir)
		p.printAttrs(c.Attrs)
	case ConnInst:
		p.printf("*I %s %s %s", p.id(c.Instance), p.id(c.Pin), c.Dir)
		p.printAttrs(c.Attrs)
	case ConnNode:
		p.printf("*N %d", c.NodeIdx)
		if c.HasCoord {
			p.printf(" *C %g %g", c.CX, c.CY)
		}
	}
	p.printf("\n")
}

func (p *printer) printNode(n Node) {
	if n.HasIdx {
		p.printf("*N %d", n.Idx)
		return
	}
	if n.Instance != nil {
		p.printf("%s%c%s", p.id(n.Instance), p.s.Header.Delimiter, p.id(n.Pin))
		return
	}
	p.printf("%s", p.id(n.Pin))
}

func (p *printer) printParasiticList(keyword string, list []Parasitic) {
	if len(list) == 0 {
		return
	}
	p.printf("%s\n", keyword)
	for _, par := range list {
		p.printf("%d ", par.ID)
		p.printNode(par.N1)
		if par.N2 != nil {
			p.printf(" ")
			p.printNode(*par.N2)
		}
		p.printf(" %s\n", par.Value)
	}
}

func (p *printer) printReduced(rn *ReducedNet) {
	for _, drv := range rn.Drivers {
		p.printf("*DRIVER %s %s\n", p.id(drv.Instance), p.id(drv.Pin))
		if drv.CellType != nil {
			p.printf("*CELL %s\n", p.id(drv.CellType))
		}
		p.printf("*C2_R1_C1 %s %s %s\n", drv.C2, drv.R1, drv.C1)
		if len(drv.Loads) > 0 {
			p.printf("*LOADS\n")
			for _, load := range drv.Loads {
				p.printf("%s %s %s", p.id(load.Instance), p.id(load.Pin), load.Value)
				if load.HasPole {
					p.printPoleResidue("*Q", load.Pole)
				}
				if load.HasResidue {
					p.printPoleResidue("*IQ", load.Residue)
				}
				p.printf("\n")
			}
		}
	}
}

func (p *printer) printPoleResidue(keyword string, pr PoleResidue) {
	if pr.Idx >= 0 {
		p.printf(" %s %d %s", keyword, pr.Idx, pr.Re)
	} else {
		p.printf(" %s %s", keyword, pr.Re)
	}
	if pr.Im.Best != 0 || pr.Im.Typ != 0 || pr.Im.Worst != 0 {
		p.printf(" %s", pr.Im)
	}
}
