package spef

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// parseHeader consumes the mandatory leading identification block:
// *SPEF, *DESIGN, *DATE, *VENDOR, *PROGRAM, *VERSION, an optional
// *DESIGN_FLOW, and the four separator declarations *DIVIDER,
// *DELIMITER, *BUS_DELIMITER, (optional suffix) that configure every
// identifier parsed for the rest of the file.
func (r *Reader) parseHeader() error {
	h := &r.spf.Header

	var err error
	if h.SpefVersion, err = r.requireStarString("SPEF", "header"); err != nil {
		return err
	}
	if h.Design, err = r.requireStarString("DESIGN", "header"); err != nil {
		return err
	}
	if h.Date, err = r.requireStarString("DATE", "header"); err != nil {
		return err
	}
	if h.Vendor, err = r.requireStarString("VENDOR", "header"); err != nil {
		return err
	}
	if h.Program, err = r.requireStarString("PROGRAM", "header"); err != nil {
		return err
	}
	if h.Version, err = r.requireStarString("VERSION", "header"); err != nil {
		return err
	}

	if r.l.HaveStarKeyword("DESIGN_FLOW") {
		for r.l.Sym().Kind == lextok.String {
			h.DesignFlow = append(h.DesignFlow, r.l.Text())
			r.l.Have(lextok.String, "")
		}
	}

	if !r.l.HaveStarKeyword("DIVIDER") {
		return r.headerErr("*DIVIDER")
	}
	if h.Divider, err = r.expectDividerByte("hier-divider", "./:|", "header divider"); err != nil {
		return err
	}
	if !r.l.HaveStarKeyword("DELIMITER") {
		return r.headerErr("*DELIMITER")
	}
	if h.Delimiter, err = r.expectDividerByte("pin-delimiter", "./:|", "header delimiter"); err != nil {
		return err
	}
	if !r.l.HaveStarKeyword("BUS_DELIMITER") {
		return r.headerErr("*BUS_DELIMITER")
	}
	if h.BusPrefix, err = r.expectDividerByte("bus-prefix", "[{(<:.", "header bus delimiter"); err != nil {
		return err
	}
	// The closing half is optional; any of ] } ) > , is accepted,
	// whichever prefix was declared.
	if r.l.Sym().Kind == lextok.Punct && len(r.l.Sym().Text) == 1 {
		c := r.l.Sym().Text[0]
		switch c {
		case ']', '}', ')', '>', ',':
			h.BusSuffix = c
			r.l.Have(lextok.Punct, string(c))
		}
	}

	return nil
}

func (r *Reader) requireStarString(keyword, ctx string) (string, error) {
	if !r.l.HaveStarKeyword(keyword) {
		return "", r.headerErr("*" + keyword)
	}
	return r.expectString(ctx)
}

func (r *Reader) headerErr(expected string) error {
	return &diag.ParseError{
		Kind:     diag.KindUnexpectedToken,
		Expected: expected,
		Found:    r.l.Text(),
		Line:     r.l.Line(),
		Col:      r.l.Col(),
		Context:  "header",
	}
}
