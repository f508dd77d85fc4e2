package spef

import (
	"strings"

	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// parseUnits consumes the mandatory *T_UNIT/*C_UNIT/*R_UNIT/*L_UNIT
// block, each declaring a scale value plus a recognized unit suffix.
func (r *Reader) parseUnits() error {
	var err error
	if r.spf.Units.Time, err = r.parseOneUnit("T_UNIT", map[string]float64{
		"NS": 1e-9, "PS": 1e-12,
	}); err != nil {
		return err
	}
	if r.spf.Units.Capacitance, err = r.parseOneUnit("C_UNIT", map[string]float64{
		"PF": 1e-12, "FF": 1e-15,
	}); err != nil {
		return err
	}
	if r.spf.Units.Resistance, err = r.parseOneUnit("R_UNIT", map[string]float64{
		"OHM": 1, "KOHM": 1e3,
	}); err != nil {
		return err
	}
	if r.spf.Units.Inductance, err = r.parseOneUnit("L_UNIT", map[string]float64{
		"HENRY": 1, "MH": 1e-3, "UH": 1e-6,
	}); err != nil {
		return err
	}
	return nil
}

func (r *Reader) parseOneUnit(keyword string, suffixes map[string]float64) (float64, error) {
	if !r.l.HaveStarKeyword(keyword) {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "*" + keyword, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "units",
		}
	}
	if r.l.Sym().Kind != lextok.Integer && r.l.Sym().Kind != lextok.Real {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "scale number", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: keyword,
		}
	}
	scale := r.l.Sym().Real
	if r.l.Sym().Kind == lextok.Integer {
		scale = float64(r.l.Sym().Int)
	}
	r.l.Have(r.l.Sym().Kind, "")

	if r.l.Sym().Kind != lextok.Ident {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "unit suffix", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: keyword,
		}
	}
	suffix := strings.ToUpper(r.l.Text())
	mult, ok := suffixes[suffix]
	if !ok {
		return 0, &diag.ParseError{
			Kind: diag.KindStructural, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: keyword + " unit suffix",
		}
	}
	r.l.Have(lextok.Ident, "")
	return scale * mult, nil
}
