package sdf

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

var timescaleSuffixes = map[string]float64{
	"s": 1, "ms": 1e-3, "us": 1e-6, "ns": 1e-9, "ps": 1e-12, "fs": 1e-15,
}

var energyscaleSuffixes = map[string]float64{
	"J": 1, "mJ": 1e-3, "uJ": 1e-6, "nJ": 1e-9, "pJ": 1e-12, "fJ": 1e-15,
}

// parseHeader consumes the free-order sequence of parenthesized header
// fields that follow (DELAYFILE/(XDELAYFILE, stopping at the first
// token that cannot start a known header field (the first (CELL
// block, or the closing paren of an otherwise-empty file).
func (r *Reader) parseHeader(extended bool) error {
	h := &r.sdf.Header
	for {
		switch {
		case r.atParen("SDFVERSION"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("SDFVERSION")
			v, err := r.expectString("SDFVERSION")
			if err != nil {
				return err
			}
			h.Version = v
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case r.atParen("DESIGN"):
			v, err := r.parseQuotedField("DESIGN")
			if err != nil {
				return err
			}
			h.Design = v

		case r.atParen("DATE"):
			v, err := r.parseQuotedField("DATE")
			if err != nil {
				return err
			}
			h.Date = v

		case r.atParen("VENDOR"):
			v, err := r.parseQuotedField("VENDOR")
			if err != nil {
				return err
			}
			h.Vendor = v

		case r.atParen("PROGRAM"):
			v, err := r.parseQuotedField("PROGRAM")
			if err != nil {
				return err
			}
			h.Program = v

		case r.atParen("VERSION"):
			v, err := r.parseQuotedField("VERSION")
			if err != nil {
				return err
			}
			h.ProgramVersion = v

		case r.atParen("DIVIDER"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("DIVIDER")
			if r.l.Sym().Kind != lextok.Punct || (r.l.Sym().Text != "." && r.l.Sym().Text != "/") {
				return &diag.ParseError{
					Kind: diag.KindStructural, Found: r.l.Text(),
					Line: r.l.Line(), Col: r.l.Col(), Context: "DIVIDER",
				}
			}
			h.Divider = r.l.Sym().Text[0]
			r.l.Have(lextok.Punct, string(h.Divider))
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case r.atParen("VOLTAGE"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("VOLTAGE")
			v, err := r.parseTriplet("VOLTAGE")
			if err != nil {
				return err
			}
			h.Voltage, h.HasVoltage = v, true
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case r.atParen("PROCESS"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("PROCESS")
			v, err := r.expectString("PROCESS")
			if err != nil {
				return err
			}
			h.Process, h.HasProcess = v, true
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case r.atParen("TEMPERATURE"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("TEMPERATURE")
			v, err := r.parseTriplet("TEMPERATURE")
			if err != nil {
				return err
			}
			h.Temperature, h.HasTemp = v, true
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case r.atParen("TIMESCALE"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("TIMESCALE")
			v, err := r.parseTimescale()
			if err != nil {
				return err
			}
			h.Timescale = v
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		case extended && r.atParen("ENERGYSCALE"):
			r.l.Have(lextok.Punct, "(")
			r.l.HaveKeyword("ENERGYSCALE")
			v, err := r.parseEnergyscale()
			if err != nil {
				return err
			}
			h.Energyscale, h.HasEnergyscale = v, true
			if err := r.expectPunct(")"); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

func (r *Reader) parseQuotedField(keyword string) (string, error) {
	r.l.Have(lextok.Punct, "(")
	r.l.HaveKeyword(keyword)
	v, err := r.expectString(keyword)
	if err != nil {
		return "", err
	}
	return v, r.expectPunct(")")
}

// parseTimescale consumes a number immediately followed (no
// intervening whitespace) by one of s/ms/us/ns/ps/fs, and returns the
// equivalent seconds-per-unit multiplier. The number is not checked
// against the 1/10/100 set; any integer or real value is accepted.
func (r *Reader) parseTimescale() (float64, error) {
	return r.parseScaledUnit("TIMESCALE", timescaleSuffixes)
}

// parseEnergyscale mirrors parseTimescale for the extended dialect's
// ENERGYSCALE field, whose unit suffixes are joule-based
// (J/mJ/uJ/nJ/pJ/fJ) rather than time-based.
func (r *Reader) parseEnergyscale() (float64, error) {
	return r.parseScaledUnit("ENERGYSCALE", energyscaleSuffixes)
}

func (r *Reader) parseScaledUnit(ctx string, suffixes map[string]float64) (float64, error) {
	v, err := r.expectNumber(ctx)
	if err != nil {
		return 0, err
	}
	if r.l.Sym().Kind != lextok.Ident || r.l.Whitespace() != "" {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "unit suffix", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	mult, ok := suffixes[r.l.Text()]
	if !ok {
		return 0, &diag.ParseError{
			Kind: diag.KindStructural, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx + " unit",
		}
	}
	r.l.Have(lextok.Ident, "")
	return v * mult, nil
}
