package spef

import (
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
	"github.com/OpenTraceLab/icexchange/pkg/triplet"
)

// parseAttributes consumes the optional attribute bundle that may
// follow a port or connection declaration: *C (placement coordinate),
// *L (load capacitance), *S (slew, with an optional *T threshold pair),
// and *D (driving cell reference). Any subset, in any order, may be
// present; none are required.
func (r *Reader) parseAttributes() (*Attributes, error) {
	var a *Attributes
	ensure := func() *Attributes {
		if a == nil {
			a = &Attributes{}
		}
		return a
	}

	for {
		switch {
		case r.l.HaveStarKeyword("C"):
			at := ensure()
			cx, err := r.expectNumber("coordinate x")
			if err != nil {
				return nil, err
			}
			cy, err := r.expectNumber("coordinate y")
			if err != nil {
				return nil, err
			}
			at.HasCoord, at.CX, at.CY = true, cx, cy

		case r.l.HaveStarKeyword("L"):
			at := ensure()
			t, err := r.parseTriplet("load")
			if err != nil {
				return nil, err
			}
			at.HasLoad, at.Load = true, t

		case r.l.HaveStarKeyword("S"):
			at := ensure()
			s1, err := r.parseTriplet("slew rising")
			if err != nil {
				return nil, err
			}
			s2, err := r.parseTriplet("slew falling")
			if err != nil {
				return nil, err
			}
			at.HasSlew, at.Slew1, at.Slew2 = true, s1, s2
			if r.l.HaveStarKeyword("T") {
				t1, err := r.parseTriplet("threshold rising")
				if err != nil {
					return nil, err
				}
				t2, err := r.parseTriplet("threshold falling")
				if err != nil {
					return nil, err
				}
				at.HasThresh, at.Thresh1, at.Thresh2 = true, t1, t2
			}

		case r.l.HaveStarKeyword("D"):
			at := ensure()
			ref, err := r.parsePathOrIndex("drive cell")
			if err != nil {
				return nil, err
			}
			at.HasDrive, at.Drive = true, ref

		default:
			return a, nil
		}
	}
}

func (r *Reader) expectNumber(ctx string) (float64, error) {
	switch r.l.Sym().Kind {
	case lextok.Integer:
		v := float64(r.l.Sym().Int)
		r.l.Have(lextok.Integer, "")
		return v, nil
	case lextok.Real:
		v := r.l.Sym().Real
		r.l.Have(lextok.Real, "")
		return v, nil
	default:
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "number", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
}

// parseTriplet consumes either a bare number (a singleton) or a
// "best:typ:worst" colon-separated form. A ':' token after the first
// number (whether or not whitespace separates them) is the trigger for
// the three-value form; otherwise the value collapses to a singleton.
func (r *Reader) parseTriplet(ctx string) (triplet.Triplet, error) {
	first, err := r.expectNumber(ctx)
	if err != nil {
		return triplet.Triplet{}, err
	}
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != ":" {
		return triplet.Single(first), nil
	}
	r.l.Have(lextok.Punct, ":")
	typ, err := r.expectNumber(ctx)
	if err != nil {
		return triplet.Triplet{}, err
	}
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != ":" {
		return triplet.Triplet{}, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: ":", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	r.l.Have(lextok.Punct, ":")
	worst, err := r.expectNumber(ctx)
	if err != nil {
		return triplet.Triplet{}, err
	}
	return triplet.Triplet{Best: first, Typ: typ, Worst: worst}, nil
}
