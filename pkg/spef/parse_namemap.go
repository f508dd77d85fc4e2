package spef

import (
	"fmt"

	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// parseNameMap consumes the optional *NAME_MAP block: a sequence of
// "*<int> <path>" entries. Each entry compresses a hierarchical path
// behind a small integer that later sections reference as "*<int>".
//
// A star token followed by whitespace before its integer is tolerated
// with a warning rather than treated as a hard error, since the
// separator is purely cosmetic here (unlike the zero-whitespace rule
// that disambiguates a name-map reference from a literal "*" token
// elsewhere in the grammar).
func (r *Reader) parseNameMap() error {
	r.spf.NameMap = hierid.NewNameMap()
	for r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "*" {
		r.l.Push()
		r.l.Have(lextok.Punct, "*")
		if r.l.Sym().Kind != lextok.Integer {
			r.l.Set()
			break
		}
		if r.l.Whitespace() != "" {
			if err := r.warn("name-map-star-whitespace", "whitespace between '*' and name-map index"); err != nil {
				return err
			}
		}
		idx := int(r.l.Sym().Int)
		r.l.Have(lextok.Integer, "")
		r.l.Pop()

		id, ok, err := hierid.ParsePhysicalRef(r.l, r.spf.Header.Divider)
		if err != nil {
			return err
		}
		if !ok {
			return &diag.ParseError{
				Kind: diag.KindUnexpectedToken, Expected: "path", Found: r.l.Text(),
				Line: r.l.Line(), Col: r.l.Col(), Context: "name map",
			}
		}
		if r.spf.NameMap.Add(idx, id) {
			if r.StrictNameMap {
				return &diag.ParseError{
					Kind: diag.KindStructural, Found: fmt.Sprintf("*%d", idx),
					Line: r.l.Line(), Col: r.l.Col(), Context: "name map index redefined",
				}
			}
			if err := r.warn("duplicate-name-map-index", fmt.Sprintf("*%d redefined", idx)); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseNetList consumes a space-separated list of hierarchical
// references (used by *POWER_NETS and *GROUND_NETS) until a token that
// cannot start one is reached.
func (r *Reader) parseNetList(dst *[]*hierid.HierId) error {
	for {
		id, err := r.tryPathOrIndex()
		if err != nil {
			return err
		}
		if id == nil {
			break
		}
		*dst = append(*dst, id)
	}
	return nil
}

// tryPathOrIndex attempts a name-map reference or a hierarchical path,
// returning (nil, nil) if neither can start at the current token.
func (r *Reader) tryPathOrIndex() (*hierid.HierId, error) {
	if id, ok, err := hierid.ParseIndexRef(r.l, r.spf.NameMap); ok || err != nil {
		if err != nil {
			return nil, r.wrapUnknownIndex(err, "net list")
		}
		return id, nil
	}
	id, ok, err := hierid.ParsePath(r.l, r.hierOpts())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return id, nil
}
