// Package hierid reconstructs hierarchical path identifiers shared by
// the SPEF and SDF readers: contiguous identifier-and-divider token
// runs, backslash-escape stripping, bus subscripts, and resolution of
// compressed "*<int>" name-map references.
package hierid

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/icexchange/pkg/demangle"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// Component is one segment of a hierarchical path, optionally carrying a
// bus subscript (e.g. "foo[3]").
type Component struct {
	Name         string
	HasSubscript bool
	Subscript    int
}

func (c Component) String() string {
	if c.HasSubscript {
		return fmt.Sprintf("%s[%d]", c.Name, c.Subscript)
	}
	return c.Name
}

// HierId is an ordered sequence of path components plus two decorating
// bits: Absolute (the path began with the configured divider) and
// IsReference (this value was produced by resolving a NameMap "*<int>"
// token, i.e. it is logically a shared, non-owned alias of a NameMap
// entry rather than an independently-parsed path).
type HierId struct {
	Parts      []Component
	Absolute   bool
	IsReference bool
}

// String renders the identifier using divider as the hierarchy
// separator and '[' ']' for subscripts — the canonical form used
// whenever a caller does not need the original file's own divider
// (printers re-derive the file-specific divider separately).
func (h *HierId) String(divider byte) string {
	var sb strings.Builder
	if h.Absolute {
		sb.WriteByte(divider)
	}
	for i, p := range h.Parts {
		if i > 0 {
			sb.WriteByte(divider)
		}
		sb.WriteString(p.String())
	}
	return sb.String()
}

// Equal performs structural equality, ignoring IsReference and the
// particular name-map integer (if any) that produced either value.
func (h *HierId) Equal(o *HierId) bool {
	if h == nil || o == nil {
		return h == o
	}
	if h.Absolute != o.Absolute || len(h.Parts) != len(o.Parts) {
		return false
	}
	for i := range h.Parts {
		if h.Parts[i] != o.Parts[i] {
			return false
		}
	}
	return true
}

// Options configures identifier reconstruction for one file: its
// hierarchy divider, optional bus-subscript delimiters, and an optional
// demangler.
type Options struct {
	Divider   byte
	BusPrefix byte
	BusSuffix byte // 0 if the file declares no bus suffix
	Demangler demangle.Demangler
}

func isDividerChar(c byte) bool {
	switch c {
	case '.', '/', ':', '|':
		return true
	}
	return false
}

func stripEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			sb.WriteByte(s[i])
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// ParsePath assembles a HierId from the token stream starting at the
// lexer's current position. It returns ok=false (consuming nothing) if
// the current token cannot start a path at all.
//
// When opt.Demangler is non-nil, the raw joined text (using opt.Divider
// throughout) is passed through the demangler first, and the result is
// re-parsed using the canonical '.' divider and '['/']' subscript
// delimiters.
func ParsePath(l *lextok.Lexer, opt Options) (*HierId, bool, error) {
	l.Push()

	absolute := false
	if l.Sym().Kind == lextok.Punct && l.Sym().Text == string(opt.Divider) {
		l.Have(lextok.Punct, string(opt.Divider))
		absolute = true
	}

	var parts []Component
	for {
		if l.Sym().Kind != lextok.Ident {
			break
		}
		comp := Component{Name: stripEscapes(l.Text())}
		l.Have(lextok.Ident, "")

		if l.Sym().Kind == lextok.Punct && l.Sym().Text == string(opt.BusPrefix) {
			l.Push()
			l.Have(lextok.Punct, string(opt.BusPrefix))
			if l.Sym().Kind == lextok.Integer {
				idx := int(l.Sym().Int)
				l.Have(lextok.Integer, "")
				if opt.BusSuffix != 0 {
					l.Have(lextok.Punct, string(opt.BusSuffix))
				}
				l.Pop()
				comp.HasSubscript = true
				comp.Subscript = idx
			} else {
				l.Set()
			}
		}
		parts = append(parts, comp)

		if l.Sym().Kind == lextok.Punct && l.Sym().Text == string(opt.Divider) {
			l.Have(lextok.Punct, string(opt.Divider))
			continue
		}
		break
	}

	if len(parts) == 0 {
		l.Set()
		return nil, false, nil
	}
	l.Pop()

	id := &HierId{Parts: parts, Absolute: absolute}

	if opt.Demangler != nil {
		canon, err := opt.Demangler.Demangle(id.String(opt.Divider))
		if err != nil {
			return nil, false, fmt.Errorf("hierid: demangle %q: %w", id.String(opt.Divider), err)
		}
		canonOpt := opt
		canonOpt.Divider = '.'
		canonOpt.BusPrefix = '['
		canonOpt.BusSuffix = ']'
		canonOpt.Demangler = nil
		canonLex := lextok.NewFromBytes([]byte(canon))
		reparsed, ok, err := ParsePath(canonLex, canonOpt)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return reparsed, true, nil
		}
	}

	return id, true, nil
}

// ParsePhysicalRef assembles a "physical" reference: a divider-joined
// sequence of identifiers-or-quoted-strings, with no absolute-path or
// bus-subscript handling. Used for physical port and name-map entries
// whose components may be literal quoted strings rather than bare
// identifiers.
func ParsePhysicalRef(l *lextok.Lexer, divider byte) (*HierId, bool, error) {
	l.Push()
	var parts []Component
	for {
		var name string
		switch l.Sym().Kind {
		case lextok.String:
			name = l.Text()
			l.Have(lextok.String, "")
		case lextok.Ident:
			name = stripEscapes(l.Text())
			l.Have(lextok.Ident, "")
		default:
			if len(parts) == 0 {
				l.Set()
				return nil, false, nil
			}
		}
		if name != "" {
			parts = append(parts, Component{Name: name})
		}
		if l.Sym().Kind == lextok.Punct && l.Sym().Text == string(divider) {
			l.Have(lextok.Punct, string(divider))
			continue
		}
		break
	}
	if len(parts) == 0 {
		l.Set()
		return nil, false, nil
	}
	l.Pop()
	return &HierId{Parts: parts}, true, nil
}

// NameMap maps small positive integers to HierIds, used to compress
// long repeated paths. Entries are owned by the NameMap; resolved
// references elsewhere are non-owning aliases.
type NameMap struct {
	entries map[int]*HierId
}

// NewNameMap returns an empty NameMap.
func NewNameMap() *NameMap {
	return &NameMap{entries: make(map[int]*HierId)}
}

// Add inserts or replaces the mapping for n, returning true if n already
// had an entry (the caller should warn on replacement).
func (m *NameMap) Add(n int, id *HierId) (replaced bool) {
	_, replaced = m.entries[n]
	m.entries[n] = id
	return replaced
}

// Lookup returns the HierId registered for n, if any.
func (m *NameMap) Lookup(n int) (*HierId, bool) {
	id, ok := m.entries[n]
	return id, ok
}

// ParseIndexRef recognizes a `*<int>` token (no whitespace between '*'
// and the integer) and resolves it against nm. It returns ok=false,
// nil error if the current token is not of this shape at all (so the
// caller can try another alternative), and a non-nil error only when the
// shape matches but the integer has no NameMap entry.
func ParseIndexRef(l *lextok.Lexer, nm *NameMap) (*HierId, bool, error) {
	if l.Sym().Kind != lextok.Punct || l.Sym().Text != "*" {
		return nil, false, nil
	}
	l.Push()
	l.Have(lextok.Punct, "*")
	if l.Sym().Kind != lextok.Integer || l.Whitespace() != "" {
		l.Set()
		return nil, false, nil
	}
	idx := int(l.Sym().Int)
	l.Have(lextok.Integer, "")
	l.Pop()

	if nm == nil {
		return nil, false, &UnknownIndexError{Index: idx}
	}
	target, ok := nm.Lookup(idx)
	if !ok {
		return nil, false, &UnknownIndexError{Index: idx}
	}
	ref := &HierId{Parts: target.Parts, Absolute: target.Absolute, IsReference: true}
	return ref, true, nil
}

// UnknownIndexError is returned when a `*<int>` token has no matching
// NameMap entry.
type UnknownIndexError struct {
	Index int
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("hierid: unknown name-map index *%d", e.Index)
}
