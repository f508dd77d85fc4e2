package spef

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/OpenTraceLab/icexchange/internal/config"
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/demangle"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

// Reader parses SPEF text into a Spef model.
type Reader struct {
	Demangler demangle.Demangler
	Sink      diag.Sink

	// StrictNameMap turns a duplicate *NAME_MAP index into a hard
	// structural error instead of a warning-and-replace.
	StrictNameMap bool
	// MaxWarnings aborts parsing with a structural error once more than
	// this many warnings have been emitted (0 = unbounded).
	MaxWarnings int

	l         *lextok.Lexer
	spf       *Spef
	warnCount int
}

// NewReader constructs a Reader. demanglerEnabled, when true, attaches id as
// the canonicalizing demangler for every hierarchical identifier parsed
// out of the file; sink receives non-fatal warnings (a nil sink
// discards them).
func NewReader(demanglerEnabled bool, id demangle.Demangler, sink diag.Sink) *Reader {
	r := &Reader{Sink: sink}
	if demanglerEnabled {
		r.Demangler = id
	}
	if r.Sink == nil {
		r.Sink = diag.Nop{}
	}
	return r
}

// NewReaderFromConfig builds a Reader from a loaded ReaderConfig,
// wiring its demangler, strictness, and warning-budget knobs.
func NewReaderFromConfig(cfg *config.ReaderConfig, sink diag.Sink) *Reader {
	var d demangle.Demangler
	if cfg.Demangle {
		d = demangle.Identity{}
	}
	r := NewReader(cfg.Demangle, d, sink)
	r.StrictNameMap = cfg.StrictNameMap
	r.MaxWarnings = cfg.MaxWarnings
	return r
}

func (r *Reader) warn(code, msg string) error {
	line, col := 0, 0
	if r.l != nil {
		line, col = r.l.Line(), r.l.Col()
	}
	r.Sink.Warn(diag.Entry{Line: line, Col: col, Code: code, Message: msg})
	r.warnCount++
	if r.MaxWarnings > 0 && r.warnCount > r.MaxWarnings {
		return &diag.ParseError{
			Kind: diag.KindStructural, Found: code,
			Line: line, Col: col, Context: "warning budget exceeded",
		}
	}
	return nil
}

// ReadFile opens path, transparently decompressing it if it carries a
// .gz suffix, and parses it.
func (r *Reader) ReadFile(path string) (*Spef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
	}
	defer f.Close()

	var rd io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
		}
		defer gz.Close()
		rd = gz
	}
	return r.Read(rd)
}

// Read parses SPEF text from src.
func (r *Reader) Read(src io.Reader) (*Spef, error) {
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
	}
	// A gzip member may still arrive here directly (e.g. piped stdin);
	// sniff the magic two bytes regardless of how the Reader was obtained.
	if len(buf) >= 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
		}
		defer gz.Close()
		buf, err = io.ReadAll(gz)
		if err != nil {
			return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
		}
	}

	r.l = lextok.NewFromBytes(buf)
	r.spf = newSpef()

	if err := r.parseHeader(); err != nil {
		return r.spf, err
	}
	if err := r.parseUnits(); err != nil {
		return r.spf, err
	}
	if r.l.HaveStarKeyword("NAME_MAP") {
		if err := r.parseNameMap(); err != nil {
			return r.spf, err
		}
	}
	if r.l.HaveStarKeyword("POWER_NETS") {
		if err := r.parseNetList(&r.spf.PowerNets); err != nil {
			return r.spf, err
		}
	}
	if r.l.HaveStarKeyword("GROUND_NETS") {
		if err := r.parseNetList(&r.spf.GroundNets); err != nil {
			return r.spf, err
		}
	}
	if r.l.HaveStarKeyword("PORTS") {
		if err := r.parsePorts(false); err != nil {
			return r.spf, err
		}
	}
	if r.l.HaveStarKeyword("PHYSICAL_PORTS") {
		if err := r.parsePorts(true); err != nil {
			return r.spf, err
		}
	}
	for r.l.HaveStarKeyword("DEFINE") || r.l.HaveStarKeyword("PDEFINE") {
		physical := r.l.Prev() == "PDEFINE"
		if err := r.parseDefine(physical); err != nil {
			return r.spf, err
		}
	}
	if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "*" {
		r.l.Push()
		if r.l.HaveStarKeyword("VARIATION_PARAMETERS") {
			return r.spf, &diag.ParseError{
				Kind:    diag.KindUnsupportedFeature,
				Found:   "*VARIATION_PARAMETERS",
				Line:    r.l.Line(),
				Col:     r.l.Col(),
				Context: "statistical SPEF variation blocks are not supported",
			}
		}
		r.l.Pop()
	}

	for {
		if r.l.HaveStarKeyword("D_NET") {
			if err := r.parseNetSection(NetDetailed); err != nil {
				return r.spf, err
			}
			continue
		}
		if r.l.HaveStarKeyword("R_NET") {
			if err := r.parseNetSection(NetReduced); err != nil {
				return r.spf, err
			}
			continue
		}
		if r.l.HaveStarKeyword("D_PNET") {
			if err := r.parseNetSection(NetDetailedPhysical); err != nil {
				return r.spf, err
			}
			continue
		}
		if r.l.HaveStarKeyword("R_PNET") {
			if err := r.parseNetSection(NetReducedPhysical); err != nil {
				return r.spf, err
			}
			continue
		}
		break
	}

	if !r.l.EOF() {
		err := &diag.ParseError{
			Kind:     diag.KindUnexpectedToken,
			Expected: "net section or end of file",
			Found:    r.l.Text(),
			Line:     r.l.Line(),
			Col:      r.l.Col(),
		}
		return r.spf, err
	}

	r.spf.valid = true
	return r.spf, nil
}

func (r *Reader) hierOpts() hierid.Options {
	return hierid.Options{
		Divider:   r.spf.Header.Divider,
		BusPrefix: r.spf.Header.BusPrefix,
		BusSuffix: r.spf.Header.BusSuffix,
		Demangler: r.Demangler,
	}
}

// parsePathOrIndex tries a compressed "*<int>" name-map reference
// first, then falls back to a fully spelled-out hierarchical path.
func (r *Reader) parsePathOrIndex(ctx string) (*hierid.HierId, error) {
	if id, ok, err := hierid.ParseIndexRef(r.l, r.spf.NameMap); ok || err != nil {
		if err != nil {
			return nil, r.wrapUnknownIndex(err, ctx)
		}
		return id, nil
	}
	id, ok, err := hierid.ParsePath(r.l, r.hierOpts())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &diag.ParseError{
			Kind:     diag.KindUnexpectedToken,
			Expected: "identifier or name-map reference",
			Found:    r.l.Text(),
			Line:     r.l.Line(),
			Col:      r.l.Col(),
			Context:  ctx,
		}
	}
	return id, nil
}

func (r *Reader) wrapUnknownIndex(err error, ctx string) error {
	var uie *hierid.UnknownIndexError
	if ue, ok := err.(*hierid.UnknownIndexError); ok {
		uie = ue
	}
	if uie == nil {
		return err
	}
	return &diag.ParseError{
		Kind:    diag.KindUnknownIndex,
		Found:   fmt.Sprintf("*%d", uie.Index),
		Line:    r.l.Line(),
		Col:     r.l.Col(),
		Context: ctx,
		Wrapped: err,
	}
}

func (r *Reader) expectString(ctx string) (string, error) {
	if r.l.Sym().Kind != lextok.String {
		return "", &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "quoted string", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	s := r.l.Text()
	r.l.Have(lextok.String, "")
	return s, nil
}

func (r *Reader) expectDividerByte(name string, allowed string, ctx string) (byte, error) {
	if r.l.Sym().Kind != lextok.Punct || len(r.l.Sym().Text) != 1 {
		return 0, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: name, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	c := r.l.Sym().Text[0]
	if !strings.ContainsRune(allowed, rune(c)) {
		return 0, &diag.ParseError{
			Kind: diag.KindStructural, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	r.l.Have(lextok.Punct, string(c))
	return c, nil
}
