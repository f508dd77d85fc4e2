package sdf

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/OpenTraceLab/icexchange/internal/config"
	"github.com/OpenTraceLab/icexchange/internal/diag"
	"github.com/OpenTraceLab/icexchange/pkg/demangle"
	"github.com/OpenTraceLab/icexchange/pkg/hierid"
	"github.com/OpenTraceLab/icexchange/pkg/lextok"
	"github.com/OpenTraceLab/icexchange/pkg/triplet"
)

// Reader parses SDF text into an SDF model.
type Reader struct {
	Demangler demangle.Demangler
	Sink      diag.Sink

	// MaxWarnings aborts parsing with a structural error once more than
	// this many warnings have been emitted (0 = unbounded).
	MaxWarnings int

	l         *lextok.Lexer
	sdf       *SDF
	warnCount int
}

// NewReader constructs a Reader, mirroring the SPEF reader's
// constructor shape.
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
// wiring its demangler and warning-budget knobs. SDF has no name map,
// so StrictNameMap does not apply here.
func NewReaderFromConfig(cfg *config.ReaderConfig, sink diag.Sink) *Reader {
	var d demangle.Demangler
	if cfg.Demangle {
		d = demangle.Identity{}
	}
	r := NewReader(cfg.Demangle, d, sink)
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

// ReadFile opens path, transparently decompressing a .gz suffix.
func (r *Reader) ReadFile(path string) (*SDF, error) {
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

// Read parses SDF text from src.
func (r *Reader) Read(src io.Reader) (*SDF, error) {
	buf, err := io.ReadAll(src)
	if err != nil {
		return nil, &diag.ParseError{Kind: diag.KindIO, Found: err.Error(), Wrapped: err}
	}
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
	r.sdf = newSDF()

	if err := r.expectPunct("("); err != nil {
		return r.sdf, err
	}
	extended := false
	if r.l.HaveKeyword("XDELAYFILE") {
		extended = true
	} else if !r.l.HaveKeyword("DELAYFILE") {
		return r.sdf, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "DELAYFILE or XDELAYFILE", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: "file header",
		}
	}

	if err := r.parseHeader(extended); err != nil {
		return r.sdf, err
	}

	for r.atParen("CELL") {
		if err := r.parseCell(extended); err != nil {
			return r.sdf, err
		}
	}

	if err := r.expectPunct(")"); err != nil {
		return r.sdf, err
	}
	if !r.l.EOF() {
		return r.sdf, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "end of file", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(),
		}
	}

	r.sdf.valid = true
	return r.sdf, nil
}

func (r *Reader) expectPunct(text string) error {
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != text {
		return &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: text, Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(),
		}
	}
	r.l.Have(lextok.Punct, text)
	return nil
}

// atParen reports whether the token stream currently sits at "(
// keyword" without consuming anything.
func (r *Reader) atParen(keyword string) bool {
	if r.l.Sym().Kind != lextok.Punct || r.l.Sym().Text != "(" {
		return false
	}
	r.l.Push()
	r.l.Have(lextok.Punct, "(")
	ok := r.l.HaveKeyword(keyword)
	r.l.Set()
	return ok
}

func (r *Reader) hierOpts() hierid.Options {
	return hierid.Options{
		Divider:   r.sdf.Header.Divider,
		BusPrefix: '[',
		BusSuffix: ']',
		Demangler: r.Demangler,
	}
}

func (r *Reader) parseHierId(ctx string) (*hierid.HierId, error) {
	id, ok, err := hierid.ParsePath(r.l, r.hierOpts())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &diag.ParseError{
			Kind: diag.KindUnexpectedToken, Expected: "identifier", Found: r.l.Text(),
			Line: r.l.Line(), Col: r.l.Col(), Context: ctx,
		}
	}
	return id, nil
}

// parseHierIdOptional attempts a hierarchical identifier, returning
// ok=false (consuming nothing) if the current token cannot start one.
func (r *Reader) parseHierIdOptional() (*hierid.HierId, bool, error) {
	return hierid.ParsePath(r.l, r.hierOpts())
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

// parseTriplet consumes a bare number or a "best:typ:worst" form,
// identical in shape to the SPEF reader's triplet grammar.
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

// skipBalanced consumes tokens until the parenthesis depth returns to
// zero, used for CELL sub-blocks this reader does not interpret
// (TIMINGCHECK, TIMINGENV, LABEL).
func (r *Reader) skipBalanced() {
	depth := 0
	for {
		if r.l.EOF() {
			return
		}
		if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == "(" {
			depth++
			r.l.Have(lextok.Punct, "(")
			continue
		}
		if r.l.Sym().Kind == lextok.Punct && r.l.Sym().Text == ")" {
			depth--
			r.l.Have(lextok.Punct, ")")
			if depth == 0 {
				return
			}
			continue
		}
		r.l.Have(r.l.Sym().Kind, "")
	}
}
