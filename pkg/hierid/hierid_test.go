package hierid

import (
	"testing"

	"github.com/OpenTraceLab/icexchange/pkg/lextok"
)

func dotOpts() Options {
	return Options{Divider: '.', BusPrefix: '[', BusSuffix: ']'}
}

func TestParsePathSimple(t *testing.T) {
	l := lextok.NewFromBytes([]byte(`top.sub.leaf`))
	id, ok, err := ParsePath(l, dotOpts())
	if err != nil || !ok {
		t.Fatalf("ParsePath failed: ok=%v err=%v", ok, err)
	}
	if got := id.String('.'); got != "top.sub.leaf" {
		t.Fatalf("got %q", got)
	}
	if id.Absolute {
		t.Fatal("expected non-absolute path")
	}
}

func TestParsePathAbsoluteWithSubscript(t *testing.T) {
	l := lextok.NewFromBytes([]byte(`.top.bus[3].leaf`))
	id, ok, err := ParsePath(l, dotOpts())
	if err != nil || !ok {
		t.Fatalf("ParsePath failed: ok=%v err=%v", ok, err)
	}
	if !id.Absolute {
		t.Fatal("expected absolute path")
	}
	if got := id.String('.'); got != ".top.bus[3].leaf" {
		t.Fatalf("got %q", got)
	}
	if !id.Parts[1].HasSubscript || id.Parts[1].Subscript != 3 {
		t.Fatalf("got parts %+v", id.Parts)
	}
}

func TestParsePathNoMatchLeavesLexerUntouched(t *testing.T) {
	l := lextok.NewFromBytes([]byte(`123`))
	_, ok, err := ParsePath(l, dotOpts())
	if err != nil || ok {
		t.Fatalf("expected no match, got ok=%v err=%v", ok, err)
	}
	if l.Sym().Text != "123" {
		t.Fatalf("lexer advanced unexpectedly: %q", l.Sym().Text)
	}
}

func TestNameMapAddAndReplace(t *testing.T) {
	nm := NewNameMap()
	a := &HierId{Parts: []Component{{Name: "a"}}}
	b := &HierId{Parts: []Component{{Name: "b"}}}
	if replaced := nm.Add(1, a); replaced {
		t.Fatal("expected first Add to report no replacement")
	}
	if replaced := nm.Add(1, b); !replaced {
		t.Fatal("expected second Add to report a replacement")
	}
	got, ok := nm.Lookup(1)
	if !ok || got != b {
		t.Fatalf("expected lookup to return the replacement entry")
	}
}

func TestParseIndexRefResolvesAndDoesNotAliasMap(t *testing.T) {
	nm := NewNameMap()
	target := &HierId{Parts: []Component{{Name: "net1"}}}
	nm.Add(7, target)

	l := lextok.NewFromBytes([]byte(`*7`))
	ref, ok, err := ParseIndexRef(l, nm)
	if err != nil || !ok {
		t.Fatalf("ParseIndexRef failed: ok=%v err=%v", ok, err)
	}
	if !ref.IsReference {
		t.Fatal("expected resolved reference to be flagged IsReference")
	}
	if target.IsReference {
		t.Fatal("resolving a reference must not mutate the stored NameMap entry")
	}
	if !ref.Equal(target) {
		t.Fatal("expected structural equality with the stored entry")
	}
}

func TestParseIndexRefUnknown(t *testing.T) {
	nm := NewNameMap()
	l := lextok.NewFromBytes([]byte(`*9`))
	_, ok, err := ParseIndexRef(l, nm)
	if ok {
		t.Fatal("expected ok=false on an error")
	}
	if err == nil {
		t.Fatal("expected an UnknownIndexError")
	}
	if _, isUnknown := err.(*UnknownIndexError); !isUnknown {
		t.Fatalf("got %T, want *UnknownIndexError", err)
	}
}

func TestParseIndexRefRequiresNoWhitespace(t *testing.T) {
	nm := NewNameMap()
	nm.Add(5, &HierId{Parts: []Component{{Name: "x"}}})
	l := lextok.NewFromBytes([]byte(`* 5`))
	_, ok, err := ParseIndexRef(l, nm)
	if ok || err != nil {
		t.Fatalf("expected no match when '*' and the index are separated by whitespace, got ok=%v err=%v", ok, err)
	}
}
