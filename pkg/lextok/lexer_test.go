package lextok

import "testing"

func TestScanBasicTokens(t *testing.T) {
	l := NewFromBytes([]byte(`foo 123 -4.5 "bar baz" *quux`))

	want := []struct {
		kind Kind
		text string
	}{
		{Ident, "foo"},
		{Integer, "123"},
		{Real, "-4.5"},
		{String, "bar baz"},
		{Punct, "*"},
		{Ident, "quux"},
		{EOF, ""},
	}
	for i, w := range want {
		if l.Sym().Kind != w.kind || l.Sym().Text != w.text {
			t.Fatalf("token %d: got (%v %q), want (%v %q)", i, l.Sym().Kind, l.Sym().Text, w.kind, w.text)
		}
		l.Have(l.Sym().Kind, "")
	}
}

func TestHaveStarKeyword(t *testing.T) {
	l := NewFromBytes([]byte(`*DIVIDER . *BUS_DELIMITER [ ]`))
	if !l.HaveStarKeyword("DIVIDER") {
		t.Fatal("expected *DIVIDER to match")
	}
	if !l.Have(Punct, ".") {
		t.Fatal("expected divider char")
	}
	if !l.HaveStarKeyword("bus_delimiter") {
		t.Fatal("expected case-insensitive match")
	}
}

func TestHaveStarKeywordRejectsMismatch(t *testing.T) {
	l := NewFromBytes([]byte(`*FOO`))
	if l.HaveStarKeyword("BAR") {
		t.Fatal("expected no match")
	}
	if !l.Have(Punct, "*") {
		t.Fatal("expected rewind to leave '*' unconsumed")
	}
}

func TestCheckpointRewind(t *testing.T) {
	l := NewFromBytes([]byte(`abc def`))
	l.Push()
	l.Have(Ident, "abc")
	if l.Sym().Text != "def" {
		t.Fatalf("got %q, want def", l.Sym().Text)
	}
	l.Set()
	if l.Sym().Text != "abc" {
		t.Fatalf("rewind failed: got %q, want abc", l.Sym().Text)
	}
}

func TestWhitespaceAdjacency(t *testing.T) {
	l := NewFromBytes([]byte(`*3`))
	l.Have(Punct, "*")
	if l.Whitespace() != "" {
		t.Fatalf("expected no whitespace before the integer, got %q", l.Whitespace())
	}

	l2 := NewFromBytes([]byte(`* 3`))
	l2.Have(Punct, "*")
	if l2.Whitespace() == "" {
		t.Fatal("expected whitespace before the integer")
	}
}
