package diag

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindLexical:           "LexicalError",
		KindUnexpectedToken:   "UnexpectedToken",
		KindUnknownIndex:      "UnknownIndex",
		KindStructural:        "StructuralError",
		KindUnsupportedFeature: "UnsupportedFeature",
		KindIO:                "IoError",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestParseErrorUnexpectedTokenMessage(t *testing.T) {
	err := &ParseError{
		Kind: KindUnexpectedToken, Expected: "*END", Found: "*CONN",
		Line: 4, Col: 2, Context: "net section",
	}
	got := err.Error()
	want := `4:2: UnexpectedToken: context "net section": expected "*END", found "*CONN"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ParseError{Kind: KindIO, Found: "boom", Wrapped: inner}
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to see through Unwrap")
	}
}

func TestParseErrorMatchesSentinelByKind(t *testing.T) {
	err := &ParseError{Kind: KindStructural, Found: "x"}
	if !errors.Is(err, ErrStructural) {
		t.Fatal("expected errors.Is to match the sentinel for the same Kind")
	}
	if errors.Is(err, ErrLexical) {
		t.Fatal("expected errors.Is to reject a sentinel for a different Kind")
	}
}

func TestParseErrorSentinelMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("while parsing header: %w", &ParseError{Kind: KindUnknownIndex, Found: "*9"})
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatal("expected errors.Is to see through fmt.Errorf wrapping to the sentinel")
	}
}

func TestIsKind(t *testing.T) {
	err := &ParseError{Kind: KindStructural, Found: "x"}
	if !IsKind(err, KindStructural) {
		t.Fatal("expected IsKind to match")
	}
	if IsKind(err, KindLexical) {
		t.Fatal("expected IsKind to reject a different kind")
	}
}

func TestCollectorAccumulates(t *testing.T) {
	var c Collector
	c.Warn(Entry{Line: 1, Col: 1, Code: "a", Message: "first"})
	c.Warn(Entry{Line: 2, Col: 1, Code: "b", Message: "second"})
	if len(c.Entries) != 2 {
		t.Fatalf("got %d entries", len(c.Entries))
	}
}

func TestWriterFormatsOneLinePerEntry(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{W: &buf}
	w.Warn(Entry{Line: 3, Col: 5, Code: "duplicate-net", Message: "net %q redefined"})
	want := "3:5: duplicate-net: net %q redefined\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestDedupSuppressesSamePosition(t *testing.T) {
	var c Collector
	d := &Dedup{Sink: &c}
	d.Warn(Entry{Line: 1, Col: 1, Code: "a"})
	d.Warn(Entry{Line: 1, Col: 1, Code: "a"})
	d.Warn(Entry{Line: 1, Col: 2, Code: "a"})
	if len(c.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(c.Entries))
	}
}

func TestNopDiscards(t *testing.T) {
	var n Nop
	n.Warn(Entry{Line: 1, Col: 1, Code: "x"})
}
