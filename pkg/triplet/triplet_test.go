package triplet

import "testing"

func TestSingletonCollapse(t *testing.T) {
	tr := Single(1.5)
	if !tr.IsSingleton() {
		t.Fatal("expected singleton")
	}
	if got := tr.String(); got != "1.5" {
		t.Fatalf("got %q, want 1.5", got)
	}
}

func TestFullTripletString(t *testing.T) {
	tr := Triplet{Best: 1, Typ: 2, Worst: 3}
	if tr.IsSingleton() {
		t.Fatal("expected non-singleton")
	}
	if got := tr.String(); got != "1:2:3" {
		t.Fatalf("got %q, want 1:2:3", got)
	}
}

func TestParseText(t *testing.T) {
	tr, err := ParseText("1.1:2.2:3.3")
	if err != nil {
		t.Fatal(err)
	}
	want := Triplet{Best: 1.1, Typ: 2.2, Worst: 3.3}
	if tr != want {
		t.Fatalf("got %+v, want %+v", tr, want)
	}

	tr, err = ParseText("4.4")
	if err != nil {
		t.Fatal(err)
	}
	if !tr.IsSingleton() || tr.Typ != 4.4 {
		t.Fatalf("got %+v, want singleton 4.4", tr)
	}
}

func TestParseRejectsWrongArity(t *testing.T) {
	if _, err := Parse("1", "2"); err == nil {
		t.Fatal("expected error for two fields")
	}
}

func TestComplexStringOmitsZeroImaginary(t *testing.T) {
	c := Complex{Re: Single(1)}
	if got := c.String(); got != "1" {
		t.Fatalf("got %q, want 1", got)
	}
	c.Im = Single(2)
	if got := c.String(); got != "1 2" {
		t.Fatalf("got %q, want \"1 2\"", got)
	}
}
