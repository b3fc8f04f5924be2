package vcd

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

const scalarDoc = `$timescale 1ns $end
$scope module spi_master_tb $end
$var wire 1 ! sclk $end
$upscope $end
$enddefinitions $end
$dumpvars
x!
$end
#10
1!
#20
0!
`

func mustParse(t *testing.T, input string) *Document {
	t.Helper()
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return doc
}

func TestParseScalarScenario(t *testing.T) {
	doc := mustParse(t, scalarDoc)

	if doc.Timescale != (Timescale{Magnitude: 1, Unit: "ns"}) {
		t.Errorf("bad timescale: %+v", doc.Timescale)
	}
	if doc.MaxTime != 20 {
		t.Errorf("expected max time 20, got %d", doc.MaxTime)
	}
	s, ok := doc.Lookup("!")
	if !ok {
		t.Fatal("signal ! not declared")
	}
	if s.Name != "spi_master_tb.sclk" || s.Width != 1 || s.Kind != "wire" {
		t.Errorf("bad signal record: %+v", s)
	}

	for _, tc := range []struct {
		at   uint64
		want string
	}{{0, "x"}, {15, "1"}, {25, "0"}} {
		got, err := doc.ValueAt("!", tc.at)
		if err != nil {
			t.Fatalf("ValueAt(!, %d): %v", tc.at, err)
		}
		if got != tc.want {
			t.Errorf("ValueAt(!, %d) = %q, want %q", tc.at, got, tc.want)
		}
	}
	if len(doc.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", doc.Diagnostics)
	}
}

func TestParseVectorScenario(t *testing.T) {
	doc := mustParse(t, `$timescale 1ns $end
$scope module tb $end
$var reg 4 ' data $end
$upscope $end
$enddefinitions $end
#5
b1010 '
`)
	got, err := doc.ValueAt("'", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1010" {
		t.Errorf("ValueAt at 5 = %q, want 1010", got)
	}
	got, _ = doc.ValueAt("'", 0)
	if got != "xxxx" {
		t.Errorf("ValueAt at 0 = %q, want xxxx", got)
	}
}

func TestParseUnknownSignalReference(t *testing.T) {
	doc := mustParse(t, `$scope module tb $end
$var wire 1 ! sclk $end
$upscope $end
$enddefinitions $end
#0
1@
`)
	if _, ok := doc.Lookup("@"); ok {
		t.Error("undeclared identifier materialized a signal")
	}
	if n := countDiags(doc, DiagUnknownSignalReference); n != 1 {
		t.Errorf("expected 1 unknown-signal diagnostic, got %d: %v", n, doc.Diagnostics)
	}
}

func TestParseDuplicateIdentifier(t *testing.T) {
	doc := mustParse(t, `$scope module tb $end
$var wire 1 ! sclk $end
$var wire 4 ! other $end
$upscope $end
$enddefinitions $end
#0
1!
`)
	if n := countDiags(doc, DiagDuplicateIdentifier); n != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %d: %v", n, doc.Diagnostics)
	}
	s, _ := doc.Lookup("!")
	if s.Name != "tb.sclk" || s.Width != 1 {
		t.Errorf("first registration should win, got %+v", s)
	}
	if got := s.ValueAt(0); got != "1" {
		t.Errorf("change log should follow the first registration, got %q", got)
	}
}

func TestParseTimeOrderingViolation(t *testing.T) {
	doc := mustParse(t, `$var wire 1 ! sclk $end
$enddefinitions $end
#10
1!
#5
0!
`)
	if n := countDiags(doc, DiagTimeOrderingViolation); n != 1 {
		t.Fatalf("expected 1 ordering diagnostic, got %v", doc.Diagnostics)
	}
	s, _ := doc.Lookup("!")
	// The out-of-order event lands at the last known time.
	want := []ChangeEvent{{10, "1"}, {10, "0"}}
	if !reflect.DeepEqual(s.Changes, want) {
		t.Errorf("changes = %+v, want %+v", s.Changes, want)
	}
	if got := s.ValueAt(10); got != "0" {
		t.Errorf("last write at tied timestamp should win, got %q", got)
	}
}

func TestParseDeclarationAfterFreeze(t *testing.T) {
	doc := mustParse(t, `$var wire 1 ! sclk $end
$enddefinitions $end
$var wire 1 @ late $end
#0
`)
	if n := countDiags(doc, DiagDeclarationAfterFreeze); n != 1 {
		t.Errorf("expected 1 freeze diagnostic, got %v", doc.Diagnostics)
	}
	if _, ok := doc.Lookup("@"); ok {
		t.Error("late declaration was registered")
	}
}

func TestParseFatalErrors(t *testing.T) {
	if _, err := Parse([]byte("   \n\n")); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input: got %v", err)
	}
	if _, err := Parse([]byte("$var wire 1 ! sclk $end\n#10\n1!\n")); !errors.Is(err, ErrNoDefinitions) {
		t.Errorf("missing $enddefinitions: got %v", err)
	}
}

func TestParseMalformedLineRecovers(t *testing.T) {
	doc := mustParse(t, `$var wire 1 ! sclk $end
$enddefinitions $end
#0
this is not vcd
r1.25 !
1!
`)
	if n := countDiags(doc, DiagMalformedLine); n != 2 {
		t.Fatalf("expected 2 malformed diagnostics, got %v", doc.Diagnostics)
	}
	s, _ := doc.Lookup("!")
	if len(s.Changes) != 1 || s.Changes[0].Value != "1" {
		t.Errorf("good event after bad lines lost: %+v", s.Changes)
	}
}

func TestParseShortVectorZeroExtends(t *testing.T) {
	doc := mustParse(t, `$var reg 8 ' data $end
$enddefinitions $end
#0
b101 '
`)
	got, _ := doc.ValueAt("'", 0)
	if got != "00000101" {
		t.Errorf("short vector = %q, want 00000101", got)
	}
}

func TestParseIdempotent(t *testing.T) {
	a := mustParse(t, scalarDoc)
	b := mustParse(t, scalarDoc)
	if !reflect.DeepEqual(a.Diagnostics, b.Diagnostics) {
		t.Error("diagnostics differ between identical parses")
	}
	sa, _ := a.Lookup("!")
	sb, _ := b.Lookup("!")
	if !reflect.DeepEqual(sa.Changes, sb.Changes) {
		t.Error("change logs differ between identical parses")
	}
}

func TestParseNestedScopes(t *testing.T) {
	doc := mustParse(t, `$scope module tb $end
$scope module dut $end
$var wire 1 ! sclk $end
$upscope $end
$var wire 1 " irq $end
$upscope $end
$enddefinitions $end
#0
`)
	s, _ := doc.Lookup("!")
	if s.Name != "tb.dut.sclk" {
		t.Errorf("nested path = %q", s.Name)
	}
	s, _ = doc.Lookup("\"")
	if s.Name != "tb.irq" {
		t.Errorf("post-upscope path = %q", s.Name)
	}
}

func countDiags(doc *Document, kind DiagKind) int {
	n := 0
	for _, d := range doc.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
