package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

const exportDoc = `$timescale 1ns $end
$scope module tb $end
$var wire 1 ! sclk $end
$var reg 4 " data $end
$upscope $end
$enddefinitions $end
$dumpvars
x!
bxxxx "
$end
#10
1!
b1010 "
#20
0!
`

func exportFixture(t *testing.T) (*vcd.Document, *vcd.Table) {
	t.Helper()
	doc, err := vcd.Parse([]byte(exportDoc))
	if err != nil {
		t.Fatal(err)
	}
	table, err := doc.Project(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return doc, table
}

func TestWriteTimingCSV(t *testing.T) {
	doc, table := exportFixture(t)
	var buf bytes.Buffer
	if err := WriteTimingCSV(&buf, doc.Timescale, table); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Time (1ns)" || rows[0][1] != "sclk" || rows[0][2] != "data" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "0" || rows[1][1] != "x" || rows[1][2] != "xxxx" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][0] != "10" || rows[2][1] != "1" || rows[2][2] != "1010" {
		t.Errorf("row 2 = %v", rows[2])
	}
	for i, row := range rows {
		if len(row) != 3 {
			t.Errorf("row %d not rectangular: %v", i, row)
		}
	}
}

func TestWriteSignalCSV(t *testing.T) {
	doc, _ := exportFixture(t)
	s, _ := doc.Lookup("!")
	var buf bytes.Buffer
	if err := WriteSignalCSV(&buf, doc.Timescale, s); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 changes, got %v", rows)
	}
	if rows[1][1] != "x" || rows[2][1] != "1" || rows[3][1] != "0" {
		t.Errorf("change values = %v", rows)
	}
}

func TestCollectStats(t *testing.T) {
	doc, _ := exportFixture(t)
	stats := Collect(doc)
	if len(stats) != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	sclk := stats[0]
	if sclk.Name != "tb.sclk" || sclk.Changes != 3 || sclk.Transitions != 2 {
		t.Errorf("sclk stats = %+v", sclk)
	}
	if sclk.FirstChange != 0 || sclk.LastChange != 20 || sclk.FinalValue != "0" {
		t.Errorf("sclk stats = %+v", sclk)
	}
}

func TestWriteMarkdown(t *testing.T) {
	doc, _ := exportFixture(t)
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, doc, Collect(doc), "issue-7"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"issue-7", "`tb.sclk`", "| Max time | 20 |", "`1010`"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	doc, _ := exportFixture(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc, Collect(doc), "issue-7"); err != nil {
		t.Fatal(err)
	}
	var sum Summary
	if err := json.Unmarshal(buf.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Label != "issue-7" || sum.MaxTime != 20 || sum.SignalCount != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Signals) != 2 || sum.Signals[1].FinalValue != "1010" {
		t.Errorf("signals = %+v", sum.Signals)
	}
}

func TestWriteAll(t *testing.T) {
	doc, table := exportFixture(t)
	dir := filepath.Join(t.TempDir(), "out")
	files, err := WriteAll(dir, doc, table, Options{
		TimingCSV:  true,
		SignalCSVs: true,
		SummaryCSV: true,
		Markdown:   true,
		JSON:       true,
		Label:      "t",
	})
	if err != nil {
		t.Fatal(err)
	}
	// timing + 2 signals + summary csv + markdown + json
	if len(files) != 6 {
		t.Errorf("generated files = %v", files)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("missing artifact %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "signal_tb_sclk.csv")); err != nil {
		t.Errorf("per-signal csv name: %v", err)
	}
}
