// Package export turns projection tables and signal statistics into the
// CSV, markdown and JSON artifacts the surrounding pipeline consumes.
// Everything here is a pure function over already-built data.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

// WriteTimingCSV writes one time-aligned row per grid timestamp, one
// column per projected signal.
func WriteTimingCSV(w io.Writer, ts vcd.Timescale, table *vcd.Table) error {
	cw := csv.NewWriter(w)
	header := append([]string{timeColumn(ts)}, table.Header()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, t := range table.Times {
		row := append([]string{strconv.FormatUint(t, 10)}, table.Row(i)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSignalCSV writes a single signal's raw change log.
func WriteSignalCSV(w io.Writer, ts vcd.Timescale, s *vcd.Signal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{timeColumn(ts), s.Name}); err != nil {
		return err
	}
	for _, c := range s.Changes {
		if err := cw.Write([]string{strconv.FormatUint(c.Time, 10), c.Value}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one statistics row per signal.
func WriteSummaryCSV(w io.Writer, stats []SignalStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Signal Name", "Width (bits)", "Total Changes", "Transitions", "Final Value"}); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{
			st.Name,
			strconv.Itoa(st.Width),
			strconv.Itoa(st.Changes),
			strconv.Itoa(st.Transitions),
			st.FinalValue,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func timeColumn(ts vcd.Timescale) string {
	if ts.Unit == "" {
		return "Time"
	}
	return fmt.Sprintf("Time (%s)", ts.String())
}

// Options selects which artifacts WriteAll produces.
type Options struct {
	TimingCSV  bool
	SignalCSVs bool
	SummaryCSV bool
	Markdown   bool
	JSON       bool
	Label      string
}

// WriteAll writes the selected artifacts into dir and returns the paths
// of the files generated.
func WriteAll(dir string, doc *vcd.Document, table *vcd.Table, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	stats := Collect(doc, table.Signals...)

	var files []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
		files = append(files, path)
		return nil
	}

	if opts.TimingCSV {
		if err := write("timing_data.csv", func(w io.Writer) error {
			return WriteTimingCSV(w, doc.Timescale, table)
		}); err != nil {
			return files, err
		}
	}
	if opts.SignalCSVs {
		for _, s := range table.Signals {
			s := s
			name := fmt.Sprintf("signal_%s.csv", safeName(s.Name))
			if err := write(name, func(w io.Writer) error {
				return WriteSignalCSV(w, doc.Timescale, s)
			}); err != nil {
				return files, err
			}
		}
	}
	if opts.SummaryCSV {
		if err := write("signal_summary.csv", func(w io.Writer) error {
			return WriteSummaryCSV(w, stats)
		}); err != nil {
			return files, err
		}
	}
	if opts.Markdown {
		if err := write("SUMMARY.md", func(w io.Writer) error {
			return WriteMarkdown(w, doc, stats, opts.Label)
		}); err != nil {
			return files, err
		}
	}
	if opts.JSON {
		if err := write("analysis_summary.json", func(w io.Writer) error {
			return WriteJSON(w, doc, stats, opts.Label)
		}); err != nil {
			return files, err
		}
	}
	return files, nil
}

func safeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
