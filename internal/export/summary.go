package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

// WriteMarkdown renders the run summary document: configuration echo,
// per-signal statistics table and diagnostics, in that order.
func WriteMarkdown(w io.Writer, doc *vcd.Document, stats []SignalStats, label string) error {
	title := "Waveform Analysis Summary"
	if label != "" {
		title = fmt.Sprintf("Waveform Analysis Summary - %s", label)
	}
	fmt.Fprintf(w, "# %s\n\n", title)
	fmt.Fprintf(w, "| Property | Value |\n|---|---|\n")
	fmt.Fprintf(w, "| Timescale | %s |\n", doc.Timescale)
	fmt.Fprintf(w, "| Max time | %d |\n", doc.MaxTime)
	fmt.Fprintf(w, "| Signals | %d |\n", len(doc.Signals()))
	fmt.Fprintf(w, "| Diagnostics | %d |\n\n", len(doc.Diagnostics))

	fmt.Fprintf(w, "## Signal Activity\n\n")
	fmt.Fprintf(w, "| Signal | Width | Changes | Transitions | Final Value |\n")
	fmt.Fprintf(w, "|--------|-------|---------|-------------|-------------|\n")
	for _, st := range stats {
		fmt.Fprintf(w, "| `%s` | %d | %d | %d | `%s` |\n",
			st.Name, st.Width, st.Changes, st.Transitions, st.FinalValue)
	}

	if len(doc.Diagnostics) > 0 {
		fmt.Fprintf(w, "\n## Parse Diagnostics\n\n")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(w, "- %s\n", d)
		}
	}
	return nil
}

// Summary is the machine-readable companion of the markdown report.
type Summary struct {
	Label       string        `json:"label,omitempty"`
	Timescale   string        `json:"timescale"`
	MaxTime     uint64        `json:"max_time"`
	SignalCount int           `json:"signal_count"`
	Signals     []SignalStats `json:"signals"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

func WriteJSON(w io.Writer, doc *vcd.Document, stats []SignalStats, label string) error {
	sum := Summary{
		Label:       label,
		Timescale:   doc.Timescale.String(),
		MaxTime:     doc.MaxTime,
		SignalCount: len(doc.Signals()),
		Signals:     stats,
	}
	for _, d := range doc.Diagnostics {
		sum.Diagnostics = append(sum.Diagnostics, d.String())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
