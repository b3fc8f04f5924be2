package export

import (
	"github.com/SJTU-YONGFU-RESEARCH-GRP/spi-customizer/internal/vcd"
)

// SignalStats summarizes one signal's activity over the whole document.
type SignalStats struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Changes     int    `json:"changes"`
	Transitions int    `json:"transitions"`
	FirstChange uint64 `json:"first_change"`
	LastChange  uint64 `json:"last_change"`
	FinalValue  string `json:"final_value"`
}

// Collect gathers statistics for the given signals, or for every signal
// in the document when none are given.
func Collect(doc *vcd.Document, signals ...*vcd.Signal) []SignalStats {
	if len(signals) == 0 {
		signals = doc.Signals()
	}
	stats := make([]SignalStats, 0, len(signals))
	for _, s := range signals {
		st := SignalStats{
			Name:        s.Name,
			Width:       s.Width,
			Changes:     len(s.Changes),
			Transitions: s.Transitions(),
			FinalValue:  s.FinalValue(),
		}
		if len(s.Changes) > 0 {
			st.FirstChange = s.Changes[0].Time
			st.LastChange = s.Changes[len(s.Changes)-1].Time
		}
		stats = append(stats, st)
	}
	return stats
}
