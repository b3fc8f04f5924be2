package vcd

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput marks a document that contains nothing usable.
	ErrEmptyInput = errors.New("empty or missing input")
	// ErrNoDefinitions marks a document without an $enddefinitions block.
	ErrNoDefinitions = errors.New("no $enddefinitions found")
	// ErrUnboundSignal marks a query against a signal the document does
	// not know. It is fatal for that query only, never for the Document.
	ErrUnboundSignal = errors.New("unbound signal")
)

// Timescale is the per-document scale factor applied uniformly to all
// timestamps, e.g. {1, "ns"}.
type Timescale struct {
	Magnitude int
	Unit      string
}

func (ts Timescale) String() string {
	if ts.Magnitude == 0 {
		return ""
	}
	return strconv.Itoa(ts.Magnitude) + ts.Unit
}

// A ChangeEvent is one recorded (timestamp, value) transition. Values are
// "0"/"1"/"x"/"z" for scalars and width-normalized digit strings over the
// same alphabet for vectors.
type ChangeEvent struct {
	Time  uint64
	Value string
}

// A Signal is one declared wire or register. Created during the
// declaration phase and immutable after the parse returns; its change
// log is ordered by append time, timestamps non-decreasing.
type Signal struct {
	ID      string // identifier token as written in the log
	Name    string // dot-joined hierarchical path
	Kind    string // declared type: wire, reg, ...
	Width   int
	Changes []ChangeEvent
}

// Unknown returns the width-appropriate undriven value for the signal.
func (s *Signal) Unknown() string {
	if s.Width <= 1 {
		return "x"
	}
	return strings.Repeat("x", s.Width)
}

// ValueAt resolves the value in effect at time t: the value of the
// latest change recorded at or before t, or the unknown value if t
// precedes every recorded change. Ties at the same timestamp resolve to
// the last change appended.
func (s *Signal) ValueAt(t uint64) string {
	i := sort.Search(len(s.Changes), func(i int) bool { return s.Changes[i].Time > t })
	if i == 0 {
		return s.Unknown()
	}
	return s.Changes[i-1].Value
}

// Transitions counts adjacent change pairs with differing values.
// Duplicate consecutive identical values are recorded in the log but do
// not count as transitions.
func (s *Signal) Transitions() int {
	n := 0
	for i := 1; i < len(s.Changes); i++ {
		if s.Changes[i].Value != s.Changes[i-1].Value {
			n++
		}
	}
	return n
}

// FinalValue is the value the signal holds from its last change onward.
func (s *Signal) FinalValue() string {
	if len(s.Changes) == 0 {
		return s.Unknown()
	}
	return s.Changes[len(s.Changes)-1].Value
}

// A Document is the result of one parse pass: the timescale, the symbol
// table with each signal's change log, the maximum timestamp observed
// and the diagnostics accumulated along the way. Immutable once Parse
// returns; concurrent read-only queries are safe.
type Document struct {
	Timescale   Timescale
	MaxTime     uint64
	Diagnostics []Diagnostic

	signals map[string]*Signal
	order   []*Signal
}

// Signals enumerates the declared signals in declaration order.
func (d *Document) Signals() []*Signal {
	return d.order
}

// Lookup finds a signal by its identifier token.
func (d *Document) Lookup(id string) (*Signal, bool) {
	s, ok := d.signals[id]
	return s, ok
}

// Resolve finds a signal by identifier token, full hierarchical name, or
// unique leaf-name suffix, in that order. Simulators prefix testbench
// scopes callers rarely care to spell out, hence the suffix form.
func (d *Document) Resolve(ref string) (*Signal, error) {
	if s, ok := d.signals[ref]; ok {
		return s, nil
	}
	for _, s := range d.order {
		if s.Name == ref {
			return s, nil
		}
	}
	var match *Signal
	for _, s := range d.order {
		if strings.HasSuffix(s.Name, "."+ref) {
			if match != nil {
				return nil, errors.Wrapf(ErrUnboundSignal, "ambiguous signal reference %q", ref)
			}
			match = s
		}
	}
	if match == nil {
		return nil, errors.Wrapf(ErrUnboundSignal, "no signal %q", ref)
	}
	return match, nil
}

// ValueAt answers "value of signal ref at time t" with latest-at-or-
// before semantics. O(log k) in the signal's change count.
func (d *Document) ValueAt(ref string, t uint64) (string, error) {
	s, err := d.Resolve(ref)
	if err != nil {
		return "", err
	}
	return s.ValueAt(t), nil
}

// ChangeTimes returns the union of distinct change timestamps across the
// given signals, ascending. With no arguments it covers every signal.
func (d *Document) ChangeTimes(signals ...*Signal) []uint64 {
	if len(signals) == 0 {
		signals = d.order
	}
	seen := make(map[uint64]struct{})
	for _, s := range signals {
		for _, c := range s.Changes {
			seen[c.Time] = struct{}{}
		}
	}
	times := make([]uint64, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}
