package vcd

import "sort"

// A Table is a rectangular, time-aligned projection of signal values:
// one row per grid timestamp, one column per requested signal. Rows are
// strictly ascending in time with no duplicates, and every cell holds a
// value (possibly the unknown value). Reporting layers (CSV export,
// summaries, statistics) are pure functions over Table.
type Table struct {
	Signals []*Signal
	Times   []uint64
	cells   [][]string // row-major, len(Times) x len(Signals)
}

// Value returns the cell at (row, col).
func (t *Table) Value(row, col int) string {
	return t.cells[row][col]
}

// Row returns the values of one grid row in column order.
func (t *Table) Row(row int) []string {
	return t.cells[row]
}

// Header returns the leaf names of the projected signals.
func (t *Table) Header() []string {
	names := make([]string, len(t.Signals))
	for i, s := range t.Signals {
		names[i] = leafName(s.Name)
	}
	return names
}

func leafName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

// Project samples the referenced signals over a time grid. A nil or
// empty grid means the union of all distinct change timestamps across
// the requested signals; an explicit grid is normalized to ascending
// order with duplicates removed. Empty refs project every signal.
func (d *Document) Project(refs []string, grid []uint64) (*Table, error) {
	var signals []*Signal
	if len(refs) == 0 {
		signals = d.order
	} else {
		signals = make([]*Signal, 0, len(refs))
		for _, ref := range refs {
			s, err := d.Resolve(ref)
			if err != nil {
				return nil, err
			}
			signals = append(signals, s)
		}
	}

	var times []uint64
	if len(grid) == 0 {
		times = d.ChangeTimes(signals...)
	} else {
		times = normalizeGrid(grid)
	}

	cells := make([][]string, len(times))
	for i, t := range times {
		row := make([]string, len(signals))
		for j, s := range signals {
			row[j] = s.ValueAt(t)
		}
		cells[i] = row
	}
	return &Table{Signals: signals, Times: times, cells: cells}, nil
}

func normalizeGrid(grid []uint64) []uint64 {
	times := append([]uint64{}, grid...)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	out := times[:0]
	for i, t := range times {
		if i == 0 || t != times[i-1] {
			out = append(out, t)
		}
	}
	return out
}
