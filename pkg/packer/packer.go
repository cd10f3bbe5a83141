package packer

import (
	"cmp"
	"fmt"
	"slices"
)

// Interval is an item occupying the half-open column range [Start, End).
// Data is an opaque payload carried through packing unchanged.
type Interval[T any] struct {
	Start int
	End   int
	Data  T
}

// Width returns the number of columns covered by the interval.
func (iv Interval[T]) Width() int { return iv.End - iv.Start }

// Placed is an Interval with its assigned row.
type Placed[T any] struct {
	Interval[T]
	Row int
}

// span is a bare occupied range inside a row.
type span struct{ start, end int }

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share a column.
// Touching ranges (aEnd == bStart) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

// Normalize returns iv with a degenerate range widened to a single column.
func Normalize[T any](iv Interval[T]) Interval[T] {
	if iv.End <= iv.Start {
		iv.End = iv.Start + 1
	}
	return iv
}

// Pack assigns every item a row so that no two items in the same row overlap.
//
// Items are processed in (Start, End) order; equal keys keep their input
// order. Each item takes the lowest-numbered row with no conflicting range,
// or a new row when every existing row conflicts. Row numbers are therefore
// contiguous from 0.
//
// The result has the same length as items and is returned in processing
// order, not input order. The input slice is not modified.
func Pack[T any](items []Interval[T]) []Placed[T] {
	if len(items) == 0 {
		return []Placed[T]{}
	}

	sorted := make([]Interval[T], len(items))
	for i, it := range items {
		sorted[i] = Normalize(it)
	}
	slices.SortStableFunc(sorted, func(a, b Interval[T]) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	var rows [][]span
	out := make([]Placed[T], len(sorted))
	for i, it := range sorted {
		row := firstFit(rows, it.Start, it.End)
		if row == len(rows) {
			rows = append(rows, nil)
		}
		rows[row] = append(rows[row], span{it.Start, it.End})
		out[i] = Placed[T]{Interval: it, Row: row}
	}
	return out
}

// firstFit returns the index of the first row free over [start, end),
// or len(rows) when none is.
func firstFit(rows [][]span, start, end int) int {
	for r, occupied := range rows {
		free := true
		for _, s := range occupied {
			if Overlaps(start, end, s.start, s.end) {
				free = false
				break
			}
		}
		if free {
			return r
		}
	}
	return len(rows)
}

// RowCount returns the number of rows used by placed, i.e. max(Row)+1.
func RowCount[T any](placed []Placed[T]) int {
	n := 0
	for _, p := range placed {
		n = max(n, p.Row+1)
	}
	return n
}

// Conflict describes two placed items sharing a row and a column.
type Conflict struct {
	Row  int
	A, B int // indexes into the checked slice
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("items %d and %d overlap in row %d", c.A, c.B, c.Row)
}

// Check verifies the no-overlap invariant over placed and returns the first
// violation found, or nil. Placements edited by hand (saved positions) can
// break the invariant; packed output never does.
func Check[T any](placed []Placed[T]) *Conflict {
	for i := range placed {
		a := placed[i]
		for j := i + 1; j < len(placed); j++ {
			b := placed[j]
			if a.Row == b.Row && Overlaps(a.Start, a.End, b.Start, b.End) {
				return &Conflict{Row: a.Row, A: i, B: j}
			}
		}
	}
	return nil
}
