package packer

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func iv(start, end int, id string) Interval[string] {
	return Interval[string]{Start: start, End: end, Data: id}
}

func rowsByID(placed []Placed[string]) map[string]int {
	m := make(map[string]int, len(placed))
	for _, p := range placed {
		m[p.Data] = p.Row
	}
	return m
}

func TestPackScenarios(t *testing.T) {
	tests := []struct {
		name  string
		items []Interval[string]
		want  map[string]int
	}{
		{
			name:  "overlap then touch",
			items: []Interval[string]{iv(0, 2, "a"), iv(1, 3, "b"), iv(3, 5, "c")},
			want:  map[string]int{"a": 0, "b": 1, "c": 0},
		},
		{
			name:  "full width stack",
			items: []Interval[string]{iv(0, 6, "a"), iv(0, 6, "b"), iv(0, 6, "c")},
			want:  map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "interleaved",
			items: []Interval[string]{iv(0, 3, "a"), iv(4, 6, "b"), iv(1, 2, "c")},
			want:  map[string]int{"a": 0, "b": 0, "c": 1},
		},
		{
			name:  "touching share a row",
			items: []Interval[string]{iv(0, 2, "a"), iv(2, 4, "b")},
			want:  map[string]int{"a": 0, "b": 0},
		},
		{
			name:  "earlier row reused",
			items: []Interval[string]{iv(0, 4, "a"), iv(0, 2, "b"), iv(2, 4, "c"), iv(4, 6, "d")},
			want:  map[string]int{"b": 0, "a": 1, "c": 0, "d": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowsByID(Pack(tt.items))
			for id, row := range tt.want {
				if got[id] != row {
					t.Errorf("row(%s) = %d, want %d", id, got[id], row)
				}
			}
		})
	}
}

func TestPackEmpty(t *testing.T) {
	got := Pack[string](nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Pack(nil) = %v, want empty non-nil slice", got)
	}
}

func TestPackDegenerate(t *testing.T) {
	got := Pack([]Interval[string]{iv(3, 3, "x")})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Start != 3 || got[0].End != 4 || got[0].Row != 0 {
		t.Errorf("got %+v, want [3,4) row 0", got[0])
	}

	got = Pack([]Interval[string]{iv(5, 2, "y")})
	if got[0].End != 6 {
		t.Errorf("reversed interval End = %d, want 6", got[0].End)
	}
}

func TestPackAllOverlapping(t *testing.T) {
	items := []Interval[string]{iv(0, 5, "a"), iv(0, 5, "b"), iv(0, 5, "c"), iv(0, 5, "d")}
	placed := Pack(items)
	if n := RowCount(placed); n != 4 {
		t.Errorf("RowCount = %d, want 4", n)
	}
}

func TestPackTiesKeepInputOrder(t *testing.T) {
	placed := Pack([]Interval[string]{iv(1, 3, "first"), iv(1, 3, "second")})
	if placed[0].Data != "first" || placed[0].Row != 0 {
		t.Errorf("placed[0] = %+v, want first in row 0", placed[0])
	}
	if placed[1].Data != "second" || placed[1].Row != 1 {
		t.Errorf("placed[1] = %+v, want second in row 1", placed[1])
	}
}

func TestPackDoesNotModifyInput(t *testing.T) {
	items := []Interval[string]{iv(4, 4, "a"), iv(0, 1, "b")}
	orig := slices.Clone(items)
	Pack(items)
	if !slices.Equal(items, orig) {
		t.Errorf("input modified: %v, want %v", items, orig)
	}
}

func TestPackProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 200; trial++ {
		n := r.IntN(30)
		items := make([]Interval[int], n)
		for i := range items {
			start := r.IntN(12)
			items[i] = Interval[int]{Start: start, End: start + r.IntN(5), Data: i}
		}

		placed := Pack(items)

		if len(placed) != n {
			t.Fatalf("trial %d: len = %d, want %d", trial, len(placed), n)
		}
		seen := make(map[int]bool, n)
		for _, p := range placed {
			if seen[p.Data] {
				t.Fatalf("trial %d: item %d placed twice", trial, p.Data)
			}
			seen[p.Data] = true
		}
		if c := Check(placed); c != nil {
			t.Fatalf("trial %d: %v", trial, c)
		}

		// Rows are contiguous from 0.
		used := make([]bool, RowCount(placed))
		for _, p := range placed {
			used[p.Row] = true
		}
		for row, ok := range used {
			if !ok {
				t.Fatalf("trial %d: row %d unused", trial, row)
			}
		}

		// Shuffling only reorders items with identical ranges, which are
		// interchangeable, so each range keeps the same rows.
		shuffled := slices.Clone(items)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again := Pack(items)
		for i := range placed {
			if placed[i] != again[i] {
				t.Fatalf("trial %d: repeated Pack differs at %d", trial, i)
			}
		}
		want, got := rowsByRange(placed), rowsByRange(Pack(shuffled))
		if len(want) != len(got) {
			t.Fatalf("trial %d: %d ranges after shuffle, want %d", trial, len(got), len(want))
		}
		for rng, rows := range want {
			if !slices.Equal(rows, got[rng]) {
				t.Fatalf("trial %d: range %v rows %v after shuffle, want %v", trial, rng, got[rng], rows)
			}
		}
	}
}

// rowsByRange returns the sorted rows assigned to each (start, end).
func rowsByRange[T any](placed []Placed[T]) map[[2]int][]int {
	out := make(map[[2]int][]int)
	for _, p := range placed {
		k := [2]int{p.Start, p.End}
		out[k] = append(out[k], p.Row)
	}
	for _, rows := range out {
		slices.Sort(rows)
	}
	return out
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		a, b [2]int
		want bool
	}{
		{[2]int{0, 2}, [2]int{2, 4}, false},
		{[2]int{2, 4}, [2]int{0, 2}, false},
		{[2]int{0, 3}, [2]int{1, 2}, true},
		{[2]int{0, 5}, [2]int{0, 5}, true},
		{[2]int{0, 1}, [2]int{3, 4}, false},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.a[0], tt.a[1], tt.b[0], tt.b[1]); got != tt.want {
			t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheck(t *testing.T) {
	ok := []Placed[string]{
		{Interval: iv(0, 2, "a"), Row: 0},
		{Interval: iv(2, 4, "b"), Row: 0},
		{Interval: iv(1, 3, "c"), Row: 1},
	}
	if c := Check(ok); c != nil {
		t.Errorf("Check(valid) = %v, want nil", c)
	}

	bad := append(ok, Placed[string]{Interval: iv(3, 5, "d"), Row: 0})
	c := Check(bad)
	if c == nil {
		t.Fatal("Check(invalid) = nil, want conflict")
	}
	if c.Row != 0 || c.A != 1 || c.B != 3 {
		t.Errorf("conflict = %+v, want row 0 items 1 and 3", c)
	}
	if c.Error() != "items 1 and 3 overlap in row 0" {
		t.Errorf("Error() = %q", c.Error())
	}
}

func TestRowCount(t *testing.T) {
	if n := RowCount[string](nil); n != 0 {
		t.Errorf("RowCount(nil) = %d, want 0", n)
	}
}
