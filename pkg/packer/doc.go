// Package packer assigns display rows to items laid out on a shared timeline.
//
// # Overview
//
// A roadmap board shows tasks as horizontal bars spanning a range of columns.
// When bars overlap they must be stacked into separate rows (lanes). This
// package computes that stacking with a deterministic greedy first-fit policy:
//
//  1. Items are sorted by start column, then by end column (stable).
//  2. Each item goes into the first existing row where it overlaps nothing.
//  3. A new row is opened only when no existing row can take the item.
//
// Ranges are half-open: [Start, End). Two items that merely touch
// (a.End == b.Start) do not overlap and may share a row.
//
// First-fit is not an optimal interval colouring, but it is stable as a
// viewer scans the board from left to right, and the boards it serves hold
// tens of items rather than thousands.
//
// # Usage
//
//	items := []packer.Interval[string]{
//	    {Start: 0, End: 2, Data: "login"},
//	    {Start: 1, End: 3, Data: "search"},
//	    {Start: 3, End: 5, Data: "player"},
//	}
//	for _, p := range packer.Pack(items) {
//	    fmt.Println(p.Data, p.Row)
//	}
//
// Degenerate items (End <= Start) are treated as one column wide instead of
// being rejected, so [Pack] never fails.
package packer
