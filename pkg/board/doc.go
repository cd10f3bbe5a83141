// Package board models a delivery roadmap board and computes its layout.
//
// A board shows the tasks of one or more projects over the sprints of a
// program increment (PI). Each sprint spans two columns, so a standard
// three-sprint PI has six. Tasks are horizontal bars over a column range;
// overlapping bars are stacked into rows.
//
// # Pipeline
//
// The layout of a board file is computed in a few pure steps:
//
//  1. [Merge] flattens per-project task lists, stamping each task's project.
//  2. [Normalize] fills in missing columns (start 0, end start+1).
//  3. [Chronological] packs tasks into rows with [packer.Pack], or
//     [ModeManual] keeps the rows users saved (see [ApplyPositions]).
//  4. [Geometry.Place] converts columns and rows to percentage offsets and
//     pixel tops for the renderer.
//
// [Build] runs all of them and adds today and release markers.
//
// # Calendar
//
// [GeneratePIs] produces the year's PIs from a start date; [ColumnAt]
// converts a date into a fractional column inside a PI.
package board
