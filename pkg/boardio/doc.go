// Package boardio reads and writes board files and computed layouts.
//
// # Board files
//
// A board file describes one PI: its sprints, the tasks of each project,
// and optional releases. Three encodings are accepted, chosen by extension:
//
//	.json          encoding/json
//	.toml          github.com/BurntSushi/toml
//	.yaml, .yml    gopkg.in/yaml.v3
//
// The YAML form of a small board:
//
//	pi: PI 1 2026
//	sprints:
//	  - {id: pi1-s1, name: S1 PI 1 2026, start_date: 2026-01-19, end_date: 2026-02-01}
//	projects:
//	  - project: HEL
//	    tasks:
//	      - {id: t1, title: Login, start_col: 0, end_col: 2}
//
// In TOML, dates must be quoted strings.
//
// Use [ImportBoard] to read from a path or [ReadBoard] with an explicit
// [Format]. Both run [Validate].
//
// # Layouts
//
// [WriteLayout] and [ReadLayout] round-trip a [board.Layout] as indented
// JSON. [Sniff] tells a layout document from a board document so commands
// can accept either.
package boardio
