// Package pkg provides the core libraries for roadmap, a delivery board
// layout engine.
//
// # Overview
//
// Roadmap takes the tasks of a program increment (PI), packs them into
// non-overlapping rows on a sprint timeline, and renders the result. The
// pkg directory is organized into three areas:
//
//  1. Domain logic ([board], [packer], [render])
//  2. Infrastructure ([cache], [store], [httputil], [observability], [errors])
//  3. Orchestration and I/O ([pipeline], [boardio], [jira])
//
// # Architecture
//
// The typical data flow:
//
//	JIRA sprints / board file (JSON, TOML, YAML)
//	         ↓
//	    [jira] or [boardio] (build a board.File)
//	         ↓
//	    [board] + [packer] (merge, hide, position, pack rows)
//	         ↓
//	    [render] (SVG, JSON, DOT, overlap SVG, PNG, PDF)
//
// [pipeline] runs these steps with caching and is shared by the CLI and the
// HTTP API, so both produce identical output for identical input.
//
// # Quick Start
//
//	f, _ := boardio.ImportBoard("pi1.yaml")
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Execute(ctx, f, pipeline.Options{Formats: []string{"svg"}})
//	os.WriteFile("pi1.svg", res.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [packer] - First-fit interval packing and conflict detection. Generic over
// the payload, independent of boards.
//
// [board] - Tasks, sprints, PIs, the PI calendar, geometry, and [board.Build],
// which computes a complete layout in chronological or manual mode.
//
// [render] - Output formats for a computed layout, plus project colours and
// JIRA status labels.
//
// [pipeline] - Layout and render with option validation and two-level
// caching (layout, then artifacts).
//
// [jira] - JIRA Cloud client: agile boards, sprints, issues, and release
// versions, with HTTP response caching.
//
// [store] - Saved task positions, per-PI state (freeze, hidden tasks), and
// the confidence index, with memory, file, and MongoDB backends.
//
// [cache] - Content-addressed cache with file, Redis, and null backends.
//
// [boardio] - Board and layout file import/export.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/packer/...   # Specific package
//	go test -run Example ./... # Examples only
//
// [board]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/board
// [packer]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/packer
// [render]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/pipeline
// [boardio]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/boardio
// [jira]: https://pkg.go.dev/github.com/matzehuels/roadmap/pkg/jira
package pkg
