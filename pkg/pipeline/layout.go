package pipeline

import (
	"slices"

	"github.com/matzehuels/roadmap/pkg/board"
)

// Prepare returns the board file that will actually be laid out: projects
// outside opts.Projects are dropped, hidden tickets are removed, and saved
// positions are applied to each project's tasks. Positions apply in manual
// mode and whenever any are supplied; chronological mode keeps their
// columns and repacks the rows. f is not modified.
func Prepare(f board.File, opts Options) board.File {
	keep := make([]board.ProjectKey, len(opts.Projects))
	for i, p := range opts.Projects {
		keep[i] = board.ProjectKey(p)
	}
	groups := board.FilterProjects(f.Projects, keep)

	out := f
	out.Projects = make([]board.ProjectTasks, len(groups))
	for i, g := range groups {
		tasks := board.HideTasks(slices.Clone(g.Tasks), opts.Hidden)
		if opts.Mode == board.ModeManual || len(opts.Positions) > 0 {
			tasks = board.ApplyPositions(tasks, positionsFor(opts.Positions, g.Project))
		}
		out.Projects[i] = board.ProjectTasks{Project: g.Project, Tasks: tasks}
	}
	return out
}

// positionsFor keeps the positions of project p; positions without a
// project apply to every project.
func positionsFor(ps []board.Position, p board.ProjectKey) []board.Position {
	var out []board.Position
	for _, pos := range ps {
		if pos.ProjectID == "" || board.ProjectKey(pos.ProjectID) == p {
			out = append(out, pos)
		}
	}
	return out
}

// ComputeLayout prepares f and builds its layout. It does no caching; see
// [Runner.Layout].
func ComputeLayout(f board.File, opts Options) (board.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return board.Layout{}, err
	}
	return buildLayout(Prepare(f, opts), opts), nil
}

func buildLayout(prepared board.File, opts Options) board.Layout {
	return board.Build(prepared, board.BuildOptions{
		Mode:     opts.Mode,
		Geometry: opts.Geometry(),
		Now:      opts.now,
	})
}
