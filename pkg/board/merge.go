package board

// Merge flattens per-project task lists into one list, stamping each task
// with the project it came from. Group order and task order are preserved.
func Merge(groups []ProjectTasks) []Task {
	n := 0
	for _, g := range groups {
		n += len(g.Tasks)
	}
	out := make([]Task, 0, n)
	for _, g := range groups {
		for _, t := range g.Tasks {
			t.ProjectID = g.Project
			out = append(out, t)
		}
	}
	return out
}

// Normalize fills in missing columns: start defaults to 0 and end to start+1.
// Columns already present are kept as-is, even when end <= start; the packer
// widens those to a single column.
func Normalize(t Task) Task {
	return t.WithColumns(t.Start(), t.End())
}

// ApplyPositions overlays saved positions onto tasks by task ID.
//
// Tasks without a saved position get a staggered default placement so that a
// fresh board is readable: three two-column tasks per row.
func ApplyPositions(tasks []Task, positions []Position) []Task {
	byID := make(map[string]Position, len(positions))
	for _, p := range positions {
		byID[p.TaskID] = p
	}

	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if p, ok := byID[t.ID]; ok {
			t = t.WithColumns(p.StartCol, p.EndCol)
			t.Row = p.Row
		} else {
			col := (i % 3) * 2
			t = t.WithColumns(col, col+2)
			t.Row = i / 3
		}
		out[i] = t
	}
	return out
}

// HideTasks drops tasks whose JIRA key is in hidden.
func HideTasks(tasks []Task, hidden []string) []Task {
	if len(hidden) == 0 {
		return tasks
	}
	skip := make(map[string]struct{}, len(hidden))
	for _, k := range hidden {
		skip[k] = struct{}{}
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := skip[t.JiraKey]; ok && t.JiraKey != "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterProjects keeps only the groups whose project is in keep.
// An empty keep list returns groups unchanged.
func FilterProjects(groups []ProjectTasks, keep []ProjectKey) []ProjectTasks {
	if len(keep) == 0 {
		return groups
	}
	want := make(map[ProjectKey]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	var out []ProjectTasks
	for _, g := range groups {
		if want[g.Project] {
			out = append(out, g)
		}
	}
	return out
}
