package jira

import (
	"math"
	"strings"

	"github.com/matzehuels/roadmap/pkg/board"
)

// MapStatus converts a JIRA status name (English or French) to a board status.
func MapStatus(status string) board.Status {
	s := strings.ToLower(status)
	switch {
	case containsAny(s, "done", "terminé", "fermé"):
		return board.StatusDone
	case containsAny(s, "progress", "cours", "review"):
		return board.StatusInProgress
	case containsAny(s, "block", "bloqu"):
		return board.StatusBlocked
	default:
		return board.StatusTodo
	}
}

// MapType converts a JIRA issue type name to a board task type.
func MapType(issueType string) board.TaskType {
	s := strings.ToLower(issueType)
	switch {
	case strings.Contains(s, "bug"):
		return board.TypeBug
	case containsAny(s, "tech", "spike", "debt"):
		return board.TypeTech
	case containsAny(s, "epic", "milestone"):
		return board.TypeMilestone
	default:
		return board.TypeFeature
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// SecondsToDays converts a time estimate to 8-hour days rounded to one
// decimal. It returns nil for a zero estimate.
func SecondsToDays(seconds int) *float64 {
	if seconds <= 0 {
		return nil
	}
	d := math.Round(float64(seconds)/(8*60*60)*10) / 10
	return &d
}

// ToTasks converts issues to board tasks.
//
// Each task gets a provisional one-column placement, cycling through the
// board columns row by row, until a position is saved for it.
func ToTasks(issues []Issue, columns int) []board.Task {
	if columns <= 0 {
		columns = board.DefaultColumns
	}
	out := make([]board.Task, len(issues))
	for i, is := range issues {
		f := is.Fields
		t := board.Task{
			ID:          is.Key,
			JiraKey:     is.Key,
			Title:       is.Key + " - " + f.Summary,
			Type:        MapType(f.IssueType.Name),
			Status:      MapStatus(f.Status.Name),
			JiraStatus:  f.Status.Name,
			StoryPoints: f.StoryPoints,
			Priority:    "Medium",
			Row:         i / columns,
		}
		if f.Priority != nil && f.Priority.Name != "" {
			t.Priority = f.Priority.Name
		}
		if f.Assignee != nil {
			t.Assignee = f.Assignee.DisplayName
		}
		if len(f.FixVersions) > 0 {
			t.FixVersion = f.FixVersions[0].Name
		}
		if f.TimeTracking != nil {
			t.EstimatedDays = SecondsToDays(f.TimeTracking.OriginalEstimateSeconds)
		}
		col := i % columns
		out[i] = t.WithColumns(col, col+1)
	}
	return out
}
