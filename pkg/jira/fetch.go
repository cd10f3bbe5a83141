package jira

import (
	"context"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/observability"
)

// FetchOptions configures [Client.FetchBoard].
type FetchOptions struct {
	// Columns is the board width used for provisional task placement.
	Columns int
	// Releases adds the fix versions released during the PI.
	Releases bool
}

// FetchBoard builds a board file for one PI from the current issues of
// each project.
func (c *Client) FetchBoard(ctx context.Context, pi board.PI, projects []string, opts FetchOptions) (board.File, error) {
	f := board.File{PI: pi.Name, Sprints: pi.Sprints}
	start, end, _ := board.DateRange(pi.Sprints)

	for _, p := range projects {
		begin := time.Now()
		observability.Pipeline().OnFetchStart(ctx, p, pi.ID)

		cur, err := c.CurrentIssues(ctx, p)
		if err != nil {
			observability.Pipeline().OnFetchComplete(ctx, p, pi.ID, 0, time.Since(begin), err)
			return board.File{}, err
		}
		tasks := ToTasks(cur.Issues, opts.Columns)
		f.Projects = append(f.Projects, board.ProjectTasks{Project: board.ProjectKey(p), Tasks: tasks})

		if opts.Releases && !start.IsZero() {
			// Include the whole last day.
			versions, err := c.VersionsInRange(ctx, p, start.Time, end.AddDays(1).Add(-time.Nanosecond))
			if err != nil {
				observability.Pipeline().OnFetchComplete(ctx, p, pi.ID, len(tasks), time.Since(begin), err)
				return board.File{}, err
			}
			f.Releases = append(f.Releases, ToReleases(versions)...)
		}
		observability.Pipeline().OnFetchComplete(ctx, p, pi.ID, len(tasks), time.Since(begin), nil)
		c.logger.Info("fetched project", "project", p, "tasks", len(tasks), "sprints", len(cur.Sprints))
	}
	return f, nil
}
