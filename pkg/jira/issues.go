package jira

import (
	"context"
	"slices"
	"strings"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// SpecialSprintKeywords mark sprints that hold work not yet scheduled.
// Issues in such sprints are shown on the board alongside the active sprint.
var SpecialSprintKeywords = []string{"refinement", "cadrage", "a planifier", "en cadrage"}

var (
	excludedTypes    = []string{"test set", "test", "test execution", "anomalie", "bug"}
	excludedStatuses = []string{"abandonné", "abandonnée", "abandoned"}
)

// CurrentIssues is the board's view of a project.
type CurrentIssues struct {
	// Sprints are the board's active sprints; empty when the JQL fallback
	// was used.
	Sprints []Sprint
	Issues  []Issue
}

// CurrentIssues returns the issues of the project's active sprints merged
// with those sitting in special sprints.
//
// The active sprints come from the board named after the project. When
// that board is missing, has no active sprint or does not support sprints
// (Kanban), the open-sprints JQL is used instead.
func (c *Client) CurrentIssues(ctx context.Context, project string) (CurrentIssues, error) {
	if err := rerrors.ValidateProjectKey(project); err != nil {
		return CurrentIssues{}, err
	}

	special, err := c.SpecialSprintIssues(ctx, project)
	if err != nil {
		return CurrentIssues{}, err
	}
	c.logger.Debug("special sprint issues", "project", project, "count", len(special))

	if sprints, issues, ok := c.activeSprintIssues(ctx, project); ok {
		return CurrentIssues{
			Sprints: sprints,
			Issues:  FilterExcluded(MergeIssues(issues, special)),
		}, nil
	}

	c.logger.Debug("using JQL search", "project", project)
	open, err := c.Search(ctx, OpenSprintsJQL(project))
	if err != nil {
		return CurrentIssues{}, err
	}
	return CurrentIssues{Issues: FilterExcluded(MergeIssues(open, special))}, nil
}

// activeSprintIssues reports false when the board route cannot be used.
func (c *Client) activeSprintIssues(ctx context.Context, project string) ([]Sprint, []Issue, bool) {
	b, err := c.BoardByName(ctx, project)
	if err != nil {
		return nil, nil, false
	}
	sprints, err := c.ActiveSprints(ctx, b.ID)
	if err != nil {
		c.logger.Debug("board has no sprints", "project", project, "board", b.ID, "err", err)
		return nil, nil, false
	}
	if len(sprints) == 0 {
		return nil, nil, false
	}
	var issues []Issue
	for _, s := range sprints {
		si, err := c.SprintIssues(ctx, s.ID)
		if err != nil {
			c.logger.Debug("sprint issues failed", "sprint", s.ID, "err", err)
			return nil, nil, false
		}
		issues = append(issues, si...)
	}
	return sprints, issues, true
}

// SpecialSprintIssues returns the project's unfinished issues whose first
// sprint name contains one of [SpecialSprintKeywords].
func (c *Client) SpecialSprintIssues(ctx context.Context, project string) ([]Issue, error) {
	all, err := c.Search(ctx, AnySprintJQL(project))
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(i Issue) bool { return !InSpecialSprint(i) }), nil
}

// InSpecialSprint reports whether the issue's first sprint is a special one.
func InSpecialSprint(i Issue) bool {
	name := strings.ToLower(i.SprintName())
	if name == "" {
		return false
	}
	for _, kw := range SpecialSprintKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// MergeIssues concatenates lists, keeping the first occurrence of each key.
func MergeIssues(lists ...[]Issue) []Issue {
	seen := make(map[string]bool)
	var out []Issue
	for _, l := range lists {
		for _, i := range l {
			if seen[i.Key] {
				continue
			}
			seen[i.Key] = true
			out = append(out, i)
		}
	}
	return out
}

// Excluded reports whether an issue is kept off the board: test and bug
// types, "Test set" summaries, and abandoned statuses.
func Excluded(i Issue) bool {
	typ := strings.ToLower(i.Fields.IssueType.Name)
	if slices.Contains(excludedTypes, typ) {
		return true
	}
	if strings.HasPrefix(strings.ToLower(i.Fields.Summary), "test set") {
		return true
	}
	return slices.Contains(excludedStatuses, strings.ToLower(i.Fields.Status.Name))
}

// FilterExcluded drops [Excluded] issues, preserving order.
func FilterExcluded(issues []Issue) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, i := range issues {
		if !Excluded(i) {
			out = append(out, i)
		}
	}
	return out
}
