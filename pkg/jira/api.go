package jira

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Boards lists the Agile boards visible to the user.
func (c *Client) Boards(ctx context.Context) ([]Board, error) {
	var resp listResponse[Board]
	if err := c.get(ctx, "/rest/agile/1.0/board", &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// BoardByName returns the first board whose name matches name.
// It returns [ErrNotFound] when there is none.
func (c *Client) BoardByName(ctx context.Context, name string) (Board, error) {
	var resp listResponse[Board]
	if err := c.get(ctx, "/rest/agile/1.0/board?"+query("name", name), &resp); err != nil {
		return Board{}, err
	}
	if len(resp.Values) == 0 {
		return Board{}, fmt.Errorf("board %q: %w", name, ErrNotFound)
	}
	return resp.Values[0], nil
}

// ActiveSprints lists the active sprints of a Scrum board.
func (c *Client) ActiveSprints(ctx context.Context, boardID int) ([]Sprint, error) {
	return c.sprints(ctx, boardID, "active")
}

// Sprints lists the active and future sprints of a Scrum board.
func (c *Client) Sprints(ctx context.Context, boardID int) ([]Sprint, error) {
	return c.sprints(ctx, boardID, "active,future")
}

func (c *Client) sprints(ctx context.Context, boardID int, state string) ([]Sprint, error) {
	var resp listResponse[Sprint]
	path := "/rest/agile/1.0/board/" + strconv.Itoa(boardID) + "/sprint?state=" + state
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// ProjectSprints lists the active and future sprints of the board named
// after project.
func (c *Client) ProjectSprints(ctx context.Context, project string) ([]Sprint, error) {
	b, err := c.BoardByName(ctx, project)
	if err != nil {
		return nil, err
	}
	return c.Sprints(ctx, b.ID)
}

// SprintIssues lists the issues of a sprint with [IssueFields].
func (c *Client) SprintIssues(ctx context.Context, sprintID int) ([]Issue, error) {
	var resp issuesResponse
	path := "/rest/agile/1.0/sprint/" + strconv.Itoa(sprintID) + "/issue?" + query("fields", IssueFields)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

// Search runs a JQL query and returns up to the configured max results,
// with [IssueFields].
func (c *Client) Search(ctx context.Context, jql string) ([]Issue, error) {
	return c.search(ctx, jql, IssueFields, c.maxResults)
}

func (c *Client) search(ctx context.Context, jql, fields string, maxResults int) ([]Issue, error) {
	v := url.Values{}
	v.Set("jql", jql)
	v.Set("fields", fields)
	v.Set("maxResults", strconv.Itoa(maxResults))
	var resp issuesResponse
	if err := c.get(ctx, "/rest/api/3/search/jql?"+v.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}
