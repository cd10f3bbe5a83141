// Package store persists what users change on a board: saved task
// positions, per-PI state (freeze flag, hidden tickets), and the
// team's confidence index for each PI.
//
// Three backends implement [Store]:
//   - [MemoryStore]: in-process maps, for tests and throwaway servers
//   - [FileStore]: JSON documents under a directory, for the CLI
//   - [MongoStore]: MongoDB collections, for a shared API deployment
//
// Use [Open] to pick one from configuration.
package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/roadmap/pkg/board"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// HiddenTask is a ticket hidden from a PI board.
type HiddenTask struct {
	JiraKey string `json:"jira_key" bson:"jira_key"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
}

// PIState is the board state of one project and PI.
type PIState struct {
	PIID           string       `json:"pi_id" bson:"pi_id"`
	ProjectID      string       `json:"project_id" bson:"project_id"`
	IsFrozen       bool         `json:"is_frozen" bson:"is_frozen"`
	HiddenJiraKeys []string     `json:"hidden_jira_keys" bson:"hidden_jira_keys"`
	HiddenTasks    []HiddenTask `json:"hidden_tasks" bson:"hidden_tasks"`
	FrozenAt       *time.Time   `json:"frozen_at" bson:"frozen_at,omitempty"`
}

// NewPIState returns the default state: not frozen, nothing hidden.
func NewPIState(projectID, piID string) PIState {
	return PIState{
		PIID:           piID,
		ProjectID:      projectID,
		HiddenJiraKeys: []string{},
		HiddenTasks:    []HiddenTask{},
	}
}

// hide adds key once, keeping the first title unless a new one is given.
func (s *PIState) hide(key, title string) {
	if i := slices.Index(s.HiddenJiraKeys, key); i >= 0 {
		if title != "" {
			s.HiddenTasks[i].Title = title
		}
		return
	}
	s.HiddenJiraKeys = append(s.HiddenJiraKeys, key)
	s.HiddenTasks = append(s.HiddenTasks, HiddenTask{JiraKey: key, Title: title})
}

// restore removes keys; unknown keys are ignored.
func (s *PIState) restore(keys ...string) {
	drop := func(k string) bool { return slices.Contains(keys, k) }
	s.HiddenJiraKeys = slices.DeleteFunc(s.HiddenJiraKeys, drop)
	s.HiddenTasks = slices.DeleteFunc(s.HiddenTasks, func(h HiddenTask) bool { return drop(h.JiraKey) })
}

func (s *PIState) setFrozen(frozen bool, now time.Time) {
	s.IsFrozen = frozen
	if frozen {
		s.FrozenAt = &now
	} else {
		s.FrozenAt = nil
	}
}

// PositionStore saves task placements per project and PI.
type PositionStore interface {
	// Positions lists the saved positions of a project and PI, ordered by
	// task ID. An empty board yields an empty slice.
	Positions(ctx context.Context, projectID, piID string) ([]board.Position, error)

	// SavePosition inserts or replaces the position of (task, PI, project)
	// and returns it with a fresh revision and timestamp.
	SavePosition(ctx context.Context, p board.Position) (board.Position, error)

	// DeletePosition removes a position. Deleting a missing one is not an
	// error.
	DeletePosition(ctx context.Context, projectID, piID, taskID string) error
}

// StateStore saves PI state. Reading a state that was never written
// returns [NewPIState].
type StateStore interface {
	State(ctx context.Context, projectID, piID string) (PIState, error)
	SetFrozen(ctx context.Context, projectID, piID string, frozen bool) (PIState, error)
	// Hide adds a ticket to the hidden list and returns the updated list.
	Hide(ctx context.Context, projectID, piID, jiraKey, title string) ([]HiddenTask, error)
	// Restore removes tickets from the hidden list and returns what remains.
	Restore(ctx context.Context, projectID, piID string, jiraKeys ...string) ([]HiddenTask, error)
}

// Store is a complete persistence backend.
type Store interface {
	PositionStore
	StateStore
	ConfidenceStore
	Close(ctx context.Context) error
}

// ToggleFreeze flips the freeze flag of a PI and returns the new state.
func ToggleFreeze(ctx context.Context, s StateStore, projectID, piID string) (PIState, error) {
	cur, err := s.State(ctx, projectID, piID)
	if err != nil {
		return PIState{}, err
	}
	return s.SetFrozen(ctx, projectID, piID, !cur.IsFrozen)
}

// prepare validates p and stamps its revision and timestamp.
func prepare(p board.Position, now time.Time) (board.Position, error) {
	if strings.TrimSpace(p.TaskID) == "" || strings.TrimSpace(p.PIID) == "" || strings.TrimSpace(p.ProjectID) == "" {
		return p, rerrors.New(rerrors.ErrCodeInvalidInput, "taskId, piId, and projectId are required")
	}
	if err := rerrors.ValidateTaskID(p.TaskID); err != nil {
		return p, err
	}
	p.Revision = uuid.NewString()
	p.UpdatedAt = now.UTC()
	return p, nil
}

func sortPositions(ps []board.Position) {
	slices.SortFunc(ps, func(a, b board.Position) int { return strings.Compare(a.TaskID, b.TaskID) })
}

func checkIDs(projectID, piID string) error {
	if projectID == "" || piID == "" {
		return rerrors.New(rerrors.ErrCodeInvalidInput, "projectId and piId are required")
	}
	return nil
}
