package board

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// ProjectKey identifies a delivery project (a JIRA project key such as "TVSMART").
type ProjectKey string

// TaskType is the kind of work a task represents.
type TaskType string

const (
	TypeFeature   TaskType = "feature"
	TypeTech      TaskType = "tech"
	TypeBug       TaskType = "bug"
	TypeMilestone TaskType = "milestone"
	TypeAPI       TaskType = "api"
	TypePlayer    TaskType = "player"
)

// Status is the board-level workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Task is a single bar on the board.
//
// StartCol and EndCol are optional: a task fetched from JIRA has no columns
// until a position is saved for it. Use [Normalize] before laying out.
type Task struct {
	ID            string     `json:"id" yaml:"id" toml:"id"`
	Title         string     `json:"title" yaml:"title" toml:"title"`
	Type          TaskType   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Status        Status     `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`
	StartCol      *int       `json:"start_col,omitempty" yaml:"start_col,omitempty" toml:"start_col,omitempty"`
	EndCol        *int       `json:"end_col,omitempty" yaml:"end_col,omitempty" toml:"end_col,omitempty"`
	Row           int        `json:"row" yaml:"row" toml:"row"`
	JiraKey       string     `json:"jira_key,omitempty" yaml:"jira_key,omitempty" toml:"jira_key,omitempty"`
	JiraStatus    string     `json:"jira_status,omitempty" yaml:"jira_status,omitempty" toml:"jira_status,omitempty"`
	StoryPoints   float64    `json:"story_points,omitempty" yaml:"story_points,omitempty" toml:"story_points,omitempty"`
	EstimatedDays *float64   `json:"estimated_days,omitempty" yaml:"estimated_days,omitempty" toml:"estimated_days,omitempty"`
	Assignee      string     `json:"assignee,omitempty" yaml:"assignee,omitempty" toml:"assignee,omitempty"`
	Priority      string     `json:"priority,omitempty" yaml:"priority,omitempty" toml:"priority,omitempty"`
	FixVersion    string     `json:"fix_version,omitempty" yaml:"fix_version,omitempty" toml:"fix_version,omitempty"`
	ProjectID     ProjectKey `json:"project_id,omitempty" yaml:"project_id,omitempty" toml:"project_id,omitempty"`
}

// Start returns the start column, defaulting to 0.
func (t Task) Start() int {
	if t.StartCol == nil {
		return 0
	}
	return *t.StartCol
}

// End returns the end column, defaulting to Start()+1.
func (t Task) End() int {
	if t.EndCol == nil {
		return t.Start() + 1
	}
	return *t.EndCol
}

// WithColumns returns a copy of t spanning [start, end).
func (t Task) WithColumns(start, end int) Task {
	t.StartCol = &start
	t.EndCol = &end
	return t
}

var ticketPrefixRe = regexp.MustCompile(`^[A-Z]+-\d+\s*-\s*`)

// CleanTitle strips a leading ticket reference ("TVSMART-1234 - Title" -> "Title").
func CleanTitle(title string) string {
	return ticketPrefixRe.ReplaceAllString(title, "")
}

// ProjectTasks is the task list of one project, as supplied by a source.
type ProjectTasks struct {
	Project ProjectKey `json:"project" yaml:"project" toml:"project"`
	Tasks   []Task     `json:"tasks" yaml:"tasks" toml:"tasks"`
}

// Sprint is one iteration of a PI.
type Sprint struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Start Date   `json:"start_date" yaml:"start_date" toml:"start_date"`
	End   Date   `json:"end_date" yaml:"end_date" toml:"end_date"`
}

// PI is a program increment: a fixed run of sprints.
type PI struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Sprints []Sprint `json:"sprints"`
}

// ReleaseIssue is a ticket shipped in a release.
type ReleaseIssue struct {
	Key     string `json:"key" yaml:"key" toml:"key"`
	Summary string `json:"summary" yaml:"summary" toml:"summary"`
}

// Release is a production deployment ("MEP") shown as a marker.
// Date is free text: "YYYY-MM-DD", or "TBD" when unscheduled.
type Release struct {
	ID      string         `json:"id" yaml:"id" toml:"id"`
	Version string         `json:"version" yaml:"version" toml:"version"`
	Date    string         `json:"date" yaml:"date" toml:"date"`
	Issues  []ReleaseIssue `json:"issues,omitempty" yaml:"issues,omitempty" toml:"issues,omitempty"`
}

// Position is a task placement saved by a user for one project and PI.
type Position struct {
	TaskID    string    `json:"task_id" bson:"task_id"`
	PIID      string    `json:"pi_id" bson:"pi_id"`
	ProjectID string    `json:"project_id" bson:"project_id"`
	StartCol  int       `json:"start_col" bson:"start_col"`
	EndCol    int       `json:"end_col" bson:"end_col"`
	Row       int       `json:"row" bson:"row_index"`
	Revision  string    `json:"revision,omitempty" bson:"revision,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" bson:"updated_at"`
}

// File is the on-disk description of a board: its PI, sprints, and the
// tasks of every project shown on it.
type File struct {
	PI       string         `json:"pi,omitempty" yaml:"pi,omitempty" toml:"pi,omitempty"`
	Sprints  []Sprint       `json:"sprints" yaml:"sprints" toml:"sprints"`
	Projects []ProjectTasks `json:"projects" yaml:"projects" toml:"projects"`
	Releases []Release      `json:"releases,omitempty" yaml:"releases,omitempty" toml:"releases,omitempty"`
}

// TaskCount returns the number of tasks across all projects.
func (f File) TaskCount() int {
	n := 0
	for _, p := range f.Projects {
		n += len(p.Tasks)
	}
	return n
}

// =============================================================================
// Date
// =============================================================================

// DateLayout is the calendar date format used in board files.
const DateLayout = "2006-01-02"

// Date is a calendar day (UTC midnight) encoded as "YYYY-MM-DD".
type Date struct{ time.Time }

// NewDate returns the date of y-m-d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD", falling back to RFC 3339.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{t.UTC()}, nil
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

// String formats d as "YYYY-MM-DD", or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
