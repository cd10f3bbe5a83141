package jira

// Named is the {"name": ...} shape JIRA uses for status, type and priority.
type Named struct {
	Name string `json:"name"`
}

// Status is an issue's workflow status.
type Status struct {
	Name           string `json:"name"`
	StatusCategory struct {
		Key string `json:"key"`
	} `json:"statusCategory"`
}

// User is an assignee.
type User struct {
	DisplayName string            `json:"displayName"`
	AvatarURLs  map[string]string `json:"avatarUrls,omitempty"`
}

// SprintRef is an entry of the sprint custom field (customfield_10020).
type SprintRef struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Version is a fix version or affected version.
type Version struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Released    bool   `json:"released,omitempty"`
}

// TimeTracking holds an issue's estimate.
type TimeTracking struct {
	OriginalEstimate        string `json:"originalEstimate,omitempty"`
	OriginalEstimateSeconds int    `json:"originalEstimateSeconds,omitempty"`
}

// Fields are the issue fields requested by [IssueFields].
type Fields struct {
	Summary      string        `json:"summary"`
	Status       Status        `json:"status"`
	IssueType    Named         `json:"issuetype"`
	Priority     *Named        `json:"priority,omitempty"`
	Assignee     *User         `json:"assignee,omitempty"`
	StoryPoints  float64       `json:"customfield_10016,omitempty"`
	Sprints      []SprintRef   `json:"customfield_10020,omitempty"`
	FixVersions  []Version     `json:"fixVersions,omitempty"`
	Versions     []Version     `json:"versions,omitempty"`
	TimeTracking *TimeTracking `json:"timetracking,omitempty"`
}

// Issue is a JIRA issue.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// SprintName returns the name of the issue's first sprint, or "".
func (i Issue) SprintName() string {
	if len(i.Fields.Sprints) == 0 {
		return ""
	}
	return i.Fields.Sprints[0].Name
}

// Board is an Agile board.
type Board struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Sprint is an Agile sprint.
type Sprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// VersionIssue is an issue listed under a [ProjectVersion].
type VersionIssue struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// ProjectVersion is a fix version with the stories shipped in it.
type ProjectVersion struct {
	Version
	IssueCount int            `json:"issueCount"`
	Issues     []VersionIssue `json:"issues"`
}

// IssueFields is the field list requested for board issues.
const IssueFields = "summary,status,issuetype,priority,assignee,customfield_10016,customfield_10020,fixVersions,versions,timetracking"

// listResponse is the paged envelope of Agile endpoints.
type listResponse[T any] struct {
	Values []T `json:"values"`
}

// issuesResponse is the envelope of search and sprint issue endpoints.
type issuesResponse struct {
	Issues []Issue `json:"issues"`
}
