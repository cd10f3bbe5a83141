package jira

import (
	"strconv"
	"strings"
)

// ExcludedIssueTypes are never shown on a board.
var ExcludedIssueTypes = []string{"Test Set", "Test", "Test Execution", "Anomalie", "Bug"}

// JQL builds a JQL query clause by clause. Clauses are joined with AND.
//
//	jira.NewJQL().Project("HEL").And("sprint in openSprints()").OrderBy("rank")
type JQL struct {
	clauses []string
	order   string
}

// NewJQL returns an empty query.
func NewJQL() *JQL { return &JQL{} }

// Project restricts the query to a project key.
func (q *JQL) Project(key string) *JQL {
	return q.And("project = " + key)
}

// And appends a raw clause.
func (q *JQL) And(clause string) *JQL {
	if clause != "" {
		q.clauses = append(q.clauses, clause)
	}
	return q
}

// In appends `field in (v1, v2)`, quoting values only when needed.
func (q *JQL) In(field string, values ...string) *JQL {
	return q.And(field + " in (" + quoteList(values, false) + ")")
}

// NotIn appends `field NOT IN ("v1", "v2")`.
func (q *JQL) NotIn(field string, values ...string) *JQL {
	return q.And(field + " NOT IN (" + quoteList(values, true) + ")")
}

// OrderBy sets the ORDER BY clause.
func (q *JQL) OrderBy(order string) *JQL {
	q.order = order
	return q
}

// String renders the query.
func (q *JQL) String() string {
	s := strings.Join(q.clauses, " AND ")
	if q.order != "" {
		if s != "" {
			s += " "
		}
		s += "ORDER BY " + q.order
	}
	return s
}

func quoteList(values []string, always bool) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		if always {
			quoted[i] = strconv.Quote(v)
		} else {
			quoted[i] = quote(v)
		}
	}
	return strings.Join(quoted, ", ")
}

// quote wraps values containing anything but letters and digits in double
// quotes.
func quote(v string) string {
	for _, r := range v {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127) {
			return strconv.Quote(v)
		}
	}
	return v
}

// OpenSprintsJQL selects the unfinished board issues of a project's open
// sprints.
func OpenSprintsJQL(project string) string {
	return NewJQL().
		Project(project).
		And("sprint in openSprints()").
		And("statusCategory != Done").
		NotIn("issuetype", ExcludedIssueTypes...).
		OrderBy("rank").
		String()
}

// AnySprintJQL selects the unfinished board issues of a project that sit in
// any sprint. Special sprints are filtered from its result.
func AnySprintJQL(project string) string {
	return NewJQL().
		Project(project).
		And("sprint is not EMPTY").
		And("statusCategory != Done").
		NotIn("issuetype", ExcludedIssueTypes...).
		OrderBy("rank").
		String()
}

// VersionsJQL selects the stories of a project that carry a fix version.
func VersionsJQL(project string) string {
	return NewJQL().
		Project(project).
		And("fixVersion IS NOT EMPTY").
		In("issuetype", "Story", "Récit").
		OrderBy("fixVersion DESC").
		String()
}
