package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/jira"
)

func (s *Server) jiraBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.JIRA.Boards(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, boards)
}

func (s *Server) jiraSprints(w http.ResponseWriter, r *http.Request) {
	sprints, err := s.JIRA.ProjectSprints(r.Context(), chi.URLParam(r, "projectKey"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sprints == nil {
		sprints = []jira.Sprint{}
	}
	writeJSON(w, http.StatusOK, sprints)
}

// jiraIssues returns the current issues of a project as board tasks.
func (s *Server) jiraIssues(w http.ResponseWriter, r *http.Request) {
	cur, err := s.JIRA.CurrentIssues(r.Context(), chi.URLParam(r, "projectKey"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sprints := cur.Sprints
	if sprints == nil {
		sprints = []jira.Sprint{}
	}
	tasks := jira.ToTasks(cur.Issues, s.Layout.Geometry().Columns)
	if tasks == nil {
		tasks = []board.Task{}
	}
	writeJSON(w, http.StatusOK, struct {
		Sprints []jira.Sprint `json:"sprints"`
		Tasks   []board.Task  `json:"tasks"`
	}{sprints, tasks})
}

// versions lists every fix version of a project, newest first.
func (s *Server) versions(w http.ResponseWriter, r *http.Request) {
	vs, err := s.JIRA.Versions(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeVersions(w, vs)
}

// versionsInRange lists the versions released between startDate and
// endDate (YYYY-MM-DD, inclusive).
func (s *Server) versionsInRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		s.writeError(w, r, badRequest("startDate and endDate are required"))
		return
	}
	start, err := board.ParseDate(q.Get("startDate"))
	if err != nil {
		s.writeError(w, r, badRequest("invalid startDate: "+q.Get("startDate")))
		return
	}
	end, err := board.ParseDate(q.Get("endDate"))
	if err != nil {
		s.writeError(w, r, badRequest("invalid endDate: "+q.Get("endDate")))
		return
	}
	vs, err := s.JIRA.VersionsInRange(r.Context(), chi.URLParam(r, "projectID"),
		start.Time, end.AddDays(1).Add(-time.Nanosecond))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeVersions(w, vs)
}

func writeVersions(w http.ResponseWriter, vs []jira.ProjectVersion) {
	if vs == nil {
		vs = []jira.ProjectVersion{}
	}
	writeJSON(w, http.StatusOK, vs)
}
