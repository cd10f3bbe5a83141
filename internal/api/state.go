package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/store"
)

type hiddenTaskJSON struct {
	JiraKey string `json:"jiraKey"`
	Title   string `json:"title,omitempty"`
}

type stateJSON struct {
	PIID           string           `json:"piId"`
	ProjectID      string           `json:"projectId"`
	IsFrozen       bool             `json:"isFrozen"`
	HiddenJiraKeys []string         `json:"hiddenJiraKeys"`
	HiddenTasks    []hiddenTaskJSON `json:"hiddenTasks"`
	FrozenAt       *time.Time       `json:"frozenAt"`
}

type hiddenTasksJSON struct {
	HiddenTasks []hiddenTaskJSON `json:"hiddenTasks"`
}

func toHiddenJSON(hs []store.HiddenTask) []hiddenTaskJSON {
	out := make([]hiddenTaskJSON, len(hs))
	for i, h := range hs {
		out[i] = hiddenTaskJSON{JiraKey: h.JiraKey, Title: h.Title}
	}
	return out
}

func toStateJSON(st store.PIState) stateJSON {
	keys := st.HiddenJiraKeys
	if keys == nil {
		keys = []string{}
	}
	return stateJSON{
		PIID:           st.PIID,
		ProjectID:      st.ProjectID,
		IsFrozen:       st.IsFrozen,
		HiddenJiraKeys: keys,
		HiddenTasks:    toHiddenJSON(st.HiddenTasks),
		FrozenAt:       st.FrozenAt,
	}
}

func boardIDs(r *http.Request) (project, pi string) {
	return chi.URLParam(r, "projectID"), chi.URLParam(r, "piID")
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	st, err := s.Store.State(r.Context(), project, pi)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateJSON(st))
}

func (s *Server) toggleFreeze(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	st, err := store.ToggleFreeze(r.Context(), s.Store, project, pi)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("toggled freeze", "project", project, "pi", pi, "frozen", st.IsFrozen)
	writeJSON(w, http.StatusOK, toStateJSON(st))
}

func (s *Server) hide(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	var body struct {
		JiraKey string `json:"jiraKey"`
		Title   string `json:"title"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.JiraKey == "" {
		s.writeError(w, r, badRequest("jiraKey is required"))
		return
	}
	hidden, err := s.Store.Hide(r.Context(), project, pi, body.JiraKey, body.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hiddenTasksJSON{toHiddenJSON(hidden)})
}

func (s *Server) restoreOne(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	hidden, err := s.Store.Restore(r.Context(), project, pi, chi.URLParam(r, "jiraKey"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hiddenTasksJSON{toHiddenJSON(hidden)})
}

func (s *Server) restoreMany(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	var body struct {
		JiraKeys *[]string `json:"jiraKeys"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.JiraKeys == nil {
		s.writeError(w, r, badRequest("jiraKeys array is required"))
		return
	}
	hidden, err := s.Store.Restore(r.Context(), project, pi, *body.JiraKeys...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hiddenTasksJSON{toHiddenJSON(hidden)})
}
