package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/store"
)

type confidenceItemJSON struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type confidenceJSON struct {
	PIID         string               `json:"piId"`
	ProjectID    string               `json:"projectId"`
	Score        float64              `json:"score"`
	Questions    []confidenceItemJSON `json:"questions"`
	Improvements []confidenceItemJSON `json:"improvements"`
}

func toItemsJSON(items []store.ConfidenceItem) []confidenceItemJSON {
	out := make([]confidenceItemJSON, len(items))
	for i, it := range items {
		out[i] = confidenceItemJSON{ID: it.ID, Label: it.Label}
	}
	return out
}

type labelBody struct {
	Label string `json:"label"`
}

func (s *Server) getConfidence(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	c, err := s.Store.Confidence(r.Context(), project, pi)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confidenceJSON{
		PIID:         c.PIID,
		ProjectID:    c.ProjectID,
		Score:        c.Score,
		Questions:    toItemsJSON(c.Questions),
		Improvements: toItemsJSON(c.Improvements),
	})
}

func (s *Server) setConfidenceScore(w http.ResponseWriter, r *http.Request) {
	project, pi := boardIDs(r)
	var body struct {
		Score *float64 `json:"score"`
	}
	if err := decodeJSON(w, r, &body); err != nil || body.Score == nil {
		s.writeError(w, r, badRequest("score is required"))
		return
	}
	if err := s.Store.SetConfidenceScore(r.Context(), project, pi, *body.Score); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Logger.Info("set confidence", "project", project, "pi", pi, "score", *body.Score)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) addConfidenceItem(kind store.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, pi := boardIDs(r)
		var body labelBody
		if err := decodeJSON(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
		item, err := s.Store.AddConfidenceItem(r.Context(), project, pi, kind, body.Label)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, confidenceItemJSON{ID: item.ID, Label: item.Label})
	}
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}

func (s *Server) updateConfidenceItem(kind store.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var body labelBody
		if err := decodeJSON(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.Store.UpdateConfidenceItem(r.Context(), kind, id, body.Label); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) deleteConfidenceItem(kind store.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := itemID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.Store.DeleteConfidenceItem(r.Context(), kind, id); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
