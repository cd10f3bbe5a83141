package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roadmap/pkg/board"
)

// positionJSON is the wire form of a saved position. Column and row fields
// are pointers so missing values can take their defaults.
type positionJSON struct {
	TaskID    string     `json:"taskId"`
	PIID      string     `json:"piId"`
	ProjectID string     `json:"projectId"`
	StartCol  *int       `json:"startCol"`
	EndCol    *int       `json:"endCol"`
	Row       *int       `json:"row"`
	Revision  string     `json:"revision,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func toPositionJSON(p board.Position) positionJSON {
	out := positionJSON{
		TaskID:    p.TaskID,
		PIID:      p.PIID,
		ProjectID: p.ProjectID,
		StartCol:  &p.StartCol,
		EndCol:    &p.EndCol,
		Row:       &p.Row,
		Revision:  p.Revision,
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = &p.UpdatedAt
	}
	return out
}

// position applies the defaults: start 0, end 1, row 0.
func (p positionJSON) position() board.Position {
	deref := func(v *int, def int) int {
		if v == nil {
			return def
		}
		return *v
	}
	return board.Position{
		TaskID:    p.TaskID,
		PIID:      p.PIID,
		ProjectID: p.ProjectID,
		StartCol:  deref(p.StartCol, 0),
		EndCol:    deref(p.EndCol, 1),
		Row:       deref(p.Row, 0),
	}
}

func (s *Server) listPositions(w http.ResponseWriter, r *http.Request) {
	ps, err := s.Store.Positions(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "piID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]positionJSON, len(ps))
	for i, p := range ps {
		out[i] = toPositionJSON(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) savePosition(w http.ResponseWriter, r *http.Request) {
	var body positionJSON
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.TaskID == "" || body.PIID == "" || body.ProjectID == "" {
		s.writeError(w, r, badRequest("taskId, piId, and projectId are required"))
		return
	}
	saved, err := s.Store.SavePosition(r.Context(), body.position())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success  bool         `json:"success"`
		Position positionJSON `json:"position"`
	}{true, toPositionJSON(saved)})
}

func (s *Server) deletePosition(w http.ResponseWriter, r *http.Request) {
	err := s.Store.DeletePosition(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "piID"), chi.URLParam(r, "taskID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
