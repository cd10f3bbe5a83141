package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:     "image/svg+xml",
	pipeline.FormatJSON:    "application/json",
	pipeline.FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatOverlap: "image/svg+xml",
	pipeline.FormatPNG:     "image/png",
	pipeline.FormatPDF:     "application/pdf",
}

// layoutOptions applies the query parameters of a layout or board request
// on top of the server defaults. It returns the single requested format.
func (s *Server) layoutOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()
	opts := s.Layout
	opts.Formats = nil
	opts.Positions = nil
	opts.Hidden = nil

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, "", err
	}
	opts.Formats = []string{format}

	if v := q.Get("mode"); v != "" {
		opts.Mode = v
	}
	if v := q.Get("columns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, "", badRequest("columns must be a positive integer")
		}
		opts.Columns = n
	}
	if q.Has("today") {
		opts.Today = q.Get("today")
	}
	if v := q.Get("projects"); v != "" {
		opts.Projects = strings.Split(v, ",")
	}
	if v := q.Get("legend"); v != "" {
		opts.Legend, _ = strconv.ParseBool(v)
	}
	if v := q.Get("refresh"); v != "" {
		opts.Refresh, _ = strconv.ParseBool(v)
	}
	return opts, format, nil
}

// layout lays out and renders a board file posted as JSON.
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	opts, format, err := s.layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var f board.File
	if err := decodeJSON(w, r, &f); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.execute(w, r, f, opts, format)
}

// board fetches a PI of one project from JIRA and lays it out with the
// saved positions and hidden tasks of that board.
func (s *Server) board(w http.ResponseWriter, r *http.Request) {
	project, piID := boardIDs(r)
	opts, format, err := s.layoutOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pi, ok := board.FindPI(board.GeneratePIs(s.Calendar), piID)
	if !ok {
		s.writeError(w, r, badRequest("unknown PI: "+piID))
		return
	}
	ctx := r.Context()

	opts.Releases = true
	f, _, err := s.Runner.Fetch(ctx, s.JIRA, pi, []string{project}, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.Store.State(ctx, project, piID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	positions, err := s.Store.Positions(ctx, project, piID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Hidden = st.HiddenJiraKeys
	opts.Positions = positions
	if q := r.URL.Query(); !q.Has("mode") && len(positions) > 0 {
		opts.Mode = board.ModeManual
	}
	s.execute(w, r, f, opts, format)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, f board.File, opts pipeline.Options, format string) {
	opts.Logger = s.Logger
	res, err := s.Runner.Execute(r.Context(), f, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Board-Hash", res.BoardHash)
	w.Header().Set("X-Cache-Layout", strconv.FormatBool(res.CacheInfo.LayoutHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// listPIs returns the PI calendar, optionally for another year.
func (s *Server) listPIs(w http.ResponseWriter, r *http.Request) {
	cal := s.Calendar
	if v := r.URL.Query().Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1970 || year > 9999 {
			s.writeError(w, r, badRequest("invalid year: "+v))
			return
		}
		cal = cal.ForYear(year)
	}
	writeJSON(w, http.StatusOK, board.GeneratePIs(cal))
}
