package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/jira"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(nil, nil, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d (body %s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/health"} {
		resp := do(t, srv, http.MethodGet, path, "")
		expectStatus(t, resp, http.StatusOK)
		if got := decode[map[string]string](t, resp); got["status"] != "ok" {
			t.Errorf("%s: status = %q", path, got["status"])
		}
	}
}

func TestRequestID(t *testing.T) {
	_, srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/healthz", "")
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("generated request ID %q: %v", resp.Header.Get(RequestIDHeader), err)
	}

	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}
}

func TestPositions(t *testing.T) {
	_, srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/positions", `{"taskId":"HEL-1","piId":"pi1"}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if got := decode[errorBody](t, resp); got.Error != "taskId, piId, and projectId are required" {
		t.Errorf("error = %q", got.Error)
	}

	resp = do(t, srv, http.MethodPost, "/api/positions", "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodPost, "/api/positions", `{"taskId":"HEL 1","piId":"pi1","projectId":"HEL"}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if got := decode[errorBody](t, resp); got.Code != "INVALID_TASK" {
		t.Errorf("code = %q, want INVALID_TASK", got.Code)
	}

	resp = do(t, srv, http.MethodPost, "/api/positions", `{"taskId":"HEL-1","piId":"pi1","projectId":"HEL"}`)
	expectStatus(t, resp, http.StatusOK)
	saved := decode[struct {
		Success  bool         `json:"success"`
		Position positionJSON `json:"position"`
	}](t, resp)
	if !saved.Success || saved.Position.Revision == "" {
		t.Errorf("save response = %+v", saved)
	}

	resp = do(t, srv, http.MethodPost, "/api/positions", `{"taskId":"HEL-2","piId":"pi1","projectId":"HEL","startCol":2,"endCol":5,"row":3}`)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/api/positions/HEL/pi1", "")
	expectStatus(t, resp, http.StatusOK)
	got := decode[[]positionJSON](t, resp)
	if len(got) != 2 {
		t.Fatalf("got %d positions, want 2", len(got))
	}
	if *got[0].StartCol != 0 || *got[0].EndCol != 1 || *got[0].Row != 0 {
		t.Errorf("defaults = %d,%d,%d, want 0,1,0", *got[0].StartCol, *got[0].EndCol, *got[0].Row)
	}
	if *got[1].StartCol != 2 || *got[1].EndCol != 5 || *got[1].Row != 3 {
		t.Errorf("HEL-2 = %d,%d,%d", *got[1].StartCol, *got[1].EndCol, *got[1].Row)
	}

	resp = do(t, srv, http.MethodDelete, "/api/positions/HEL/pi1/HEL-1", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]bool](t, resp); !got["success"] {
		t.Errorf("delete response = %v", got)
	}

	resp = do(t, srv, http.MethodGet, "/api/positions/HEL/pi1", "")
	if got := decode[[]positionJSON](t, resp); len(got) != 1 || got[0].TaskID != "HEL-2" {
		t.Errorf("after delete = %+v", got)
	}

	resp = do(t, srv, http.MethodGet, "/api/positions/OTHER/pi1", "")
	if got := decode[[]positionJSON](t, resp); got == nil || len(got) != 0 {
		t.Errorf("empty board = %#v, want []", got)
	}
}

func TestFreezeToggle(t *testing.T) {
	_, srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/pi-state/HEL/pi1", "")
	expectStatus(t, resp, http.StatusOK)
	st := decode[stateJSON](t, resp)
	if st.IsFrozen || st.FrozenAt != nil || st.HiddenJiraKeys == nil {
		t.Errorf("default state = %+v", st)
	}

	resp = do(t, srv, http.MethodPut, "/api/pi-state/HEL/pi1/freeze", "")
	expectStatus(t, resp, http.StatusOK)
	if st := decode[stateJSON](t, resp); !st.IsFrozen || st.FrozenAt == nil {
		t.Errorf("after first toggle = %+v, want frozen", st)
	}

	resp = do(t, srv, http.MethodPost, "/api/pi-state/HEL/pi1/freeze", "")
	expectStatus(t, resp, http.StatusOK)
	if st := decode[stateJSON](t, resp); st.IsFrozen || st.FrozenAt != nil {
		t.Errorf("after second toggle = %+v, want unfrozen", st)
	}
}

func TestHideRestore(t *testing.T) {
	_, srv := newTestServer(t)
	base := "/api/pi-state/HEL/pi1"

	resp := do(t, srv, http.MethodPost, base+"/hide", `{"title":"no key"}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if got := decode[errorBody](t, resp); got.Error != "jiraKey is required" {
		t.Errorf("error = %q", got.Error)
	}

	for _, key := range []string{"HEL-1", "HEL-2", "HEL-3"} {
		resp = do(t, srv, http.MethodPost, base+"/hide", `{"jiraKey":"`+key+`","title":"Task `+key+`"}`)
		expectStatus(t, resp, http.StatusOK)
	}
	// Hiding twice keeps one entry.
	resp = do(t, srv, http.MethodPost, base+"/hide", `{"jiraKey":"HEL-1"}`)
	if got := decode[hiddenTasksJSON](t, resp); len(got.HiddenTasks) != 3 {
		t.Errorf("hidden after duplicate = %+v", got.HiddenTasks)
	}

	resp = do(t, srv, http.MethodDelete, base+"/hide/HEL-2", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[hiddenTasksJSON](t, resp); len(got.HiddenTasks) != 2 {
		t.Errorf("hidden after restore one = %+v", got.HiddenTasks)
	}

	for _, body := range []string{`{}`, `{"jiraKeys":"HEL-1"}`, ""} {
		resp = do(t, srv, http.MethodPost, base+"/restore", body)
		expectStatus(t, resp, http.StatusBadRequest)
		if got := decode[errorBody](t, resp); got.Error != "jiraKeys array is required" {
			t.Errorf("body %q: error = %q", body, got.Error)
		}
	}

	resp = do(t, srv, http.MethodPost, base+"/restore", `{"jiraKeys":["HEL-1","HEL-3"]}`)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[hiddenTasksJSON](t, resp); got.HiddenTasks == nil || len(got.HiddenTasks) != 0 {
		t.Errorf("hidden after restore many = %#v, want []", got.HiddenTasks)
	}

	resp = do(t, srv, http.MethodGet, base, "")
	if st := decode[stateJSON](t, resp); len(st.HiddenJiraKeys) != 0 {
		t.Errorf("HiddenJiraKeys = %v", st.HiddenJiraKeys)
	}
}

func TestConfidence(t *testing.T) {
	_, srv := newTestServer(t)
	base := "/api/confidence/HEL/pi1"

	resp := do(t, srv, http.MethodGet, base, "")
	expectStatus(t, resp, http.StatusOK)
	c := decode[confidenceJSON](t, resp)
	if c.Score != 3 || c.Questions == nil || c.Improvements == nil || c.ProjectID != "HEL" || c.PIID != "pi1" {
		t.Fatalf("default confidence = %+v", c)
	}

	resp = do(t, srv, http.MethodPut, base+"/score", `{"score":4.2}`)
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]bool](t, resp); !got["success"] {
		t.Errorf("score response = %v", got)
	}

	resp = do(t, srv, http.MethodPost, base+"/questions", `{"label":"Is staging ready?"}`)
	expectStatus(t, resp, http.StatusOK)
	q := decode[confidenceItemJSON](t, resp)
	if q.ID == 0 || q.Label != "Is staging ready?" {
		t.Fatalf("added question = %+v", q)
	}
	resp = do(t, srv, http.MethodPost, base+"/improvements", `{"label":"Earlier demos"}`)
	expectStatus(t, resp, http.StatusOK)
	imp := decode[confidenceItemJSON](t, resp)

	resp = do(t, srv, http.MethodPut, "/api/confidence/questions/"+strconv.FormatInt(q.ID, 10), `{"label":"Is prod ready?"}`)
	expectStatus(t, resp, http.StatusOK)
	resp = do(t, srv, http.MethodDelete, "/api/confidence/improvements/"+strconv.FormatInt(imp.ID, 10), "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, base, "")
	c = decode[confidenceJSON](t, resp)
	if c.Score != 4.2 {
		t.Errorf("score = %g, want 4.2", c.Score)
	}
	if len(c.Questions) != 1 || c.Questions[0] != (confidenceItemJSON{ID: q.ID, Label: "Is prod ready?"}) {
		t.Errorf("questions = %+v", c.Questions)
	}
	if c.Improvements == nil || len(c.Improvements) != 0 {
		t.Errorf("improvements = %#v, want []", c.Improvements)
	}
}

func TestConfidenceErrors(t *testing.T) {
	_, srv := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"score out of range", http.MethodPut, "/api/confidence/HEL/pi1/score", `{"score":7}`, http.StatusBadRequest},
		{"negative score", http.MethodPut, "/api/confidence/HEL/pi1/score", `{"score":-1}`, http.StatusBadRequest},
		{"missing score", http.MethodPut, "/api/confidence/HEL/pi1/score", `{}`, http.StatusBadRequest},
		{"empty label", http.MethodPost, "/api/confidence/HEL/pi1/questions", `{"label":""}`, http.StatusBadRequest},
		{"no body", http.MethodPost, "/api/confidence/HEL/pi1/improvements", "", http.StatusBadRequest},
		{"bad id", http.MethodPut, "/api/confidence/questions/abc", `{"label":"x"}`, http.StatusBadRequest},
		{"unknown id", http.MethodPut, "/api/confidence/improvements/42", `{"label":"x"}`, http.StatusNotFound},
		{"delete unknown id", http.MethodDelete, "/api/confidence/questions/42", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			expectStatus(t, resp, tt.status)
			if tt.status == http.StatusOK {
				return
			}
			if got := decode[errorBody](t, resp); got.Error == "" || got.Code == "" {
				t.Errorf("error body = %+v", got)
			}
		})
	}
}

const boardBody = `{
  "pi": "PI 1 2026",
  "sprints": [
    {"id": "pi1-s1", "name": "S1 PI 1 2026", "start_date": "2026-01-19", "end_date": "2026-02-01"},
    {"id": "pi1-s2", "name": "S2 PI 1 2026", "start_date": "2026-02-02", "end_date": "2026-02-15"},
    {"id": "pi1-s3", "name": "S3 PI 1 2026", "start_date": "2026-02-16", "end_date": "2026-03-01"}
  ],
  "projects": [{"project": "HEL", "tasks": [
    {"id": "a", "title": "Login", "start_col": 0, "end_col": 3},
    {"id": "b", "title": "Search", "start_col": 1, "end_col": 2},
    {"id": "c", "title": "Export", "start_col": 3, "end_col": 6}
  ]}]
}`

func TestLayout(t *testing.T) {
	_, srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/api/layout", boardBody)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Board-Hash") == "" {
		t.Error("missing X-Board-Hash")
	}
	l := decode[board.Layout](t, resp)
	if l.Rows != 2 || len(l.Tasks) != 3 {
		t.Errorf("rows = %d, tasks = %d, want 2, 3", l.Rows, len(l.Tasks))
	}

	resp = do(t, srv, http.MethodPost, "/api/layout?format=svg&legend=true", boardBody)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `id="task-a"`) {
		t.Errorf("svg missing task-a")
	}

	resp = do(t, srv, http.MethodPost, "/api/layout?format=dot", boardBody)
	expectStatus(t, resp, http.StatusOK)
	body, _ = io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"a" -- "b"`) {
		t.Errorf("dot = %s", body)
	}

	tests := []struct {
		name, query, body string
	}{
		{"bad format", "?format=gif", boardBody},
		{"bad mode", "?mode=random", boardBody},
		{"bad columns", "?columns=zero", boardBody},
		{"no body", "", ""},
		{"bad json", "", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPost, "/api/layout"+tt.query, tt.body)
			expectStatus(t, resp, http.StatusBadRequest)
		})
	}
}

func TestListPIs(t *testing.T) {
	_, srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/pis", "")
	expectStatus(t, resp, http.StatusOK)
	pis := decode[[]board.PI](t, resp)
	if len(pis) != board.DefaultPIsPerYear || pis[0].Name != "PI 1 2026" {
		t.Fatalf("pis = %d, first %q", len(pis), pis[0].Name)
	}
	if got := pis[0].Sprints[0].Start.String(); got != "2026-01-19" {
		t.Errorf("first sprint start = %s", got)
	}

	resp = do(t, srv, http.MethodGet, "/api/pis?year=2027", "")
	expectStatus(t, resp, http.StatusOK)
	pis = decode[[]board.PI](t, resp)
	first := pis[0].Sprints[0].Start
	if pis[0].Name != "PI 1 2027" || first.Year() != 2027 || first.Weekday() != board.DefaultCalendarStart.Weekday() {
		t.Errorf("2027 calendar starts %s (%s), name %q", first, first.Weekday(), pis[0].Name)
	}

	resp = do(t, srv, http.MethodGet, "/api/pis?year=soon", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestJIRARoutesNeedClient(t *testing.T) {
	_, srv := newTestServer(t)
	for _, path := range []string{"/api/jira/boards", "/api/mep/HEL", "/api/boards/HEL/pi1"} {
		resp := do(t, srv, http.MethodGet, path, "")
		expectStatus(t, resp, http.StatusServiceUnavailable)
	}
}

func fakeJIRA(t *testing.T) *jira.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/agile/1.0/board", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"values": []jira.Board{{ID: 7, Name: "HEL", Type: "scrum"}}})
	})
	mux.HandleFunc("/rest/api/3/search/jql", func(w http.ResponseWriter, r *http.Request) {
		v1 := jira.Version{ID: "1", Name: "HEL 1.2.0", ReleaseDate: "2026-02-05"}
		v2 := jira.Version{ID: "2", Name: "HEL 1.3.0", ReleaseDate: "2026-04-01"}
		issues := []jira.Issue{{Key: "HEL-1"}, {Key: "HEL-2"}}
		issues[0].Fields.FixVersions = []jira.Version{v1}
		issues[1].Fields.FixVersions = []jira.Version{v2}
		json.NewEncoder(w).Encode(map[string]any{"issues": issues})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := jira.NewClient(jira.Config{BaseURL: srv.URL, Email: "me@example.com", Token: "secret"}, nil, nil)
	c.SetHTTPClient(srv.Client())
	return c
}

func TestJIRARoutes(t *testing.T) {
	s, srv := newTestServer(t)
	s.JIRA = fakeJIRA(t)

	resp := do(t, srv, http.MethodGet, "/api/jira/boards", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[[]jira.Board](t, resp); len(got) != 1 || got[0].Name != "HEL" {
		t.Errorf("boards = %+v", got)
	}

	resp = do(t, srv, http.MethodGet, "/api/mep/HEL", "")
	expectStatus(t, resp, http.StatusOK)
	vs := decode[[]jira.ProjectVersion](t, resp)
	if len(vs) != 2 || vs[0].Name != "HEL 1.3.0" {
		t.Errorf("versions = %+v, want newest first", vs)
	}

	resp = do(t, srv, http.MethodGet, "/api/mep/HEL/range?startDate=2026-01-19&endDate=2026-03-01", "")
	expectStatus(t, resp, http.StatusOK)
	vs = decode[[]jira.ProjectVersion](t, resp)
	if len(vs) != 1 || vs[0].ID != "1" {
		t.Errorf("versions in range = %+v", vs)
	}

	resp = do(t, srv, http.MethodGet, "/api/mep/HEL/range?startDate=2026-01-19", "")
	expectStatus(t, resp, http.StatusBadRequest)
	resp = do(t, srv, http.MethodGet, "/api/mep/HEL/range?startDate=2026-01-19&endDate=march", "")
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/api/mep/not-a-key", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestRecoverer(t *testing.T) {
	s := New(nil, nil, nil)
	h := s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("body = %s", rec.Body)
	}
}
