package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
	"github.com/matzehuels/roadmap/pkg/cache"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/httputil"
)

func issue(key, summary, typ, status, sprint string) Issue {
	i := Issue{Key: key}
	i.Fields.Summary = summary
	i.Fields.IssueType.Name = typ
	i.Fields.Status.Name = status
	if sprint != "" {
		i.Fields.Sprints = []SprintRef{{ID: 1, Name: sprint}}
	}
	return i
}

// fakeJira serves the endpoints used by CurrentIssues.
type fakeJira struct {
	boards     []Board
	active     []Sprint
	sprintErr  int
	sprintIss  map[int][]Issue
	searchIss  map[string][]Issue
	queries    []string
	authHeader string
}

func (f *fakeJira) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/agile/1.0/board", func(w http.ResponseWriter, r *http.Request) {
		f.authHeader = r.Header.Get("Authorization")
		var out []Board
		for _, b := range f.boards {
			if name := r.URL.Query().Get("name"); name == "" || b.Name == name {
				out = append(out, b)
			}
		}
		json.NewEncoder(w).Encode(listResponse[Board]{Values: out})
	})
	mux.HandleFunc("/rest/agile/1.0/board/{id}/sprint", func(w http.ResponseWriter, r *http.Request) {
		if f.sprintErr != 0 {
			w.WriteHeader(f.sprintErr)
			return
		}
		json.NewEncoder(w).Encode(listResponse[Sprint]{Values: f.active})
	})
	mux.HandleFunc("/rest/agile/1.0/sprint/{id}/issue", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fields"); got != IssueFields {
			t.Errorf("sprint issue fields = %q", got)
		}
		id, _ := strconv.Atoi(r.PathValue("id"))
		json.NewEncoder(w).Encode(issuesResponse{Issues: f.sprintIss[id]})
	})
	mux.HandleFunc("/rest/api/3/search/jql", func(w http.ResponseWriter, r *http.Request) {
		jql := r.URL.Query().Get("jql")
		f.queries = append(f.queries, jql)
		for frag, iss := range f.searchIss {
			if strings.Contains(jql, frag) {
				json.NewEncoder(w).Encode(issuesResponse{Issues: iss})
				return
			}
		}
		json.NewEncoder(w).Encode(issuesResponse{})
	})
	return mux
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Email: "me@example.com", Token: "secret"}, nil, nil)
	c.SetHTTPClient(srv.Client())
	return c
}

func TestCurrentIssuesActiveSprint(t *testing.T) {
	f := &fakeJira{
		boards: []Board{{ID: 7, Name: "HEL", Type: "scrum"}},
		active: []Sprint{{ID: 11, Name: "S1 PI 1 2026", State: "active"}},
		sprintIss: map[int][]Issue{11: {
			issue("HEL-1", "Login", "Story", "In Progress", "S1 PI 1 2026"),
			issue("HEL-2", "Test set login", "Story", "To Do", "S1 PI 1 2026"),
			issue("HEL-3", "Crash", "Bug", "To Do", "S1 PI 1 2026"),
		}},
		searchIss: map[string][]Issue{"sprint is not EMPTY": {
			issue("HEL-1", "Login", "Story", "In Progress", "S1 PI 1 2026"),
			issue("HEL-4", "Search", "Story", "To Do", "Refinement PI1"),
			issue("HEL-5", "Old", "Story", "Abandonné", "En cadrage"),
			issue("HEL-6", "Later", "Story", "To Do", "S2 PI 1 2026"),
		}},
	}
	c := newTestClient(t, f.handler(t))

	got, err := c.CurrentIssues(context.Background(), "HEL")
	if err != nil {
		t.Fatalf("CurrentIssues: %v", err)
	}
	if len(got.Sprints) != 1 || got.Sprints[0].ID != 11 {
		t.Errorf("Sprints = %+v", got.Sprints)
	}
	var keys []string
	for _, i := range got.Issues {
		keys = append(keys, i.Key)
	}
	if strings.Join(keys, ",") != "HEL-1,HEL-4" {
		t.Errorf("issue keys = %v, want [HEL-1 HEL-4]", keys)
	}
	if !strings.HasPrefix(f.authHeader, "Basic ") {
		t.Errorf("Authorization = %q, want basic auth", f.authHeader)
	}
}

func TestCurrentIssuesFallsBackToJQL(t *testing.T) {
	f := &fakeJira{
		boards:    []Board{{ID: 9, Name: "PLY", Type: "kanban"}},
		sprintErr: http.StatusBadRequest,
		searchIss: map[string][]Issue{
			"openSprints()": {
				issue("PLY-1", "Player", "Story", "To Do", "S1"),
				issue("PLY-2", "Test", "Test", "To Do", "S1"),
			},
			"sprint is not EMPTY": {
				issue("PLY-3", "Specs", "Story", "To Do", "A planifier"),
				issue("PLY-1", "Player", "Story", "To Do", "Refinement"),
			},
		},
	}
	c := newTestClient(t, f.handler(t))

	got, err := c.CurrentIssues(context.Background(), "PLY")
	if err != nil {
		t.Fatalf("CurrentIssues: %v", err)
	}
	if len(got.Sprints) != 0 {
		t.Errorf("JQL fallback should report no sprints, got %d", len(got.Sprints))
	}
	var keys []string
	for _, i := range got.Issues {
		keys = append(keys, i.Key)
	}
	if strings.Join(keys, ",") != "PLY-1,PLY-3" {
		t.Errorf("issue keys = %v, want [PLY-1 PLY-3]", keys)
	}

	want := `project = PLY AND sprint in openSprints() AND statusCategory != Done AND issuetype NOT IN ("Test Set", "Test", "Test Execution", "Anomalie", "Bug") ORDER BY rank`
	found := false
	for _, q := range f.queries {
		if q == want {
			found = true
		}
	}
	if !found {
		t.Errorf("open sprints JQL not issued; queries = %q", f.queries)
	}
}

func TestCurrentIssuesInvalidProject(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil, nil)
	_, err := c.CurrentIssues(context.Background(), `HEL" OR project = X`)
	if !rerrors.Is(err, rerrors.ErrCodeInvalidProject) {
		t.Errorf("CurrentIssues error = %v, want INVALID_PROJECT", err)
	}
}

func TestBoardByNameNotFound(t *testing.T) {
	c := newTestClient(t, (&fakeJira{}).handler(t))
	_, err := c.BoardByName(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("BoardByName error = %v, want ErrNotFound", err)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		code int
		want error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			_, err := c.Boards(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("Boards error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(listResponse[Board]{Values: []Board{{ID: 1, Name: "HEL"}}})
	}))

	boards, err := c.Boards(context.Background())
	if err != nil {
		t.Fatalf("Boards: %v", err)
	}
	if len(boards) != 1 || calls.Load() != 2 {
		t.Errorf("got %d boards after %d calls, want 1 after 2", len(boards), calls.Load())
	}
}

func TestClientCachesResponses(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(listResponse[Board]{Values: []Board{{ID: 1, Name: "HEL"}}})
	}))
	defer srv.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hc := httputil.NewCache(backend, nil, time.Hour)
	c := NewClient(Config{BaseURL: srv.URL, Email: "e", Token: "t"}, hc, nil)
	c.SetHTTPClient(srv.Client())

	ctx := context.Background()
	for range 3 {
		if _, err := c.Boards(ctx); err != nil {
			t.Fatalf("Boards: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}

	c.Refresh = true
	if _, err := c.Boards(ctx); err != nil {
		t.Fatalf("Boards: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("Refresh should bypass the cache; server hit %d times", calls.Load())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{BaseURL: "https://x.atlassian.net", Email: "a@b", Token: "t", ProjectKey: "HEL"}, false},
		{"no project", Config{BaseURL: "https://x.atlassian.net", Email: "a@b", Token: "t"}, false},
		{"bad url", Config{BaseURL: "x.atlassian.net", Email: "a@b", Token: "t"}, true},
		{"no token", Config{BaseURL: "https://x.atlassian.net", Email: "a@b"}, true},
		{"bad project", Config{BaseURL: "https://x.atlassian.net", Email: "a@b", Token: "t", ProjectKey: "hel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAsCoded(t *testing.T) {
	tests := []struct {
		err  error
		want rerrors.Code
	}{
		{ErrNotFound, rerrors.ErrCodeBoardNotFound},
		{ErrUnauthorized, rerrors.ErrCodeUnauthorized},
		{ErrNetwork, rerrors.ErrCodeNetwork},
		{context.DeadlineExceeded, rerrors.ErrCodeTimeout},
		{errors.New("other"), rerrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		if got := rerrors.GetCode(AsCoded(tt.err)); got != tt.want {
			t.Errorf("AsCoded(%v) code = %s, want %s", tt.err, got, tt.want)
		}
	}
	if AsCoded(nil) != nil {
		t.Error("AsCoded(nil) should be nil")
	}
}

func TestFetchBoard(t *testing.T) {
	rel := issue("HEL-9", "Shipped", "Story", "Done", "")
	rel.Fields.FixVersions = []Version{
		{ID: "1", Name: "1.3.0", ReleaseDate: "2026-02-05"},
	}
	late := issue("HEL-10", "Later", "Story", "Done", "")
	late.Fields.FixVersions = []Version{
		{ID: "2", Name: "1.4.0", ReleaseDate: "2026-06-01"},
	}
	f := &fakeJira{
		boards: []Board{{ID: 7, Name: "HEL"}},
		active: []Sprint{{ID: 11, Name: "S1 PI 1 2026"}},
		sprintIss: map[int][]Issue{11: {
			issue("HEL-1", "Login", "Story", "To Do", "S1 PI 1 2026"),
			issue("HEL-2", "Search", "Story", "To Do", "S1 PI 1 2026"),
		}},
		searchIss: map[string][]Issue{"fixVersion IS NOT EMPTY": {rel, late}},
	}
	c := newTestClient(t, f.handler(t))

	pi, _ := board.FindPI(board.GeneratePIs(board.CalendarOptions{}), "pi1")
	file, err := c.FetchBoard(context.Background(), pi, []string{"HEL"}, FetchOptions{Columns: 6, Releases: true})
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if file.PI != "PI 1 2026" || len(file.Sprints) != 3 {
		t.Errorf("PI = %q with %d sprints", file.PI, len(file.Sprints))
	}
	if len(file.Projects) != 1 || file.Projects[0].Project != "HEL" || len(file.Projects[0].Tasks) != 2 {
		t.Fatalf("projects = %+v", file.Projects)
	}
	if len(file.Releases) != 1 || file.Releases[0].Version != "1.3.0" {
		t.Errorf("releases = %+v, want only 1.3.0", file.Releases)
	}
}
