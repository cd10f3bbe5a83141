package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// FileStore keeps one JSON document per project and PI under a base
// directory: <base>/<project>/<pi>.json. Confidence records of all boards
// share <base>/confidence.json, since item ids are store-wide.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

const confidenceFile = "confidence.json"

// boardDoc is the on-disk document of one board.
type boardDoc struct {
	Positions map[string]board.Position `json:"positions"`
	State     *PIState                  `json:"state,omitempty"`
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/roadmap/positions/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "roadmap", "positions")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

// Dir returns the base directory.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) docPath(projectID, piID string) (string, error) {
	for _, part := range []string{projectID, piID} {
		if part == "" || part == "." || part == confidenceFile || strings.Contains(part, "/") {
			return "", rerrors.New(rerrors.ErrCodeInvalidInput, "invalid board id %q", part)
		}
	}
	rel := projectID + "/" + piID + ".json"
	if err := rerrors.ValidatePath(rel); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(rel)), nil
}

// load reads a board document; a missing file is an empty board.
func (s *FileStore) load(projectID, piID string) (boardDoc, error) {
	doc := boardDoc{Positions: map[string]board.Position{}}
	path, err := s.docPath(projectID, piID)
	if err != nil {
		return doc, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read board file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse board file: %w", err)
	}
	if doc.Positions == nil {
		doc.Positions = map[string]board.Position{}
	}
	return doc, nil
}

func (s *FileStore) save(projectID, piID string, doc boardDoc) error {
	path, err := s.docPath(projectID, piID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	return nil
}

func (s *FileStore) Positions(ctx context.Context, projectID, piID string) ([]board.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load(projectID, piID)
	if err != nil {
		return nil, err
	}
	out := make([]board.Position, 0, len(doc.Positions))
	for _, p := range doc.Positions {
		out = append(out, p)
	}
	sortPositions(out)
	return out, nil
}

func (s *FileStore) SavePosition(ctx context.Context, p board.Position) (board.Position, error) {
	p, err := prepare(p, s.now())
	if err != nil {
		return p, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(p.ProjectID, p.PIID)
	if err != nil {
		return p, err
	}
	doc.Positions[p.TaskID] = p
	return p, s.save(p.ProjectID, p.PIID, doc)
}

func (s *FileStore) DeletePosition(ctx context.Context, projectID, piID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(projectID, piID)
	if err != nil {
		return err
	}
	if _, ok := doc.Positions[taskID]; !ok {
		return nil
	}
	delete(doc.Positions, taskID)
	return s.save(projectID, piID, doc)
}

func (s *FileStore) State(ctx context.Context, projectID, piID string) (PIState, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return PIState{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load(projectID, piID)
	if err != nil {
		return PIState{}, err
	}
	if doc.State == nil {
		return NewPIState(projectID, piID), nil
	}
	return *doc.State, nil
}

func (s *FileStore) SetFrozen(ctx context.Context, projectID, piID string, frozen bool) (PIState, error) {
	return s.update(projectID, piID, func(st *PIState) { st.setFrozen(frozen, s.now()) })
}

func (s *FileStore) Hide(ctx context.Context, projectID, piID, jiraKey, title string) ([]HiddenTask, error) {
	st, err := s.update(projectID, piID, func(st *PIState) { st.hide(jiraKey, title) })
	return st.HiddenTasks, err
}

func (s *FileStore) Restore(ctx context.Context, projectID, piID string, jiraKeys ...string) ([]HiddenTask, error) {
	st, err := s.update(projectID, piID, func(st *PIState) { st.restore(jiraKeys...) })
	return st.HiddenTasks, err
}

func (s *FileStore) update(projectID, piID string, fn func(*PIState)) (PIState, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return PIState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(projectID, piID)
	if err != nil {
		return PIState{}, err
	}
	st := NewPIState(projectID, piID)
	if doc.State != nil {
		st = *doc.State
	}
	fn(&st)
	doc.State = &st
	if err := s.save(projectID, piID, doc); err != nil {
		return PIState{}, err
	}
	return st, nil
}

func (s *FileStore) confidencePath() string {
	return filepath.Join(s.baseDir, confidenceFile)
}

func (s *FileStore) loadConfidence() (*confidenceBook, error) {
	book := newConfidenceBook()
	data, err := os.ReadFile(s.confidencePath())
	if err != nil {
		if os.IsNotExist(err) {
			return book, nil
		}
		return nil, fmt.Errorf("read confidence file: %w", err)
	}
	if err := json.Unmarshal(data, book); err != nil {
		return nil, fmt.Errorf("parse confidence file: %w", err)
	}
	if book.Records == nil {
		book.Records = map[string]*Confidence{}
	}
	if book.NextID < 1 {
		book.NextID = 1
	}
	return book, nil
}

func (s *FileStore) saveConfidence(book *confidenceBook) error {
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal confidence: %w", err)
	}
	if err := os.WriteFile(s.confidencePath(), data, 0600); err != nil {
		return fmt.Errorf("write confidence file: %w", err)
	}
	return nil
}

// editConfidence loads the book, applies fn, and saves when fn reports a
// change.
func (s *FileStore) editConfidence(fn func(*confidenceBook) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.loadConfidence()
	if err != nil {
		return err
	}
	changed, err := fn(book)
	if err != nil || !changed {
		return err
	}
	return s.saveConfidence(book)
}

func (s *FileStore) Confidence(ctx context.Context, projectID, piID string) (Confidence, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return Confidence{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, err := s.loadConfidence()
	if err != nil {
		return Confidence{}, err
	}
	return book.get(projectID, piID), nil
}

func (s *FileStore) SetConfidenceScore(ctx context.Context, projectID, piID string, score float64) error {
	if err := checkIDs(projectID, piID); err != nil {
		return err
	}
	if err := checkScore(score); err != nil {
		return err
	}
	return s.editConfidence(func(b *confidenceBook) (bool, error) {
		b.setScore(projectID, piID, score)
		return true, nil
	})
}

func (s *FileStore) AddConfidenceItem(ctx context.Context, projectID, piID string, kind ItemKind, label string) (ConfidenceItem, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return ConfidenceItem{}, err
	}
	if err := checkKind(kind); err != nil {
		return ConfidenceItem{}, err
	}
	label, err := checkLabel(label)
	if err != nil {
		return ConfidenceItem{}, err
	}
	var item ConfidenceItem
	err = s.editConfidence(func(b *confidenceBook) (bool, error) {
		item = b.add(projectID, piID, kind, label)
		return true, nil
	})
	return item, err
}

func (s *FileStore) UpdateConfidenceItem(ctx context.Context, kind ItemKind, id int64, label string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	label, err := checkLabel(label)
	if err != nil {
		return err
	}
	return s.editConfidence(func(b *confidenceBook) (bool, error) {
		return true, b.update(kind, id, label)
	})
}

func (s *FileStore) DeleteConfidenceItem(ctx context.Context, kind ItemKind, id int64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return s.editConfidence(func(b *confidenceBook) (bool, error) {
		return b.remove(kind, id), nil
	})
}

// Close does nothing.
func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
