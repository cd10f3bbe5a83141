package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/roadmap/pkg/board"
)

type boardKey struct{ project, pi string }

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[boardKey]map[string]board.Position
	states    map[boardKey]PIState
	conf      *confidenceBook
	now       func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[boardKey]map[string]board.Position),
		states:    make(map[boardKey]PIState),
		conf:      newConfidenceBook(),
		now:       time.Now,
	}
}

func (s *MemoryStore) Positions(ctx context.Context, projectID, piID string) ([]board.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.positions[boardKey{projectID, piID}]
	out := make([]board.Position, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sortPositions(out)
	return out, nil
}

func (s *MemoryStore) SavePosition(ctx context.Context, p board.Position) (board.Position, error) {
	p, err := prepare(p, s.now())
	if err != nil {
		return p, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := boardKey{p.ProjectID, p.PIID}
	if s.positions[k] == nil {
		s.positions[k] = make(map[string]board.Position)
	}
	s.positions[k][p.TaskID] = p
	return p, nil
}

func (s *MemoryStore) DeletePosition(ctx context.Context, projectID, piID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions[boardKey{projectID, piID}], taskID)
	return nil
}

func (s *MemoryStore) state(k boardKey) PIState {
	st, ok := s.states[k]
	if !ok {
		return NewPIState(k.project, k.pi)
	}
	st.HiddenJiraKeys = slices.Clone(st.HiddenJiraKeys)
	st.HiddenTasks = slices.Clone(st.HiddenTasks)
	return st
}

func (s *MemoryStore) State(ctx context.Context, projectID, piID string) (PIState, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return PIState{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state(boardKey{projectID, piID}), nil
}

func (s *MemoryStore) SetFrozen(ctx context.Context, projectID, piID string, frozen bool) (PIState, error) {
	return s.update(projectID, piID, func(st *PIState) { st.setFrozen(frozen, s.now()) })
}

func (s *MemoryStore) Hide(ctx context.Context, projectID, piID, jiraKey, title string) ([]HiddenTask, error) {
	st, err := s.update(projectID, piID, func(st *PIState) { st.hide(jiraKey, title) })
	return st.HiddenTasks, err
}

func (s *MemoryStore) Restore(ctx context.Context, projectID, piID string, jiraKeys ...string) ([]HiddenTask, error) {
	st, err := s.update(projectID, piID, func(st *PIState) { st.restore(jiraKeys...) })
	return st.HiddenTasks, err
}

func (s *MemoryStore) update(projectID, piID string, fn func(*PIState)) (PIState, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return PIState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := boardKey{projectID, piID}
	st := s.state(k)
	fn(&st)
	s.states[k] = st
	return s.state(k), nil
}

func (s *MemoryStore) Confidence(ctx context.Context, projectID, piID string) (Confidence, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return Confidence{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conf.get(projectID, piID), nil
}

func (s *MemoryStore) SetConfidenceScore(ctx context.Context, projectID, piID string, score float64) error {
	if err := checkIDs(projectID, piID); err != nil {
		return err
	}
	if err := checkScore(score); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conf.setScore(projectID, piID, score)
	return nil
}

func (s *MemoryStore) AddConfidenceItem(ctx context.Context, projectID, piID string, kind ItemKind, label string) (ConfidenceItem, error) {
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
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conf.add(projectID, piID, kind, label), nil
}

func (s *MemoryStore) UpdateConfidenceItem(ctx context.Context, kind ItemKind, id int64, label string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	label, err := checkLabel(label)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conf.update(kind, id, label)
}

func (s *MemoryStore) DeleteConfidenceItem(ctx context.Context, kind ItemKind, id int64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conf.remove(kind, id)
	return nil
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
