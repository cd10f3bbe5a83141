package store

import (
	"context"
	"math"
	"slices"
	"strings"

	rerrors "github.com/matzehuels/roadmap/pkg/errors"
)

// DefaultConfidenceScore is the score of a PI nobody has rated yet.
const DefaultConfidenceScore = 3.0

// MaxConfidenceScore bounds scores to 0..MaxConfidenceScore.
const MaxConfidenceScore = 5.0

// ItemKind names one of the two lists of a confidence record.
type ItemKind string

const (
	KindQuestion    ItemKind = "questions"
	KindImprovement ItemKind = "improvements"
)

// ParseItemKind accepts "questions" and "improvements".
func ParseItemKind(s string) (ItemKind, error) {
	switch k := ItemKind(s); k {
	case KindQuestion, KindImprovement:
		return k, nil
	}
	return "", rerrors.New(rerrors.ErrCodeInvalidInput, "unknown confidence list %q", s)
}

// ConfidenceItem is an open question or an improvement idea. IDs are
// unique across all boards of a store.
type ConfidenceItem struct {
	ID    int64  `json:"id" bson:"id"`
	Label string `json:"label" bson:"label"`
}

// Confidence is the team's confidence index for one project and PI.
type Confidence struct {
	PIID         string           `json:"pi_id"`
	ProjectID    string           `json:"project_id"`
	Score        float64          `json:"score"`
	Questions    []ConfidenceItem `json:"questions"`
	Improvements []ConfidenceItem `json:"improvements"`
}

// NewConfidence returns an unrated record with empty lists.
func NewConfidence(projectID, piID string) Confidence {
	return Confidence{
		PIID:         piID,
		ProjectID:    projectID,
		Score:        DefaultConfidenceScore,
		Questions:    []ConfidenceItem{},
		Improvements: []ConfidenceItem{},
	}
}

// ConfidenceStore saves confidence records. Items are listed in the order
// they were added.
type ConfidenceStore interface {
	Confidence(ctx context.Context, projectID, piID string) (Confidence, error)
	SetConfidenceScore(ctx context.Context, projectID, piID string, score float64) error
	AddConfidenceItem(ctx context.Context, projectID, piID string, kind ItemKind, label string) (ConfidenceItem, error)
	// UpdateConfidenceItem relabels an item. An unknown id is NOT_FOUND.
	UpdateConfidenceItem(ctx context.Context, kind ItemKind, id int64, label string) error
	// DeleteConfidenceItem removes an item. Deleting a missing one is not
	// an error.
	DeleteConfidenceItem(ctx context.Context, kind ItemKind, id int64) error
}

func checkScore(score float64) error {
	if score < 0 || score > MaxConfidenceScore || math.IsNaN(score) {
		return rerrors.New(rerrors.ErrCodeInvalidInput, "score must be between 0 and %g", MaxConfidenceScore)
	}
	return nil
}

func checkLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", rerrors.New(rerrors.ErrCodeInvalidInput, "label is required")
	}
	return label, nil
}

func checkKind(kind ItemKind) error {
	_, err := ParseItemKind(string(kind))
	return err
}

func itemNotFound(kind ItemKind, id int64) error {
	return rerrors.New(rerrors.ErrCodeNotFound, "confidence %s item %d not found", kind, id)
}

// confidenceBook holds every confidence record of a store. The memory and
// file backends share it; the file backend persists it as one document.
type confidenceBook struct {
	NextID  int64                  `json:"next_id"`
	Records map[string]*Confidence `json:"records"`
}

func newConfidenceBook() *confidenceBook {
	return &confidenceBook{NextID: 1, Records: map[string]*Confidence{}}
}

func confidenceKey(projectID, piID string) string { return projectID + "/" + piID }

// get returns a copy of a record, or the default one.
func (b *confidenceBook) get(projectID, piID string) Confidence {
	r, ok := b.Records[confidenceKey(projectID, piID)]
	if !ok {
		return NewConfidence(projectID, piID)
	}
	c := *r
	c.Questions = slices.Clone(r.Questions)
	c.Improvements = slices.Clone(r.Improvements)
	return c
}

func (b *confidenceBook) record(projectID, piID string) *Confidence {
	k := confidenceKey(projectID, piID)
	r, ok := b.Records[k]
	if !ok {
		c := NewConfidence(projectID, piID)
		r = &c
		b.Records[k] = r
	}
	return r
}

func (b *confidenceBook) setScore(projectID, piID string, score float64) {
	b.record(projectID, piID).Score = score
}

func (b *confidenceBook) add(projectID, piID string, kind ItemKind, label string) ConfidenceItem {
	item := ConfidenceItem{ID: b.NextID, Label: label}
	b.NextID++
	r := b.record(projectID, piID)
	list := r.list(kind)
	*list = append(*list, item)
	return item
}

// find locates an item by id across all records.
func (b *confidenceBook) find(kind ItemKind, id int64) (*[]ConfidenceItem, int) {
	for _, r := range b.Records {
		list := r.list(kind)
		if i := slices.IndexFunc(*list, func(it ConfidenceItem) bool { return it.ID == id }); i >= 0 {
			return list, i
		}
	}
	return nil, -1
}

func (b *confidenceBook) update(kind ItemKind, id int64, label string) error {
	list, i := b.find(kind, id)
	if i < 0 {
		return itemNotFound(kind, id)
	}
	(*list)[i].Label = label
	return nil
}

func (b *confidenceBook) remove(kind ItemKind, id int64) bool {
	list, i := b.find(kind, id)
	if i < 0 {
		return false
	}
	*list = slices.Delete(*list, i, i+1)
	return true
}

func (c *Confidence) list(kind ItemKind) *[]ConfidenceItem {
	if kind == KindImprovement {
		return &c.Improvements
	}
	return &c.Questions
}
