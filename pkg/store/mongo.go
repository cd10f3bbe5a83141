package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/roadmap/pkg/board"
)

// Collection names.
const (
	CollectionPositions       = "positions"
	CollectionPIState         = "pi_state"
	CollectionConfidence      = "confidence"
	CollectionConfidenceItems = "confidence_items"
	CollectionCounters        = "counters"
)

// MongoStore keeps positions, PI state, and confidence records in MongoDB.
//
// Positions are unique on (task_id, pi_id, project_id), PI states and
// confidence scores on (pi_id, project_id), and confidence items on
// (kind, id); [MongoStore.EnsureIndexes] creates these indexes. Item ids
// come from a sequence in the counters collection.
type MongoStore struct {
	client    *mongo.Client
	positions *mongo.Collection
	states    *mongo.Collection
	conf      *mongo.Collection
	items     *mongo.Collection
	counters  *mongo.Collection
	owned     bool
	now       func() time.Time
}

// NewMongoStore connects to uri, pings the server, and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewMongoStoreFromClient(client, database)
	s.owned = true
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close does not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = "roadmap"
	}
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		positions: db.Collection(CollectionPositions),
		states:    db.Collection(CollectionPIState),
		conf:      db.Collection(CollectionConfidence),
		items:     db.Collection(CollectionConfidenceItems),
		counters:  db.Collection(CollectionCounters),
		now:       time.Now,
	}
}

// EnsureIndexes creates the unique indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.positions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "task_id", Value: 1}, {Key: "pi_id", Value: 1}, {Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create positions index: %w", err)
	}
	_, err = s.states.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pi_id", Value: 1}, {Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create pi_state index: %w", err)
	}
	_, err = s.conf.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pi_id", Value: 1}, {Key: "project_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create confidence index: %w", err)
	}
	_, err = s.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create confidence_items index: %w", err)
	}
	return nil
}

func boardFilter(projectID, piID string) bson.D {
	return bson.D{{Key: "project_id", Value: projectID}, {Key: "pi_id", Value: piID}}
}

func (s *MongoStore) Positions(ctx context.Context, projectID, piID string) ([]board.Position, error) {
	cur, err := s.positions.Find(ctx, boardFilter(projectID, piID),
		options.Find().SetSort(bson.D{{Key: "task_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find positions: %w", err)
	}
	out := []board.Position{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return out, nil
}

func (s *MongoStore) SavePosition(ctx context.Context, p board.Position) (board.Position, error) {
	p, err := prepare(p, s.now())
	if err != nil {
		return p, err
	}
	filter := bson.D{{Key: "task_id", Value: p.TaskID}, {Key: "pi_id", Value: p.PIID}, {Key: "project_id", Value: p.ProjectID}}
	if _, err := s.positions.ReplaceOne(ctx, filter, p, options.Replace().SetUpsert(true)); err != nil {
		return p, fmt.Errorf("save position: %w", err)
	}
	return p, nil
}

func (s *MongoStore) DeletePosition(ctx context.Context, projectID, piID, taskID string) error {
	filter := bson.D{{Key: "task_id", Value: taskID}, {Key: "pi_id", Value: piID}, {Key: "project_id", Value: projectID}}
	if _, err := s.positions.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}

func (s *MongoStore) State(ctx context.Context, projectID, piID string) (PIState, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return PIState{}, err
	}
	st := NewPIState(projectID, piID)
	err := s.states.FindOne(ctx, boardFilter(projectID, piID)).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return NewPIState(projectID, piID), nil
	}
	if err != nil {
		return PIState{}, fmt.Errorf("find pi state: %w", err)
	}
	if st.HiddenJiraKeys == nil {
		st.HiddenJiraKeys = []string{}
	}
	if st.HiddenTasks == nil {
		st.HiddenTasks = []HiddenTask{}
	}
	return st, nil
}

func (s *MongoStore) SetFrozen(ctx context.Context, projectID, piID string, frozen bool) (PIState, error) {
	return s.update(ctx, projectID, piID, func(st *PIState) { st.setFrozen(frozen, s.now().UTC()) })
}

func (s *MongoStore) Hide(ctx context.Context, projectID, piID, jiraKey, title string) ([]HiddenTask, error) {
	st, err := s.update(ctx, projectID, piID, func(st *PIState) { st.hide(jiraKey, title) })
	return st.HiddenTasks, err
}

func (s *MongoStore) Restore(ctx context.Context, projectID, piID string, jiraKeys ...string) ([]HiddenTask, error) {
	st, err := s.update(ctx, projectID, piID, func(st *PIState) { st.restore(jiraKeys...) })
	return st.HiddenTasks, err
}

// update reads, modifies and upserts a state document. Concurrent writers
// to the same PI race last-write-wins.
func (s *MongoStore) update(ctx context.Context, projectID, piID string, fn func(*PIState)) (PIState, error) {
	st, err := s.State(ctx, projectID, piID)
	if err != nil {
		return PIState{}, err
	}
	fn(&st)
	_, err = s.states.ReplaceOne(ctx, boardFilter(projectID, piID), st, options.Replace().SetUpsert(true))
	if err != nil {
		return PIState{}, fmt.Errorf("save pi state: %w", err)
	}
	return st, nil
}

type confidenceScoreDoc struct {
	ProjectID string    `bson:"project_id"`
	PIID      string    `bson:"pi_id"`
	Score     float64   `bson:"score"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type confidenceItemDoc struct {
	ID        int64    `bson:"id"`
	Kind      ItemKind `bson:"kind"`
	ProjectID string   `bson:"project_id"`
	PIID      string   `bson:"pi_id"`
	Label     string   `bson:"label"`
}

func (s *MongoStore) Confidence(ctx context.Context, projectID, piID string) (Confidence, error) {
	if err := checkIDs(projectID, piID); err != nil {
		return Confidence{}, err
	}
	c := NewConfidence(projectID, piID)
	var doc confidenceScoreDoc
	err := s.conf.FindOne(ctx, boardFilter(projectID, piID)).Decode(&doc)
	switch {
	case err == nil:
		c.Score = doc.Score
	case !errors.Is(err, mongo.ErrNoDocuments):
		return Confidence{}, fmt.Errorf("find confidence: %w", err)
	}

	cur, err := s.items.Find(ctx, boardFilter(projectID, piID), options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return Confidence{}, fmt.Errorf("find confidence items: %w", err)
	}
	var items []confidenceItemDoc
	if err := cur.All(ctx, &items); err != nil {
		return Confidence{}, fmt.Errorf("decode confidence items: %w", err)
	}
	for _, it := range items {
		list := c.list(it.Kind)
		*list = append(*list, ConfidenceItem{ID: it.ID, Label: it.Label})
	}
	return c, nil
}

func (s *MongoStore) SetConfidenceScore(ctx context.Context, projectID, piID string, score float64) error {
	if err := checkIDs(projectID, piID); err != nil {
		return err
	}
	if err := checkScore(score); err != nil {
		return err
	}
	doc := confidenceScoreDoc{ProjectID: projectID, PIID: piID, Score: score, UpdatedAt: s.now().UTC()}
	if _, err := s.conf.ReplaceOne(ctx, boardFilter(projectID, piID), doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save confidence score: %w", err)
	}
	return nil
}

// nextItemID increments the confidence item sequence.
func (s *MongoStore) nextItemID(ctx context.Context) (int64, error) {
	var seq struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: CollectionConfidenceItems}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("next confidence item id: %w", err)
	}
	return seq.Seq, nil
}

func (s *MongoStore) AddConfidenceItem(ctx context.Context, projectID, piID string, kind ItemKind, label string) (ConfidenceItem, error) {
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
	id, err := s.nextItemID(ctx)
	if err != nil {
		return ConfidenceItem{}, err
	}
	doc := confidenceItemDoc{ID: id, Kind: kind, ProjectID: projectID, PIID: piID, Label: label}
	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return ConfidenceItem{}, fmt.Errorf("insert confidence item: %w", err)
	}
	return ConfidenceItem{ID: id, Label: label}, nil
}

func itemFilter(kind ItemKind, id int64) bson.D {
	return bson.D{{Key: "kind", Value: kind}, {Key: "id", Value: id}}
}

func (s *MongoStore) UpdateConfidenceItem(ctx context.Context, kind ItemKind, id int64, label string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	label, err := checkLabel(label)
	if err != nil {
		return err
	}
	res, err := s.items.UpdateOne(ctx, itemFilter(kind, id), bson.D{{Key: "$set", Value: bson.D{{Key: "label", Value: label}}}})
	if err != nil {
		return fmt.Errorf("update confidence item: %w", err)
	}
	if res.MatchedCount == 0 {
		return itemNotFound(kind, id)
	}
	return nil
}

func (s *MongoStore) DeleteConfidenceItem(ctx context.Context, kind ItemKind, id int64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if _, err := s.items.DeleteOne(ctx, itemFilter(kind, id)); err != nil {
		return fmt.Errorf("delete confidence item: %w", err)
	}
	return nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close(ctx context.Context) error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
