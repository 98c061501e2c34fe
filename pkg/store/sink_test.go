package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/store/memory"
)

type flakyStorage struct {
	entityFails   map[string]int // entity name -> remaining failures
	relationFails map[string]int // predicate -> remaining failures
	entityCalls   map[string]int
	relations     []string
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{
		entityFails:   make(map[string]int),
		relationFails: make(map[string]int),
		entityCalls:   make(map[string]int),
	}
}

func (f *flakyStorage) LookupEntityByKey(context.Context, common.EntityType, string) (string, error) {
	return "", nil
}

func (f *flakyStorage) CreateDocument(context.Context, *common.Document) error { return nil }

func (f *flakyStorage) UpsertEntity(_ context.Context, e *common.Entity) error {
	f.entityCalls[e.Name]++
	if f.entityFails[e.Name] > 0 {
		f.entityFails[e.Name]--
		return errors.New("write timeout")
	}
	return nil
}

func (f *flakyStorage) UpsertRelation(_ context.Context, r *common.Relation) error {
	if f.relationFails[r.Predicate] > 0 {
		f.relationFails[r.Predicate]--
		return errors.New("write timeout")
	}
	f.relations = append(f.relations, r.Predicate)
	return nil
}

func (f *flakyStorage) LinkEntityToDocument(context.Context, string, string) error { return nil }
func (f *flakyStorage) Reset(context.Context) error                               { return nil }
func (f *flakyStorage) Close(context.Context) error                               { return nil }

func testDocument() *common.Document {
	maria := &common.Entity{ID: "e1", Name: "Maria Silva", Type: common.EntityPerson}
	acme := &common.Entity{ID: "e2", Name: "Acme", Type: common.EntityOrganization}
	lisbon := &common.Entity{ID: "e3", Name: "Lisbon", Type: common.EntityLocation}
	return &common.Document{
		ID:       "d1",
		Title:    "Report",
		Entities: []*common.Entity{maria, acme, lisbon},
		Relations: []*common.Relation{
			{ID: "r1", Subject: maria, Predicate: "works at", Object: acme,
				Category: common.RelationStated, Confidence: 1},
			{ID: "r2", Subject: acme, Predicate: "based in", Object: lisbon,
				Category: common.RelationStated, Confidence: 1},
		},
	}
}

func newTestSink(storage GraphStorage) *Sink {
	return NewSink(NewSinkParams{Storage: storage, MaxRetries: 3, BaseDelay: time.Millisecond})
}

func TestSinkPersistClean(t *testing.T) {
	storage := newFlakyStorage()
	report, err := newTestSink(storage).Persist(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if report.Entities != 3 || report.Relations != 2 || report.Links != 3 {
		t.Errorf("report = %+v, want 3 entities, 2 relations, 3 links", report)
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
}

func TestSinkPersistReplayKeepsOneDocument(t *testing.T) {
	storage := memory.NewGraphStore()
	sink := newTestSink(storage)

	// A retried run hands the sink the exact same document twice. The
	// backend must merge on the document uuid, not append a twin.
	for i := 0; i < 2; i++ {
		if _, err := sink.Persist(context.Background(), testDocument()); err != nil {
			t.Fatalf("Persist() run %d error = %v", i+1, err)
		}
	}

	docs, entities, relations, _ := storage.Counts()
	if docs != 1 {
		t.Errorf("got %d documents after replay, want 1", docs)
	}
	if entities != 3 || relations != 2 {
		t.Errorf("got %d entities, %d relations after replay, want 3 and 2", entities, relations)
	}
}

func TestSinkRetriesTransientFailures(t *testing.T) {
	storage := newFlakyStorage()
	storage.entityFails["Acme"] = 2

	report, err := newTestSink(storage).Persist(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if storage.entityCalls["Acme"] != 3 {
		t.Errorf("Acme upsert attempted %d times, want 3", storage.entityCalls["Acme"])
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want retries to absorb the glitches", report.Failures)
	}
}

func TestSinkSkipsEdgesOfFailedEntities(t *testing.T) {
	storage := newFlakyStorage()
	storage.entityFails["Acme"] = 10 // beyond retry budget

	report, err := newTestSink(storage).Persist(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("a failed upsert must not abort the run, got %v", err)
	}

	if report.Entities != 2 {
		t.Errorf("Entities = %d, want the two healthy ones", report.Entities)
	}
	// Both relations touch Acme, so neither may be attempted.
	if len(storage.relations) != 0 {
		t.Errorf("relations persisted = %v, want none", storage.relations)
	}
	// One failed entity, two skipped relations.
	if len(report.Failures) != 3 {
		t.Errorf("Failures = %v, want 3 entries", report.Failures)
	}
}

func TestSinkRecordsFailedRelations(t *testing.T) {
	storage := newFlakyStorage()
	storage.relationFails["based in"] = 10

	report, err := newTestSink(storage).Persist(context.Background(), testDocument())
	if err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if report.Relations != 1 {
		t.Errorf("Relations = %d, want the surviving one", report.Relations)
	}
	if len(report.Failures) != 1 {
		t.Errorf("Failures = %v, want the failed relation accounted", report.Failures)
	}
}
