// Package memory provides an in-process store.GraphStorage, used for
// dry runs and tests. It applies the same identity keying as the
// Neo4j backend.
package memory

import (
	"context"
	"sync"

	"github.com/grafo-kg/grafo/pkg/common"
)

type entityRecord struct {
	ID        string
	Name      string
	Type      common.EntityType
	Aliases   []string
	Localized string
	Upserts   int
}

type relationRecord struct {
	ID         string
	SubjectID  string
	Predicate  string
	ObjectID   string
	Category   common.RelationCategory
	Confidence float64
	Units      []int
	Upserts    int
}

type tripleKey struct {
	subject   string
	predicate string
	object    string
}

// GraphStore holds a consolidated graph in process memory.
type GraphStore struct {
	mu        sync.Mutex
	documents map[string]*common.Document
	entities  map[common.ResolutionKey]*entityRecord
	relations map[tripleKey]*relationRecord
	links     map[[2]string]bool
}

func NewGraphStore() *GraphStore {
	return &GraphStore{
		documents: make(map[string]*common.Document),
		entities:  make(map[common.ResolutionKey]*entityRecord),
		relations: make(map[tripleKey]*relationRecord),
		links:     make(map[[2]string]bool),
	}
}

func (s *GraphStore) CreateDocument(_ context.Context, doc *common.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = doc
	return nil
}

func (s *GraphStore) UpsertEntity(_ context.Context, entity *common.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := common.KeyFor(entity.Type, entity.Name)
	if existing, ok := s.entities[key]; ok {
		existing.Aliases = entity.Aliases
		existing.Localized = entity.Localized
		existing.Upserts++
		return nil
	}
	s.entities[key] = &entityRecord{
		ID:        entity.ID,
		Name:      entity.Name,
		Type:      entity.Type,
		Aliases:   entity.Aliases,
		Localized: entity.Localized,
		Upserts:   1,
	}
	return nil
}

func (s *GraphStore) LookupEntityByKey(_ context.Context, typ common.EntityType, normalizedName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entities[common.ResolutionKey{Type: typ, Name: normalizedName}]; ok {
		return e.ID, nil
	}
	return "", nil
}

func (s *GraphStore) UpsertRelation(_ context.Context, rel *common.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tripleKey{
		subject:   rel.Subject.ID,
		predicate: common.FoldPredicate(rel.Predicate),
		object:    rel.Object.ID,
	}
	if existing, ok := s.relations[key]; ok {
		existing.Category = rel.Category
		existing.Confidence = rel.Confidence
		existing.Units = rel.Units
		existing.Upserts++
		return nil
	}
	s.relations[key] = &relationRecord{
		ID:         rel.ID,
		SubjectID:  rel.Subject.ID,
		Predicate:  rel.Predicate,
		ObjectID:   rel.Object.ID,
		Category:   rel.Category,
		Confidence: rel.Confidence,
		Units:      rel.Units,
		Upserts:    1,
	}
	return nil
}

func (s *GraphStore) LinkEntityToDocument(_ context.Context, entityID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[[2]string{entityID, documentID}] = true
	return nil
}

func (s *GraphStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]*common.Document)
	s.entities = make(map[common.ResolutionKey]*entityRecord)
	s.relations = make(map[tripleKey]*relationRecord)
	s.links = make(map[[2]string]bool)
	return nil
}

func (s *GraphStore) Close(_ context.Context) error { return nil }

// Counts reports stored node and edge totals.
func (s *GraphStore) Counts() (documents, entities, relations, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents), len(s.entities), len(s.relations), len(s.links)
}
