package memory

import (
	"context"
	"testing"

	"github.com/grafo-kg/grafo/pkg/common"
)

func TestUpsertEntityIsIdempotent(t *testing.T) {
	s := NewGraphStore()
	ctx := context.Background()

	first := &common.Entity{ID: "a", Name: "Dr. Maria Silva", Type: common.EntityPerson}
	again := &common.Entity{ID: "b", Name: "maria silva", Type: common.EntityPerson}

	if err := s.UpsertEntity(ctx, first); err != nil {
		t.Fatalf("UpsertEntity() error = %v", err)
	}
	if err := s.UpsertEntity(ctx, again); err != nil {
		t.Fatalf("UpsertEntity() error = %v", err)
	}

	_, entities, _, _ := s.Counts()
	if entities != 1 {
		t.Fatalf("got %d entities, want the normalized identity shared", entities)
	}

	id, err := s.LookupEntityByKey(ctx, common.EntityPerson, "maria silva")
	if err != nil {
		t.Fatalf("LookupEntityByKey() error = %v", err)
	}
	if id != "a" {
		t.Errorf("LookupEntityByKey() = %q, want the first run's ID kept", id)
	}
}

func TestLookupUsesNormalizedKeyOnly(t *testing.T) {
	s := NewGraphStore()
	ctx := context.Background()

	e := &common.Entity{ID: "a", Name: "The Acme Corporation", Type: common.EntityOrganization}
	if err := s.UpsertEntity(ctx, e); err != nil {
		t.Fatalf("UpsertEntity() error = %v", err)
	}

	id, err := s.LookupEntityByKey(ctx, common.EntityOrganization, "acme corporation")
	if err != nil {
		t.Fatalf("LookupEntityByKey() error = %v", err)
	}
	if id != "a" {
		t.Errorf("lookup by normalized name = %q, want %q", id, "a")
	}

	id, err = s.LookupEntityByKey(ctx, common.EntityLocation, "acme corporation")
	if err != nil {
		t.Fatalf("LookupEntityByKey() error = %v", err)
	}
	if id != "" {
		t.Errorf("lookup with wrong type = %q, want no match", id)
	}
}

func TestUpsertRelationIsIdempotent(t *testing.T) {
	s := NewGraphStore()
	ctx := context.Background()

	maria := &common.Entity{ID: "e1", Name: "Maria", Type: common.EntityPerson}
	acme := &common.Entity{ID: "e2", Name: "Acme", Type: common.EntityOrganization}

	rel := &common.Relation{ID: "r1", Subject: maria, Predicate: "works at",
		Object: acme, Category: common.RelationStated, Confidence: 1}
	folded := &common.Relation{ID: "r2", Subject: maria, Predicate: "Works At",
		Object: acme, Category: common.RelationStated, Confidence: 1}
	reversed := &common.Relation{ID: "r3", Subject: acme, Predicate: "works at",
		Object: maria, Category: common.RelationStated, Confidence: 1}

	for _, r := range []*common.Relation{rel, folded, reversed} {
		if err := s.UpsertRelation(ctx, r); err != nil {
			t.Fatalf("UpsertRelation() error = %v", err)
		}
	}

	_, _, relations, _ := s.Counts()
	if relations != 2 {
		t.Errorf("got %d relations, want predicate folding to merge but direction to split", relations)
	}
}

func TestReset(t *testing.T) {
	s := NewGraphStore()
	ctx := context.Background()

	if err := s.CreateDocument(ctx, &common.Document{ID: "d1"}); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if err := s.UpsertEntity(ctx, &common.Entity{ID: "a", Name: "Maria", Type: common.EntityPerson}); err != nil {
		t.Fatalf("UpsertEntity() error = %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	docs, entities, relations, links := s.Counts()
	if docs+entities+relations+links != 0 {
		t.Errorf("store not empty after reset: %d/%d/%d/%d", docs, entities, relations, links)
	}
}
