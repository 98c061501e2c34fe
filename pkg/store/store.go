// Package store defines the persistence contracts for consolidated
// knowledge graphs and the sink that drives idempotent upserts against
// any backend implementing them.
package store

import (
	"context"

	"github.com/grafo-kg/grafo/pkg/common"
)

// EntityLookup resolves a previously persisted entity by its
// normalized identity, so repeated runs converge on the same nodes.
type EntityLookup interface {
	// LookupEntityByKey returns the stored ID for the entity with the
	// given type and normalized name, or "" when no such entity exists.
	LookupEntityByKey(ctx context.Context, typ common.EntityType, normalizedName string) (string, error)
}

// GraphStorage is the write side of a graph backend. All operations
// are upserts keyed on stable identity, so replaying a document must
// not create duplicate nodes or edges.
type GraphStorage interface {
	EntityLookup

	CreateDocument(ctx context.Context, doc *common.Document) error
	UpsertEntity(ctx context.Context, entity *common.Entity) error
	UpsertRelation(ctx context.Context, rel *common.Relation) error
	LinkEntityToDocument(ctx context.Context, entityID, documentID string) error

	// Reset removes every node and edge managed by the backend.
	Reset(ctx context.Context) error

	Close(ctx context.Context) error
}
