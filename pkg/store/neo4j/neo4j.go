// Package neo4j persists consolidated knowledge graphs into Neo4j.
// Entities are merged on their normalized identity, relations on the
// (subject, folded predicate, object) triple, so replaying a document
// never duplicates nodes or edges.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/logger"
)

// GraphStore implements store.GraphStorage for Neo4j databases.
type GraphStore struct {
	client   neo4j.DriverWithContext
	database string
}

type NewGraphStoreParams struct {
	URI      string
	Username string
	Password string
	Database string
}

// NewGraphStore creates a new Neo4j-backed store instance.
func NewGraphStore(params NewGraphStoreParams) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if params.Database == "" {
		params.Database = "neo4j"
	}

	return &GraphStore{
		client:   driver,
		database: params.Database,
	}, nil
}

func (s *GraphStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

func (s *GraphStore) CreateDocument(ctx context.Context, doc *common.Document) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// MERGE keeps a retried or replayed run from stacking a second
		// node with the same uuid.
		query := `
			MERGE (d:Document {uuid: $uuid})
			ON CREATE SET
				d.title = $title,
				d.description = $description,
				d.source = $source,
				d.source_type = $source_type,
				d.language = $language,
				d.provider = $provider,
				d.analyzed_at = $analyzed_at
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"uuid":        doc.ID,
			"title":       doc.Title,
			"description": doc.Description,
			"source":      doc.Source,
			"source_type": string(doc.SourceType),
			"language":    doc.Language,
			"provider":    doc.Provider,
			"analyzed_at": doc.AnalyzedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create document node: %w", err)
	}

	logger.Debug("Merged document node", "uuid", doc.ID, "title", doc.Title)
	return nil
}

// UpsertEntity merges on (type, normalized_name) so the node identity
// matches the resolver's, regardless of display-name differences
// between runs. The first run's uuid and display name stick.
func (s *GraphStore) UpsertEntity(ctx context.Context, entity *common.Entity) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (e:Entity {type: $type, normalized_name: $normalized_name})
			ON CREATE SET e.uuid = $uuid, e.name = $name
			SET e.aliases = $aliases,
				e.localized = $localized
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"type":            string(entity.Type),
			"normalized_name": common.NormalizeEntityName(entity.Type, entity.Name),
			"uuid":            entity.ID,
			"name":            entity.Name,
			"aliases":         entity.Aliases,
			"localized":       entity.Localized,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entity %q: %w", entity.Name, err)
	}
	return nil
}

func (s *GraphStore) LookupEntityByKey(ctx context.Context, typ common.EntityType, normalizedName string) (string, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (e:Entity {type: $type, normalized_name: $normalized_name})
			RETURN e.uuid AS uuid
			LIMIT 1
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"type":            string(typ),
			"normalized_name": normalizedName,
		})
		if err != nil {
			return "", err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return "", err
		}
		if len(records) == 0 {
			return "", nil
		}
		uuid, _ := records[0].Get("uuid")
		id, _ := uuid.(string)
		return id, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up entity: %w", err)
	}
	return result.(string), nil
}

// UpsertRelation merges an action edge keyed on the folded predicate.
// Re-analyzing the same document updates the evidence instead of
// stacking a second edge.
func (s *GraphStore) UpsertRelation(ctx context.Context, rel *common.Relation) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (s:Entity {uuid: $subject_uuid})
			MATCH (o:Entity {uuid: $object_uuid})
			MERGE (s)-[r:RELATES_TO {predicate_key: $predicate_key}]->(o)
			ON CREATE SET r.uuid = $uuid, r.predicate = $predicate
			SET r.category = $category,
				r.confidence = $confidence,
				r.units = $units
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"subject_uuid":  rel.Subject.ID,
			"object_uuid":   rel.Object.ID,
			"predicate_key": common.FoldPredicate(rel.Predicate),
			"uuid":          rel.ID,
			"predicate":     rel.Predicate,
			"category":      string(rel.Category),
			"confidence":    rel.Confidence,
			"units":         rel.Units,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert relation %q -[%s]-> %q: %w",
			rel.Subject.Name, rel.Predicate, rel.Object.Name, err)
	}
	return nil
}

func (s *GraphStore) LinkEntityToDocument(ctx context.Context, entityID, documentID string) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (e:Entity {uuid: $entity_uuid})
			MATCH (d:Document {uuid: $document_uuid})
			MERGE (e)-[:MENTIONED_IN]->(d)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"entity_uuid":   entityID,
			"document_uuid": documentID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to link entity to document: %w", err)
	}
	return nil
}

// Reset removes every node and relationship in the database.
func (s *GraphStore) Reset(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}

	logger.Info("Graph database reset")
	return nil
}

func (s *GraphStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
