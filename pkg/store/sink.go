package store

import (
	"context"
	"fmt"
	"time"

	"github.com/grafo-kg/grafo/internal/util"
	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/logger"
)

// PersistReport accounts for upserts that failed after retries.
// Successful upserts are never rolled back; a failed one is recorded
// and skipped.
type PersistReport struct {
	Entities  int
	Relations int
	Links     int
	Failures  []string
}

// Sink drives the idempotent persistence of a consolidated document
// into a GraphStorage backend, retrying each upsert independently.
type Sink struct {
	storage    GraphStorage
	maxRetries int
	baseDelay  time.Duration
}

type NewSinkParams struct {
	Storage    GraphStorage
	MaxRetries int
	BaseDelay  time.Duration
}

func NewSink(params NewSinkParams) *Sink {
	if params.MaxRetries <= 0 {
		params.MaxRetries = 3
	}
	if params.BaseDelay <= 0 {
		params.BaseDelay = 250 * time.Millisecond
	}
	return &Sink{
		storage:    params.Storage,
		maxRetries: params.MaxRetries,
		baseDelay:  params.BaseDelay,
	}
}

// Persist writes the document node, then entities, mention links and
// relations. Order matters: an edge is only attempted once both its
// endpoints were upserted without failure.
func (s *Sink) Persist(ctx context.Context, doc *common.Document) (*PersistReport, error) {
	report := &PersistReport{}

	err := s.retry(ctx, func(ctx context.Context) error {
		return s.storage.CreateDocument(ctx, doc)
	})
	if err != nil {
		return report, fmt.Errorf("failed to create document node: %w", err)
	}

	persisted := make(map[string]bool, len(doc.Entities))
	for _, entity := range doc.Entities {
		err := s.retry(ctx, func(ctx context.Context) error {
			return s.storage.UpsertEntity(ctx, entity)
		})
		if err != nil {
			report.fail(fmt.Sprintf("entity %s", entity.Name), err)
			continue
		}
		persisted[entity.ID] = true
		report.Entities++

		err = s.retry(ctx, func(ctx context.Context) error {
			return s.storage.LinkEntityToDocument(ctx, entity.ID, doc.ID)
		})
		if err != nil {
			report.fail(fmt.Sprintf("link %s -> document", entity.Name), err)
			continue
		}
		report.Links++
	}

	for _, rel := range doc.Relations {
		if !persisted[rel.Subject.ID] || !persisted[rel.Object.ID] {
			report.fail(fmt.Sprintf("relation %s %s %s", rel.Subject.Name, rel.Predicate, rel.Object.Name),
				fmt.Errorf("endpoint entity was not persisted"))
			continue
		}
		err := s.retry(ctx, func(ctx context.Context) error {
			return s.storage.UpsertRelation(ctx, rel)
		})
		if err != nil {
			report.fail(fmt.Sprintf("relation %s %s %s", rel.Subject.Name, rel.Predicate, rel.Object.Name), err)
			continue
		}
		report.Relations++
	}

	return report, nil
}

func (s *Sink) retry(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := util.RetryWithBackoff(ctx, s.maxRetries, s.baseDelay, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (r *PersistReport) fail(desc string, err error) {
	r.Failures = append(r.Failures, fmt.Sprintf("%s: %v", desc, err))
	logger.Warn("Persistence failed", "target", desc, "error", err)
}
