package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/grafo-kg/grafo/internal/util"
	"github.com/grafo-kg/grafo/pkg/ai"
	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"
	"github.com/grafo-kg/grafo/pkg/logger"
	"github.com/grafo-kg/grafo/pkg/store"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ProcessParams bundles the per-run collaborators of a document run.
// Storage is optional; without it the consolidated document is
// returned but not persisted.
type ProcessParams struct {
	AIClient ai.GraphAIClient
	Storage  store.GraphStorage
	Language string
	Provider string
}

// ProcessDocument runs the full pipeline for one document: segment,
// extract in parallel, resolve identities in unit order, consolidate
// relations and optionally persist. A failed unit is skipped with
// accounting; the run only fails outright when segmentation yields
// nothing, every unit fails, or the context is canceled.
func (g *GraphClient) ProcessDocument(
	ctx context.Context,
	doc *loader.Document,
	params ProcessParams,
) (*common.Document, *RunSummary, error) {
	units, err := g.segmentDocument(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to segment document %q: %w", doc.Title, err)
	}

	summary := &RunSummary{UnitCount: len(units)}
	for _, u := range units {
		if u.Empty() {
			summary.EmptyUnits++
		}
	}

	logger.Info("Processing document", "title", doc.Title, "units", len(units))

	extractions, err := g.extractUnits(ctx, units, doc.Title, params.AIClient, summary)
	if err != nil {
		return nil, summary, err
	}

	resolver := newResolver(g.aliasSimilarity, params.Storage, summary)
	for _, x := range extractions {
		if x == nil {
			continue
		}
		for _, m := range x.entities {
			if err := resolver.addMention(ctx, m, x.unit.Index); err != nil {
				return nil, summary, err
			}
		}
	}

	relations, cons, err := consolidateRelations(resolver, extractions, summary)
	if err != nil {
		return nil, summary, err
	}
	relations, err = inferBridgeRelations(resolver, cons, units, summary)
	if err != nil {
		return nil, summary, err
	}

	description, err := describeDocument(ctx, doc.Title, resolver.entities, relations, params.AIClient)
	if err != nil {
		if ctx.Err() != nil {
			return nil, summary, ctx.Err()
		}
		// A missing description never fails the run.
		logger.Warn("Document description failed", "title", doc.Title, "error", err)
	}

	result := &common.Document{
		ID:          uuid.NewString(),
		Title:       doc.Title,
		Description: description,
		Source:      doc.Source,
		SourceType:  doc.Type,
		Language:    params.Language,
		Provider:    params.Provider,
		AnalyzedAt:  time.Now().UTC(),
		Entities:    resolver.entities,
		Relations:   relations,
	}

	if params.Storage != nil {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}
		sink := store.NewSink(store.NewSinkParams{
			Storage:    params.Storage,
			MaxRetries: g.maxRetries,
			BaseDelay:  g.retryBaseDelay,
		})
		report, err := sink.Persist(ctx, result)
		if report != nil {
			summary.FailedUpserts = report.Failures
		}
		if err != nil {
			return nil, summary, err
		}
	}

	summary.Log(len(result.Entities), len(result.Relations))
	return result, summary, nil
}

// extractUnits fans extraction out over a bounded worker pool.
// Results come back indexed by position so downstream resolution
// stays in unit order regardless of completion order.
func (g *GraphClient) extractUnits(
	ctx context.Context,
	units []common.Unit,
	docTitle string,
	client ai.GraphAIClient,
	summary *RunSummary,
) ([]*rawExtraction, error) {
	extractions := make([]*rawExtraction, len(units))

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelRequests)
	for i, unit := range units {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}

			x, err := util.RetryWithBackoff(gCtx, g.maxRetries, g.retryBaseDelay,
				func(ctx context.Context) (*rawExtraction, error) {
					if err := g.limiter.Wait(ctx); err != nil {
						return nil, err
					}
					res, err := g.breaker.Execute(func() (any, error) {
						return extractFromUnit(ctx, unit, docTitle, client)
					})
					if err != nil {
						return nil, err
					}
					return res.(*rawExtraction), nil
				})
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				summary.unitFailed(unit.Index, err)
				return nil
			}
			extractions[i] = x
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nonEmpty := len(units) - summary.EmptyUnits
	if nonEmpty > 0 && len(summary.FailedUnits) == nonEmpty {
		return nil, fmt.Errorf("%w: document %q", ErrAllUnitsFailed, docTitle)
	}

	return extractions, nil
}
