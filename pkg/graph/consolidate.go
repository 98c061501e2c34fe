package graph

import (
	"fmt"
	"slices"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type tripleKey struct {
	subject   string
	predicate string
	object    string
}

// consolidator deduplicates relations on (subject, folded predicate,
// object) and tracks which entity pairs are connected at all, which
// the inference step uses to avoid redundant edges.
type consolidator struct {
	relations []*common.Relation
	byTriple  map[tripleKey]*common.Relation
	byPair    map[[2]string]bool
}

func newConsolidator() *consolidator {
	return &consolidator{
		byTriple: make(map[tripleKey]*common.Relation),
		byPair:   make(map[[2]string]bool),
	}
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (c *consolidator) add(rel *common.Relation) {
	key := tripleKey{
		subject:   rel.Subject.ID,
		predicate: common.FoldPredicate(rel.Predicate),
		object:    rel.Object.ID,
	}
	if existing, ok := c.byTriple[key]; ok {
		for _, u := range rel.Units {
			if !slices.Contains(existing.Units, u) {
				existing.Units = append(existing.Units, u)
				slices.Sort(existing.Units)
			}
		}
		if existing.Confidence < rel.Confidence {
			existing.Confidence = rel.Confidence
			existing.Category = rel.Category
		}
		return
	}
	c.byTriple[key] = rel
	c.byPair[pairKey(rel.Subject.ID, rel.Object.ID)] = true
	c.relations = append(c.relations, rel)
}

func (c *consolidator) connected(a, b string) bool {
	return c.byPair[pairKey(a, b)]
}

// consolidateRelations resolves every raw relation mention against the
// identity map and folds duplicates. Mentions whose subject or object
// cannot be resolved, or that relate an entity to itself, are dropped
// with accounting.
func consolidateRelations(
	res *resolver,
	extractions []*rawExtraction,
	summary *RunSummary,
) ([]*common.Relation, *consolidator, error) {
	cons := newConsolidator()

	for _, x := range extractions {
		if x == nil {
			continue
		}
		for _, raw := range x.relations {
			predicate := common.NormalizeSpace(raw.Predicate)
			if predicate == "" {
				summary.relationDropped(raw.Subject, raw.Predicate, raw.Object, "empty predicate")
				continue
			}

			subject := res.resolveSurface(raw.Subject)
			if subject == nil {
				summary.relationDropped(raw.Subject, predicate, raw.Object, "unresolvable subject")
				continue
			}
			object := res.resolveSurface(raw.Object)
			if object == nil {
				summary.relationDropped(raw.Subject, predicate, raw.Object, "unresolvable object")
				continue
			}
			if subject.ID == object.ID {
				summary.relationDropped(raw.Subject, predicate, raw.Object, "subject and object resolve to the same entity")
				continue
			}

			id, err := gonanoid.New()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate relation ID: %w", err)
			}
			cons.add(&common.Relation{
				ID:         id,
				Subject:    subject,
				Predicate:  predicate,
				Object:     object,
				Category:   common.RelationStated,
				Confidence: 1.0,
				Units:      []int{x.unit.Index},
			})
		}
	}

	return cons.relations, cons, nil
}

// inferBridgeRelations adds low-confidence associations between
// entities that co-occur across an overlap-bridged unit boundary and
// have no stated relation between them. Boundaries where either side
// contributed no overlap are not bridged.
func inferBridgeRelations(
	res *resolver,
	cons *consolidator,
	units []common.Unit,
	summary *RunSummary,
) ([]*common.Relation, error) {
	for i := 1; i < len(units); i++ {
		if units[i-1].OverlapAfter == "" || units[i].OverlapBefore == "" {
			continue
		}

		spanning := res.entitiesSpanning(units[i-1].Index, units[i].Index)
		for a := 0; a < len(spanning); a++ {
			for b := a + 1; b < len(spanning); b++ {
				subject, object := spanning[a], spanning[b]
				if cons.connected(subject.ID, object.ID) {
					continue
				}

				id, err := gonanoid.New()
				if err != nil {
					return nil, fmt.Errorf("failed to generate relation ID: %w", err)
				}
				cons.add(&common.Relation{
					ID:         id,
					Subject:    subject,
					Predicate:  "associated with",
					Object:     object,
					Category:   common.RelationInferred,
					Confidence: inferredConfidence,
					Units:      []int{units[i-1].Index, units[i].Index},
				})
				summary.InferredCount++
				logger.Debug("Inferred association",
					"subject", subject.Name, "object", object.Name,
					"units", []int{units[i-1].Index, units[i].Index})
			}
		}
	}

	return cons.relations, nil
}
