package graph

import (
	"fmt"
	"sync"

	"github.com/grafo-kg/grafo/pkg/logger"
)

// UnitFailure records one unit whose extraction did not succeed after
// retries.
type UnitFailure struct {
	Index  int
	Reason string
}

// RunSummary accounts for everything a run skipped or dropped, so a
// partial result is never silently presented as a complete one.
type RunSummary struct {
	mu sync.Mutex

	UnitCount        int
	EmptyUnits       int
	FailedUnits      []UnitFailure
	DroppedMentions  []string
	DroppedRelations []string
	InferredCount    int
	FailedUpserts    []string
}

func (s *RunSummary) unitFailed(index int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedUnits = append(s.FailedUnits, UnitFailure{Index: index, Reason: err.Error()})
	logger.Warn("Unit extraction failed", "unit", index, "error", err)
}

func (s *RunSummary) mentionDropped(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DroppedMentions = append(s.DroppedMentions, fmt.Sprintf("%s: %s", name, reason))
	logger.Warn("Dropped entity mention", "name", name, "reason", reason)
}

func (s *RunSummary) relationDropped(subject, predicate, object, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DroppedRelations = append(s.DroppedRelations,
		fmt.Sprintf("(%s, %s, %s): %s", subject, predicate, object, reason))
	logger.Warn("Dropped relation", "subject", subject, "predicate", predicate,
		"object", object, "reason", reason)
}

// Log writes a condensed account of the run.
func (s *RunSummary) Log(entities, relations int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Info("Run complete",
		"units", s.UnitCount,
		"emptyUnits", s.EmptyUnits,
		"failedUnits", len(s.FailedUnits),
		"entities", entities,
		"relations", relations,
		"inferred", s.InferredCount,
		"droppedMentions", len(s.DroppedMentions),
		"droppedRelations", len(s.DroppedRelations),
		"failedUpserts", len(s.FailedUpserts),
	)
	for _, f := range s.FailedUnits {
		logger.Info("Failed unit", "unit", f.Index, "reason", f.Reason)
	}
}
