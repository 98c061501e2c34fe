package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/logger"
	"github.com/grafo-kg/grafo/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// resolver maintains the in-run identity map: one canonical entity per
// (type, normalized name), with alias and similarity absorption. The
// display name of an entity is the surface form of its first mention.
type resolver struct {
	threshold float64
	lookup    store.EntityLookup
	summary   *RunSummary

	entities []*common.Entity
	byKey    map[common.ResolutionKey]*common.Entity
	byAlias  map[common.ResolutionKey]*common.Entity
}

func newResolver(threshold float64, lookup store.EntityLookup, summary *RunSummary) *resolver {
	return &resolver{
		threshold: threshold,
		lookup:    lookup,
		summary:   summary,
		byKey:     make(map[common.ResolutionKey]*common.Entity),
		byAlias:   make(map[common.ResolutionKey]*common.Entity),
	}
}

// addMention folds one extracted mention into the identity map,
// creating a new canonical entity only when no exact, persisted,
// alias or similarity match exists.
func (r *resolver) addMention(ctx context.Context, m extractEntity, unitIndex int) error {
	typ, ok := common.ParseEntityType(m.Type)
	if !ok {
		r.summary.mentionDropped(m.Name, fmt.Sprintf("unrecognized entity type %q", m.Type))
		return nil
	}

	key := common.KeyFor(typ, m.Name)
	if key.Name == "" {
		r.summary.mentionDropped(m.Name, "name empty after normalization")
		return nil
	}

	entity := r.byKey[key]
	if entity == nil {
		entity = r.byAlias[key]
	}
	if entity == nil && r.lookup != nil {
		id, err := r.lookup.LookupEntityByKey(ctx, typ, key.Name)
		if err != nil {
			logger.Warn("Entity lookup failed", "name", m.Name, "error", err)
		} else if id != "" {
			entity = &common.Entity{ID: id, Name: strings.TrimSpace(m.Name), Type: typ}
			r.register(entity, key)
		}
	}
	if entity == nil {
		entity = r.closestMatch(typ, key.Name)
	}

	if entity == nil {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate entity ID: %w", err)
		}
		entity = &common.Entity{ID: id, Name: strings.TrimSpace(m.Name), Type: typ}
		r.register(entity, key)
	}

	r.absorb(entity, m, unitIndex)
	return nil
}

func (r *resolver) register(entity *common.Entity, key common.ResolutionKey) {
	r.entities = append(r.entities, entity)
	r.byKey[key] = entity
}

// closestMatch scans canonical names and aliases of same-typed
// entities for a normalized edit-distance similarity at or above the
// threshold. Near misses are logged but never merged.
func (r *resolver) closestMatch(typ common.EntityType, normalized string) *common.Entity {
	var best *common.Entity
	bestScore := 0.0

	for _, e := range r.entities {
		if e.Type != typ {
			continue
		}
		score := similarity(normalized, common.NormalizeEntityName(typ, e.Name))
		for _, alias := range e.Aliases {
			if s := similarity(normalized, common.NormalizeEntityName(typ, alias)); s > score {
				score = s
			}
		}
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	if best == nil {
		return nil
	}
	if bestScore >= r.threshold {
		logger.Debug("Merged mention by similarity",
			"mention", normalized, "entity", best.Name, "score", bestScore)
		return best
	}
	if bestScore >= r.threshold*0.8 {
		logger.Debug("Mention kept distinct, similarity below threshold",
			"mention", normalized, "closest", best.Name, "score", bestScore)
	}
	return nil
}

func (r *resolver) absorb(entity *common.Entity, m extractEntity, unitIndex int) {
	if !slices.Contains(entity.Units, unitIndex) {
		entity.Units = append(entity.Units, unitIndex)
		slices.Sort(entity.Units)
	}

	if entity.Localized == "" && strings.TrimSpace(m.Localized) != "" {
		entity.Localized = strings.TrimSpace(m.Localized)
	}

	canonical := common.NormalizeEntityName(entity.Type, entity.Name)
	candidates := append([]string{strings.TrimSpace(m.Name)}, m.Aliases...)
	if m.Localized != "" {
		candidates = append(candidates, m.Localized)
	}
	for _, alias := range candidates {
		alias = strings.TrimSpace(alias)
		if alias == "" {
			continue
		}
		key := common.KeyFor(entity.Type, alias)
		if key.Name == "" || key.Name == canonical {
			continue
		}
		if owner, ok := r.byKey[key]; ok && owner != entity {
			continue
		}
		if owner, ok := r.byAlias[key]; ok && owner != entity {
			continue
		}
		if !containsFold(entity.Aliases, alias) {
			entity.Aliases = append(entity.Aliases, alias)
		}
		r.byAlias[key] = entity
	}
}

// resolveSurface maps a relation endpoint's surface text back to its
// canonical entity. Relations carry no type, so every type's
// normalization is tried in declaration order; the first hit wins.
func (r *resolver) resolveSurface(name string) *common.Entity {
	for _, typ := range common.EntityTypes() {
		key := common.KeyFor(typ, name)
		if key.Name == "" {
			continue
		}
		if e, ok := r.byKey[key]; ok {
			return e
		}
		if e, ok := r.byAlias[key]; ok {
			return e
		}
	}
	return nil
}

// entitiesSpanning returns entities with evidence in both units, in
// creation order.
func (r *resolver) entitiesSpanning(a, b int) []*common.Entity {
	var out []*common.Entity
	for _, e := range r.entities {
		if slices.Contains(e.Units, a) && slices.Contains(e.Units, b) {
			out = append(out, e)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// similarity is 1 - levenshtein(a, b) / max(len(a), len(b)), over
// runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	dist := levenshtein(ra, rb)
	longest := max(len(ra), len(rb))
	return 1 - float64(dist)/float64(longest)
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
