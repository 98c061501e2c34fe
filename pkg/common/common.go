package common

import (
	"strings"
	"time"
)

// EntityType is the closed set of node types the pipeline recognizes.
// Raw mentions carry free-text types; ParseEntityType maps them onto
// this set and anything unmappable is dropped before resolution.
type EntityType string

const (
	EntityPerson       EntityType = "Person"
	EntityOrganization EntityType = "Organization"
	EntityLocation     EntityType = "Location"
	EntityDate         EntityType = "Date"
	EntityEvent        EntityType = "Event"
	EntityObject       EntityType = "Object"
	EntityCode         EntityType = "Code"
)

// EntityTypes lists every canonical entity type in a fixed order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityPerson,
		EntityOrganization,
		EntityLocation,
		EntityDate,
		EntityEvent,
		EntityObject,
		EntityCode,
	}
}

var entityTypeSynonyms = map[string]EntityType{
	"person":        EntityPerson,
	"people":        EntityPerson,
	"per":           EntityPerson,
	"individual":    EntityPerson,
	"organization":  EntityOrganization,
	"organisation":  EntityOrganization,
	"org":           EntityOrganization,
	"company":       EntityOrganization,
	"institution":   EntityOrganization,
	"agency":        EntityOrganization,
	"location":      EntityLocation,
	"place":         EntityLocation,
	"loc":           EntityLocation,
	"gpe":           EntityLocation,
	"city":          EntityLocation,
	"country":       EntityLocation,
	"region":        EntityLocation,
	"date":          EntityDate,
	"time":          EntityDate,
	"year":          EntityDate,
	"period":        EntityDate,
	"event":         EntityEvent,
	"meeting":       EntityEvent,
	"occurrence":    EntityEvent,
	"object":        EntityObject,
	"thing":         EntityObject,
	"product":       EntityObject,
	"artifact":      EntityObject,
	"creative_work": EntityObject,
	"work":          EntityObject,
	"code":          EntityCode,
	"codename":      EntityCode,
	"identifier":    EntityCode,
}

// ParseEntityType maps a raw, case-insensitive type label onto the
// closed entity taxonomy. The second return value is false when the
// label cannot be mapped.
func ParseEntityType(raw string) (EntityType, bool) {
	key := strings.ToLower(NormalizeSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	t, ok := entityTypeSynonyms[key]
	return t, ok
}

// RelationCategory distinguishes relations stated in a unit's text
// from relations synthesized out of cross-unit co-occurrence.
type RelationCategory string

const (
	RelationStated   RelationCategory = "stated"
	RelationInferred RelationCategory = "inferred"
)

// SourceType identifies the kind of input a document came from.
type SourceType string

const (
	SourceText SourceType = "text"
	SourceWeb  SourceType = "web"
	SourcePDF  SourceType = "pdf"
)

// Unit is one analysis unit submitted to the reasoning service: a
// page for PDFs, the whole document (or a token-bounded slice of it)
// for text and web sources. Units are immutable once segmented.
//
// OverlapBefore and OverlapAfter carry bounded fragments of the
// neighboring units so relations split across a page break stay
// resolvable; they are context only and never count as the unit's own
// text.
type Unit struct {
	Index         int    `json:"index"` // 1-based, gap-free
	Page          int    `json:"page,omitempty"`
	Text          string `json:"text"`
	OverlapBefore string `json:"overlap_before,omitempty"`
	OverlapAfter  string `json:"overlap_after,omitempty"`
}

// Empty reports whether the unit has no extractable text of its own.
// Empty units are still emitted by the segmenter so unit indices stay
// continuous for evidence tracking.
func (u Unit) Empty() bool {
	return strings.TrimSpace(u.Text) == ""
}

// Entity is a deduplicated node in the graph. ID is the stable
// identity: assigned once when the entity is first resolved and never
// reused for a different real-world referent. Name keeps the casing
// of the first-seen mention; Units records every unit index that
// mentioned the entity.
type Entity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      EntityType `json:"type"`
	Aliases   []string   `json:"aliases,omitempty"`
	Localized string     `json:"localized,omitempty"`
	Units     []int      `json:"units"`
}

// Key returns the entity's resolution key.
func (e *Entity) Key() ResolutionKey {
	return ResolutionKey{Type: e.Type, Name: NormalizeEntityName(e.Type, e.Name)}
}

// Relation is a directed, typed edge between two canonical entities.
// Within one consolidation run no two relations share
// (Subject.ID, folded predicate, Object.ID), and Subject is never
// Object.
type Relation struct {
	ID         string           `json:"id"`
	Subject    *Entity          `json:"subject"`
	Predicate  string           `json:"predicate"`
	Object     *Entity          `json:"object"`
	Category   RelationCategory `json:"category"`
	Confidence float64          `json:"confidence"`
	Units      []int            `json:"units"`
}

// Document is the consolidated result of one analysis run: metadata
// about the source plus the full canonical entity and relation sets.
// It is mutated only during the merge phase and treated as immutable
// once handed to a sink.
type Document struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Source      string      `json:"source"`
	SourceType  SourceType  `json:"source_type"`
	Language    string      `json:"language"`
	Provider    string      `json:"provider,omitempty"`
	AnalyzedAt  time.Time   `json:"analyzed_at"`
	Entities    []*Entity   `json:"entities"`
	Relations   []*Relation `json:"relations"`
}
