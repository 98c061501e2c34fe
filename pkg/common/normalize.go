package common

import (
	"strings"
)

// ResolutionKey identifies a canonical entity for lookup purposes.
// The same key construction is used on every write and lookup path —
// entity resolution, relation endpoint resolution, and the external
// store's key lookup — so the two can never drift apart.
type ResolutionKey struct {
	Type EntityType
	Name string // output of NormalizeEntityName
}

// KeyFor builds the resolution key for a mention of the given type.
func KeyFor(typ EntityType, name string) ResolutionKey {
	return ResolutionKey{Type: typ, Name: NormalizeEntityName(typ, name)}
}

// NormalizeSpace trims the value and collapses all internal
// whitespace, including line breaks, to single spaces.
func NormalizeSpace(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.Join(strings.Fields(value), " ")
}

var personHonorifics = []string{
	"mr", "mrs", "ms", "miss", "dr", "prof", "professor", "sir",
	"dame", "lord", "lady", "don", "doña", "fr", "rev", "sr", "sra",
}

var leadingDeterminers = []string{"the", "el", "la", "los", "las", "le", "der", "die", "das"}

// NormalizeEntityName produces the comparison form of an entity name:
// whitespace-collapsed, honorifics/determiners stripped per type,
// lower-cased. Canonical display names are never taken from this —
// it exists only for key comparison, on both write and lookup paths.
func NormalizeEntityName(typ EntityType, name string) string {
	name = strings.ToLower(NormalizeSpace(name))
	if name == "" {
		return ""
	}

	switch typ {
	case EntityPerson:
		name = stripLeadingToken(name, personHonorifics)
	case EntityOrganization, EntityEvent, EntityObject:
		// Locations keep their determiner: in place names like La Paz
		// or Los Angeles it is part of the name, not an article.
		name = stripLeadingToken(name, leadingDeterminers)
	}

	return name
}

func stripLeadingToken(name string, tokens []string) string {
	first, rest, found := strings.Cut(name, " ")
	if !found {
		return name
	}
	first = strings.TrimSuffix(first, ".")
	for _, tok := range tokens {
		if first == tok {
			return rest
		}
	}
	return name
}

// FoldPredicate produces the comparison form of a relation predicate,
// used for triple deduplication and as the store's relation key.
func FoldPredicate(predicate string) string {
	return strings.ToLower(NormalizeSpace(predicate))
}
