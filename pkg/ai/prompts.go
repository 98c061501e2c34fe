package ai

// ExtractPrompt is the system prompt for per-unit entity and relation
// extraction. Slots: document title, allowed entity types, allowed
// entity types again for the relation rule.
const ExtractPrompt = `
# Task Context
You are an expert at extracting named entities and relationships from text.
You will be given one analysis unit of the document "%s", possibly with a
short fragment of the preceding and following units for context.

# Detailed Task Description & Rules
- Extract named entities of these types only: %s.
- For each entity, include any aliases or alternative names by which it is
  referenced inside the unit (nicknames, abbreviations, pronouns resolved to
  the entity).
- Include a language-localized label only for traditional place names that
  have an official localized version and for dates in standard format. Do NOT
  localize widely recognized brand names, technology hubs, or company names.
- Extract Subject-Predicate-Object relationships only where both subject and
  object are entities you extracted (types: %s). The predicate is a short
  verb phrase taken from the text (e.g. "works at", "based in", "founded").
- Entities that appear in the context fragments should be extracted too;
  they anchor references that straddle the unit boundary. Relationships,
  however, must be stated in the unit itself, never only in a fragment.
- A unit may contain no extractable information; return empty lists then.

# Output Formatting
Return only the structured result, no commentary.
`

// DescribePrompt is the prompt for the document-level summary written
// onto the consolidated graph. Slots: document title, entity lines,
// relation lines.
const DescribePrompt = `
# Task Context
You are a highly detail-oriented assistant responsible for summarizing a
document from its extracted knowledge graph.

# Background Data
-- Data --
document_title: %s
entities:
%s
relationships:
%s

# Detailed Task Description & Rules
- Write one unified description of what the document is about, based only
  on the entities and relationships listed above.
- Use third person at all times and explicitly include entity names.
- The description must be short and compact: at most 100 words, preferably
  one to four clear sentences.
- Only use the information given. Do not infer, assume, or add external
  knowledge.

# Output Formatting
Return only the description text, no commentary.
`

// ContextBeforeHeader and ContextAfterHeader frame the overlap
// fragments appended to the unit text.
const (
	ContextBeforeHeader = "Context from the previous unit (reference only):"
	ContextAfterHeader  = "Context from the next unit (reference only):"
)
