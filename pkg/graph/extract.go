package graph

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/invopop/jsonschema"

	"github.com/grafo-kg/grafo/pkg/ai"
	"github.com/grafo-kg/grafo/pkg/common"
)

type extractEntity struct {
	Name      string   `json:"name" jsonschema_description:"Name of the entity exactly as it appears in the text"`
	Type      string   `json:"type" jsonschema_description:"One of the provided entity types"`
	Aliases   []string `json:"aliases" jsonschema_description:"Other names the entity is referenced by inside this unit"`
	Localized string   `json:"localized" jsonschema_description:"Language-localized label for the entity, empty when none applies"`
}

type extractRelation struct {
	Subject   string `json:"subject" jsonschema_description:"Name of the subject entity, as identified above"`
	Predicate string `json:"predicate" jsonschema_description:"Short verb phrase connecting subject and object, taken from the text"`
	Object    string `json:"object" jsonschema_description:"Name of the object entity, as identified above"`
}

type extractResponse struct {
	Entities  []extractEntity   `json:"entities" jsonschema_description:"Entities identified in the analysis unit"`
	Relations []extractRelation `json:"relations" jsonschema_description:"Subject-predicate-object relationships identified in the analysis unit"`
}

// rawExtraction is the unmerged per-unit result handed to the
// resolver. Mentions keep their surface form; identity is assigned
// later.
type rawExtraction struct {
	unit      common.Unit
	entities  []extractEntity
	relations []extractRelation
}

func extractFromUnit(
	ctx context.Context,
	unit common.Unit,
	docTitle string,
	client ai.GraphAIClient,
) (*rawExtraction, error) {
	if unit.Empty() {
		return &rawExtraction{unit: unit}, nil
	}

	types := make([]string, 0, len(common.EntityTypes()))
	for _, t := range common.EntityTypes() {
		types = append(types, string(t))
	}
	typeList := strings.Join(types, ", ")

	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, docTitle, typeList, typeList)

	var prompt strings.Builder
	if unit.OverlapBefore != "" {
		prompt.WriteString(ai.ContextBeforeHeader)
		prompt.WriteString("\n")
		prompt.WriteString(unit.OverlapBefore)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString(unit.Text)
	if unit.OverlapAfter != "" {
		prompt.WriteString("\n\n")
		prompt.WriteString(ai.ContextAfterHeader)
		prompt.WriteString("\n")
		prompt.WriteString(unit.OverlapAfter)
	}

	var res extractResponse
	err := client.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relations",
		"Extract entities and subject-predicate-object relationships from one analysis unit.",
		prompt.String(),
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return nil, err
	}

	out := &rawExtraction{unit: unit}
	for _, e := range res.Entities {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		out.entities = append(out.entities, e)
	}
	for _, r := range res.Relations {
		if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Object) == "" {
			continue
		}
		out.relations = append(out.relations, r)
	}

	return out, nil
}
