package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/grafo-kg/grafo/pkg/ai"
	"github.com/grafo-kg/grafo/pkg/common"
)

// describeDocument asks the description model for a compact summary of
// the consolidated graph. The summary lands on the document node and
// in the analysis artifact.
func describeDocument(
	ctx context.Context,
	title string,
	entities []*common.Entity,
	relations []*common.Relation,
	client ai.GraphAIClient,
) (string, error) {
	if len(entities) == 0 {
		return "", nil
	}

	var entityLines strings.Builder
	for _, e := range entities {
		fmt.Fprintf(&entityLines, "- %s (%s)\n", e.Name, e.Type)
	}
	var relationLines strings.Builder
	for _, r := range relations {
		fmt.Fprintf(&relationLines, "- %s %s %s\n", r.Subject.Name, r.Predicate, r.Object.Name)
	}
	if relationLines.Len() == 0 {
		relationLines.WriteString("- none\n")
	}

	prompt := fmt.Sprintf(ai.DescribePrompt, title, entityLines.String(), relationLines.String())
	res, err := client.GenerateCompletion(ctx, prompt)
	if err != nil {
		return "", err
	}

	return common.NormalizeSpace(res), nil
}
