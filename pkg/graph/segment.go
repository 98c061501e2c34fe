package graph

import (
	"strings"
	"unicode"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"

	"github.com/pkoukk/tiktoken-go"
)

// segmentDocument turns a loaded document into an ordered list of
// units. PDF documents produce one unit per page, keeping the 1-based
// page numbering intact even for pages without extractable text. Text
// and web documents produce a single unit, or several sentence-aligned
// chunks when a token budget is configured.
//
// Adjacent units share bounded overlap fragments so the extraction
// prompt can see across the boundary.
func (g *GraphClient) segmentDocument(doc *loader.Document) ([]common.Unit, error) {
	var units []common.Unit
	var err error

	if doc.Type == common.SourcePDF {
		units = unitsFromPages(doc.Pages)
	} else {
		units, err = g.unitsFromText(strings.Join(doc.Pages, "\n\n"))
		if err != nil {
			return nil, err
		}
	}

	if len(units) == 0 {
		return nil, ErrNoUnits
	}

	empty := 0
	for _, u := range units {
		if u.Empty() {
			empty++
		}
	}
	if empty == len(units) {
		return nil, ErrNoUnits
	}

	g.attachOverlaps(units)
	return units, nil
}

func unitsFromPages(pages []string) []common.Unit {
	units := make([]common.Unit, 0, len(pages))
	for i, page := range pages {
		units = append(units, common.Unit{
			Index: i + 1,
			Page:  i + 1,
			Text:  strings.TrimSpace(page),
		})
	}
	return units
}

func (g *GraphClient) unitsFromText(text string) ([]common.Unit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if g.maxUnitTokens <= 0 {
		return []common.Unit{{Index: 1, Text: text}}, nil
	}

	chunks, err := chunkBySentences(text, g.tokenEncoder, g.maxUnitTokens)
	if err != nil {
		return nil, err
	}

	units := make([]common.Unit, 0, len(chunks))
	for i, chunk := range chunks {
		units = append(units, common.Unit{Index: i + 1, Text: chunk})
	}
	return units, nil
}

// attachOverlaps copies a bounded fragment of each neighbor into the
// unit so extraction can resolve references that straddle a boundary.
// Empty neighbors contribute nothing, which also keeps inference from
// bridging across them.
func (g *GraphClient) attachOverlaps(units []common.Unit) {
	for i := range units {
		if i > 0 {
			units[i].OverlapBefore = tailRunes(units[i-1].Text, g.overlapRunes)
		}
		if i < len(units)-1 {
			units[i].OverlapAfter = headRunes(units[i+1].Text, g.overlapRunes)
		}
	}
}

func tailRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}

func headRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func chunkBySentences(text, encoder string, maxTokens int) ([]string, error) {
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
		current = nil
		currentTokens = 0
	}

	for _, sentence := range sentences {
		tokens := len(enc.Encode(sentence, nil, nil)) + 1
		if currentTokens+tokens > maxTokens && len(current) > 0 {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	flush()

	return chunks, nil
}

func splitIntoSentences(text string) []string {
	lines := strings.Split(text, "\n")
	var sentences []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		for _, sentence := range splitLineIntoSentences(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			if strings.HasSuffix(sentence, ".") ||
				strings.HasSuffix(sentence, "!") ||
				strings.HasSuffix(sentence, "?") {
				flush()
			}
		}
	}
	flush()

	var result []string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] == '.' || line[i] == '!' || line[i] == '?' {
			// Keep numbered listings like "1. item" in one piece.
			if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
				continue
			}

			j := i + 1
			for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
				current.WriteByte(line[j])
				j++
			}
			for j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == ')' ||
				line[j] == ']' || line[j] == '}') {
				current.WriteByte(line[j])
				j++
			}

			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
			i = j - 1
		}
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}
