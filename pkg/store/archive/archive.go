// Package archive writes the consolidated analysis of a document to a
// JSON file next to the graph store output, one artifact per source.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/logger"
)

type entityRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Aliases   []string `json:"aliases,omitempty"`
	Localized string   `json:"localized,omitempty"`
	Units     []int    `json:"units,omitempty"`
}

type relationRecord struct {
	ID         string  `json:"id"`
	SubjectID  string  `json:"subject_id"`
	Predicate  string  `json:"predicate"`
	ObjectID   string  `json:"object_id"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Units      []int   `json:"units,omitempty"`
}

type analysisRecord struct {
	DocumentID  string           `json:"document_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Source      string           `json:"source"`
	SourceType  string           `json:"source_type"`
	Language    string           `json:"language,omitempty"`
	Provider    string           `json:"provider,omitempty"`
	AnalyzedAt  time.Time        `json:"analyzed_at"`
	Entities    []entityRecord   `json:"entities"`
	Relations   []relationRecord `json:"relations"`
}

// Write stores the document analysis as <stem>_analysis.json inside
// dir and returns the file path. Relations reference entities by ID to
// keep the artifact flat.
func Write(dir string, doc *common.Document) (string, error) {
	record := analysisRecord{
		DocumentID:  doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Source:      doc.Source,
		SourceType:  string(doc.SourceType),
		Language:    doc.Language,
		Provider:    doc.Provider,
		AnalyzedAt:  doc.AnalyzedAt,
		Entities:    make([]entityRecord, 0, len(doc.Entities)),
		Relations:   make([]relationRecord, 0, len(doc.Relations)),
	}

	for _, e := range doc.Entities {
		record.Entities = append(record.Entities, entityRecord{
			ID:        e.ID,
			Name:      e.Name,
			Type:      string(e.Type),
			Aliases:   e.Aliases,
			Localized: e.Localized,
			Units:     e.Units,
		})
	}
	for _, r := range doc.Relations {
		record.Relations = append(record.Relations, relationRecord{
			ID:         r.ID,
			SubjectID:  r.Subject.ID,
			Predicate:  r.Predicate,
			ObjectID:   r.Object.ID,
			Category:   string(r.Category),
			Confidence: r.Confidence,
			Units:      r.Units,
		})
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, stem(doc.Source)+"_analysis.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis file: %w", err)
	}

	logger.Info("Wrote analysis artifact", "path", path)
	return path, nil
}

func stem(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		base = "document"
	}
	return base
}
