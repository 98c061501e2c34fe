package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grafo-kg/grafo/pkg/common"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	maria := &common.Entity{ID: "e1", Name: "Maria Silva", Type: common.EntityPerson, Units: []int{1}}
	acme := &common.Entity{ID: "e2", Name: "Acme", Type: common.EntityOrganization, Units: []int{1, 2}}
	doc := &common.Document{
		ID:          "d1",
		Title:       "Annual Report",
		Description: "Maria Silva works at Acme.",
		Source:      "annual report.pdf",
		SourceType:  common.SourcePDF,
		AnalyzedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Entities:    []*common.Entity{maria, acme},
		Relations: []*common.Relation{
			{ID: "r1", Subject: maria, Predicate: "works at", Object: acme,
				Category: common.RelationStated, Confidence: 1, Units: []int{1}},
		},
	}

	path, err := Write(dir, doc)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if filepath.Base(path) != "annual_report_analysis.json" {
		t.Errorf("artifact name = %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var record analysisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}

	if record.DocumentID != "d1" || len(record.Entities) != 2 || len(record.Relations) != 1 {
		t.Errorf("record = %+v", record)
	}
	if record.Description != "Maria Silva works at Acme." {
		t.Errorf("Description = %q, want it carried into the artifact", record.Description)
	}
	if record.Relations[0].SubjectID != "e1" || record.Relations[0].ObjectID != "e2" {
		t.Errorf("relation endpoints = %+v, want entity IDs", record.Relations[0])
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"report.pdf", "report"},
		{"/tmp/a b/c d.txt", "c_d"},
		{"https://example.com/articles/story", "story"},
		{"", "document"},
	}
	for _, tt := range tests {
		if got := stem(tt.source); got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
