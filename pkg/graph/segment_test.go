package graph

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"
)

func TestSplitIntoSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty input",
			text: "",
			want: []string(nil),
		},
		{
			name: "single sentence",
			text: "Hello world.",
			want: []string{"Hello world."},
		},
		{
			name: "multiple sentences",
			text: "Hello world. This is a test! How are you?",
			want: []string{
				"Hello world.",
				"This is a test!",
				"How are you?",
			},
		},
		{
			name: "paragraph breaks",
			text: "First sentence.\n\nSecond sentence.",
			want: []string{"First sentence.", "Second sentence."},
		},
		{
			name: "multi-line sentence",
			text: "This is a long\nsentence that spans\nmultiple lines.",
			want: []string{"This is a long sentence that spans multiple lines."},
		},
		{
			name: "numbered listing stays together",
			text: "1. first item continues here.",
			want: []string{"1. first item continues here."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitIntoSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitIntoSentences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSegmentDocumentPDFPages(t *testing.T) {
	g := NewGraphClient(NewGraphClientParams{OverlapRunes: 10})
	doc := &loader.Document{
		Title: "Report",
		Type:  common.SourcePDF,
		Pages: []string{"alpha bravo charlie", "", "delta echo foxtrot"},
	}

	units, err := g.segmentDocument(doc)
	if err != nil {
		t.Fatalf("segmentDocument() error = %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}

	for i, u := range units {
		if u.Index != i+1 || u.Page != i+1 {
			t.Errorf("unit %d has Index=%d Page=%d", i, u.Index, u.Page)
		}
	}
	if !units[1].Empty() {
		t.Errorf("blank page should produce an empty unit")
	}
	if units[0].OverlapBefore != "" {
		t.Errorf("first unit must not have preceding overlap")
	}
	if units[2].OverlapAfter != "" {
		t.Errorf("last unit must not have following overlap")
	}
	// The empty middle page bridges nothing in either direction.
	if units[0].OverlapAfter != "" || units[2].OverlapBefore != "" {
		t.Errorf("overlaps across an empty page should be empty, got %q / %q",
			units[0].OverlapAfter, units[2].OverlapBefore)
	}
	if units[1].OverlapBefore == "" || units[1].OverlapAfter == "" {
		t.Errorf("empty page should still carry context from its neighbors")
	}
}

func TestSegmentDocumentOverlapBounds(t *testing.T) {
	g := NewGraphClient(NewGraphClientParams{OverlapRunes: 5})
	doc := &loader.Document{
		Title: "Doc",
		Type:  common.SourcePDF,
		Pages: []string{"abcdefghij", "klmnopqrst"},
	}

	units, err := g.segmentDocument(doc)
	if err != nil {
		t.Fatalf("segmentDocument() error = %v", err)
	}
	if units[0].OverlapAfter != "klmno" {
		t.Errorf("OverlapAfter = %q, want %q", units[0].OverlapAfter, "klmno")
	}
	if units[1].OverlapBefore != "fghij" {
		t.Errorf("OverlapBefore = %q, want %q", units[1].OverlapBefore, "fghij")
	}
}

func TestSegmentDocumentSingleTextUnit(t *testing.T) {
	g := NewGraphClient(NewGraphClientParams{})
	doc := &loader.Document{
		Title: "Notes",
		Type:  common.SourceText,
		Pages: []string{"Some plain text."},
	}

	units, err := g.segmentDocument(doc)
	if err != nil {
		t.Fatalf("segmentDocument() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].Index != 1 || units[0].Page != 0 {
		t.Errorf("text unit has Index=%d Page=%d, want 1 and 0", units[0].Index, units[0].Page)
	}
}

func TestSegmentDocumentTokenBudget(t *testing.T) {
	g := NewGraphClient(NewGraphClientParams{MaxUnitTokens: 12, OverlapRunes: 8})
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 6)
	doc := &loader.Document{
		Title: "Long",
		Type:  common.SourceText,
		Pages: []string{text},
	}

	units, err := g.segmentDocument(doc)
	if err != nil {
		t.Fatalf("segmentDocument() error = %v", err)
	}
	if len(units) < 2 {
		t.Fatalf("expected the text to split, got %d units", len(units))
	}
	for i, u := range units {
		if u.Index != i+1 {
			t.Errorf("unit %d has Index=%d", i, u.Index)
		}
		if i > 0 && u.OverlapBefore == "" {
			t.Errorf("unit %d is missing preceding overlap", i+1)
		}
	}
}

func TestSegmentDocumentEmpty(t *testing.T) {
	g := NewGraphClient(NewGraphClientParams{})

	tests := []struct {
		name string
		doc  *loader.Document
	}{
		{
			name: "empty text",
			doc:  &loader.Document{Title: "Empty", Type: common.SourceText, Pages: []string{"   \n "}},
		},
		{
			name: "no pages",
			doc:  &loader.Document{Title: "None", Type: common.SourcePDF},
		},
		{
			name: "all pages blank",
			doc:  &loader.Document{Title: "Blank", Type: common.SourcePDF, Pages: []string{"", " "}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.segmentDocument(tt.doc)
			if !errors.Is(err, ErrNoUnits) {
				t.Errorf("segmentDocument() error = %v, want ErrNoUnits", err)
			}
		})
	}
}
