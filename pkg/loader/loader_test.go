package loader

import "testing"

func TestTitleFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/docs/annual_report.pdf", "Annual Report"},
		{"meeting-notes.txt", "Meeting Notes"},
		{"summary.txt", "Summary"},
		{"already capitalized.md", "Already Capitalized"},
	}
	for _, tt := range tests {
		if got := TitleFromPath(tt.path); got != tt.want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
