package loader

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/grafo-kg/grafo/pkg/common"
)

// Document is raw input ready for segmentation: one text slice per
// rendered page for PDFs, a single slice for text and web sources.
// Pages keep their position even when empty so page numbers survive
// into unit evidence.
type Document struct {
	Title  string
	Source string // file path or URL
	Type   common.SourceType
	Pages  []string
}

// TitleFromPath derives a human-readable document title from a file
// path: the base name without extension, underscores replaced with
// spaces, words capitalized.
func TitleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")

	words := strings.Fields(stem)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
