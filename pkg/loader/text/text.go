package text

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"
)

// Load reads a plain-text file into a single-page document. Files
// that are not valid UTF-8 are reinterpreted as Latin-1, matching the
// common case of legacy exports.
func Load(path string) (*loader.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	content := string(data)
	if !utf8.ValidString(content) {
		content = latin1ToUTF8(data)
	}

	return &loader.Document{
		Title:  loader.TitleFromPath(path),
		Source: path,
		Type:   common.SourceText,
		Pages:  []string{content},
	}, nil
}

func latin1ToUTF8(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
