package pdf

import (
	"fmt"

	"github.com/grafo-kg/grafo/pkg/common"
	"github.com/grafo-kg/grafo/pkg/loader"

	"github.com/ledongthuc/pdf"
)

// Load renders a PDF into one text page per document page. Pages with
// no extractable text (scanned images, drawings) come back as empty
// strings rather than being skipped, so page numbers stay aligned
// with the source document.
func Load(path string) (*loader.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("pdf has no pages: %s", path)
	}

	pages := make([]string, totalPages)
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// unparsable page, keep the slot empty
			continue
		}
		pages[i-1] = text
	}

	return &loader.Document{
		Title:  loader.TitleFromPath(path),
		Source: path,
		Type:   common.SourcePDF,
		Pages:  pages,
	}, nil
}
