// Package extract implements the opaque document, tabular, and OCR
// capabilities consumed by the extraction pipeline.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/statement"
)

var ErrNoPages = errors.New("pdf has no pages")

// PDFExtractor reads statement PDFs into per-page text plus row grids.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Pages extracts text flow and a row grid for every page. The grid comes
// from GetTextByRow, which reassembles positioned words into lines; it
// serves as the table pass for columnar statements. The pdf library panics
// on malformed files, so the whole read runs under a recover.
func (e *PDFExtractor) Pages(data []byte) (pages []statement.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf read panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, ErrNoPages
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		p := statement.Page{}
		if text, err := page.GetPlainText(nil); err == nil {
			p.Text = strings.TrimSpace(text)
		}
		if grid := rowGrid(page); len(grid) > 0 {
			p.Tables = [][][]string{grid}
		}
		if p.Text == "" && len(p.Tables) == 0 {
			continue
		}
		pages = append(pages, p)
	}

	return pages, nil
}

func rowGrid(page pdf.Page) [][]string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}
	var grid [][]string
	for _, row := range rows {
		var cells []string
		for _, word := range row.Content {
			if s := strings.TrimSpace(word.S); s != "" {
				cells = append(cells, s)
			}
		}
		if len(cells) > 0 {
			grid = append(grid, cells)
		}
	}
	return grid
}
