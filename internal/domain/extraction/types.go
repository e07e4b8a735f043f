// Package extraction orchestrates the full pipeline: identify the source
// bank, route the upload to the right extractor, and hand back canonical
// transaction records.
package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/statement"
)

// Kind declares how the caller wants the upload interpreted.
type Kind int

const (
	KindDocument Kind = iota
	KindTabular
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindTabular:
		return "tabular"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupportedFileType means the declared kind is outside the enum.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrEmptyInput means the upload had no bytes or no extractable pages.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoTransactionsFound means every pattern and profile was exhausted
	// without producing a single record.
	ErrNoTransactionsFound = errors.New("no transactions found")
)

// ExternalExtractionError wraps a failure from an opaque text, table, or
// OCR capability so the caller can distinguish upstream faults from bad
// uploads.
type ExternalExtractionError struct {
	Capability string
	Err        error
}

func (e *ExternalExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.Capability, e.Err)
}

func (e *ExternalExtractionError) Unwrap() error {
	return e.Err
}

// DocumentExtractor turns document bytes into per-page text and tables.
type DocumentExtractor interface {
	Pages(data []byte) ([]statement.Page, error)
}

// OCRClient turns image or document bytes into plain text.
type OCRClient interface {
	Text(ctx context.Context, data []byte, mimeType string) (string, error)
}

// TabularReader turns delimited-text or spreadsheet bytes into a header row
// plus data rows.
type TabularReader interface {
	Read(data []byte) (headers []string, rows [][]string, err error)
}
