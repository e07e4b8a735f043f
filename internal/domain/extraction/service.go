package extraction

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/moneyapp/moneyapp/internal/domain/extraction/bank"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/screenshot"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/statement"
	"github.com/moneyapp/moneyapp/internal/domain/extraction/tabular"
	"github.com/moneyapp/moneyapp/internal/domain/transaction"
)

var (
	xlsxMagic = []byte("PK\x03\x04")
	jpegMagic = []byte{0xff, 0xd8}
)

// Options adjusts per-call behavior.
type Options struct {
	// FallbackGeneric routes an unidentified document through the generic
	// pattern cascade instead of failing with bank.ErrNotDetected.
	FallbackGeneric bool
}

// Result is the outcome of one extraction call.
type Result struct {
	Bank         string
	Transactions []transaction.Transaction
}

// Service routes uploads to the statement parser, tabular mapper, or
// screenshot extractor based on the declared kind.
type Service struct {
	docs   DocumentExtractor
	ocr    OCRClient
	csv    TabularReader
	excel  TabularReader
	parser *statement.Parser
	mapper *tabular.Mapper
	shots  *screenshot.Extractor
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService creates an extraction service. The OCR client may be a
// disabled stub; identification then stops at the text tiers and image
// uploads fail with an external-capability error.
func NewService(docs DocumentExtractor, ocr OCRClient, logger *slog.Logger) *Service {
	return &Service{
		docs:   docs,
		ocr:    ocr,
		parser: statement.NewParser(),
		mapper: tabular.NewMapper(),
		shots:  screenshot.NewExtractor(),
		logger: logger,
		tracer: otel.Tracer("moneyapp/extraction"),
	}
}

// WithTabularReaders adds delimited-text and spreadsheet support.
func (s *Service) WithTabularReaders(csv, excel TabularReader) *Service {
	s.csv = csv
	s.excel = excel
	return s
}

// Extract runs the pipeline for one upload.
func (s *Service) Extract(ctx context.Context, data []byte, kind Kind, opts Options) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.Extract",
		trace.WithAttributes(
			attribute.String("upload.kind", kind.String()),
			attribute.Int("upload.bytes", len(data)),
		))
	defer span.End()

	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	var (
		result *Result
		err    error
	)
	switch kind {
	case KindDocument:
		result, err = s.extractDocument(ctx, data, opts)
	case KindTabular:
		result, err = s.extractTabular(ctx, data)
	case KindImage:
		result, err = s.extractImage(ctx, data)
	default:
		return nil, ErrUnsupportedFileType
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("upload.bank", result.Bank),
		attribute.Int("upload.transactions", len(result.Transactions)),
	)
	s.logger.InfoContext(ctx, "extraction complete",
		slog.String("kind", kind.String()),
		slog.String("bank", result.Bank),
		slog.Int("transactions", len(result.Transactions)))
	return result, nil
}

func (s *Service) extractDocument(ctx context.Context, data []byte, opts Options) (*Result, error) {
	pages, err := s.docs.Pages(data)
	if err != nil {
		return nil, &ExternalExtractionError{Capability: "document", Err: err}
	}
	if len(pages) == 0 {
		return nil, ErrEmptyInput
	}

	b, err := s.identifyBank(ctx, data, pages)
	if err != nil {
		if !opts.FallbackGeneric {
			return nil, err
		}
		b = bank.Unknown
		s.logger.InfoContext(ctx, "bank not detected, using generic cascade")
	}

	txs := s.parser.Parse(pages, b)
	if len(txs) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return &Result{Bank: bankName(b), Transactions: txs}, nil
}

// identifyBank escalates through three tiers: the first two pages of text,
// all pages, then OCR over the raw document bytes.
func (s *Service) identifyBank(ctx context.Context, data []byte, pages []statement.Page) (bank.Bank, error) {
	head := pages
	if len(head) > 2 {
		head = head[:2]
	}
	if b, ok := bank.Identify(joinPages(head)); ok {
		return b, nil
	}
	if b, ok := bank.Identify(joinPages(pages)); ok {
		return b, nil
	}

	text, err := s.ocr.Text(ctx, data, "application/pdf")
	if err != nil {
		s.logger.WarnContext(ctx, "ocr identification tier failed", slog.Any("error", err))
		return bank.Unknown, bank.ErrNotDetected
	}
	if b, ok := bank.Identify(text); ok {
		return b, nil
	}
	return bank.Unknown, bank.ErrNotDetected
}

func (s *Service) extractTabular(_ context.Context, data []byte) (*Result, error) {
	reader := s.csv
	capability := "csv"
	if bytes.HasPrefix(data, xlsxMagic) {
		reader = s.excel
		capability = "spreadsheet"
	}
	if reader == nil {
		return nil, ErrUnsupportedFileType
	}

	headers, rows, err := reader.Read(data)
	if err != nil {
		return nil, &ExternalExtractionError{Capability: capability, Err: err}
	}
	if len(headers) == 0 || len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	b, err := bank.IdentifyTabular(headers, rows[0])
	if err != nil {
		return nil, err
	}

	txs, err := s.mapper.Map(headers, rows, b)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return &Result{Bank: bankName(b), Transactions: txs}, nil
}

func (s *Service) extractImage(ctx context.Context, data []byte) (*Result, error) {
	mime := "image/png"
	if bytes.HasPrefix(data, jpegMagic) {
		mime = "image/jpeg"
	}

	text, err := s.ocr.Text(ctx, data, mime)
	if err != nil {
		return nil, &ExternalExtractionError{Capability: "ocr", Err: err}
	}

	txs := s.shots.Extract(text)
	if len(txs) == 0 {
		return nil, ErrNoTransactionsFound
	}
	return &Result{Transactions: txs}, nil
}

func joinPages(pages []statement.Page) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func bankName(b bank.Bank) string {
	if b == bank.Unknown {
		return ""
	}
	return b.DisplayName()
}
