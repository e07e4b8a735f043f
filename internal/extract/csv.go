package extract

import (
	"encoding/csv"
	"errors"
	"strings"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// CSVReader parses delimited text exports. The delimiter is sniffed from
// the header line since banks ship comma, semicolon, tab, and pipe
// variants.
type CSVReader struct{}

func NewCSVReader() *CSVReader {
	return &CSVReader{}
}

// Read returns the header row and all data rows. Rows keep ragged lengths;
// the mapper guards short rows itself.
func (r *CSVReader) Read(data []byte) ([]string, [][]string, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyFile
	}

	headerLine, _, _ := strings.Cut(text, "\n")
	delimiter := detectDelimiter(strings.TrimRight(headerLine, "\r"))
	if delimiter == 0 {
		return nil, nil, ErrInvalidDelimiter
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return headers, records[1:], nil
}

func detectDelimiter(line string) rune {
	delimiters := []rune{';', '\t', ',', '|'}
	best := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		if count := strings.Count(line, string(d)); count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best
}
