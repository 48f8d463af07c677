package bomtable

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a delimited text table. The delimiter is sniffed from the
// header line: semicolon and tab win over comma, since spreadsheets set to a
// comma decimal separator export with semicolons.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := reader.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
	}

	// Short files return what is there together with io.EOF.
	firstLine, _ := reader.Peek(1024)
	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, sniffDelimiter(firstLine))

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: CSV file is empty", ErrNoData)
	}

	return &Table{Source: path, Rows: rows, RowPerItem: true}, nil
}

// sniffDelimiter picks the most frequent candidate delimiter in the header.
func sniffDelimiter(header []byte) rune {
	best, bestCount := ',', bytes.Count(header, []byte{','})
	for _, d := range []rune{';', '\t', '|'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// configureReader sets the delimiter and the lenient parsing options used for
// hand-edited exports.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Rows may be ragged; short rows are padded by Table.Columns.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}
