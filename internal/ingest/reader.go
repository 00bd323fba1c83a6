package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnreadableCSV means the header row itself could not be parsed.
var ErrUnreadableCSV = errors.New("unreadable CSV header row")

// Reader streams a CSV file as header-keyed rows. Headers are available
// before any row is consumed.
type Reader struct {
	csv     *csv.Reader
	headers []string
}

// NewReader consumes the header row of src. An empty input yields a Reader
// with no headers and no rows.
func NewReader(src io.Reader) (*Reader, error) {
	br := stripUTF8BOM(bufio.NewReader(src))

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1

	reader := &Reader{csv: r}

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return reader, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableCSV, err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	reader.headers = header

	return reader, nil
}

func (r *Reader) Headers() []string {
	return r.headers
}

// Next returns the next data row keyed by header name. Columns beyond the
// header width are dropped and short records simply lack the trailing keys.
// It returns io.EOF after the last row and a *csv.ParseError for a record
// that cannot be parsed; reading may continue after a ParseError.
func (r *Reader) Next() (map[string]string, error) {
	if r.headers == nil {
		return nil, io.EOF
	}

	record, err := r.csv.Read()
	if err != nil {
		return nil, err
	}

	row := make(map[string]string, len(r.headers))
	for i, name := range r.headers {
		if i >= len(record) {
			break
		}
		row[name] = record[i]
	}

	return row, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
