// Package csvio streams CSV rows in and out of the importer and exporter.
package csvio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

const utf8BOM = "\ufeff"

// Reader yields rows one at a time. Cells are trimmed of surrounding
// whitespace and rows may have differing field counts.
type Reader struct {
	csv  *csv.Reader
	line int
}

// NewReader wraps r in a lazy, forward-only row reader
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return &Reader{csv: cr}
}

// Next returns the next row, or io.EOF when the input is exhausted
func (r *Reader) Next() ([]string, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read CSV row %d", r.line+1)
	}
	r.line++

	if r.line == 1 && len(record) > 0 {
		record[0] = strings.TrimPrefix(record[0], utf8BOM)
	}
	for i, cell := range record {
		record[i] = strings.TrimSpace(cell)
	}
	return record, nil
}

// Line returns the 1-based number of the last row returned
func (r *Reader) Line() int {
	return r.line
}
