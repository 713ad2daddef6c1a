package csvio

import (
	"encoding/csv"
	"io"

	"github.com/cockroachdb/errors"
)

// Writer writes rows and reports the number of data rows written
type Writer struct {
	csv  *csv.Writer
	rows int
}

// NewWriter creates a CSV writer on w
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row, which is not counted
func (w *Writer) WriteHeader(columns []string) error {
	if err := w.csv.Write(columns); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	return nil
}

// Write writes a single data row
func (w *Writer) Write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return errors.Wrapf(err, "failed to write CSV row %d", w.rows+1)
	}
	w.rows++
	return nil
}

// Flush flushes buffered rows and returns any write error
func (w *Writer) Flush() error {
	w.csv.Flush()
	return errors.Wrap(w.csv.Error(), "failed to flush CSV")
}

// Rows returns the number of data rows written so far
func (w *Writer) Rows() int {
	return w.rows
}
