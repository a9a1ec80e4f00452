package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/sadopc/pmreport/internal/report"
)

// ErrNoRows is returned when there is nothing to export.
var ErrNoRows = errors.New("no rows to export")

// WriteCSV writes rows as CSV with a header taken from the first row's
// columns. Records end in "\n". Fields holding a comma, quote, newline or
// leading space are quoted and embedded quotes are doubled.
func WriteCSV[R report.Row](w io.Writer, rows []R) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	cw := csv.NewWriter(w)
	header := rows[0].Columns()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, r := range rows {
		values := r.Values()
		if len(values) != len(header) {
			return fmt.Errorf("csv row %d has %d fields, header has %d", i, len(values), len(header))
		}
		if err := cw.Write(values); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses CSV written by WriteCSV back into its header and records.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrNoRows
	}
	return records[0], records[1:], nil
}
