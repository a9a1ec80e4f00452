package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/pmreport/internal/report"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	ReportType report.Type  `json:"report_type"`
	Count      int          `json:"count"`
	Rows       []report.Row `json:"rows"`
}

// WriteJSON writes rows wrapped in an object carrying the report type and
// export time.
func WriteJSON(w io.Writer, t report.Type, rows []report.Row, now time.Time) error {
	if len(rows) == 0 {
		return ErrNoRows
	}

	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		ReportType: t,
		Count:      len(rows),
		Rows:       rows,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
