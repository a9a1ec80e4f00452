package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/pmreport/internal/report"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists the supported formats in picker order.
var Formats = []Format{FormatCSV, FormatJSON}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FileName is the conventional name of an export, e.g.
// "project_report_2026-10-19.csv".
func FileName(t report.Type, day time.Time, f Format) string {
	return fmt.Sprintf("%s_report_%s.%s", t, day.Format("2006-01-02"), f)
}

// Encode writes rows in format f.
func Encode(w io.Writer, t report.Type, rows []report.Row, f Format, now time.Time) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, t, rows, now)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// ToFile writes rows to dir under the conventional file name and returns
// the path. With no rows nothing is written and ErrNoRows is returned.
func ToFile(dir string, t report.Type, rows []report.Row, f Format, now time.Time) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRows
	}

	var buf bytes.Buffer
	if err := Encode(&buf, t, rows, f, now); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(t, now, f))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s file: %w", f, err)
	}
	return path, nil
}
