package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordExport stores a written export and returns it with its id and
// timestamp filled in.
func (s *Store) RecordExport(rec ExportRecord) (ExportRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Second)

	_, err := s.db.Exec(
		`INSERT INTO export_history (id, report_type, format, path, rows, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ReportType, rec.Format, rec.Path, rec.Rows, rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ExportRecord{}, fmt.Errorf("record export: %w", err)
	}
	return rec, nil
}

// ListExports returns the most recent exports first. A limit of zero or
// less returns all of them.
func (s *Store) ListExports(limit int) ([]ExportRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, report_type, format, path, rows, created_at
		 FROM export_history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []ExportRecord
	for rows.Next() {
		var (
			rec     ExportRecord
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.ReportType, &rec.Format, &rec.Path, &rec.Rows, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
