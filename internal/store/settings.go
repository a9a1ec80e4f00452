package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const (
	keyLocale        = "locale"
	keyDefaultPreset = "default_preset"
	keyActivityLimit = "activity_limit"
	keyExportDir     = "export_dir"
	keyViewState     = "view_state"
)

const defaultActivityLimit = 50

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Preferences reads the user settings. Missing or malformed values fall
// back to their defaults.
func (s *Store) Preferences() (Preferences, error) {
	p := Preferences{Locale: "id_ID", DefaultPreset: "month", ActivityLimit: defaultActivityLimit}

	all, err := s.GetAllSettings()
	if err != nil {
		return p, err
	}
	for _, kv := range all {
		switch kv.Key {
		case keyLocale:
			if kv.Value != "" {
				p.Locale = kv.Value
			}
		case keyDefaultPreset:
			if kv.Value != "" {
				p.DefaultPreset = kv.Value
			}
		case keyActivityLimit:
			if n, err := strconv.Atoi(kv.Value); err == nil && n > 0 {
				p.ActivityLimit = n
			}
		case keyExportDir:
			p.ExportDir = kv.Value
		}
	}
	return p, nil
}

// SavePreferences writes all user settings in one transaction.
func (s *Store) SavePreferences(p Preferences) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	values := [][2]string{
		{keyLocale, p.Locale},
		{keyDefaultPreset, p.DefaultPreset},
		{keyActivityLimit, strconv.Itoa(p.ActivityLimit)},
		{keyExportDir, p.ExportDir},
	}
	for _, kv := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			kv[0], kv[1],
		)
		if err != nil {
			return fmt.Errorf("save setting %q: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

// LoadViewState returns the saved view state, or the zero value if none
// was saved yet.
func (s *Store) LoadViewState() (ViewState, error) {
	var vs ViewState
	raw, err := s.GetSetting(keyViewState)
	if errors.Is(err, sql.ErrNoRows) {
		return vs, nil
	}
	if err != nil {
		return vs, err
	}
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		return ViewState{}, fmt.Errorf("decode view state: %w", err)
	}
	return vs, nil
}

func (s *Store) SaveViewState(vs ViewState) error {
	raw, err := json.Marshal(vs)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	return s.SetSetting(keyViewState, string(raw))
}
