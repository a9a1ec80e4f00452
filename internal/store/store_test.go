package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled sqlmock expectations: %v", err)
		}
		db.Close()
	})
	return newWithDB(db), mock
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != len(migrations) {
		t.Fatalf("expected user_version %d, got %d", len(migrations), version)
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "pmreport.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("locale", "en_US"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: migrations must not reset the seeded settings.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if v, _ := s2.GetSetting("locale"); v != "en_US" {
		t.Fatalf("locale = %q after reopen, want en_US", v)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var timeout int
	s.db.QueryRow("PRAGMA busy_timeout").Scan(&timeout)
	if timeout != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", timeout)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"locale":         "id_ID",
		"default_preset": "month",
		"activity_limit": "50",
		"export_dir":     "",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nope"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if p.Locale != "id_ID" || p.DefaultPreset != "month" || p.ActivityLimit != 50 || p.ExportDir != "" {
		t.Fatalf("unexpected defaults %+v", p)
	}

	want := Preferences{Locale: "en_US", DefaultPreset: "30d", ActivityLimit: 20, ExportDir: "/tmp/out"}
	if err := s.SavePreferences(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("Preferences() = %+v, want %+v", got, want)
	}
}

func TestPreferencesMalformedLimit(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting("activity_limit", "lots")

	p, err := s.Preferences()
	if err != nil {
		t.Fatal(err)
	}
	if p.ActivityLimit != 50 {
		t.Fatalf("expected fallback limit 50, got %d", p.ActivityLimit)
	}
}

func TestSavePreferencesRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settings").WithArgs("locale", "en_US").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO settings").WithArgs("default_preset", "7d").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.SavePreferences(Preferences{Locale: "en_US", DefaultPreset: "7d", ActivityLimit: 10})
	if err == nil || !strings.Contains(err.Error(), "default_preset") {
		t.Fatalf("expected wrapped error naming the key, got %v", err)
	}
}

// ============================================================
// View state
// ============================================================

func TestViewStateEmpty(t *testing.T) {
	s := newTestStore(t)

	vs, err := s.LoadViewState()
	if err != nil {
		t.Fatal(err)
	}
	if vs != (ViewState{}) {
		t.Fatalf("expected zero view state, got %+v", vs)
	}
}

func TestViewStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := ViewState{
		ActiveView:      "reports",
		ReportType:      "time",
		Preset:          "custom",
		From:            "2026-10-01",
		To:              "2026-10-15",
		ActivityProject: "p1",
	}
	if err := s.SaveViewState(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadViewState()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("LoadViewState() = %+v, want %+v", got, want)
	}
}

func TestViewStateCorrupt(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM settings").WithArgs("view_state").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("{not json"))

	vs, err := s.LoadViewState()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if vs != (ViewState{}) {
		t.Fatalf("expected zero view state on error, got %+v", vs)
	}
}

// ============================================================
// Export history
// ============================================================

func TestRecordAndListExports(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	first, err := s.RecordExport(ExportRecord{ReportType: "project", Format: "csv", Path: "/a.csv", Rows: 3, CreatedAt: base})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	second, err := s.RecordExport(ExportRecord{ReportType: "time", Format: "json", Path: "/b.json", Rows: 7, CreatedAt: base.Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}

	list, err := s.ListExports(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 exports, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
	if list[0].Rows != 7 || list[0].Format != "json" || !list[0].CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("record mangled: %+v", list[0])
	}

	limited, err := s.ListExports(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 export with limit, got %d", len(limited))
	}
}

func TestRecordExportError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO export_history").WillReturnError(errors.New("readonly"))

	if _, err := s.RecordExport(ExportRecord{ReportType: "task", Format: "csv", Path: "/x.csv"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestListExportsError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, report_type").WillReturnError(errors.New("locked"))

	if _, err := s.ListExports(10); err == nil || !strings.Contains(err.Error(), "list exports") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
