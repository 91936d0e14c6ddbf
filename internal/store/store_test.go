package store_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

func fixedClock() time.Time {
	return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
}

func newMemoryStore(t *testing.T, initial []byte) (*store.Store, *store.MemoryBackend) {
	t.Helper()
	backend := store.NewMemoryBackend(initial)
	s := store.New(backend, store.WithClock(fixedClock), store.WithIDGenerator(sequentialIDs()))
	return s, backend
}

func TestLoadMissingDocumentReturnsDefaultsWithoutWriting(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, nil)

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(store.NewDocument(), doc); diff != "" {
		t.Fatalf("default document mismatch (-want +got):\n%s", diff)
	}
	if backend.Writes != 0 {
		t.Fatalf("expected no write on first load, got %d", backend.Writes)
	}
}

func TestLoadPersistsMigrationOnce(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, []byte(legacyDocument))

	first, err := s.Load()
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if backend.Writes != 1 {
		t.Fatalf("expected migration to persist once, got %d writes", backend.Writes)
	}
	second, err := s.Load()
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if backend.Writes != 1 {
		t.Fatalf("expected migrated document to load without writing, got %d writes", backend.Writes)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("document changed between loads (-first +second):\n%s", diff)
	}
	if len(second.Diary) != 2 || len(second.Diary[0].Micros) != 1 {
		t.Fatalf("unexpected migrated diary: %+v", second.Diary)
	}
	if second.Workouts[0].CreatedAt.IsZero() {
		t.Fatalf("expected workout timestamps backfilled")
	}
}

func TestSaveOfLoadIsByteIdentical(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, []byte(legacyDocument))
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	before := backend.Bytes()

	if err := s.Save(doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.Equal(before, backend.Bytes()) {
		t.Fatalf("save(load()) changed bytes:\n%s\n---\n%s", before, backend.Bytes())
	}
	if !bytes.HasSuffix(before, []byte("}\n")) || !bytes.Contains(before, []byte("\n  \"diary\": [")) {
		t.Fatalf("expected two-space indented document with trailing newline:\n%s", before)
	}
}

func TestUpdateWritesOnlyOnChange(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, nil)

	if err := s.Update(func(doc *model.Document) (bool, error) { return false, nil }); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if backend.Writes != 0 {
		t.Fatalf("expected no write, got %d", backend.Writes)
	}

	errBoom := errors.New("boom")
	err := s.Update(func(doc *model.Document) (bool, error) {
		doc.User.Name = "ignored"
		return true, errBoom
	})
	if !errors.Is(err, errBoom) || backend.Writes != 0 {
		t.Fatalf("expected callback error without write, got err=%v writes=%d", err, backend.Writes)
	}

	if err := s.Update(func(doc *model.Document) (bool, error) {
		doc.User.Name = "Alexis"
		return true, nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if doc.User.Name != "Alexis" || backend.Writes != 1 {
		t.Fatalf("expected persisted user name, got %q after %d writes", doc.User.Name, backend.Writes)
	}
}

func TestLoadRejectsNonObjectDocument(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, []byte(`[1, 2]`))
	if _, err := s.Load(); err == nil {
		t.Fatalf("expected decode error")
	}
	if backend.Writes != 0 {
		t.Fatalf("expected no write on decode failure")
	}
}

func TestInspectReportsPendingStepsWithoutWriting(t *testing.T) {
	t.Parallel()
	s, backend := newMemoryStore(t, []byte(legacyDocument))

	report, err := s.Inspect()
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !report.Exists || !report.WouldWrite || len(report.Pending) == 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if backend.Writes != 0 {
		t.Fatalf("inspect must not write")
	}

	if _, err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	report, err = s.Inspect()
	if err != nil {
		t.Fatalf("inspect after load: %v", err)
	}
	if report.WouldWrite || len(report.Pending) != 0 || report.StoredVersion != store.CurrentSchemaVersion {
		t.Fatalf("expected clean report after migration, got %+v", report)
	}
}

func TestFileBackendWritesAtomically(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data.json")
	s := store.New(store.NewFileBackend(path))

	if _, err := s.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no file before first mutation, stat err=%v", err)
	}

	if err := s.Update(func(doc *model.Document) (bool, error) {
		doc.User.KcalGoal = 2200
		return true, nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.json" {
		t.Fatalf("expected only data.json after write, got %v", entries)
	}
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if doc.User.KcalGoal != 2200 {
		t.Fatalf("expected kcal goal 2200, got %v", doc.User.KcalGoal)
	}
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	t.Parallel()
	backend, err := store.OpenSQLite(filepath.Join(t.TempDir(), "macro.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer backend.Close()
	s := store.New(backend, store.WithClock(fixedClock), store.WithIDGenerator(sequentialIDs()))

	if _, err := backend.Read(); !errors.Is(err, store.ErrNotExist) {
		t.Fatalf("expected ErrNotExist on empty database, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Update(func(doc *model.Document) (bool, error) {
			doc.User.Name = "Alexis"
			return true, nil
		}); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	rev, err := backend.Revision()
	if err != nil {
		t.Fatalf("revision: %v", err)
	}
	if rev != 2 {
		t.Fatalf("expected revision 2, got %d", rev)
	}
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.User.Name != "Alexis" {
		t.Fatalf("expected stored user name, got %q", doc.User.Name)
	}
}

func TestSQLiteSchemaVersionSurvivesReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "macro.db")
	for i := 0; i < 2; i++ {
		backend, err := store.OpenSQLite(path)
		if err != nil {
			t.Fatalf("open sqlite %d: %v", i, err)
		}
		version, err := backend.SchemaVersion()
		if err != nil {
			t.Fatalf("schema version: %v", err)
		}
		if version != 2 {
			t.Fatalf("expected schema version 2, got %d", version)
		}
		if i == 0 {
			if err := backend.Write([]byte(`{"schema_version":1}`)); err != nil {
				t.Fatalf("write: %v", err)
			}
		} else if data, err := backend.Read(); err != nil || string(data) != `{"schema_version":1}` {
			t.Fatalf("expected document kept across reopen, got %s (%v)", data, err)
		}
		if err := backend.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func fileMode(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

func TestFileBackendKeepsFileMode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fresh := store.NewFileBackend(filepath.Join(dir, "new.json"))
	if err := fresh.Write([]byte(`{}`)); err != nil {
		t.Fatalf("write new file: %v", err)
	}
	if mode := fileMode(t, fresh.Path); mode != 0o644 {
		t.Fatalf("expected new data file with mode 0644, got %v", mode)
	}

	path := filepath.Join(dir, "existing.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("seed data file: %v", err)
	}
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatalf("chmod data file: %v", err)
	}
	if err := store.NewFileBackend(path).Write([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if mode := fileMode(t, path); mode != 0o640 {
		t.Fatalf("expected rewrite to keep mode 0640, got %v", mode)
	}
}
