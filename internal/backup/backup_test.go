package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tempoapp/tempo/internal/kv"
	"github.com/tempoapp/tempo/internal/logger"
	"github.com/tempoapp/tempo/internal/track"
)

func newTestTracker(t *testing.T) *track.Tracker {
	t.Helper()
	return track.NewTracker(kv.NewMemory(), logger.Discard())
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestTracker(t)
	p := src.Projects().Add("Client Work")
	src.Entries().Add(p.ID, 3_600_000, "billed hour", time.Now())

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Export(src, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestTracker(t)
	doc, err := Import(dst, path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if doc.Version != formatVersion {
		t.Fatalf("unexpected version %d", doc.Version)
	}

	if len(dst.Projects().All()) != 1 || dst.Projects().All()[0].Name != "Client Work" {
		t.Fatal("projects did not round-trip")
	}
	entries := dst.Entries().All()
	if len(entries) != 1 || entries[0].Duration != 3_600_000 || entries[0].Note != "billed hour" {
		t.Fatalf("entries did not round-trip: %+v", entries)
	}
}

func TestImportResyncsIDCounter(t *testing.T) {
	src := newTestTracker(t)
	p := src.Projects().Add("A")
	for i := 0; i < 5; i++ {
		src.Entries().Add(p.ID, 0, "", time.Now())
	}
	maxID := src.Entries().All()[4].ID

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Export(src, path); err != nil {
		t.Fatal(err)
	}

	dst := newTestTracker(t)
	if _, err := Import(dst, path); err != nil {
		t.Fatal(err)
	}

	fresh := dst.Projects().Add("Post Import")
	if fresh.ID <= maxID {
		t.Fatalf("ID %d collides with imported data (max %d)", fresh.ID, maxID)
	}
}

func TestImportCorruptFileLeavesTrackerUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte(`{"projects": [truncated`), 0o644)

	tr := newTestTracker(t)
	tr.Projects().Add("Keep Me")

	if _, err := Import(tr, path); err == nil {
		t.Fatal("expected parse error")
	}
	if len(tr.Projects().All()) != 1 || tr.Projects().All()[0].Name != "Keep Me" {
		t.Fatal("failed import must not touch existing state")
	}
}

func TestImportMissingFile(t *testing.T) {
	tr := newTestTracker(t)
	if _, err := Import(tr, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportFutureVersionRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.json")
	os.WriteFile(path, []byte(`{"version": 99, "projects": [], "entries": []}`), 0o644)

	tr := newTestTracker(t)
	if _, err := Import(tr, path); err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestExportedFileIsReadableJSON(t *testing.T) {
	tr := newTestTracker(t)
	tr.Projects().Add("Solo")

	path := filepath.Join(t.TempDir(), "backup.json")
	if err := Export(tr, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"projects"`) || !strings.Contains(string(data), "\n") {
		t.Fatal("expected indented JSON with a projects key")
	}
}
