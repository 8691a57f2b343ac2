package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"autosub/internal/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "/videos/movie.mkv", "he", []string{"en", "ru"})
	if err != nil {
		t.Fatal(err)
	}
	if job.ID == "" {
		t.Fatal("expected generated ID")
	}
	if job.Status != StatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}

	loaded, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Source != "/videos/movie.mkv" {
		t.Errorf("source = %q", loaded.Source)
	}
	if len(loaded.TargetLanguages) != 2 || loaded.TargetLanguages[0] != "en" {
		t.Errorf("targets = %v", loaded.TargetLanguages)
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdatePersistsManifest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "movie.mkv", "", []string{"en"})
	if err != nil {
		t.Fatal(err)
	}
	job.Status = StatusCompleted
	job.Stage = "finalize"
	job.Manifest = map[string]string{
		OriginalSRTLabel: "/out/movie_orig.srt",
		DurationLabel:    "3600.0",
	}
	if err := store.Update(ctx, job); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != StatusCompleted || loaded.Stage != "finalize" {
		t.Errorf("status = %q stage = %q", loaded.Status, loaded.Stage)
	}
	if loaded.Manifest[DurationLabel] != "3600.0" {
		t.Errorf("manifest = %v", loaded.Manifest)
	}
	if !loaded.Terminal() {
		t.Error("completed job should be terminal")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, src := range []string{"a.mkv", "b.mkv"} {
		if _, err := store.Create(ctx, src, "", nil); err != nil {
			t.Fatal(err)
		}
	}
	listed, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d jobs, want 2", len(listed))
	}
}

func TestArtifactsOnDisk(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "movie_en.mkv")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := &Job{Manifest: map[string]string{
		LanguageLabel("en"):    existing,
		LanguageSRTLabel("en"): filepath.Join(dir, "gone.srt"),
		DurationLabel:          "120.5",
	}}
	got := ArtifactsOnDisk(job)
	if _, ok := got["en"]; !ok {
		t.Error("existing artifact should be listed")
	}
	if _, ok := got["en_srt"]; ok {
		t.Error("missing file should be filtered out")
	}
	if got[DurationLabel] != "120.5" {
		t.Error("duration entry should pass through")
	}
}

func TestSchemaVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")
	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}
