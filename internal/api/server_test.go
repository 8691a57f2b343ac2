package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"autosub/internal/config"
	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/pipeline"
)

func newTestServer(t *testing.T) (*Server, *jobs.Store, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	cfg.LogDir = t.TempDir()

	store, err := jobs.OpenPath(filepath.Join(cfg.LogDir, "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	orchestrator := pipeline.New(&cfg, pipeline.Deps{Store: store}, logging.NewNop())
	pool := pipeline.NewPool(orchestrator, 1, 8, logging.NewNop())
	// Workers never started: submitted jobs stay queued, keeping handler
	// behavior deterministic.
	return NewServer(&cfg, store, pool, logging.NewNop()), store, &cfg
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(server.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCreateJob(t *testing.T) {
	server, _, _ := newTestServer(t)
	video := filepath.Join(t.TempDir(), "movie.mkv")
	if err := os.WriteFile(video, []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, server.Handler(), "/api/jobs", createJobRequest{
		Video:           video,
		TargetLanguages: []string{"en", "ru"},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" || resp.Status != string(jobs.StatusPending) {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateJobValidation(t *testing.T) {
	server, _, _ := newTestServer(t)
	tests := []struct {
		name    string
		payload createJobRequest
	}{
		{"missing video", createJobRequest{}},
		{"bad mode", createJobRequest{Video: "/tmp/x.mkv", Mode: "loud"}},
		{"nonexistent video", createJobRequest{Video: "/definitely/not/here.mkv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, server.Handler(), "/api/jobs", tt.payload)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetJobFiltersArtifacts(t *testing.T) {
	server, store, cfg := newTestServer(t)

	job, err := store.Create(t.Context(), "movie.mkv", "", []string{"en"})
	if err != nil {
		t.Fatal(err)
	}
	onDisk := filepath.Join(cfg.OutputDir, "movie_en.srt")
	if err := os.WriteFile(onDisk, []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	job.Status = jobs.StatusCompleted
	job.Manifest = map[string]string{
		"en_srt":           onDisk,
		"en":               filepath.Join(cfg.OutputDir, "deleted.mkv"),
		jobs.DurationLabel: "60.0",
	}
	if err := store.Update(t.Context(), job); err != nil {
		t.Fatal(err)
	}

	rec := get(server.Handler(), "/api/jobs/"+job.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp.Artifacts["en_srt"]; !ok {
		t.Error("existing artifact missing from response")
	}
	if _, ok := resp.Artifacts["en"]; ok {
		t.Error("deleted artifact should be filtered out")
	}
	if resp.Artifacts[jobs.DurationLabel] != "60.0" {
		t.Error("duration should pass through")
	}
}

func TestGetJobNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)
	rec := get(server.Handler(), "/api/jobs/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListJobs(t *testing.T) {
	server, store, _ := newTestServer(t)
	for i := 0; i < 2; i++ {
		if _, err := store.Create(t.Context(), fmt.Sprintf("m%d.mkv", i), "", nil); err != nil {
			t.Fatal(err)
		}
	}
	rec := get(server.Handler(), "/api/jobs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp []jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 2 {
		t.Errorf("listed %d jobs, want 2", len(resp))
	}
}

func TestDownload(t *testing.T) {
	server, _, cfg := newTestServer(t)
	path := filepath.Join(cfg.OutputDir, "movie_en.srt")
	if err := os.WriteFile(path, []byte("1\n00:00:00,000 --> 00:00:01,000\nhi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(server.Handler(), "/api/download/movie_en.srt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = get(server.Handler(), "/api/download/..%2Fsecret")
	if rec.Code == http.StatusOK {
		t.Error("path traversal should be rejected")
	}
}
