package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/pipeline"
	"autosub/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var payload createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := pipeline.Request{
		Video:           payload.Video,
		Audio:           payload.Audio,
		AudioTrack:      -1,
		SourceLanguage:  payload.SourceLanguage,
		TargetLanguages: payload.TargetLanguages,
		NoAlign:         payload.NoAlign,
		Mode:            payload.Mode,
		Device:          payload.Device,
	}
	if payload.AudioTrack != nil {
		req.AudioTrack = *payload.AudioTrack
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.store.Create(r.Context(), req.Video, req.SourceLanguage, req.TargetLanguages)
	if err != nil {
		s.logger.Error("create job failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "could not persist job")
		return
	}
	if err := s.pool.Submit(job, req); err != nil {
		job.Status = jobs.StatusFailed
		job.ErrorMessage = "queue full"
		_ = s.store.Update(r.Context(), job)
		writeError(w, http.StatusServiceUnavailable, "job queue is full")
		return
	}
	writeJSON(w, http.StatusAccepted, toJobResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	listed, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list jobs failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list jobs")
		return
	}
	out := make([]jobResponse, 0, len(listed))
	for _, job := range listed {
		out = append(out, toJobResponse(job))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such job")
			return
		}
		s.logger.Error("get job failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load job")
		return
	}
	writeJSON(w, http.StatusOK, toJobResponse(job))
}

// handleDownload serves a published artifact by basename from the output
// directory. Path traversal is rejected.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "invalid artifact name")
		return
	}
	http.ServeFile(w, r, filepath.Join(s.cfg.OutputDir, name))
}

// toJobResponse reports only artifacts still present on disk, so a consumer
// never sees paths that have been cleaned up since the job ran.
func toJobResponse(job *jobs.Job) jobResponse {
	return jobResponse{
		ID:              job.ID,
		Source:          job.Source,
		SourceLanguage:  job.SourceLanguage,
		TargetLanguages: job.TargetLanguages,
		Status:          string(job.Status),
		Stage:           job.Stage,
		Error:           job.ErrorMessage,
		Artifacts:       jobs.ArtifactsOnDisk(job),
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
