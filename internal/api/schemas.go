package api

import "time"

// createJobRequest is the POST /api/jobs payload.
type createJobRequest struct {
	Video           string   `json:"video" validate:"required"`
	Audio           string   `json:"audio,omitempty"`
	AudioTrack      *int     `json:"audio_track,omitempty" validate:"omitempty,min=0"`
	SourceLanguage  string   `json:"source_language,omitempty"`
	TargetLanguages []string `json:"target_languages,omitempty" validate:"dive,min=2,max=11"`
	NoAlign         bool     `json:"no_align,omitempty"`
	Mode            string   `json:"mode,omitempty" validate:"omitempty,oneof=hard soft both"`
	Device          string   `json:"device,omitempty" validate:"omitempty,oneof=auto cpu cuda videotoolbox"`
}

// jobResponse describes a job and the outputs that exist on disk right now.
type jobResponse struct {
	ID              string            `json:"id"`
	Source          string            `json:"source"`
	SourceLanguage  string            `json:"source_language,omitempty"`
	TargetLanguages []string          `json:"target_languages,omitempty"`
	Status          string            `json:"status"`
	Stage           string            `json:"stage,omitempty"`
	Error           string            `json:"error,omitempty"`
	Artifacts       map[string]string `json:"artifacts,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}
