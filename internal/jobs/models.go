// Package jobs persists subtitle job records and their output manifests.
package jobs

import (
	"time"
)

// Status describes where a job sits in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Manifest labels. Values are absolute output paths except DurationLabel,
// which records the source duration in seconds.
const (
	OriginalLabel    = "orig"
	OriginalSRTLabel = "orig_srt"
	MultiSoftLabel   = "multi_soft"
	DurationLabel    = "duration_seconds"
)

// LanguageLabel returns the manifest label for a hard-burned output in lang.
func LanguageLabel(lang string) string {
	return lang
}

// LanguageSRTLabel returns the manifest label for a language's SRT sidecar.
func LanguageSRTLabel(lang string) string {
	return lang + "_srt"
}

// Job is one subtitle pipeline run.
type Job struct {
	ID              string
	Source          string
	SourceLanguage  string
	TargetLanguages []string
	Status          Status
	Stage           string
	ErrorMessage    string
	Manifest        map[string]string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the job has finished, successfully or not.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
