// Package pipeline orchestrates a subtitle job from source video to published
// outputs: detection, masking, transcription, segmentation, translation, and
// publication.
package pipeline

import (
	"os"
	"strings"

	"autosub/internal/language"
	"autosub/internal/services"
)

// Request describes one subtitle job as submitted by the CLI or API.
type Request struct {
	Video           string   // source video path
	Audio           string   // optional pre-extracted audio; skips extraction
	AudioTrack      int      // audio stream index to transcribe; negative picks the container default
	SourceLanguage  string   // optional hint for the transcriber
	TargetLanguages []string // languages to translate into
	NoAlign         bool     // skip word-level timing alignment
	Mode            string   // publish mode override; empty uses config
	Device          string   // encode device override; empty uses config
}

// Validate checks the request and normalizes its language codes in place.
func (r *Request) Validate() error {
	r.Video = strings.TrimSpace(r.Video)
	if r.Video == "" {
		return services.Wrap(services.ErrValidation, "pipeline", "validate", "missing video path", nil)
	}
	if _, err := os.Stat(r.Video); err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", "validate", "video not readable: "+r.Video, err)
	}
	if r.Audio = strings.TrimSpace(r.Audio); r.Audio != "" {
		if _, err := os.Stat(r.Audio); err != nil {
			return services.Wrap(services.ErrValidation, "pipeline", "validate", "audio not readable: "+r.Audio, err)
		}
	}
	if r.SourceLanguage = strings.TrimSpace(r.SourceLanguage); r.SourceLanguage != "" {
		normalized, err := language.Normalize(r.SourceLanguage)
		if err != nil {
			return err
		}
		r.SourceLanguage = normalized
	}
	targets, err := language.NormalizeList(r.TargetLanguages)
	if err != nil {
		return err
	}
	r.TargetLanguages = targets
	switch r.Mode = strings.TrimSpace(r.Mode); r.Mode {
	case "", "hard", "soft", "both":
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "validate", "unknown publish mode "+r.Mode, nil)
	}
	switch r.Device = strings.TrimSpace(r.Device); r.Device {
	case "", "auto", "cpu", "cuda", "videotoolbox":
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "validate", "unknown encode device "+r.Device, nil)
	}
	return nil
}
