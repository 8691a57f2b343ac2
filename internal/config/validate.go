package config

import (
	"fmt"
	"strings"

	"autosub/internal/services"
)

var validBackends = map[string]struct{}{
	"faster-whisper": {},
	"openai-whisper": {},
}

var validModes = map[string]struct{}{
	"hard": {},
	"soft": {},
	"both": {},
}

var validDevices = map[string]struct{}{
	"auto":         {},
	"cpu":          {},
	"cuda":         {},
	"videotoolbox": {},
}

// Validate checks the configuration for values that would break the pipeline.
func (c *Config) Validate() error {
	backend := strings.TrimSpace(c.Transcriber.Backend)
	if _, ok := validBackends[backend]; !ok {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("unsupported transcriber backend %q", backend), nil)
	}
	mode := strings.ToLower(strings.TrimSpace(c.Publish.Mode))
	if _, ok := validModes[mode]; !ok {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("unsupported publish mode %q", c.Publish.Mode), nil)
	}
	device := strings.ToLower(strings.TrimSpace(c.Publish.Device))
	if _, ok := validDevices[device]; !ok {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			fmt.Sprintf("unsupported device %q", c.Publish.Device), nil)
	}
	if c.Subtitles.MaxChars < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "max_chars must be at least 1", nil)
	}
	if c.Subtitles.MaxLines < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "max_lines must be at least 1", nil)
	}
	if c.Subtitles.MaxDurationSeconds <= 0 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "max_duration_seconds must be positive", nil)
	}
	if c.Detection.FramesToCheck < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "frames_to_check must be at least 1", nil)
	}
	if c.Detection.MinFramesWithText < 1 || c.Detection.MinFramesWithText > c.Detection.FramesToCheck {
		return services.Wrap(services.ErrConfiguration, "config", "validate",
			"min_frames_with_text must be between 1 and frames_to_check", nil)
	}
	if c.Detection.BandRatio <= 0 || c.Detection.BandRatio >= 1 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "band_ratio must be in (0, 1)", nil)
	}
	if c.Workflow.Workers < 1 {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "workers must be at least 1", nil)
	}
	if c.Storage.S3Enabled && strings.TrimSpace(c.Storage.S3Bucket) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "validate", "s3_bucket required when s3_enabled", nil)
	}
	return nil
}
