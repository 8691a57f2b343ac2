package publish

import (
	"context"
	"fmt"
	"strings"

	"autosub/internal/language"
	"autosub/internal/services"
)

// Muxer attaches subtitle files to a video as selectable soft tracks in a
// Matroska container.
type Muxer struct {
	ffmpeg string
	run    commandRunner
}

// NewMuxer builds a muxer using the given ffmpeg binary.
func NewMuxer(ffmpegBinary string) *Muxer {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	m := &Muxer{ffmpeg: ffmpegBinary}
	m.run = func(ctx context.Context, name string, args ...string) error {
		return runCommand(ctx, name, args...)
	}
	return m
}

// SubtitleInput is one track to mux. Language is the normalized code, empty
// for the original-language track, which is tagged "und" in the container.
type SubtitleInput struct {
	Path     string
	Language string
}

// Mux copies the video's streams untouched and appends every subtitle input
// as an SRT track, tagging each with its ISO 639-2 language.
func (m *Muxer) Mux(ctx context.Context, video string, subtitles []SubtitleInput, destination string) error {
	if len(subtitles) == 0 {
		return services.Wrap(services.ErrValidation, "publish", "mux", "no subtitle tracks to mux", nil)
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", video}
	for _, sub := range subtitles {
		args = append(args, "-i", sub.Path)
	}
	args = append(args, "-map", "0")
	for i := range subtitles {
		args = append(args, "-map", fmt.Sprintf("%d", i+1))
	}
	args = append(args, "-c", "copy", "-c:s", "srt")
	for i, sub := range subtitles {
		tag := language.Undetermined
		if sub.Language != "" {
			tag = language.ToISO3(sub.Language)
		}
		args = append(args, fmt.Sprintf("-metadata:s:s:%d", i), "language="+tag)
	}
	args = append(args, destination)

	if err := m.run(ctx, m.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "mux",
			"Failed to mux subtitle tracks with ffmpeg", err)
	}
	return nil
}
