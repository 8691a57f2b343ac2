package publish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"autosub/internal/logging"
	"autosub/internal/services"
)

// Masker covers the bottom band of a video with a solid box, hiding
// previously burned-in subtitles before new ones are rendered.
type Masker struct {
	ffmpeg string
	ratio  float64
	color  string
	logger *slog.Logger
	run    commandRunner
}

// NewMasker builds a masker covering the given fraction of picture height.
func NewMasker(ffmpegBinary string, ratio float64, color string, logger *slog.Logger) *Masker {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(color) == "" {
		color = "black"
	}
	m := &Masker{
		ffmpeg: ffmpegBinary,
		ratio:  ratio,
		color:  color,
		logger: logging.NewComponentLogger(logger, "mask"),
	}
	m.run = func(ctx context.Context, name string, args ...string) error {
		return runCommand(ctx, name, args...)
	}
	return m
}

// Apply writes a copy of the video with the bottom band drawn over.
func (m *Masker) Apply(ctx context.Context, video, destination string) error {
	filter := fmt.Sprintf("drawbox=x=0:y=ih*%.3f:w=iw:h=ih*%.3f:color=%s:t=fill",
		1-m.ratio, m.ratio, m.color)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-vf", filter,
		"-c:a", "copy",
		destination,
	}
	if err := m.run(ctx, m.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "mask",
			"Failed to mask burned-in subtitle band with ffmpeg", err)
	}
	if m.logger != nil {
		m.logger.Info("masked burned-in subtitle band",
			logging.String("destination", destination),
			logging.Float64("band_ratio", m.ratio),
		)
	}
	return nil
}
