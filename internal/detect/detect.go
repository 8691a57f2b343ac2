// Package detect decides whether a video already carries burned-in subtitles
// by OCR-sampling frames from the bottom band of the picture.
package detect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/media/ffprobe"
	"autosub/internal/services"
)

// Tunables collects every knob of the detection heuristic.
type Tunables struct {
	FramesToCheck     int     // how many frames to sample across the runtime
	MinFramesWithText int     // hits required to report burned-in subtitles
	MinLineLength     int     // shortest OCR line counted as subtitle text
	MaxLineLength     int     // longest OCR line counted as subtitle text
	BandRatio         float64 // fraction of picture height inspected, from the bottom
}

// TunablesFromConfig maps the detection config section onto Tunables.
func TunablesFromConfig(cfg *config.Config) Tunables {
	return Tunables{
		FramesToCheck:     cfg.Detection.FramesToCheck,
		MinFramesWithText: cfg.Detection.MinFramesWithText,
		MinLineLength:     cfg.Detection.MinLineLength,
		MaxLineLength:     cfg.Detection.MaxLineLength,
		BandRatio:         cfg.Detection.BandRatio,
	}
}

// Detector samples frames and runs OCR over their subtitle band.
type Detector struct {
	tunables  Tunables
	ffmpeg    string
	ffprobe   string
	tesseract string
	workDir   string
	logger    *slog.Logger

	probeDuration func(ctx context.Context, path string) (float64, error)
	extractFrame  func(ctx context.Context, video string, at float64, band float64, dest string) error
	ocr           func(ctx context.Context, image string) (string, error)
}

// New builds a detector from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Detector {
	d := &Detector{
		tunables:  TunablesFromConfig(cfg),
		ffmpeg:    cfg.FFmpegBinary,
		ffprobe:   cfg.FFprobeBinary,
		tesseract: cfg.Detection.TesseractBinary,
		workDir:   cfg.WorkDir,
		logger:    logging.NewComponentLogger(logger, "detect"),
	}
	if strings.TrimSpace(d.tesseract) == "" {
		d.tesseract = "tesseract"
	}
	d.probeDuration = d.defaultProbeDuration
	d.extractFrame = d.defaultExtractFrame
	d.ocr = d.defaultOCR
	return d
}

// Detect reports whether the video appears to carry burned-in subtitles.
// A video whose duration cannot be read is treated as having none; detection
// is advisory and must not fail a job on its own.
func (d *Detector) Detect(ctx context.Context, videoPath string) (bool, error) {
	duration, err := d.probeDuration(ctx, videoPath)
	if err != nil || duration <= 0 {
		if d.logger != nil {
			d.logger.Warn("could not read video duration, assuming no burned-in subtitles",
				logging.String("video", videoPath),
				logging.Error(err),
			)
		}
		return false, nil
	}

	frameDir, err := os.MkdirTemp(d.workDir, "detect-*")
	if err != nil {
		return false, services.Wrap(services.ErrDetection, "detect", "scan",
			"Failed to create frame directory", err)
	}
	defer os.RemoveAll(frameDir)

	hits := 0
	for i := 0; i < d.tunables.FramesToCheck; i++ {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		at := duration * (float64(i) + 0.5) / float64(d.tunables.FramesToCheck)
		framePath := filepath.Join(frameDir, fmt.Sprintf("frame-%02d.png", i))
		if err := d.extractFrame(ctx, videoPath, at, d.tunables.BandRatio, framePath); err != nil {
			continue
		}
		text, err := d.ocr(ctx, framePath)
		if err != nil {
			continue
		}
		if hasSubtitleText(text, d.tunables) {
			hits++
		}
	}
	detected := hits >= d.tunables.MinFramesWithText
	if d.logger != nil {
		d.logger.Info("burned-in subtitle scan complete",
			logging.Int("frames_checked", d.tunables.FramesToCheck),
			logging.Int("frames_with_text", hits),
			logging.Bool("detected", detected),
		)
	}
	return detected, nil
}

func (d *Detector) defaultProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := ffprobe.Inspect(ctx, d.ffprobe, path)
	if err != nil {
		return 0, err
	}
	return result.DurationSeconds(), nil
}

func (d *Detector) defaultExtractFrame(ctx context.Context, video string, at, band float64, dest string) error {
	binary := d.ffmpeg
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	crop := fmt.Sprintf("crop=iw:ih*%.3f:0:ih*%.3f", band, 1-band)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", at),
		"-i", video,
		"-frames:v", "1",
		"-vf", crop,
		dest,
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg frame extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (d *Detector) defaultOCR(ctx context.Context, image string) (string, error) {
	cmd := exec.CommandContext(ctx, d.tesseract, image, "stdout") //nolint:gosec
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
