// Package transcribe turns audio into time-coded transcript segments by
// driving speech recognition tools through uvx.
package transcribe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/transcript"
)

// Result carries the output of one transcription run.
type Result struct {
	Segments []transcript.Segment
	Language string // detected or requested source language
	Aligned  bool   // false when word alignment failed and timing is model-native
}

// Transcriber produces a transcript from an extracted audio file. align
// requests word-level timing refinement; backends without an aligner ignore
// it and report Aligned=false.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string, align bool) (Result, error)
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// New selects a backend from configuration.
func New(cfg *config.Config, logger *slog.Logger) (Transcriber, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new", "missing configuration", nil)
	}
	switch cfg.Transcriber.Backend {
	case "faster-whisper":
		return NewWhisperX(cfg, logger), nil
	case "openai-whisper":
		return NewOpenAIWhisper(cfg, logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new",
			"unknown transcriber backend "+cfg.Transcriber.Backend, nil)
	}
}

// AudioExtractor pulls a speech-recognition-ready audio track out of a video
// container with ffmpeg.
type AudioExtractor struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewAudioExtractor returns an extractor using the configured ffmpeg binary.
func NewAudioExtractor(cfg *config.Config, logger *slog.Logger) *AudioExtractor {
	binary := "ffmpeg"
	if cfg != nil && strings.TrimSpace(cfg.FFmpegBinary) != "" {
		binary = cfg.FFmpegBinary
	}
	extractor := &AudioExtractor{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "audio-extract"),
	}
	extractor.run = extractor.defaultRunner
	return extractor
}

// Extract writes a 16 kHz mono PCM WAV to destination. streamIndex selects an
// audio stream by position; pass a negative index to let ffmpeg pick the
// default track.
func (e *AudioExtractor) Extract(ctx context.Context, source string, streamIndex int, destination string) error {
	start := time.Now()
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
	}
	if streamIndex >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", streamIndex))
	}
	args = append(args,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		destination,
	)
	if err := e.run(ctx, e.binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribe", "extract audio",
			"Failed to extract audio track with ffmpeg", err)
	}
	if e.logger != nil {
		attrs := []logging.Attr{
			logging.String("destination", destination),
			logging.Duration("elapsed", time.Since(start)),
		}
		if info, err := os.Stat(destination); err == nil {
			attrs = append(attrs, logging.Float64("size_mb", float64(info.Size())/1_048_576))
		}
		e.logger.Debug("audio extracted", logging.Args(attrs...)...)
	}
	return nil
}

func (e *AudioExtractor) defaultRunner(ctx context.Context, name string, args ...string) error {
	return runCommand(ctx, name, args...)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
