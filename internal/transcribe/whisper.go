package transcribe

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/services"
)

// OpenAIWhisper runs the reference openai-whisper CLI via uvx. It never
// produces word-aligned timing; Aligned is always false.
type OpenAIWhisper struct {
	uvx     string
	model   string
	cuda    bool
	workDir string
	logger  *slog.Logger
	run     commandRunner
}

// NewOpenAIWhisper builds the backend from configuration.
func NewOpenAIWhisper(cfg *config.Config, logger *slog.Logger) *OpenAIWhisper {
	w := &OpenAIWhisper{
		uvx:     cfg.Transcriber.UVXBinary,
		model:   cfg.Transcriber.Model,
		cuda:    cfg.Transcriber.CUDAEnabled,
		workDir: cfg.WorkDir,
		logger:  logging.NewComponentLogger(logger, "whisper"),
	}
	if strings.TrimSpace(w.uvx) == "" {
		w.uvx = "uvx"
	}
	w.run = func(ctx context.Context, name string, args ...string) error {
		return runCommand(ctx, name, args...)
	}
	return w
}

// Transcribe runs whisper against the audio file and loads its JSON output.
// The align request is ignored; whisper has no aligner.
func (w *OpenAIWhisper) Transcribe(ctx context.Context, audioPath, language string, _ bool) (Result, error) {
	outputDir, err := os.MkdirTemp(w.workDir, "whisper-*")
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper",
			"Failed to create output directory", err)
	}
	defer os.RemoveAll(outputDir)

	args := []string{
		"--from", "openai-whisper",
		"whisper",
		audioPath,
		"--model", w.model,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if w.cuda {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--fp16", "False")
	}
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		args = append(args, "--language", trimmed)
	}
	if err := w.run(ctx, w.uvx, args...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisper",
			"whisper transcription failed", err)
	}

	result, err := loadWhisperJSON(outputDir, audioPath)
	if err != nil {
		return Result{}, err
	}
	if result.Language == "" {
		result.Language = language
	}
	if w.logger != nil {
		w.logger.Debug("transcription complete",
			logging.Int("segments", len(result.Segments)),
			logging.String(logging.FieldLanguage, result.Language),
		)
	}
	return result, nil
}
