package transcribe

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/transcript"
)

// WhisperX runs faster-whisper transcription with word-level alignment
// through the whisperx CLI, invoked via uvx so no local install is required.
type WhisperX struct {
	uvx     string
	model   string
	cuda    bool
	workDir string
	logger  *slog.Logger
	run     commandRunner
}

// NewWhisperX builds the backend from configuration.
func NewWhisperX(cfg *config.Config, logger *slog.Logger) *WhisperX {
	w := &WhisperX{
		uvx:     cfg.Transcriber.UVXBinary,
		model:   cfg.Transcriber.Model,
		cuda:    cfg.Transcriber.CUDAEnabled,
		workDir: cfg.WorkDir,
		logger:  logging.NewComponentLogger(logger, "whisperx"),
	}
	if strings.TrimSpace(w.uvx) == "" {
		w.uvx = "uvx"
	}
	w.run = func(ctx context.Context, name string, args ...string) error {
		return runCommand(ctx, name, args...)
	}
	return w
}

type whisperPayload struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
	Language string `json:"language"`
}

// Transcribe runs whisperx against the audio file. When alignment is
// requested and the aligned pass fails, it retries without alignment and
// reports Aligned=false rather than failing the job; alignment only refines
// timing.
func (w *WhisperX) Transcribe(ctx context.Context, audioPath, language string, align bool) (Result, error) {
	outputDir, err := os.MkdirTemp(w.workDir, "whisperx-*")
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx",
			"Failed to create output directory", err)
	}
	defer os.RemoveAll(outputDir)

	aligned := align
	err = w.run(ctx, w.uvx, w.buildArgs(audioPath, outputDir, language, aligned)...)
	if err != nil && aligned {
		if w.logger != nil {
			alignErr := services.Wrap(services.ErrAlignment, "transcribe", "align",
				"word alignment failed", err)
			w.logger.Warn("aligned transcription failed, retrying without alignment",
				logging.Error(alignErr),
				logging.String(logging.FieldEventType, "alignment_retry"),
			)
		}
		aligned = false
		err = w.run(ctx, w.uvx, w.buildArgs(audioPath, outputDir, language, aligned)...)
	}
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx",
			"whisperx transcription failed", err)
	}

	result, err := loadWhisperJSON(outputDir, audioPath)
	if err != nil {
		return Result{}, err
	}
	result.Aligned = aligned
	if result.Language == "" {
		result.Language = language
	}
	return result, nil
}

func (w *WhisperX) buildArgs(audioPath, outputDir, language string, align bool) []string {
	args := []string{
		"whisperx",
		audioPath,
		"--model", w.model,
		"--output_dir", outputDir,
		"--output_format", "json",
	}
	if w.cuda {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", "int8")
	}
	if !align {
		args = append(args, "--no_align")
	}
	if trimmed := strings.TrimSpace(language); trimmed != "" {
		args = append(args, "--language", trimmed)
	}
	return args
}

// loadWhisperJSON reads the JSON transcript the whisper tools write next to
// the audio basename in the output directory.
func loadWhisperJSON(outputDir, audioPath string) (Result, error) {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	path := filepath.Join(outputDir, base+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "load transcript",
			"Transcriber produced no JSON output", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "transcribe", "load transcript",
			"Invalid transcriber JSON output", err)
	}
	segments := make([]transcript.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		segments = append(segments, transcript.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return Result{Segments: segments, Language: payload.Language}, nil
}
