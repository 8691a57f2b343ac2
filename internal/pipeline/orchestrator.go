package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"autosub/internal/config"
	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/media/ffprobe"
	"autosub/internal/publish"
	"autosub/internal/services"
	"autosub/internal/transcribe"
	"autosub/internal/transcript"
)

// Stage names recorded on the job as it advances.
const (
	StageInspect    = "inspect"
	StageDetect     = "detect"
	StageMask       = "mask"
	StageExtract    = "extract_audio"
	StageTranscribe = "transcribe"
	StageSegment    = "segment"
	StageTranslate  = "translate"
	StagePublish    = "publish"
	StageFinalize   = "finalize"
)

// Detector reports whether a video carries burned-in subtitles.
type Detector interface {
	Detect(ctx context.Context, videoPath string) (bool, error)
}

// Masker covers the burned-in subtitle band of a video.
type Masker interface {
	Apply(ctx context.Context, video, destination string) error
}

// AudioExtractor pulls a transcription-ready audio track from a video.
type AudioExtractor interface {
	Extract(ctx context.Context, source string, streamIndex int, destination string) error
}

// SegmentTranslator translates transcript segments into a target language.
type SegmentTranslator interface {
	TranslateSegments(ctx context.Context, segments []transcript.Segment, source, target string) ([]transcript.Segment, int, error)
}

// Publisher writes the job's outputs and returns its manifest.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (map[string]string, error)
}

// ManifestUploader copies published artifacts to remote storage.
type ManifestUploader interface {
	UploadManifest(ctx context.Context, jobID string, manifest map[string]string) error
}

// Prober inspects a media container.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// Deps are the collaborators an orchestrator drives.
type Deps struct {
	Probe       Prober
	Detector    Detector
	Masker      Masker
	Extractor   AudioExtractor
	Transcriber transcribe.Transcriber
	Translator  SegmentTranslator
	Publisher   Publisher
	Uploader    ManifestUploader // optional
	Store       *jobs.Store
}

// Orchestrator runs one subtitle job through every stage.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// New builds an orchestrator.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes the pipeline for a job. External tool failures in mandatory
// stages fail the job; detection and per-language translation failures are
// absorbed so the job still publishes what it can. The job's workspace is
// removed whatever the outcome.
func (o *Orchestrator) Run(ctx context.Context, job *jobs.Job, req Request) (err error) {
	logger := logging.WithJobID(o.logger, job.ID)
	start := time.Now()

	workspace, err := NewWorkspace(o.cfg.WorkDir, job.ID)
	if err != nil {
		return o.fail(ctx, job, err)
	}
	defer workspace.Cleanup()

	job.Status = jobs.StatusRunning
	defer func() {
		if err != nil {
			err = o.fail(ctx, job, err)
		}
	}()

	// Inspect.
	o.enterStage(ctx, job, StageInspect)
	probe, err := o.deps.Probe(ctx, req.Video)
	if err != nil {
		return err
	}
	if len(probe.VideoStreams()) == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", StageInspect,
			"source has no video stream", nil)
	}
	// Detect burned-in subtitles. Detector trouble downgrades to "not
	// detected" so an OCR hiccup cannot sink the job.
	masked := false
	activeVideo := req.Video
	if o.cfg.Detection.Enabled && o.deps.Detector != nil {
		o.enterStage(ctx, job, StageDetect)
		detected, detectErr := o.deps.Detector.Detect(ctx, req.Video)
		if detectErr != nil {
			logger.Warn("burned-in subtitle detection failed, continuing without mask",
				logging.Error(detectErr),
				logging.String(logging.FieldEventType, "detection_failed"),
			)
		} else if detected {
			o.enterStage(ctx, job, StageMask)
			maskedPath := workspace.Path("masked" + extOrMKV(req.Video))
			if err = o.deps.Masker.Apply(ctx, req.Video, maskedPath); err != nil {
				return err
			}
			activeVideo = maskedPath
			masked = true
		}
	}

	// Extract audio unless the caller supplied it.
	audioPath := req.Audio
	if audioPath == "" {
		if req.AudioTrack >= 0 && req.AudioTrack >= len(probe.AudioStreams()) {
			return services.Wrap(services.ErrValidation, "pipeline", StageExtract,
				fmt.Sprintf("audio track %d does not exist", req.AudioTrack), nil)
		}
		o.enterStage(ctx, job, StageExtract)
		audioPath = workspace.Path("audio.wav")
		if err = o.deps.Extractor.Extract(ctx, req.Video, req.AudioTrack, audioPath); err != nil {
			return err
		}
	}

	// Transcribe.
	o.enterStage(ctx, job, StageTranscribe)
	align := o.cfg.Transcriber.Align && !req.NoAlign
	result, err := o.deps.Transcriber.Transcribe(ctx, audioPath, req.SourceLanguage, align)
	if err != nil {
		return err
	}
	if !result.Aligned {
		logger.Warn("transcript timing is not word-aligned",
			logging.String(logging.FieldEventType, "alignment_unavailable"),
		)
	}
	sourceLanguage := result.Language

	// Segment the original transcript.
	o.enterStage(ctx, job, StageSegment)
	opts := transcript.SegmentOptions{
		MaxChars:    o.cfg.Subtitles.MaxChars,
		MaxLines:    o.cfg.Subtitles.MaxLines,
		MaxDuration: o.cfg.Subtitles.MaxDurationSeconds,
	}
	originalCues, err := transcript.BuildCues(result.Segments, opts)
	if err != nil {
		return err
	}
	tracks := []publish.Track{{Language: "", Cues: originalCues}}

	// Translate per target language. A language that cannot be served is
	// dropped with a warning; the rest still publish.
	for _, target := range req.TargetLanguages {
		o.enterStage(ctx, job, StageTranslate)
		translated, failedCues, translateErr := o.deps.Translator.TranslateSegments(ctx, result.Segments, sourceLanguage, target)
		if translateErr != nil {
			if services.IsFatal(translateErr) {
				return translateErr
			}
			logger.Warn("translation unavailable for language, skipping",
				logging.String(logging.FieldLanguage, target),
				logging.Error(translateErr),
				logging.String(logging.FieldEventType, "language_skipped"),
			)
			continue
		}
		if failedCues > 0 {
			logger.Warn("some segments kept source text",
				logging.String(logging.FieldLanguage, target),
				logging.Int("failed_segments", failedCues),
			)
		}
		cues, cueErr := transcript.BuildCues(translated, opts)
		if cueErr != nil {
			return cueErr
		}
		tracks = append(tracks, publish.Track{Language: target, Cues: cues})
	}

	// Publish.
	o.enterStage(ctx, job, StagePublish)
	mode := req.Mode
	if mode == "" {
		mode = o.cfg.Publish.Mode
	}
	requestedDevice := req.Device
	if requestedDevice == "" {
		requestedDevice = o.cfg.Publish.Device
	}
	device, err := ResolveDevice(requestedDevice, o.cfg.Transcriber.CUDAEnabled)
	if err != nil {
		return err
	}
	manifest, err := o.deps.Publisher.Publish(ctx, publish.Request{
		Video:     activeVideo,
		BaseName:  publish.BaseNameFor(req.Video),
		OutputDir: o.cfg.OutputDir,
		Mode:      mode,
		Device:    device,
		Masked:    masked,
		Tracks:    tracks,
	})
	if err != nil {
		return err
	}

	// Finalize.
	o.enterStage(ctx, job, StageFinalize)
	manifest[jobs.DurationLabel] = fmt.Sprintf("%.2f", time.Since(start).Seconds())
	job.Manifest = manifest
	job.Status = jobs.StatusCompleted
	if updateErr := o.updateJob(ctx, job); updateErr != nil {
		return updateErr
	}

	// Outputs are already on disk; a failed upload does not undo the job.
	if o.deps.Uploader != nil {
		if uploadErr := o.deps.Uploader.UploadManifest(ctx, job.ID, manifest); uploadErr != nil {
			logger.Warn("artifact upload failed",
				logging.Error(uploadErr),
				logging.String(logging.FieldEventType, "upload_failed"),
			)
		}
	}
	logger.Info("job complete",
		logging.Int("tracks", len(tracks)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (o *Orchestrator) enterStage(ctx context.Context, job *jobs.Job, stage string) {
	job.Stage = stage
	_ = o.updateJob(ctx, job)
	if o.logger != nil {
		o.logger.Debug("stage started",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldStage, stage),
		)
	}
}

func (o *Orchestrator) fail(ctx context.Context, job *jobs.Job, cause error) error {
	if errors.Is(cause, context.Canceled) {
		job.ErrorMessage = "canceled"
	} else {
		job.ErrorMessage = cause.Error()
	}
	job.Status = jobs.StatusFailed
	_ = o.updateJob(context.WithoutCancel(ctx), job)
	if o.logger != nil {
		o.logger.Error("job failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.String(logging.FieldStage, job.Stage),
			logging.Error(cause),
		)
	}
	return cause
}

func (o *Orchestrator) updateJob(ctx context.Context, job *jobs.Job) error {
	if o.deps.Store == nil {
		return nil
	}
	return o.deps.Store.Update(ctx, job)
}

func extOrMKV(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mkv"
}
