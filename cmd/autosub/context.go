package main

import (
	"context"
	"log/slog"
	"sync"

	"autosub/internal/config"
	"autosub/internal/detect"
	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/media/ffprobe"
	"autosub/internal/pipeline"
	"autosub/internal/publish"
	"autosub/internal/storage"
	"autosub/internal/transcribe"
	"autosub/internal/translate"
)

// commandContext lazily loads configuration and builds shared collaborators
// for the subcommands.
type commandContext struct {
	configFlag *string

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	err    error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		cfg, err := config.Load(*c.configFlag)
		if err != nil {
			c.err = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.logger, c.err = logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: cfg.LogFormat,
			LogDir: cfg.LogDir,
		})
	})
	return c.cfg, c.logger, c.err
}

// buildOrchestrator wires the full pipeline from configuration.
func buildOrchestrator(cfg *config.Config, store *jobs.Store, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	transcriber, err := transcribe.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	burner := publish.NewBurner(cfg.FFmpegBinary, logger)
	resolver := translate.NewResolver(translate.NewExecLoader(cfg), cfg, logger)

	var uploader pipeline.ManifestUploader
	if cfg.Storage.S3Enabled {
		s3Uploader, err := storage.NewUploader(context.Background(), cfg, logger)
		if err != nil {
			return nil, err
		}
		uploader = s3Uploader
	}

	deps := pipeline.Deps{
		Probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, cfg.FFprobeBinary, path)
		},
		Detector:    detect.New(cfg, logger),
		Masker:      publish.NewMasker(cfg.FFmpegBinary, cfg.Detection.MaskRatio, cfg.Detection.MaskColor, logger),
		Extractor:   transcribe.NewAudioExtractor(cfg, logger),
		Transcriber: transcriber,
		Translator:  translate.NewService(resolver, logger),
		Publisher:   publish.New(burner, publish.NewMuxer(cfg.FFmpegBinary), logger),
		Uploader:    uploader,
		Store:       store,
	}
	return pipeline.New(cfg, deps, logger), nil
}
