package config

const (
	defaultOutputDir         = "~/.local/share/autosub/outputs"
	defaultWorkDir           = "~/.local/share/autosub/work"
	defaultLogDir            = "~/.local/share/autosub/logs"
	defaultModelDir          = "~/.local/share/autosub/models"
	defaultAPIBind           = "127.0.0.1:8080"
	defaultTranscriberModel  = "small"
	defaultUVXBinary         = "uvx"
	defaultTranslationRunner = "easynmt"
	defaultNLLBModel         = "facebook/nllb-200-distilled-600M"
	defaultM2M100Model       = "facebook/m2m100_418M"
	defaultMaxChars          = 80
	defaultMaxLines          = 2
	defaultMaxDuration       = 5.0
	defaultFramesToCheck     = 10
	defaultMinFramesWithText = 6
	defaultMinLineLength     = 6
	defaultMaxLineLength     = 120
	defaultBandRatio         = 0.2
	defaultMaskRatio         = 0.2
	defaultMaskColor         = "black"
	defaultTesseractBinary   = "tesseract"
	defaultPublishMode       = "hard"
	defaultWorkers           = 4
	defaultQueueSize         = 32
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultLogLevel          = "info"
	defaultLogFormat         = "auto"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			ModelDir:  defaultModelDir,
			APIBind:   defaultAPIBind,
		},
		Transcriber: Transcriber{
			Backend:   "faster-whisper",
			Model:     defaultTranscriberModel,
			Align:     true,
			UVXBinary: defaultUVXBinary,
		},
		Translation: Translation{
			UVXBinary:   defaultUVXBinary,
			RunnerName:  defaultTranslationRunner,
			NLLBModel:   defaultNLLBModel,
			M2M100Model: defaultM2M100Model,
		},
		Subtitles: Subtitles{
			MaxChars:           defaultMaxChars,
			MaxLines:           defaultMaxLines,
			MaxDurationSeconds: defaultMaxDuration,
		},
		Detection: Detection{
			Enabled:           true,
			FramesToCheck:     defaultFramesToCheck,
			MinFramesWithText: defaultMinFramesWithText,
			MinLineLength:     defaultMinLineLength,
			MaxLineLength:     defaultMaxLineLength,
			BandRatio:         defaultBandRatio,
			MaskRatio:         defaultMaskRatio,
			MaskColor:         defaultMaskColor,
			TesseractBinary:   defaultTesseractBinary,
		},
		Publish: Publish{
			Mode:   defaultPublishMode,
			Device: "auto",
		},
		Workflow: Workflow{
			Workers:   defaultWorkers,
			QueueSize: defaultQueueSize,
		},
		FFmpegBinary:  defaultFFmpegBinary,
		FFprobeBinary: defaultFFprobeBinary,
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
	}
}
