package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	ModelDir  string `toml:"model_dir"`
	APIBind   string `toml:"api_bind"`
}

// Transcriber configures the external speech-recognition backend.
type Transcriber struct {
	Backend     string `toml:"backend"` // "faster-whisper" or "openai-whisper"
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	Align       bool   `toml:"align"`
	UVXBinary   string `toml:"uvx_binary"`
}

// Translation configures the external translation runner and model fallbacks.
type Translation struct {
	UVXBinary   string `toml:"uvx_binary"`
	RunnerName  string `toml:"runner_name"`
	NLLBModel   string `toml:"nllb_model"`
	M2M100Model string `toml:"m2m100_model"`
}

// Subtitles configures cue segmentation limits.
type Subtitles struct {
	MaxChars           int     `toml:"max_chars"`
	MaxLines           int     `toml:"max_lines"`
	MaxDurationSeconds float64 `toml:"max_duration_seconds"`
}

// Detection configures the burned-in subtitle detector and masking.
type Detection struct {
	Enabled           bool    `toml:"enabled"`
	FramesToCheck     int     `toml:"frames_to_check"`
	MinFramesWithText int     `toml:"min_frames_with_text"`
	MinLineLength     int     `toml:"min_line_length"`
	MaxLineLength     int     `toml:"max_line_length"`
	BandRatio         float64 `toml:"band_ratio"`
	MaskRatio         float64 `toml:"mask_ratio"`
	MaskColor         string  `toml:"mask_color"`
	TesseractBinary   string  `toml:"tesseract_binary"`
}

// Publish configures output publication defaults.
type Publish struct {
	Mode   string `toml:"mode"` // "hard", "soft", or "both"
	Device string `toml:"device"`
}

// Workflow contains worker pool sizing.
type Workflow struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Storage configures optional S3 artifact upload.
type Storage struct {
	S3Enabled bool   `toml:"s3_enabled"`
	S3Bucket  string `toml:"s3_bucket"`
	S3Prefix  string `toml:"s3_prefix"`
	S3Region  string `toml:"s3_region"`
}

// Config is the root configuration document.
type Config struct {
	Paths       `toml:"paths"`
	Transcriber Transcriber `toml:"transcriber"`
	Translation Translation `toml:"translation"`
	Subtitles   Subtitles   `toml:"subtitles"`
	Detection   Detection   `toml:"detection"`
	Publish     Publish     `toml:"publish"`
	Workflow    Workflow    `toml:"workflow"`
	Storage     Storage     `toml:"storage"`

	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() string {
	return expandHome("~/.config/autosub/config.toml")
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. An empty path selects DefaultConfigPath.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the configured output, work, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.OutputDir, c.WorkDir, c.LogDir, c.ModelDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.OutputDir = expandHome(c.OutputDir)
	c.WorkDir = expandHome(c.WorkDir)
	c.LogDir = expandHome(c.LogDir)
	c.ModelDir = expandHome(c.ModelDir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
