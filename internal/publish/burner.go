// Package publish writes subtitle outputs: SRT sidecars, hard-burned video
// variants, and a single soft-muxed container carrying every track.
package publish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"autosub/internal/services"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// deviceCodecs maps a resolved encode device to its ffmpeg flags.
var deviceCodecs = map[string]struct {
	inputFlags []string
	codec      string
}{
	"cpu":          {codec: "libx264"},
	"cuda":         {inputFlags: []string{"-hwaccel", "cuda"}, codec: "h264_nvenc"},
	"videotoolbox": {codec: "h264_videotoolbox"},
}

const (
	burnFontName      = "Arial"
	maskedMarginV     = 50 // raise rendered subtitles clear of the mask band
	subtitleStyleBase = "FontName=" + burnFontName
)

// Burner hard-burns subtitle files into video with ffmpeg.
type Burner struct {
	ffmpeg string
	logger *slog.Logger
	run    commandRunner
}

// NewBurner builds a burner using the configured ffmpeg binary.
func NewBurner(ffmpegBinary string, logger *slog.Logger) *Burner {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	b := &Burner{ffmpeg: ffmpegBinary, logger: logger}
	b.run = b.defaultRunner
	return b
}

// Burn renders the subtitle file into the video picture and writes the result
// to destination, encoding on the given resolved device ("cpu", "cuda", or
// "videotoolbox"). The audio stream is copied untouched. When masked is set
// the subtitles render with a raised vertical margin so they sit above the
// mask band covering the original burned-in text.
func (b *Burner) Burn(ctx context.Context, video, subtitlePath, destination, device string, masked bool) error {
	codec, ok := deviceCodecs[device]
	if !ok {
		return services.Wrap(services.ErrConfiguration, "publish", "burn",
			"unsupported encode device "+device, nil)
	}

	style := subtitleStyleBase
	if masked {
		style += fmt.Sprintf(",MarginV=%d", maskedMarginV)
	}
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'", escapeFilterPath(subtitlePath), style)

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	args = append(args, codec.inputFlags...)
	args = append(args,
		"-i", video,
		"-vf", filter,
		"-c:v", codec.codec,
		"-c:a", "copy",
		destination,
	)
	if err := b.run(ctx, b.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "publish", "burn",
			"Failed to hard-burn subtitles with ffmpeg", err)
	}
	return nil
}

func (b *Burner) defaultRunner(ctx context.Context, name string, args ...string) error {
	return runCommand(ctx, name, args...)
}

// escapeFilterPath escapes the characters ffmpeg's filter parser treats
// specially inside a subtitles= argument.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `'`, `\'`)
	return replacer.Replace(path)
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
