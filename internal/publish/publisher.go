package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"autosub/internal/jobs"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/transcript"
)

// Track is one finished subtitle track ready for publication. Language is the
// normalized target code; the original-language track uses an empty string.
type Track struct {
	Language string
	Cues     []transcript.Cue
}

func (t Track) label() string {
	if t.Language == "" {
		return jobs.OriginalLabel
	}
	return jobs.LanguageLabel(t.Language)
}

// Request describes one publication run.
type Request struct {
	Video     string // video to publish from, already masked when needed
	BaseName  string // output file stem, usually the source basename
	OutputDir string
	Mode      string  // "hard", "soft", or "both"
	Device    string  // resolved encode device for hard burns
	Masked    bool    // raise burned subtitle margins above the mask band
	Tracks    []Track // original track first
}

// Publisher turns finished subtitle tracks into output files and returns the
// job manifest describing them.
type Publisher struct {
	burner *Burner
	muxer  *Muxer
	logger *slog.Logger
}

// New builds a publisher from its collaborators.
func New(burner *Burner, muxer *Muxer, logger *slog.Logger) *Publisher {
	return &Publisher{
		burner: burner,
		muxer:  muxer,
		logger: logging.NewComponentLogger(logger, "publish"),
	}
}

// Publish writes every output for the request and returns manifest labels
// mapped to absolute paths. SRT sidecars are always written and always
// retained, whatever the mode. In hard mode every track, the original
// included, gets its own burned variant; soft mode produces one container
// with all tracks selectable; both does both.
func (p *Publisher) Publish(ctx context.Context, req Request) (map[string]string, error) {
	switch req.Mode {
	case "hard", "soft", "both":
	default:
		return nil, services.Wrap(services.ErrValidation, "publish", "publish", "unknown mode "+req.Mode, nil)
	}
	if len(req.Tracks) == 0 {
		return nil, services.Wrap(services.ErrValidation, "publish", "publish", "no subtitle tracks", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}

	manifest := make(map[string]string)

	sidecars := make([]string, len(req.Tracks))
	for i, track := range req.Tracks {
		path := filepath.Join(req.OutputDir, fmt.Sprintf("%s_%s.srt", req.BaseName, track.label()))
		if err := os.WriteFile(path, []byte(transcript.ComposeSRT(track.Cues)), 0o644); err != nil {
			return nil, fmt.Errorf("write subtitle sidecar: %w", err)
		}
		sidecars[i] = path
		manifest[track.label()+"_srt"] = path
	}

	ext := filepath.Ext(req.Video)
	if ext == "" {
		ext = ".mkv"
	}

	if req.Mode == "hard" || req.Mode == "both" {
		for i, track := range req.Tracks {
			destination := filepath.Join(req.OutputDir, fmt.Sprintf("%s_%s%s", req.BaseName, track.label(), ext))
			if err := p.burner.Burn(ctx, req.Video, sidecars[i], destination, req.Device, req.Masked); err != nil {
				return nil, err
			}
			manifest[track.label()] = destination
			if p.logger != nil {
				p.logger.Info("hard-burned variant written",
					logging.String(logging.FieldLanguage, track.label()),
					logging.String("destination", destination),
				)
			}
		}
	}

	if req.Mode == "soft" || req.Mode == "both" {
		inputs := make([]SubtitleInput, len(req.Tracks))
		for i, track := range req.Tracks {
			inputs[i] = SubtitleInput{Path: sidecars[i], Language: track.Language}
		}
		destination := filepath.Join(req.OutputDir, fmt.Sprintf("%s_%s.mkv", req.BaseName, jobs.MultiSoftLabel))
		if err := p.muxer.Mux(ctx, req.Video, inputs, destination); err != nil {
			return nil, err
		}
		manifest[jobs.MultiSoftLabel] = destination
		if p.logger != nil {
			p.logger.Info("soft-muxed container written", logging.String("destination", destination))
		}
	}

	return manifest, nil
}

// BaseNameFor derives the output stem from a source video path.
func BaseNameFor(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
