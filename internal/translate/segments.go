package translate

import (
	"context"
	"log/slog"

	"autosub/internal/logging"
	"autosub/internal/transcript"
)

// Service translates transcript segments into target languages.
type Service struct {
	resolver *Resolver
	logger   *slog.Logger
}

// NewService wraps a resolver for segment-level translation.
func NewService(resolver *Resolver, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "translate"),
	}
}

// Resolver exposes the underlying backend resolver.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// TranslateSegments translates each segment's text from source to target,
// preserving timing. Backend resolution failure fails the whole call; a
// failure on an individual segment keeps that segment's source text and
// moves on, so one bad cue cannot sink the rest of the subtitle track.
// The returned count reports how many segments failed.
func (s *Service) TranslateSegments(ctx context.Context, segments []transcript.Segment, source, target string) ([]transcript.Segment, int, error) {
	translator, err := s.resolver.Resolve(ctx, source, target)
	if err != nil {
		return nil, 0, err
	}

	out := make([]transcript.Segment, len(segments))
	failed := 0
	for i, seg := range segments {
		out[i] = seg
		if seg.Text == "" {
			continue
		}
		if ctx.Err() != nil {
			return nil, failed, ctx.Err()
		}
		translated, err := translator.Translate(ctx, seg.Text)
		if err != nil {
			failed++
			if s.logger != nil {
				s.logger.Warn("segment translation failed, keeping source text",
					logging.Int("segment", i),
					logging.String(logging.FieldLanguage, target),
					logging.Error(err),
				)
			}
			continue
		}
		out[i].Text = translated
	}
	return out, failed, nil
}

// TranslateText translates a single piece of text, used by the CLI.
func (s *Service) TranslateText(ctx context.Context, text, source, target string) (string, error) {
	translator, err := s.resolver.Resolve(ctx, source, target)
	if err != nil {
		return "", err
	}
	return translator.Translate(ctx, text)
}
