package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/services"
)

// Translator converts text from one language to another with a loaded model.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Loader loads the model behind a backend spec. Loading is expensive; the
// resolver caches successful loads.
type Loader interface {
	Load(ctx context.Context, spec Spec) (Translator, error)
}

// Attempt records one backend that was tried and why it failed.
type Attempt struct {
	Spec Spec
	Err  error
}

// UnavailableError reports that no backend could serve a language pair. It
// enumerates every attempted backend so the operator can see which models
// were tried and how each failed.
type UnavailableError struct {
	Source   string
	Target   string
	Attempts []Attempt
}

func (e *UnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no translation backend available for %s->%s after %d attempts", e.Source, e.Target, len(e.Attempts))
	for _, attempt := range e.Attempts {
		fmt.Fprintf(&b, "; %s: %v", attempt.Spec, attempt.Err)
	}
	return b.String()
}

func (e *UnavailableError) Unwrap() error {
	return services.ErrTranslationUnavailable
}

// Resolver finds a working translation backend for a language pair, caching
// loaded models across jobs.
type Resolver struct {
	loader    Loader
	cache     *cache
	nllbModel string
	m2mModel  string
	logger    *slog.Logger
}

// NewResolver builds a resolver over the given loader.
func NewResolver(loader Loader, cfg *config.Config, logger *slog.Logger) *Resolver {
	return &Resolver{
		loader:    loader,
		cache:     newCache(),
		nllbModel: cfg.Translation.NLLBModel,
		m2mModel:  cfg.Translation.M2M100Model,
		logger:    logging.NewComponentLogger(logger, "translate"),
	}
}

// Resolve returns a translator for the pair. Candidates are tried in order:
// dedicated opus-mt pair models across every alias combination, then the
// multilingual fallbacks. A model that loaded for any alias spelling of the
// pair is reused, so resolving he->en and iw->en share one loaded model.
func (r *Resolver) Resolve(ctx context.Context, source, target string) (Translator, error) {
	specs := candidates(source, target, r.nllbModel, r.m2mModel)

	for _, spec := range specs {
		if translator, ok := r.cache.lookup(spec.Key()); ok {
			return translator, nil
		}
	}

	var attempts []Attempt
	for _, spec := range specs {
		spec := spec
		translator, err := r.cache.getOrLoad(ctx, spec.Key(), func(ctx context.Context) (Translator, error) {
			return r.loader.Load(ctx, spec)
		})
		if err == nil {
			if r.logger != nil {
				r.logger.Info("translation backend resolved",
					logging.String("model", spec.Model),
					logging.String("kind", string(spec.Kind)),
					logging.String("source", spec.Source),
					logging.String("target", spec.Target),
				)
			}
			return translator, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		attempts = append(attempts, Attempt{Spec: spec, Err: err})
		if r.logger != nil {
			r.logger.Debug("translation backend unavailable",
				logging.String("model", spec.Model),
				logging.Error(err),
			)
		}
	}
	return nil, &UnavailableError{Source: source, Target: target, Attempts: attempts}
}
