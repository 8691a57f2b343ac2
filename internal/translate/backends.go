// Package translate resolves machine translation backends for language pairs
// and applies them to transcript segments. Dedicated Helsinki-NLP pair models
// are preferred, with multilingual NLLB and M2M100 models as fallbacks.
package translate

import (
	"fmt"

	"autosub/internal/language"
)

// BackendKind identifies the family of translation model behind a Spec.
type BackendKind string

const (
	// LocalPairBackend is a dedicated Helsinki-NLP opus-mt model for one
	// source/target pair.
	LocalPairBackend BackendKind = "opus-mt"
	// NLLBBackend is the multilingual NLLB fallback.
	NLLBBackend BackendKind = "nllb"
	// M2M100Backend is the multilingual M2M100 fallback.
	M2M100Backend BackendKind = "m2m100"
)

// Spec fully describes one loadable translation backend.
type Spec struct {
	Kind   BackendKind
	Model  string
	Source string // code the model expects for the source language
	Target string // code the model expects for the target language
}

// Key returns the cache key for a spec. Two specs with the same key load the
// same model state.
func (s Spec) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", s.Kind, s.Model, s.Source, s.Target)
}

func (s Spec) String() string {
	return fmt.Sprintf("%s(%s %s->%s)", s.Kind, s.Model, s.Source, s.Target)
}

// flores maps ISO 639-1 codes to the FLORES-200 codes NLLB expects. Pairs
// missing from this table cannot use the NLLB fallback.
var flores = map[string]string{
	"en": "eng_Latn", "es": "spa_Latn", "fr": "fra_Latn", "de": "deu_Latn",
	"it": "ita_Latn", "pt": "por_Latn", "nl": "nld_Latn", "pl": "pol_Latn",
	"sv": "swe_Latn", "da": "dan_Latn", "no": "nob_Latn", "fi": "fin_Latn",
	"ru": "rus_Cyrl", "uk": "ukr_Cyrl", "ja": "jpn_Jpan", "ko": "kor_Hang",
	"zh": "zho_Hans", "ar": "arb_Arab", "hi": "hin_Deva", "tr": "tur_Latn",
	"he": "heb_Hebr", "yi": "ydd_Hebr", "id": "ind_Latn", "jv": "jav_Latn",
	"el": "ell_Grek", "cs": "ces_Latn", "hu": "hun_Latn", "ro": "ron_Latn",
}

// floresCode returns the FLORES code for a language, resolving legacy aliases
// to their canonical form first.
func floresCode(code string) (string, bool) {
	mapped, ok := flores[language.Canonical(code)]
	return mapped, ok
}

// candidates builds the ordered list of backend specs to try for a pair.
// Alias pairs are expanded literal-first, each pair yielding the tc-big model
// before the base opus-mt model, followed by the multilingual fallbacks.
func candidates(source, target, nllbModel, m2mModel string) []Spec {
	var specs []Spec
	for _, s := range language.Aliases(source) {
		for _, t := range language.Aliases(target) {
			specs = append(specs,
				Spec{
					Kind:   LocalPairBackend,
					Model:  fmt.Sprintf("Helsinki-NLP/opus-mt-tc-big-%s-%s", s, t),
					Source: s,
					Target: t,
				},
				Spec{
					Kind:   LocalPairBackend,
					Model:  fmt.Sprintf("Helsinki-NLP/opus-mt-%s-%s", s, t),
					Source: s,
					Target: t,
				},
			)
		}
	}
	if src, ok := floresCode(source); ok {
		if tgt, ok := floresCode(target); ok {
			specs = append(specs, Spec{Kind: NLLBBackend, Model: nllbModel, Source: src, Target: tgt})
		}
	}
	specs = append(specs, Spec{
		Kind:   M2M100Backend,
		Model:  m2mModel,
		Source: language.Canonical(source),
		Target: language.Canonical(target),
	})
	return specs
}
