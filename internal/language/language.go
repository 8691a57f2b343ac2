// Package language normalizes language codes and expands the alias sets used
// during translation backend resolution. Translation models are named with
// inconsistent codes (Hebrew appears as both "he" and "iw"), so resolution
// works over ordered alias lists while display and track tagging use the
// normalized form.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"autosub/internal/services"
)

// Undetermined is the ISO 639-2 tag applied to tracks whose language is unknown.
const Undetermined = "und"

// aliasGroups lists codes that refer to the same language. Order matters: the
// canonical modern code comes first, legacy forms after.
var aliasGroups = [][]string{
	{"he", "iw"}, // Hebrew
	{"yi", "ji"}, // Yiddish
	{"id", "in"}, // Indonesian
	{"jv", "jw"}, // Javanese
}

var aliasIndex = func() map[string][]string {
	index := make(map[string][]string)
	for _, group := range aliasGroups {
		for _, code := range group {
			index[code] = group
		}
	}
	return index
}()

// iso3 maps ISO 639-1 codes to the ISO 639-2 form container metadata expects.
var iso3 = map[string]string{
	"en": "eng", "es": "spa", "fr": "fra", "de": "deu", "it": "ita",
	"pt": "por", "ja": "jpn", "ko": "kor", "zh": "zho", "ru": "rus",
	"ar": "ara", "hi": "hin", "nl": "nld", "pl": "pol", "sv": "swe",
	"da": "dan", "no": "nor", "fi": "fin", "he": "heb", "iw": "heb",
	"yi": "yid", "ji": "yid", "id": "ind", "in": "ind", "tr": "tur",
	"uk": "ukr", "el": "ell", "cs": "ces", "hu": "hun", "ro": "ron",
}

// Normalize lowercases and validates a requested language code. Unparseable
// codes are rejected with a validation error so malformed requests fail before
// any pipeline stage runs.
func Normalize(code string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(code))
	if trimmed == "" {
		return "", services.Wrap(services.ErrValidation, "language", "normalize", "empty language code", nil)
	}
	if _, ok := aliasIndex[trimmed]; ok {
		return trimmed, nil
	}
	if _, err := language.Parse(trimmed); err != nil {
		return "", services.Wrap(services.ErrValidation, "language", "normalize",
			"unrecognized language code "+strings.TrimSpace(code), err)
	}
	return trimmed, nil
}

// NormalizeList normalizes and deduplicates a list of requested codes,
// preserving order. Any invalid code fails the whole list.
func NormalizeList(codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		normalized, err := Normalize(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}

// Aliases returns the ordered alias list for a code, the literal code first.
// Codes without known aliases return a single-element list.
func Aliases(code string) []string {
	code = strings.ToLower(strings.TrimSpace(code))
	group, ok := aliasIndex[code]
	if !ok {
		return []string{code}
	}
	out := make([]string, 0, len(group))
	out = append(out, code)
	for _, alias := range group {
		if alias != code {
			out = append(out, alias)
		}
	}
	return out
}

// Canonical returns the modern form of a code, mapping legacy aliases to the
// head of their alias group. Codes without aliases pass through.
func Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if group, ok := aliasIndex[code]; ok {
		return group[0]
	}
	return code
}

// ToISO3 converts a language code to the ISO 639-2 form used for subtitle
// track tags. Unknown 3-letter codes pass through; anything else maps to
// Undetermined.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Undetermined
	}
	if mapped, ok := iso3[code]; ok {
		return mapped
	}
	if len(code) == 3 {
		return code
	}
	return Undetermined
}

// DisplayName returns a human-readable name for a recognized code, falling
// back to the uppercased code.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	canonical := trimmed
	if group, ok := aliasIndex[strings.ToLower(trimmed)]; ok {
		canonical = group[0]
	}
	if tag, err := language.Parse(canonical); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(trimmed)
}

// ExtractFromTags extracts and normalizes the language from stream metadata
// tags, checking the tag keys ffprobe commonly reports.
func ExtractFromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"}
	for _, key := range keys {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
