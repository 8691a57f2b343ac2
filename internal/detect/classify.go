package detect

import "strings"

// hasSubtitleText reports whether OCR output from a frame's bottom band looks
// like rendered subtitle text rather than noise. At least one line must fall
// within the configured length window and carry more than one word.
func hasSubtitleText(ocrText string, tunables Tunables) bool {
	for _, line := range strings.Split(ocrText, "\n") {
		if looksLikeSubtitleLine(line, tunables.MinLineLength, tunables.MaxLineLength) {
			return true
		}
	}
	return false
}

// looksLikeSubtitleLine applies the per-line heuristic. OCR noise tends to be
// either very short fragments, single-token artifacts such as burned-in
// timestamps, or extremely long smears; real subtitle lines are modest runs
// of several words.
func looksLikeSubtitleLine(line string, minLen, maxLen int) bool {
	trimmed := strings.TrimSpace(line)
	runes := []rune(trimmed)
	if len(runes) < minLen || len(runes) > maxLen {
		return false
	}
	return len(strings.Fields(trimmed)) > 1
}
