package transcript

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"autosub/internal/services"
)

// ComposeSRT renders cues as a SubRip document. Timestamps are written as
// HH:MM:SS,mmm with millisecond precision and blocks are separated by blank
// lines. The output ends with a trailing newline.
func ComposeSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strconv.Itoa(cue.Index))
		b.WriteString("\n")
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteString("\n")
		b.WriteString(cue.Text())
		b.WriteString("\n")
	}
	return b.String()
}

// ParseSRT parses a SubRip document into cues. Parsing is lossless with
// respect to ComposeSRT: composing the parsed cues reproduces the input
// byte for byte. Malformed blocks fail the whole parse.
func ParseSRT(data string) ([]Cue, error) {
	normalized := strings.ReplaceAll(data, "\r\n", "\n")
	blocks := strings.Split(strings.TrimRight(normalized, "\n"), "\n\n")

	var cues []Cue
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			return nil, services.Wrap(services.ErrValidation, "srt", "parse",
				fmt.Sprintf("cue block has %d lines, need at least 3", len(lines)), nil)
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "srt", "parse",
				"invalid cue index "+strings.TrimSpace(lines[0]), err)
		}
		start, end, err := parseTimingLine(lines[1])
		if err != nil {
			return nil, err
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Lines: lines[2:],
		})
	}
	return cues, nil
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.Split(line, " --> ")
	if len(parts) != 2 {
		return 0, 0, services.Wrap(services.ErrValidation, "srt", "parse",
			"invalid timing line "+strings.TrimSpace(line), nil)
	}
	start, err := ParseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp parses an SRT timestamp into seconds. Both comma and period
// millisecond separators are accepted.
func ParseTimestamp(value string) (float64, error) {
	normalized := strings.ReplaceAll(value, ",", ".")
	parts := strings.Split(normalized, ":")
	if len(parts) != 3 {
		return 0, services.Wrap(services.ErrValidation, "srt", "parse",
			"invalid timestamp "+value, nil)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "srt", "parse",
			"invalid timestamp "+value, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "srt", "parse",
			"invalid timestamp "+value, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "srt", "parse",
			"invalid timestamp "+value, err)
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
