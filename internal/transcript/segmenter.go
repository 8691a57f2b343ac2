package transcript

import (
	"math"
	"strings"

	"autosub/internal/services"
)

// SegmentOptions bounds the text and timing of generated cues.
type SegmentOptions struct {
	MaxChars    int     // maximum characters per wrapped line
	MaxLines    int     // maximum lines per cue
	MaxDuration float64 // seconds; longer multi-block segments are time-split
}

// DefaultSegmentOptions mirrors the values subtitle renderers handle well.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{MaxChars: 80, MaxLines: 2, MaxDuration: 5.0}
}

// BuildCues converts transcript segments into subtitle cues.
//
// Each segment's text is word-wrapped to MaxChars and grouped into blocks of
// at most MaxLines lines. When a segment lasts longer than MaxDuration and
// wraps into more than one block, the segment's span is distributed
// proportionally across the blocks: block i of n covers
// [start + dur*i/n, start + dur*(i+1)/n). Otherwise every block keeps the
// segment's original start and end, which means a short segment with a lot of
// text emits simultaneous cues sharing identical timing.
//
// Cue indices are 1-based and strictly increasing across the whole output.
// The function is pure: identical input always yields identical output.
func BuildCues(segments []Segment, opts SegmentOptions) ([]Cue, error) {
	if opts.MaxChars < 1 {
		return nil, services.Wrap(services.ErrValidation, "segmenter", "build", "MaxChars must be at least 1", nil)
	}
	if opts.MaxLines < 1 {
		return nil, services.Wrap(services.ErrValidation, "segmenter", "build", "MaxLines must be at least 1", nil)
	}

	var cues []Cue
	index := 1
	for _, seg := range segments {
		if !validTiming(seg) || strings.TrimSpace(seg.Text) == "" {
			continue
		}
		lines := wrapText(seg.Text, opts.MaxChars)
		if len(lines) == 0 {
			continue
		}

		nBlocks := (len(lines) + opts.MaxLines - 1) / opts.MaxLines
		duration := seg.Duration()

		if duration > opts.MaxDuration && nBlocks > 1 {
			for i := 0; i < nBlocks; i++ {
				blockLines := lines[i*opts.MaxLines : min((i+1)*opts.MaxLines, len(lines))]
				end := seg.End
				if i < nBlocks-1 {
					end = seg.Start + duration*float64(i+1)/float64(nBlocks)
				}
				cues = append(cues, Cue{
					Index: index,
					Start: seg.Start + duration*float64(i)/float64(nBlocks),
					End:   end,
					Lines: blockLines,
				})
				index++
			}
		} else {
			for i := 0; i < len(lines); i += opts.MaxLines {
				blockLines := lines[i:min(i+opts.MaxLines, len(lines))]
				cues = append(cues, Cue{
					Index: index,
					Start: seg.Start,
					End:   seg.End,
					Lines: blockLines,
				})
				index++
			}
		}
	}
	return cues, nil
}

func validTiming(seg Segment) bool {
	return !math.IsNaN(seg.Start) && !math.IsNaN(seg.End) &&
		!math.IsInf(seg.Start, 0) && !math.IsInf(seg.End, 0)
}

// wrapText greedily wraps text into lines of at most width characters,
// breaking on whitespace. A single word longer than width is not broken
// further; it occupies its own line.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}
