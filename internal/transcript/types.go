// Package transcript holds the transcript data model and the cue segmentation
// algorithm that converts time-coded segments into display cues.
package transcript

import "strings"

// Segment is a time-coded transcript unit produced by speech recognition.
// Segments are immutable once produced and ordered by Start within a job.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment's span in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Cue is a display unit of subtitle text with its own timing, derived
// deterministically from one segment. Index is 1-based and globally
// increasing across a whole subtitle file.
type Cue struct {
	Index int
	Start float64
	End   float64
	Lines []string
}

// Text returns the cue's lines joined for rendering or translation.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}
