package transcript

import (
	"math"
	"reflect"
	"testing"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits on one line", "hello world", 20, []string{"hello world"}},
		{"wraps at boundary", "aaaa bbbb cccc", 9, []string{"aaaa bbbb", "cccc"}},
		{"long word keeps own line", "hi supercalifragilistic bye", 10, []string{"hi", "supercalifragilistic", "bye"}},
		{"collapses whitespace", "  a   b  ", 10, []string{"a b"}},
		{"empty", "   ", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapText(tt.text, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText(%q, %d) = %v, want %v", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestBuildCuesRejectsBadOptions(t *testing.T) {
	if _, err := BuildCues(nil, SegmentOptions{MaxChars: 80, MaxLines: 0, MaxDuration: 5}); err == nil {
		t.Fatal("expected error for MaxLines < 1")
	}
	if _, err := BuildCues(nil, SegmentOptions{MaxChars: 0, MaxLines: 2, MaxDuration: 5}); err == nil {
		t.Fatal("expected error for MaxChars < 1")
	}
}

func TestBuildCuesSkipsInvalidSegments(t *testing.T) {
	segments := []Segment{
		{Start: math.NaN(), End: 1, Text: "dropped"},
		{Start: 0, End: math.Inf(1), Text: "dropped"},
		{Start: 1, End: 2, Text: "   "},
		{Start: 2, End: 3, Text: "kept"},
	}
	cues, err := BuildCues(segments, DefaultSegmentOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 || cues[0].Text() != "kept" {
		t.Fatalf("cues = %+v, want single cue with text 'kept'", cues)
	}
	if cues[0].Index != 1 {
		t.Errorf("Index = %d, want 1", cues[0].Index)
	}
}

func TestBuildCuesShortSegmentSharesTiming(t *testing.T) {
	// Four lines at MaxLines=2 give two blocks, but the segment is within
	// MaxDuration so both blocks keep the original span.
	seg := Segment{Start: 1.0, End: 4.0, Text: "aaaa bbbb cccc dddd eeee ffff gggg hhhh"}
	cues, err := BuildCues([]Segment{seg}, SegmentOptions{MaxChars: 9, MaxLines: 2, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	for _, cue := range cues {
		if cue.Start != 1.0 || cue.End != 4.0 {
			t.Errorf("cue %d timing [%v, %v], want original [1, 4]", cue.Index, cue.Start, cue.End)
		}
	}
}

func TestBuildCuesLongSegmentSplitsProportionally(t *testing.T) {
	seg := Segment{Start: 10.0, End: 22.0, Text: "aaaa bbbb cccc dddd eeee ffff gggg hhhh"}
	cues, err := BuildCues([]Segment{seg}, SegmentOptions{MaxChars: 9, MaxLines: 2, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("got %d cues, want 2", len(cues))
	}
	if cues[0].Start != 10.0 || cues[0].End != 16.0 {
		t.Errorf("first block [%v, %v], want [10, 16]", cues[0].Start, cues[0].End)
	}
	if cues[1].Start != 16.0 || cues[1].End != 22.0 {
		t.Errorf("second block [%v, %v], want [16, 22]", cues[1].Start, cues[1].End)
	}
	// Adjacent block boundaries come from the same expression, so they are
	// exactly equal, leaving no gap and no overlap.
	if cues[0].End != cues[1].Start {
		t.Errorf("blocks should partition the span exactly: %v != %v", cues[0].End, cues[1].Start)
	}
}

func TestBuildCuesSplitCoversFullSpan(t *testing.T) {
	seg := Segment{Start: 0.1, End: 17.3, Text: "one two three four five six seven eight nine ten eleven twelve"}
	cues, err := BuildCues([]Segment{seg}, SegmentOptions{MaxChars: 10, MaxLines: 1, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) < 2 {
		t.Fatalf("expected multi-block split, got %d cues", len(cues))
	}
	if cues[0].Start != seg.Start {
		t.Errorf("first block starts at %v, want %v", cues[0].Start, seg.Start)
	}
	if cues[len(cues)-1].End != seg.End {
		t.Errorf("last block ends at %v, want %v", cues[len(cues)-1].End, seg.End)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Errorf("gap between block %d and %d: %v != %v", i-1, i, cues[i-1].End, cues[i].Start)
		}
	}
}

func TestBuildCuesSingleBlockNeverSplit(t *testing.T) {
	// Long duration but one block: timing stays untouched.
	seg := Segment{Start: 0, End: 30, Text: "short"}
	cues, err := BuildCues([]Segment{seg}, DefaultSegmentOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 1 {
		t.Fatalf("got %d cues, want 1", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 30 {
		t.Errorf("timing [%v, %v], want [0, 30]", cues[0].Start, cues[0].End)
	}
}

func TestBuildCuesIndicesIncreaseAcrossSegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "aaaa bbbb cccc dddd eeee ffff"},
		{Start: 2, End: 4, Text: "next"},
		{Start: 4, End: 6, Text: "more"},
	}
	cues, err := BuildCues(segments, SegmentOptions{MaxChars: 9, MaxLines: 2, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	for i, cue := range cues {
		if cue.Index != i+1 {
			t.Errorf("cue %d has index %d, want %d", i, cue.Index, i+1)
		}
	}
}

func TestBuildCuesLineBudget(t *testing.T) {
	seg := Segment{Start: 0, End: 20, Text: "a b c d e f g h i j k l m n o p"}
	opts := SegmentOptions{MaxChars: 5, MaxLines: 2, MaxDuration: 5}
	cues, err := BuildCues([]Segment{seg}, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, cue := range cues {
		if len(cue.Lines) > opts.MaxLines {
			t.Errorf("cue %d has %d lines, budget %d", cue.Index, len(cue.Lines), opts.MaxLines)
		}
	}
}

func TestBuildCuesDeterministic(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 8.5, Text: "the quick brown fox jumps over the lazy dog again and again"},
		{Start: 8.5, End: 9, Text: "done"},
	}
	first, err := BuildCues(segments, SegmentOptions{MaxChars: 20, MaxLines: 2, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildCues(segments, SegmentOptions{MaxChars: 20, MaxLines: 2, MaxDuration: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input should yield identical cues")
	}
}
