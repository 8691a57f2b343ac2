package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.WorkDir = t.TempDir()
	return &cfg
}

// fakeWhisperRunner pretends to be uvx: it writes the JSON transcript the
// real tool would leave in --output_dir.
func fakeWhisperRunner(t *testing.T, payload string, failWhenAligned bool) (commandRunner, *[][]string) {
	t.Helper()
	var calls [][]string
	runner := func(_ context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		aligned := true
		outputDir := ""
		var audio string
		for i, arg := range args {
			if arg == "--no_align" {
				aligned = false
			}
			if arg == "--output_dir" && i+1 < len(args) {
				outputDir = args[i+1]
			}
			if strings.HasSuffix(arg, ".wav") {
				audio = arg
			}
		}
		if failWhenAligned && aligned {
			return errors.New("no align model for language")
		}
		base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
		return os.WriteFile(filepath.Join(outputDir, base+".json"), []byte(payload), 0o644)
	}
	return runner, &calls
}

const samplePayload = `{
	"language": "he",
	"segments": [
		{"start": 0.0, "end": 2.0, "text": " Shalom "},
		{"start": 2.0, "end": 4.5, "text": "everyone"}
	]
}`

func TestWhisperXTranscribe(t *testing.T) {
	w := NewWhisperX(testConfig(t), logging.NewNop())
	runner, calls := fakeWhisperRunner(t, samplePayload, false)
	w.run = runner

	result, err := w.Transcribe(context.Background(), "/tmp/audio.wav", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Aligned {
		t.Error("expected aligned result")
	}
	if result.Language != "he" {
		t.Errorf("language = %q, want he", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(result.Segments))
	}
	if result.Segments[0].Text != "Shalom" {
		t.Errorf("text = %q, want trimmed 'Shalom'", result.Segments[0].Text)
	}
	if len(*calls) != 1 {
		t.Errorf("runner called %d times, want 1", len(*calls))
	}
}

func TestWhisperXRetriesWithoutAlignment(t *testing.T) {
	w := NewWhisperX(testConfig(t), logging.NewNop())
	runner, calls := fakeWhisperRunner(t, samplePayload, true)
	w.run = runner

	result, err := w.Transcribe(context.Background(), "/tmp/audio.wav", "he", true)
	if err != nil {
		t.Fatalf("alignment failure must not fail the transcription: %v", err)
	}
	if result.Aligned {
		t.Error("expected Aligned=false after retry")
	}
	if len(*calls) != 2 {
		t.Fatalf("runner called %d times, want 2", len(*calls))
	}
	last := (*calls)[1]
	found := false
	for _, arg := range last {
		if arg == "--no_align" {
			found = true
		}
	}
	if !found {
		t.Error("retry should pass --no_align")
	}
}

func TestWhisperXFailsWhenBothPassesFail(t *testing.T) {
	w := NewWhisperX(testConfig(t), logging.NewNop())
	w.run = func(context.Context, string, ...string) error {
		return errors.New("boom")
	}
	_, err := w.Transcribe(context.Background(), "/tmp/audio.wav", "", true)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("error should wrap ErrExternalTool, got %v", err)
	}
}

func TestWhisperXAlignDisabled(t *testing.T) {
	w := NewWhisperX(testConfig(t), logging.NewNop())
	runner, calls := fakeWhisperRunner(t, samplePayload, false)
	w.run = runner

	result, err := w.Transcribe(context.Background(), "/tmp/audio.wav", "", false)
	if err != nil {
		t.Fatal(err)
	}
	if result.Aligned {
		t.Error("expected Aligned=false when alignment is off")
	}
	if len(*calls) != 1 {
		t.Fatalf("runner called %d times, want 1", len(*calls))
	}
	joined := strings.Join((*calls)[0], " ")
	if !strings.Contains(joined, "--no_align") {
		t.Errorf("args missing --no_align: %s", joined)
	}
}

func TestOpenAIWhisperTranscribe(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcriber.Backend = "openai-whisper"
	w := NewOpenAIWhisper(cfg, logging.NewNop())
	runner, calls := fakeWhisperRunner(t, samplePayload, false)
	w.run = runner

	result, err := w.Transcribe(context.Background(), "/tmp/audio.wav", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if result.Aligned {
		t.Error("openai-whisper output is never aligned")
	}
	if len(result.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(result.Segments))
	}
	first := (*calls)[0]
	if first[1] != "--from" || first[2] != "openai-whisper" {
		t.Errorf("expected uvx --from openai-whisper invocation, got %v", first)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg, logging.NewNop()); err != nil {
		t.Fatalf("faster-whisper backend: %v", err)
	}
	cfg.Transcriber.Backend = "openai-whisper"
	if _, err := New(cfg, logging.NewNop()); err != nil {
		t.Fatalf("openai-whisper backend: %v", err)
	}
	cfg.Transcriber.Backend = "parakeet"
	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestAudioExtractorArgs(t *testing.T) {
	cfg := testConfig(t)
	extractor := NewAudioExtractor(cfg, logging.NewNop())

	var got []string
	extractor.run = func(_ context.Context, name string, args ...string) error {
		got = append([]string{name}, args...)
		return nil
	}
	if err := extractor.Extract(context.Background(), "in.mkv", 1, "out.wav"); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(got, " ")
	for _, want := range []string{"-map 0:a:1", "-ac 1", "-ar 16000", "-c:a pcm_s16le", "out.wav"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}

	got = nil
	if err := extractor.Extract(context.Background(), "in.mkv", -1, "out.wav"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(strings.Join(got, " "), "-map") {
		t.Error("negative stream index should not emit -map")
	}
}

func TestAudioExtractorWrapsFailure(t *testing.T) {
	extractor := NewAudioExtractor(testConfig(t), logging.NewNop())
	extractor.run = func(context.Context, string, ...string) error {
		return errors.New("ffmpeg exploded")
	}
	err := extractor.Extract(context.Background(), "in.mkv", 0, "out.wav")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("error should wrap ErrExternalTool, got %v", err)
	}
}

func TestLoadWhisperJSONMissingFile(t *testing.T) {
	_, err := loadWhisperJSON(t.TempDir(), "audio.wav")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Errorf("error should wrap ErrExternalTool, got %v", err)
	}
}

func TestLoadWhisperJSONGarbage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "audio.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadWhisperJSON(dir, "audio.wav"); err == nil {
		t.Fatal("expected error")
	}
}
