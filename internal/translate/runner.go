package translate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"autosub/internal/config"
	"autosub/internal/services"
)

// probeText is translated once at load time to verify the model downloads
// and initializes before any cue text is sent through it.
const probeText = "hello"

type outputRunner func(ctx context.Context, stdin, name string, args ...string) (string, error)

// ExecLoader loads translation backends by driving a translation runner
// through uvx. The runner reads source text on stdin and writes the
// translation to stdout; a non-zero exit means the model could not load or
// the pair is unsupported.
type ExecLoader struct {
	uvx    string
	runner string
	run    outputRunner
}

// NewExecLoader builds the loader from configuration.
func NewExecLoader(cfg *config.Config) *ExecLoader {
	loader := &ExecLoader{
		uvx:    cfg.Translation.UVXBinary,
		runner: cfg.Translation.RunnerName,
	}
	if strings.TrimSpace(loader.uvx) == "" {
		loader.uvx = "uvx"
	}
	if strings.TrimSpace(loader.runner) == "" {
		loader.runner = "easynmt"
	}
	loader.run = runWithStdin
	return loader
}

// Load probes the backend with a trivial translation. Probe failure is the
// signal that the model does not exist or cannot initialize, which makes the
// resolver move on to the next candidate.
func (l *ExecLoader) Load(ctx context.Context, spec Spec) (Translator, error) {
	translator := &execTranslator{loader: l, spec: spec}
	if _, err := translator.Translate(ctx, probeText); err != nil {
		return nil, err
	}
	return translator, nil
}

type execTranslator struct {
	loader *ExecLoader
	spec   Spec
}

func (t *execTranslator) Translate(ctx context.Context, text string) (string, error) {
	args := []string{
		t.loader.runner,
		"--model", t.spec.Model,
		"--source-lang", t.spec.Source,
		"--target-lang", t.spec.Target,
	}
	output, err := t.loader.run(ctx, text, t.loader.uvx, args...)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "translate", "run model",
			fmt.Sprintf("translation runner failed for %s", t.spec), err)
	}
	return strings.TrimRight(output, "\n"), nil
}

func runWithStdin(ctx context.Context, stdin, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
