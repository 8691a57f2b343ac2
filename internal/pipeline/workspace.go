package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is a per-job scratch directory. Everything a job writes before
// publication lives here, and Cleanup removes it regardless of how the job
// ended.
type Workspace struct {
	Root string
}

// NewWorkspace creates a scratch directory for a job under workDir.
func NewWorkspace(workDir, jobID string) (*Workspace, error) {
	root := filepath.Join(workDir, "job-"+jobID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Root: root}, nil
}

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Root, name)
}

// Cleanup removes the workspace and everything in it.
func (w *Workspace) Cleanup() {
	if w == nil || w.Root == "" {
		return
	}
	_ = os.RemoveAll(w.Root)
}
