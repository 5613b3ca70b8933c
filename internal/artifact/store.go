package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store records invocation output for a run.
type Store struct {
	RunID   string
	BaseDir string // .exercheck/runs/<run_id>
}

// New creates a store for a given run ID, rooted at workDir.
func New(runID, workDir string) (*Store, error) {
	base := filepath.Join(workDir, ".exercheck", "runs", runID)
	if err := os.MkdirAll(filepath.Join(base, "checks"), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact dir: %w", err)
	}
	return &Store{RunID: runID, BaseDir: base}, nil
}

// WriteInvocation writes stdin/stdout/stderr of the n-th invocation of a
// check. Empty streams are not written.
func (s *Store) WriteInvocation(checkID string, n int, stdin, stdout, stderr string) error {
	prefix := filepath.Join(s.BaseDir, "checks", fmt.Sprintf("%s.%d", checkID, n))
	for ext, data := range map[string]string{".stdin": stdin, ".stdout": stdout, ".stderr": stderr} {
		if data == "" {
			continue
		}
		if err := os.WriteFile(prefix+ext, []byte(data), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult writes the final result JSON.
func (s *Store) WriteResult(result any) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.BaseDir, "result.json"), data, 0o644)
}
