// Package testutil provides test utilities and mock implementations.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// WriteFile creates a file under dir with the given contents and returns its path
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	return path
}

// ActionRecorder collects dispatched action names from any goroutine
type ActionRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *ActionRecorder) Record(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, action)
}

func (r *ActionRecorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.actions...)
}

func (r *ActionRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.actions)
}
