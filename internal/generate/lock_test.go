package generate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunLock_AcquireAndRelease(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	lock, err := AcquireRunLock(stateDir)
	if err != nil {
		t.Fatalf("AcquireRunLock() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(stateDir, "locks", "run.lock")); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	// Re-acquirable after release.
	lock, err = AcquireRunLock(stateDir)
	if err != nil {
		t.Fatalf("reacquire error = %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
}

func TestRunLock_NilRelease(t *testing.T) {
	t.Parallel()

	var lock *RunLock
	if err := lock.Release(); err != nil {
		t.Fatalf("nil Release() error = %v", err)
	}
}
