package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	internaldb "github.com/ntlab/bmipgen/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := internaldb.Open(filepath.Join(t.TempDir(), "bmipgen.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return NewStore(database)
}

func seedRun(t *testing.T, store *Store, runID, status string) {
	t.Helper()
	err := store.CreateRun(context.Background(), RunRecord{
		RunID:    runID,
		Kind:     "generate",
		SpecJSON: `{"x_ud": 2}`,
		Solver:   "gurobi",
		OutDir:   "out",
		Target:   5,
		Status:   "running",
	})
	if err != nil {
		t.Fatalf("create run %s: %v", runID, err)
	}
	if status != "running" {
		if err := store.FinishRun(context.Background(), runID, status, 5, 2, 0, 3); err != nil {
			t.Fatalf("finish run %s: %v", runID, err)
		}
	}
}

func TestStore_RunLifecycle(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	seedRun(t, store, "run-a", "running")
	require.NoError(t, store.AddInstance(ctx, "run-a", 0, "out/problem_1", -4.25, -1, 3.25))
	require.NoError(t, store.AddInstance(ctx, "run-a", 1, "out/problem_2", -2, -2, 0.5))
	require.NoError(t, store.FinishRun(ctx, "run-a", "completed", 4, 2, 0, 2))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	rec := runs[0]
	assert.Equal(t, "run-a", rec.RunID)
	assert.Equal(t, "completed", rec.Status)
	assert.Equal(t, 4, rec.Attempts)
	assert.Equal(t, 2, rec.TrivialCount)
	assert.Equal(t, 2, rec.Collected)
	assert.Equal(t, "gurobi", rec.Solver)

	paths, err := store.InstancePaths(ctx, "run-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"out/problem_1", "out/problem_2"}, paths)
}

func TestStore_DeleteRunCascades(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	seedRun(t, store, "run-b", "completed")
	require.NoError(t, store.AddInstance(ctx, "run-b", 0, "out/problem_1", 0, 0, 0))
	require.NoError(t, store.DeleteRun(ctx, "run-b"))

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	paths, err := store.InstancePaths(ctx, "run-b")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestPruneRuns_KeepsLastAndRunning(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	// Creation timestamps share a second; insertion order ties are broken
	// by run_id, so name them in the order they should sort.
	seedRun(t, store, "run-1", "completed")
	time.Sleep(1100 * time.Millisecond)
	seedRun(t, store, "run-2", "running")
	time.Sleep(1100 * time.Millisecond)
	seedRun(t, store, "run-3", "completed")

	res, err := store.PruneRuns(ctx, RetentionPolicy{KeepLast: 1}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Considered)
	assert.Equal(t, 2, res.Kept)
	assert.Equal(t, 1, res.Deleted)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-3", runs[0].RunID)
	assert.Equal(t, "run-2", runs[1].RunID)
}

func TestPruneRuns_DryRunDeletesNothing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	seedRun(t, store, "run-1", "completed")
	time.Sleep(1100 * time.Millisecond)
	seedRun(t, store, "run-2", "completed")

	instanceDir := filepath.Join(t.TempDir(), "problem_1")
	require.NoError(t, os.MkdirAll(instanceDir, 0o755))
	require.NoError(t, store.AddInstance(ctx, "run-1", 0, instanceDir, 0, 0, 0))

	res, err := store.PruneRuns(ctx, RetentionPolicy{KeepLast: 1}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	_, statErr := os.Stat(instanceDir)
	assert.NoError(t, statErr)
}

func TestPruneRuns_RemovesInstanceDirs(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	seedRun(t, store, "run-1", "completed")
	time.Sleep(1100 * time.Millisecond)
	seedRun(t, store, "run-2", "completed")

	instanceDir := filepath.Join(t.TempDir(), "problem_1")
	require.NoError(t, os.MkdirAll(instanceDir, 0o755))
	require.NoError(t, store.AddInstance(ctx, "run-1", 0, instanceDir, 0, 0, 0))

	res, err := store.PruneRuns(ctx, RetentionPolicy{KeepLast: 1}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	if _, err := os.Stat(instanceDir); !os.IsNotExist(err) {
		t.Fatalf("expected instance dir to be removed, stat err=%v", err)
	}
	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].RunID)
}

func TestPruneRuns_NoPolicyIsNoop(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	seedRun(t, store, "run-1", "completed")

	res, err := store.PruneRuns(context.Background(), RetentionPolicy{}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Considered)
	assert.Equal(t, 0, res.Deleted)
}
