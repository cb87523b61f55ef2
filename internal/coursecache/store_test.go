package coursecache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubProber struct {
	revision string
	err      error
}

func (s stubProber) HeadRevision(_ context.Context, _ string) (string, error) {
	return s.revision, s.err
}

func testStore(t *testing.T, prober stubProber) *Store {
	t.Helper()
	return NewStore(NewLayout(t.TempDir()), prober, zerolog.Nop())
}

func TestHeadRevisionFlattensProbeFailures(t *testing.T) {
	store := testStore(t, stubProber{err: errors.New("not a git repository")})
	require.Equal(t, "", store.HeadRevision(context.Background(), "/nowhere"))
}

func TestHeadRevisionReturnsProbeResult(t *testing.T) {
	store := testStore(t, stubProber{revision: "abc123"})
	require.Equal(t, "abc123", store.HeadRevision(context.Background(), "/somewhere"))
}

func TestDeleteCourseCacheIsIdempotent(t *testing.T) {
	store := testStore(t, stubProber{})

	staging, err := store.BeginStaging("demo", 1)
	require.NoError(t, err)
	paths, err := store.Commit(staging)
	require.NoError(t, err)
	require.DirExists(t, paths.Base)

	require.NoError(t, store.DeleteCourseCache("demo", 1))
	require.NoDirExists(t, paths.Base)

	// Second removal of the already-absent tree is a no-op.
	require.NoError(t, store.DeleteCourseCache("demo", 1))
	require.NoDirExists(t, paths.Base)
}

func TestBeginStagingCreatesAllArtifactDirs(t *testing.T) {
	store := testStore(t, stubProber{})

	staging, err := store.BeginStaging("demo", 2)
	require.NoError(t, err)
	defer store.Abort(staging)

	for _, dir := range []string{staging.Paths.Clone, staging.Paths.Solution, staging.Paths.Stub, staging.Paths.StubZip, staging.Paths.SolutionZip} {
		require.DirExists(t, dir)
	}
}

func TestCommitPublishesStagedTreeAtomically(t *testing.T) {
	store := testStore(t, stubProber{})

	staging, err := store.BeginStaging("demo", 2)
	require.NoError(t, err)

	marker := filepath.Join(staging.Paths.Stub, "exercise1.txt")
	require.NoError(t, os.WriteFile(marker, []byte("stub"), 0o644))

	final, err := store.Commit(staging)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(final.Stub, "exercise1.txt"))
	require.NoDirExists(t, staging.Paths.Base)
}

func TestCommitReplacesLeftoverTree(t *testing.T) {
	store := testStore(t, stubProber{})

	first, err := store.BeginStaging("demo", 2)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(first.Paths.Stub, "old.txt"), []byte("old"), 0o644))
	_, err = store.Commit(first)
	require.NoError(t, err)

	second, err := store.BeginStaging("demo", 2)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(second.Paths.Stub, "new.txt"), []byte("new"), 0o644))
	final, err := store.Commit(second)
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(final.Stub, "new.txt"))
	require.NoFileExists(t, filepath.Join(final.Stub, "old.txt"))
}

func TestAbortLeavesPublishedCacheUntouched(t *testing.T) {
	store := testStore(t, stubProber{})

	published, err := store.BeginStaging("demo", 1)
	require.NoError(t, err)
	paths, err := store.Commit(published)
	require.NoError(t, err)

	staging, err := store.BeginStaging("demo", 2)
	require.NoError(t, err)
	store.Abort(staging)

	require.DirExists(t, paths.Base)
	require.NoDirExists(t, staging.Paths.Base)
}

func TestDeleteCourseCacheRejectsUnsafeName(t *testing.T) {
	store := testStore(t, stubProber{})

	err := store.DeleteCourseCache("../escape", 1)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCacheUnavailable)
}
