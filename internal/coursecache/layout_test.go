package coursecache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoursePathsShape(t *testing.T) {
	layout := NewLayout("/srv/cache")

	paths, err := layout.CoursePaths("algo-course", 3)
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("/srv/cache/course/algo-course-3"), paths.Base)
	require.Equal(t, filepath.Join(paths.Base, "clone"), paths.Clone)
	require.Equal(t, filepath.Join(paths.Base, "solution"), paths.Solution)
	require.Equal(t, filepath.Join(paths.Base, "stub"), paths.Stub)
	require.Equal(t, filepath.Join(paths.Base, "stub_zip"), paths.StubZip)
	require.Equal(t, filepath.Join(paths.Base, "solution_zip"), paths.SolutionZip)
}

func TestCoursePathsDistinctPerVersion(t *testing.T) {
	layout := NewLayout("/srv/cache")

	v1, err := layout.CoursePaths("demo", 1)
	require.NoError(t, err)
	v2, err := layout.CoursePaths("demo", 2)
	require.NoError(t, err)
	require.NotEqual(t, v1.Base, v2.Base)
}

func TestCoursePathsDistinctPerName(t *testing.T) {
	layout := NewLayout("/srv/cache")

	a, err := layout.CoursePaths("demo", 1)
	require.NoError(t, err)
	b, err := layout.CoursePaths("demo2", 1)
	require.NoError(t, err)
	require.NotEqual(t, a.Base, b.Base)
}

func TestCoursePathsRejectsTraversal(t *testing.T) {
	layout := NewLayout("/srv/cache")

	for _, name := range []string{"", "..", "../evil", "a/b", `a\b`, ".hidden", "a\x00b"} {
		_, err := layout.CoursePaths(name, 1)
		require.Error(t, err, "name %q should be rejected", name)
	}
}

func TestCoursePathsRejectsNegativeVersion(t *testing.T) {
	layout := NewLayout("/srv/cache")

	_, err := layout.CoursePaths("demo", -1)
	require.Error(t, err)
}

func TestStagingPathLivesOutsideFinalTree(t *testing.T) {
	layout := NewLayout("/srv/cache")

	staging, err := layout.StagingPath("demo", 2, "abc")
	require.NoError(t, err)
	final, err := layout.CoursePaths("demo", 2)
	require.NoError(t, err)

	require.NotEqual(t, final.Base, staging.Base)
	require.Contains(t, staging.Base, ".staging")
}
