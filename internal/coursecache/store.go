package coursecache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kursus-go-api/pkg/vcs"
)

// ErrCacheUnavailable indicates a filesystem-level cache failure. It is
// independent of database state; a course row is never corrupted by it.
var ErrCacheUnavailable = errors.New("course cache unavailable")

// Store performs the filesystem side effects of the course cache: creating,
// swapping and deleting cache generations and probing clone revisions.
type Store struct {
	layout Layout
	prober vcs.Prober
	logger zerolog.Logger
}

// Staging is a cache generation under construction. It becomes visible to
// readers only once Commit renames it into its final versioned path.
type Staging struct {
	Paths   CoursePaths
	name    string
	version int
}

// NewStore builds a content store over the given layout.
func NewStore(layout Layout, prober vcs.Prober, logger zerolog.Logger) *Store {
	return &Store{
		layout: layout,
		prober: prober,
		logger: logger.With().Str("component", "course_cache").Logger(),
	}
}

// Layout exposes the store's path resolver.
func (s *Store) Layout() Layout {
	return s.layout
}

// HeadRevision probes the clone directory for its current revision. Probe
// failures of any kind (not a repository, no commits, git missing) are
// non-fatal and yield an empty revision, never an error.
func (s *Store) HeadRevision(ctx context.Context, clonePath string) string {
	if s.prober == nil {
		return ""
	}

	revision, err := s.prober.HeadRevision(ctx, clonePath)
	if err != nil {
		s.logger.Debug().Err(err).Str("clone_path", clonePath).Msg("head revision probe failed")
		return ""
	}

	return revision
}

// DeleteCourseCache removes the entire cache directory tree of one cache
// generation. Removing an absent tree is a no-op.
func (s *Store) DeleteCourseCache(name string, version int) error {
	paths, err := s.layout.CoursePaths(name, version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if err := os.RemoveAll(paths.Base); err != nil {
		return fmt.Errorf("%w: removing %s: %v", ErrCacheUnavailable, paths.Base, err)
	}

	s.logger.Info().Str("course", name).Int("cache_version", version).Msg("course cache deleted")
	return nil
}

// BeginStaging creates a fresh staging tree for the given cache generation,
// with all artifact directories present but empty.
func (s *Store) BeginStaging(name string, version int) (*Staging, error) {
	paths, err := s.layout.StagingPath(name, version, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	for _, dir := range []string{paths.Clone, paths.Solution, paths.Stub, paths.StubZip, paths.SolutionZip} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = os.RemoveAll(paths.Base)
			return nil, fmt.Errorf("%w: creating %s: %v", ErrCacheUnavailable, dir, err)
		}
	}

	return &Staging{Paths: paths, name: name, version: version}, nil
}

// Commit atomically renames the staged tree into its final versioned path.
// Readers either see the previous generation or the complete new one, never
// a half-populated directory.
func (s *Store) Commit(staging *Staging) (CoursePaths, error) {
	final, err := s.layout.CoursePaths(staging.name, staging.version)
	if err != nil {
		return CoursePaths{}, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(final.Base), 0o755); err != nil {
		return CoursePaths{}, fmt.Errorf("%w: creating %s: %v", ErrCacheUnavailable, filepath.Dir(final.Base), err)
	}

	// A leftover tree at the final path would make the rename fail; the
	// staged tree supersedes it.
	if err := os.RemoveAll(final.Base); err != nil {
		return CoursePaths{}, fmt.Errorf("%w: clearing %s: %v", ErrCacheUnavailable, final.Base, err)
	}

	if err := os.Rename(staging.Paths.Base, final.Base); err != nil {
		return CoursePaths{}, fmt.Errorf("%w: committing %s: %v", ErrCacheUnavailable, final.Base, err)
	}

	s.logger.Info().Str("course", staging.name).Int("cache_version", staging.version).Msg("course cache committed")
	return final, nil
}

// Abort discards a staged tree, leaving the published cache untouched.
func (s *Store) Abort(staging *Staging) {
	if staging == nil {
		return
	}
	if err := os.RemoveAll(staging.Paths.Base); err != nil {
		s.logger.Warn().Err(err).Str("course", staging.name).Msg("failed to remove staging directory")
	}
}
