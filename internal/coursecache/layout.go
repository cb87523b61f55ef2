// Package coursecache owns the versioned on-disk cache of derived course
// artifacts: the repository clone plus the solution, stub and zip trees
// generated from it.
package coursecache

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Directory names of the artifact trees under a course's cache directory.
// Readers of the cache depend on this exact shape.
const (
	cloneDir       = "clone"
	solutionDir    = "solution"
	stubDir        = "stub"
	stubZipDir     = "stub_zip"
	solutionZipDir = "solution_zip"
	stagingDir     = ".staging"
)

// CoursePaths lists every artifact directory of one (course, version) cache
// generation.
type CoursePaths struct {
	Base        string
	Clone       string
	Solution    string
	Stub        string
	StubZip     string
	SolutionZip string
}

// Layout resolves cache directories under a configured root. It performs no
// I/O; path identity is a pure function of (course name, cache version).
type Layout struct {
	Root string
}

// NewLayout builds a layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// CourseRoot returns the directory holding every course's cache generations.
func (l Layout) CourseRoot() string {
	return filepath.Join(l.Root, "course")
}

// CoursePaths resolves the artifact directories for one cache generation.
// Course names that could escape the cache root are rejected outright; name
// validation already forbids whitespace, but the layout additionally refuses
// path separators and dot traversal.
func (l Layout) CoursePaths(name string, version int) (CoursePaths, error) {
	if err := ValidateCacheName(name); err != nil {
		return CoursePaths{}, err
	}

	if version < 0 {
		return CoursePaths{}, fmt.Errorf("cache version must not be negative, got %d", version)
	}

	base := filepath.Join(l.CourseRoot(), fmt.Sprintf("%s-%d", name, version))
	return pathsUnder(base), nil
}

// StagingPath returns the directory a new cache generation is assembled in
// before being committed. The suffix keeps concurrent stagings apart.
func (l Layout) StagingPath(name string, version int, suffix string) (CoursePaths, error) {
	if err := ValidateCacheName(name); err != nil {
		return CoursePaths{}, err
	}

	base := filepath.Join(l.CourseRoot(), stagingDir, fmt.Sprintf("%s-%d-%s", name, version, suffix))
	return pathsUnder(base), nil
}

// ValidateCacheName rejects course names that are unsafe as path components.
func ValidateCacheName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("course name must not be empty")
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("course name %q contains a path separator", name)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("course name %q must not start with a dot", name)
	}
	return nil
}

func pathsUnder(base string) CoursePaths {
	return CoursePaths{
		Base:        base,
		Clone:       filepath.Join(base, cloneDir),
		Solution:    filepath.Join(base, solutionDir),
		Stub:        filepath.Join(base, stubDir),
		StubZip:     filepath.Join(base, stubZipDir),
		SolutionZip: filepath.Join(base, solutionZipDir),
	}
}
