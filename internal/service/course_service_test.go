package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/coursecache"
	"github.com/noah-isme/kursus-go-api/internal/dto"
	"github.com/noah-isme/kursus-go-api/internal/models"
	"github.com/noah-isme/kursus-go-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memoryCourseRepo struct {
	courses      map[uint]models.Course
	nextID       uint
	cascadeErr   error
	cascadeOrder []string
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{courses: map[uint]models.Course{}, nextID: 1}
}

func (m *memoryCourseRepo) List(_ context.Context) ([]models.Course, error) {
	result := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		result = append(result, course)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *memoryCourseRepo) ListOngoing(_ context.Context, now time.Time) ([]models.Course, error) {
	var result []models.Course
	for _, course := range m.courses {
		if course.Ongoing(now) {
			result = append(result, course)
		}
	}
	return result, nil
}

func (m *memoryCourseRepo) ListExpired(_ context.Context, now time.Time) ([]models.Course, error) {
	var result []models.Course
	for _, course := range m.courses {
		if !course.Ongoing(now) {
			result = append(result, course)
		}
	}
	return result, nil
}

func (m *memoryCourseRepo) GetByID(_ context.Context, id uint) (models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memoryCourseRepo) GetByName(_ context.Context, name string) (models.Course, error) {
	for _, course := range m.courses {
		if course.Name == name {
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

func (m *memoryCourseRepo) Create(_ context.Context, course *models.Course) error {
	course.ID = m.nextID
	course.CreatedAt = time.Now()
	course.UpdatedAt = time.Now()
	m.courses[m.nextID] = *course
	m.nextID++
	return nil
}

func (m *memoryCourseRepo) Update(_ context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	course.UpdatedAt = time.Now()
	m.courses[course.ID] = *course
	return nil
}

func (m *memoryCourseRepo) SetCacheVersion(_ context.Context, id uint, version int) error {
	course, ok := m.courses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	course.CacheVersion = version
	m.courses[id] = course
	return nil
}

func (m *memoryCourseRepo) DeleteCascade(_ context.Context, id uint) error {
	if m.cascadeErr != nil {
		return m.cascadeErr
	}
	if _, ok := m.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.cascadeOrder = append(m.cascadeOrder, "cascade")
	delete(m.courses, id)
	return nil
}

type memoryExerciseRepo struct {
	exercises map[uint][]models.Exercise
	sheets    []string
}

func newMemoryExerciseRepo() *memoryExerciseRepo {
	return &memoryExerciseRepo{exercises: map[uint][]models.Exercise{}}
}

func (m *memoryExerciseRepo) ListByCourse(_ context.Context, courseID uint) ([]models.Exercise, error) {
	return m.exercises[courseID], nil
}

func (m *memoryExerciseRepo) GetByID(_ context.Context, id uint) (models.Exercise, error) {
	for _, list := range m.exercises {
		for _, exercise := range list {
			if exercise.ID == id {
				return exercise, nil
			}
		}
	}
	return models.Exercise{}, gorm.ErrRecordNotFound
}

func (m *memoryExerciseRepo) Create(_ context.Context, exercise *models.Exercise) error {
	m.exercises[exercise.CourseID] = append(m.exercises[exercise.CourseID], *exercise)
	return nil
}

func (m *memoryExerciseRepo) Update(_ context.Context, exercise *models.Exercise) error {
	list := m.exercises[exercise.CourseID]
	for i := range list {
		if list[i].ID == exercise.ID {
			list[i] = *exercise
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryExerciseRepo) DistinctGdocsSheets(_ context.Context, _ uint) ([]string, error) {
	return m.sheets, nil
}

var _ repository.CourseRepository = (*memoryCourseRepo)(nil)
var _ repository.ExerciseRepository = (*memoryExerciseRepo)(nil)

func newCourseService(t *testing.T, repo *memoryCourseRepo) (CourseService, *coursecache.Store) {
	t.Helper()
	store := coursecache.NewStore(coursecache.NewLayout(t.TempDir()), nil, testLogger())
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewCourseService(repo, newMemoryExerciseRepo(), store, validate, time.UTC, testLogger())
	return svc, store
}

func TestCourseServiceCreateAppliesDefaults(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name:      "algo2024",
		SourceURL: "git@example.com:algo.git",
	})
	require.NoError(t, err)
	require.Equal(t, "git", created.SourceBackend)
	require.Equal(t, 0, created.CacheVersion)
	require.False(t, created.Hidden)
}

func TestCourseServiceCreateValidation(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	cases := []struct {
		name    string
		payload dto.CourseCreateRequest
		field   string
	}{
		{"missing name", dto.CourseCreateRequest{SourceURL: "u"}, "name"},
		{"whitespace name", dto.CourseCreateRequest{Name: "bad name", SourceURL: "u"}, "name"},
		{"overlong name", dto.CourseCreateRequest{Name: "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopq", SourceURL: "u"}, "name"},
		{"path separator name", dto.CourseCreateRequest{Name: "a/b", SourceURL: "u"}, "name"},
		{"dot name", dto.CourseCreateRequest{Name: "..", SourceURL: "u"}, "name"},
		{"missing source url", dto.CourseCreateRequest{Name: "ok"}, "source_url"},
		{"bad backend", dto.CourseCreateRequest{Name: "ok", SourceURL: "u", SourceBackend: "svn"}, "source_backend"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.payload)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			found := false
			for _, field := range verr.Fields {
				if field.Field == tc.field {
					found = true
				}
			}
			require.True(t, found, "expected a %q field error, got %v", tc.field, verr.Fields)
		})
	}
}

func TestCourseServiceCreateRejectsDuplicateName(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	_, err := svc.Create(context.Background(), dto.CourseCreateRequest{Name: "algo", SourceURL: "u"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CourseCreateRequest{Name: "algo", SourceURL: "u"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCourseServiceCreateNormalizesCutoffs(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name:                    "algo",
		SourceURL:               "u",
		HideAfter:               "2024-03-01",
		HiddenIfRegisteredAfter: "2024-02-01",
	})
	require.NoError(t, err)

	require.NotNil(t, created.HideAfter)
	require.Equal(t, 23, created.HideAfter.Hour())
	require.Equal(t, 59, created.HideAfter.Minute())

	require.NotNil(t, created.HiddenIfRegisteredAfter)
	require.Equal(t, 0, created.HiddenIfRegisteredAfter.Hour())
}

func TestCourseServiceApplyOptionsClearsBlankCutoffs(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{
		Name:      "algo",
		SourceURL: "u",
		HideAfter: "2024-03-01",
	})
	require.NoError(t, err)
	require.NotNil(t, created.HideAfter)

	updated, err := svc.ApplyOptions(context.Background(), created.ID, dto.CourseOptionsRequest{
		Hidden:         true,
		SpreadsheetKey: "sheet-key",
	})
	require.NoError(t, err)
	require.Nil(t, updated.HideAfter)
	require.True(t, updated.Hidden)
	require.Equal(t, "sheet-key", updated.SpreadsheetKey)
}

func TestCourseServiceDestroyRemovesRowThenCache(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, store := newCourseService(t, repo)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{Name: "algo", SourceURL: "u"})
	require.NoError(t, err)

	staging, err := store.BeginStaging("algo", 0)
	require.NoError(t, err)
	paths, err := store.Commit(staging)
	require.NoError(t, err)
	require.DirExists(t, paths.Base)

	require.NoError(t, svc.Destroy(context.Background(), created.ID))
	require.NoDirExists(t, paths.Base)

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceDestroyKeepsCacheWhenCascadeFails(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, store := newCourseService(t, repo)

	created, err := svc.Create(context.Background(), dto.CourseCreateRequest{Name: "algo", SourceURL: "u"})
	require.NoError(t, err)

	staging, err := store.BeginStaging("algo", 0)
	require.NoError(t, err)
	paths, err := store.Commit(staging)
	require.NoError(t, err)

	repo.cascadeErr = errors.New("deadlock detected")
	require.Error(t, svc.Destroy(context.Background(), created.ID))
	require.DirExists(t, paths.Base, "cache must survive a failed row deletion")
}

func TestCourseServiceDestroyMissingCourse(t *testing.T) {
	repo := newMemoryCourseRepo()
	svc, _ := newCourseService(t, repo)

	require.ErrorIs(t, svc.Destroy(context.Background(), 404), ErrCourseNotFound)
}
