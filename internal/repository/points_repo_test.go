package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kursus-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Course{},
		&models.Exercise{},
		&models.AvailablePoint{},
		&models.AwardedPoint{},
		&models.Submission{},
		&models.User{},
		&models.FeedbackQuestion{},
		&models.FeedbackAnswer{},
		&models.StudentEvent{},
		&models.TestScannerCacheEntry{},
	))
	return db
}

func createCourse(t *testing.T, db *gorm.DB, name string) models.Course {
	t.Helper()
	course := models.Course{Name: name, SourceURL: "git@example.com:" + name + ".git", SourceBackend: models.DefaultSourceBackend}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func createExerciseWithPoints(t *testing.T, db *gorm.DB, courseID uint, name string, points ...string) models.Exercise {
	t.Helper()
	exercise := models.Exercise{CourseID: courseID, Name: name}
	require.NoError(t, db.Create(&exercise).Error)
	for _, point := range points {
		require.NoError(t, db.Create(&models.AvailablePoint{ExerciseID: exercise.ID, Name: point}).Error)
	}
	return exercise
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, "plain", EscapeLike("plain"))
	require.Equal(t, "a!%b", EscapeLike("a%b"))
	require.Equal(t, "a!_b", EscapeLike("a_b"))
	require.Equal(t, "a!!b", EscapeLike("a!b"))
	require.Equal(t, "!%!_!!", EscapeLike("%_!"))
}

func TestAvailablePointNamesMatchesGroupPrefix(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)
	course := createCourse(t, db, "demo")

	createExerciseWithPoints(t, db, course.ID, "algo-1", "p1", "p2")
	createExerciseWithPoints(t, db, course.ID, "algo-2", "p3")
	createExerciseWithPoints(t, db, course.ID, "datastructures-1", "q1")

	names, err := repo.AvailablePointNames(context.Background(), course.ID, "algo")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2", "p3"}, names)
}

func TestAvailablePointNamesTreatsMetacharactersLiterally(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)
	course := createCourse(t, db, "demo")

	// A wildcard leak from group "a" would match "a%b-1" via "a%".
	createExerciseWithPoints(t, db, course.ID, "a%b-1", "wild1")
	createExerciseWithPoints(t, db, course.ID, "a_b-1", "under1")
	createExerciseWithPoints(t, db, course.ID, "axb-1", "plain1")
	createExerciseWithPoints(t, db, course.ID, "a-1", "short1")

	names, err := repo.AvailablePointNames(context.Background(), course.ID, "a")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"short1"}, names)

	names, err = repo.AvailablePointNames(context.Background(), course.ID, "a%b")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"wild1"}, names)

	names, err = repo.AvailablePointNames(context.Background(), course.ID, "a_b")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"under1"}, names)
}

func TestAvailablePointNamesScopedToCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)
	course := createCourse(t, db, "demo")
	other := createCourse(t, db, "other")

	createExerciseWithPoints(t, db, course.ID, "algo-1", "p1")
	createExerciseWithPoints(t, db, other.ID, "algo-1", "foreign")

	names, err := repo.AvailablePointNames(context.Background(), course.ID, "algo")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1"}, names)
}

func TestAwardedCountsByUserGroupsAndCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)
	course := createCourse(t, db, "demo")

	awards := []models.AwardedPoint{
		{CourseID: course.ID, UserID: 1, Name: "p1"},
		{CourseID: course.ID, UserID: 1, Name: "p3"},
		{CourseID: course.ID, UserID: 2, Name: "p2"},
		{CourseID: course.ID, UserID: 3, Name: "unrelated"},
	}
	for i := range awards {
		require.NoError(t, repo.AwardPoint(context.Background(), &awards[i]))
	}

	counts, err := repo.AwardedCountsByUser(context.Background(), course.ID, []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	byUser := map[uint]int{}
	for _, row := range counts {
		byUser[row.UserID] = row.Count
	}
	require.Equal(t, map[uint]int{1: 2, 2: 1}, byUser)
}

func TestAwardedCountsByUserEmptyNameSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)

	counts, err := repo.AwardedCountsByUser(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Empty(t, counts)
}

func TestAwardPointEnforcesUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPointsRepository(db)
	course := createCourse(t, db, "demo")

	point := models.AwardedPoint{CourseID: course.ID, UserID: 1, Name: "p1"}
	require.NoError(t, repo.AwardPoint(context.Background(), &point))

	duplicate := models.AwardedPoint{CourseID: course.ID, UserID: 1, Name: "p1"}
	require.Error(t, repo.AwardPoint(context.Background(), &duplicate))
}
