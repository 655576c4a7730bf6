package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ejay02/lms-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB returns an isolated in-memory database. A single connection is
// forced because every pooled SQLite :memory: connection gets its own
// database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.ContentItem{},
		&models.Enrollment{},
		&models.Progress{},
		&models.CompletedContent{},
		&models.Feedback{},
	))

	return db
}

var seedSeq atomic.Uint64

// seedCourse creates a course with the given number of content items and
// returns the course plus content IDs in position order.
func seedCourse(t *testing.T, db *gorm.DB, contentCount int) (models.Course, []uint) {
	t.Helper()

	instructor := models.User{
		Name:  "Ada",
		Email: fmt.Sprintf("ada-%d@example.com", seedSeq.Add(1)),
		Role:  models.RoleInstructor,
	}
	require.NoError(t, db.Create(&instructor).Error)

	course := models.Course{Title: "Go from zero", Description: "intro", InstructorID: instructor.ID}
	require.NoError(t, db.Create(&course).Error)

	ids := make([]uint, 0, contentCount)
	for i := 0; i < contentCount; i++ {
		item := models.ContentItem{CourseID: course.ID, Title: "lesson", Type: models.ContentText, Position: i}
		require.NoError(t, db.Create(&item).Error)
		ids = append(ids, item.ID)
	}
	return course, ids
}

func seedStudent(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	student := models.User{Name: "Sam", Email: email, Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestEnrollCreatesZeroProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, _ := seedCourse(t, db, 3)
	student := seedStudent(t, db, "sam@example.com")

	enrollment, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, enrollment.UserID)
	assert.Equal(t, course.ID, enrollment.CourseID)

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	result, err := svc.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Percent)
	assert.Empty(t, result.Completed)
	assert.Nil(t, result.LastAccessed)
}

func TestEnrollTwiceFailsWithoutSideEffects(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, _ := seedCourse(t, db, 2)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, student.ID, course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	assert.EqualValues(t, 1, enrollments)

	var progresses int64
	require.NoError(t, db.Model(&models.Progress{}).Count(&progresses).Error)
	assert.EqualValues(t, 1, progresses)
}

func TestEnrollUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)

	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(context.Background(), student.ID, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestRecordCompletionPercentages(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	// Course with content [a, b, c, d]
	course, content := seedCourse(t, db, 4)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	// Complete a: 1/4 = 25
	result, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)
	assert.InDelta(t, 25, result.Percent, 0.001)

	// Complete c: 2/4 = 50, completion order preserved
	result, err = svc.RecordCompletion(ctx, student.ID, course.ID, content[2])
	require.NoError(t, err)
	assert.InDelta(t, 50, result.Percent, 0.001)
	require.Len(t, result.Completed, 2)
	assert.Equal(t, content[0], result.Completed[0].ContentItemID)
	assert.Equal(t, content[2], result.Completed[1].ContentItemID)
	require.NotNil(t, result.LastAccessed)
	assert.Equal(t, result.Completed[1].CompletedAt.Unix(), result.LastAccessed.Unix())

	// Complete the rest: 4/4 = 100
	for _, id := range []uint{content[1], content[3]} {
		result, err = svc.RecordCompletion(ctx, student.ID, course.ID, id)
		require.NoError(t, err)
	}
	assert.InDelta(t, 100, result.Percent, 0.001)

	fetched, err := svc.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, fetched.Percent, 0.001)
	assert.Len(t, fetched.Completed, 4)
}

func TestRecordCompletionIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 4)
	student := seedStudent(t, db, "sam@example.com")

	first, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	second, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)

	assert.Equal(t, first.Percent, second.Percent)
	assert.Len(t, second.Completed, 1)
	assert.Equal(t, first.Completed[0].CompletedAt.UnixNano(), second.Completed[0].CompletedAt.UnixNano())
	assert.True(t, second.LastAccessed.After(*first.LastAccessed))
}

func TestRecordCompletionDoesNotEnroll(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 2)
	student := seedStudent(t, db, "sam@example.com")

	// Completing content lazily creates the progress record but leaves the
	// course roster untouched.
	result, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)
	assert.InDelta(t, 50, result.Percent, 0.001)

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	assert.EqualValues(t, 0, enrollments)
}

func TestRecordCompletionInvalidContent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, _ := seedCourse(t, db, 0)
	_, otherContent := seedCourse(t, db, 1)
	student := seedStudent(t, db, "sam@example.com")

	// Content from another course is rejected
	_, err := svc.RecordCompletion(ctx, student.ID, course.ID, otherContent[0])
	assert.ErrorIs(t, err, ErrInvalidContent)

	// A course with no content never divides by zero
	result, err := svc.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Percent)
}

func TestUnenrollDiscardsProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 2)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)

	require.NoError(t, svc.Unenroll(ctx, student.ID, course.ID))

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&enrollments).Error)
	assert.EqualValues(t, 0, enrollments)

	// Zero-value result, not an error
	result, err := svc.GetProgress(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Percent)
	assert.Empty(t, result.Completed)
	assert.Nil(t, result.LastAccessed)

	// The unique index must not block re-enrollment after unenroll
	_, err = svc.Enroll(ctx, student.ID, course.ID)
	assert.NoError(t, err)
}

func TestUnenrollWhenNotEnrolled(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)

	course, _ := seedCourse(t, db, 1)
	student := seedStudent(t, db, "sam@example.com")

	err := svc.Unenroll(context.Background(), student.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestUncheckCompletion(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 4)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)
	result, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[1])
	require.NoError(t, err)
	assert.InDelta(t, 50, result.Percent, 0.001)

	result, err = svc.UncheckCompletion(ctx, student.ID, course.ID, content[1])
	require.NoError(t, err)
	assert.InDelta(t, 25, result.Percent, 0.001)
	require.Len(t, result.Completed, 1)
	assert.Equal(t, content[0], result.Completed[0].ContentItemID)

	// Unchecking something never completed is a no-op on the set
	result, err = svc.UncheckCompletion(ctx, student.ID, course.ID, content[3])
	require.NoError(t, err)
	assert.InDelta(t, 25, result.Percent, 0.001)
	assert.Len(t, result.Completed, 1)
}

func TestPercentageClampedAfterContentRemoval(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 2)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)
	_, err = svc.RecordCompletion(ctx, student.ID, course.ID, content[1])
	require.NoError(t, err)

	// Instructor removes one item; the stale completion row remains. The
	// next write recomputes against the live denominator and clamps.
	require.NoError(t, db.Unscoped().Delete(&models.ContentItem{}, content[1]).Error)

	result, err := svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)
	assert.InDelta(t, 100, result.Percent, 0.001)
}

func TestPurgeCourseCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db, nil)
	ctx := context.Background()

	course, content := seedCourse(t, db, 2)
	s1 := seedStudent(t, db, "s1@example.com")
	s2 := seedStudent(t, db, "s2@example.com")

	for _, s := range []models.User{s1, s2} {
		_, err := svc.Enroll(ctx, s.ID, course.ID)
		require.NoError(t, err)
		_, err = svc.RecordCompletion(ctx, s.ID, course.ID, content[0])
		require.NoError(t, err)
	}

	require.NoError(t, svc.PurgeCourse(ctx, course.ID))

	for _, m := range []interface{}{
		&models.Course{}, &models.ContentItem{}, &models.Enrollment{},
		&models.Progress{}, &models.CompletedContent{},
	} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	}

	// Deleted-course lookups read as absence
	result, err := svc.GetProgress(ctx, s1.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, result.Percent)
	assert.Empty(t, result.Completed)
}

// recordingInvalidator captures which courses were invalidated.
type recordingInvalidator struct {
	courses []uint
}

func (r *recordingInvalidator) CourseMutated(ctx context.Context, courseID uint) {
	r.courses = append(r.courses, courseID)
}

func TestMutationsNotifyInvalidator(t *testing.T) {
	db := newTestDB(t)
	inv := &recordingInvalidator{}
	svc := NewProgressService(db, inv)
	ctx := context.Background()

	course, content := seedCourse(t, db, 1)
	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Unenroll(ctx, student.ID, course.ID))

	// Completion is a progress mutation, not a course mutation
	_, err = svc.RecordCompletion(ctx, student.ID, course.ID, content[0])
	require.NoError(t, err)

	require.NoError(t, svc.PurgeCourse(ctx, course.ID))

	assert.Equal(t, []uint{course.ID, course.ID, course.ID}, inv.courses)
}

func TestFailedEnrollDoesNotInvalidate(t *testing.T) {
	db := newTestDB(t)
	inv := &recordingInvalidator{}
	svc := NewProgressService(db, inv)

	student := seedStudent(t, db, "sam@example.com")

	_, err := svc.Enroll(context.Background(), student.ID, 404)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Empty(t, inv.courses)
}
