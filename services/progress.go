package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ejay02/lms-backend/models"

	"gorm.io/gorm"
)

// CourseInvalidator purges cached course reads after a mutation. It is
// advisory only; implementations must never return an error to the caller.
type CourseInvalidator interface {
	CourseMutated(ctx context.Context, courseID uint)
}

// ProgressResult is the engine's view of a user's progress in one course.
// A user with no progress record gets the zero value, not an error.
type ProgressResult struct {
	Percent      float64                   `json:"progress"`
	Completed    []models.CompletedContent `json:"completed_content"`
	LastAccessed *time.Time                `json:"last_accessed"`
}

// ProgressService owns enrollment state and completion tracking. It is
// constructed with an explicit database handle so tests can run it against an
// in-memory SQLite database with caching absent (inv may be nil).
type ProgressService struct {
	db  *gorm.DB
	inv CourseInvalidator
}

func NewProgressService(db *gorm.DB, inv CourseInvalidator) *ProgressService {
	return &ProgressService{db: db, inv: inv}
}

// Enroll adds the user to the course roster and creates an empty progress
// record. The roster's (user_id, course_id) unique index turns a concurrent
// double-enroll into ErrAlreadyEnrolled instead of a duplicate row.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	enrollment := models.Enrollment{UserID: userID, CourseID: courseID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(tx, courseID); err != nil {
			return err
		}

		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return storageErr(err)
		}

		progress := models.Progress{UserID: userID, CourseID: courseID}
		if err := tx.Where(models.Progress{UserID: userID, CourseID: courseID}).
			FirstOrCreate(&progress).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, courseID)
	return &enrollment, nil
}

// Unenroll removes the user from the roster and hard-deletes the progress
// record with all completion history. Deletes are unscoped: a soft-deleted
// row would still occupy the unique index and block re-enrollment.
func (s *ProgressService) Unenroll(ctx context.Context, userID, courseID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(tx, courseID); err != nil {
			return err
		}

		res := tx.Unscoped().
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&models.Enrollment{})
		if res.Error != nil {
			return storageErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotEnrolled
		}

		return deleteProgressRows(tx, userID, courseID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, courseID)
	return nil
}

// RecordCompletion marks one content item as done. The progress record is
// created lazily, so completing content counts as implicit enrollment for
// percentage purposes without adding the user to the course roster.
// Completing the same item twice is idempotent apart from last_accessed.
func (s *ProgressService) RecordCompletion(ctx context.Context, userID, courseID, contentID uint) (*ProgressResult, error) {
	var result *ProgressResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(tx, courseID); err != nil {
			return err
		}

		var item models.ContentItem
		if err := tx.Where("id = ? AND course_id = ?", contentID, courseID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidContent
			}
			return storageErr(err)
		}

		progress := models.Progress{UserID: userID, CourseID: courseID}
		if err := tx.Where(models.Progress{UserID: userID, CourseID: courseID}).
			FirstOrCreate(&progress).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return storageErr(err)
		}

		now := time.Now().UTC()
		completion := models.CompletedContent{
			ProgressID:    progress.ID,
			ContentItemID: contentID,
			CompletedAt:   now,
		}
		if err := tx.Create(&completion).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return storageErr(err)
		}

		var err error
		result, err = refreshProgress(tx, &progress, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UncheckCompletion removes one completed item and recomputes the
// percentage. Unchecking an item that was never completed only refreshes
// last_accessed.
func (s *ProgressService) UncheckCompletion(ctx context.Context, userID, courseID, contentID uint) (*ProgressResult, error) {
	var result *ProgressResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(tx, courseID); err != nil {
			return err
		}

		var progress models.Progress
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return storageErr(err)
		}

		if err := tx.Unscoped().
			Where("progress_id = ? AND content_item_id = ?", progress.ID, contentID).
			Delete(&models.CompletedContent{}).Error; err != nil {
			return storageErr(err)
		}

		var err error
		result, err = refreshProgress(tx, &progress, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetProgress is read-only. A missing progress record (never enrolled,
// unenrolled, or course deleted) yields the zero-value result, not an error.
func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID uint) (*ProgressResult, error) {
	var progress models.Progress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProgressResult{Completed: []models.CompletedContent{}}, nil
		}
		return nil, storageErr(err)
	}

	completed, err := completedInOrder(s.db.WithContext(ctx), progress.ID)
	if err != nil {
		return nil, err
	}

	return &ProgressResult{
		Percent:      progress.Percent,
		Completed:    completed,
		LastAccessed: progress.LastAccessed,
	}, nil
}

// PurgeCourse deletes a course and everything hanging off it: content,
// roster, progress records with their completions, and feedback.
func (s *ProgressService) PurgeCourse(ctx context.Context, courseID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := courseExists(tx, courseID); err != nil {
			return err
		}

		var progressIDs []uint
		if err := tx.Model(&models.Progress{}).
			Where("course_id = ?", courseID).
			Pluck("id", &progressIDs).Error; err != nil {
			return storageErr(err)
		}
		if len(progressIDs) > 0 {
			if err := tx.Unscoped().Where("progress_id IN ?", progressIDs).
				Delete(&models.CompletedContent{}).Error; err != nil {
				return storageErr(err)
			}
		}

		for _, m := range []interface{}{
			&models.Progress{}, &models.Enrollment{}, &models.ContentItem{}, &models.Feedback{},
		} {
			if err := tx.Unscoped().Where("course_id = ?", courseID).Delete(m).Error; err != nil {
				return storageErr(err)
			}
		}

		if err := tx.Unscoped().Delete(&models.Course{}, courseID).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, courseID)
	return nil
}

// deleteProgressRows hard-deletes a user's progress record for a course
// together with its completion rows.
func deleteProgressRows(tx *gorm.DB, userID, courseID uint) error {
	var progress models.Progress
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return storageErr(err)
	}

	if err := tx.Unscoped().Where("progress_id = ?", progress.ID).
		Delete(&models.CompletedContent{}).Error; err != nil {
		return storageErr(err)
	}
	if err := tx.Unscoped().Delete(&models.Progress{}, progress.ID).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *ProgressService) invalidate(ctx context.Context, courseID uint) {
	if s.inv != nil {
		s.inv.CourseMutated(ctx, courseID)
	}
}

// refreshProgress recomputes the percentage against the live content count
// and stamps last_accessed. Content added or removed since earlier
// completions shifts the denominator; the ratio is clamped to [0,100] so
// stale completion rows cannot push it past 100.
func refreshProgress(tx *gorm.DB, progress *models.Progress, now time.Time) (*ProgressResult, error) {
	var done, total int64
	if err := tx.Model(&models.CompletedContent{}).
		Where("progress_id = ?", progress.ID).Count(&done).Error; err != nil {
		return nil, storageErr(err)
	}
	if err := tx.Model(&models.ContentItem{}).
		Where("course_id = ?", progress.CourseID).Count(&total).Error; err != nil {
		return nil, storageErr(err)
	}

	percent := 0.0
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}
	if percent > 100 {
		percent = 100
	}

	updates := map[string]interface{}{"percent": percent, "last_accessed": now}
	if err := tx.Model(progress).Updates(updates).Error; err != nil {
		return nil, storageErr(err)
	}

	completed, err := completedInOrder(tx, progress.ID)
	if err != nil {
		return nil, err
	}

	return &ProgressResult{Percent: percent, Completed: completed, LastAccessed: &now}, nil
}

// completedInOrder returns completions in the order they happened.
func completedInOrder(tx *gorm.DB, progressID uint) ([]models.CompletedContent, error) {
	completed := []models.CompletedContent{}
	err := tx.Where("progress_id = ?", progressID).
		Order("completed_at asc, id asc").
		Find(&completed).Error
	if err != nil {
		return nil, storageErr(err)
	}
	return completed, nil
}

func courseExists(tx *gorm.DB, courseID uint) error {
	if err := tx.First(&models.Course{}, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return storageErr(err)
	}
	return nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
