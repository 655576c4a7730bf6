package courseController

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/Ejay02/lms-backend/cache"
	"github.com/Ejay02/lms-backend/middleware"
	"github.com/Ejay02/lms-backend/models"
	"github.com/Ejay02/lms-backend/services"
	"github.com/Ejay02/lms-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentItemInput is the wire shape of one content item on create/update.
type ContentItemInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
}

// CourseController handles course CRUD. Mutations go through the progress
// service for cascades and notify the invalidator so stale list/detail
// responses are purged.
type CourseController struct {
	db  *gorm.DB
	svc *services.ProgressService
	inv *cache.Invalidator
}

func NewCourseController(db *gorm.DB, svc *services.ProgressService, inv *cache.Invalidator) *CourseController {
	return &CourseController{db: db, svc: svc, inv: inv}
}

func (ctl *CourseController) CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string             `json:"title"`
		Description string             `json:"description"`
		CoverImage  string             `json:"cover_image"`
		Content     []ContentItemInput `json:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		CoverImage:   reqData.CoverImage,
		InstructorID: userID,
		Content:      buildContentItems(reqData.Content),
	}

	if err := ctl.db.Create(&course).Error; err != nil {
		log.Printf("Error creating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	ctl.inv.CourseMutated(c.UserContext(), course.ID)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func (ctl *CourseController) GetAllCourses(c *fiber.Ctx) error {
	reqData, _ := c.Locals("validatedList").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}

	// List responses strip content payloads; clients fetch them per course.
	query := ctl.db.Model(&models.Course{}).
		Preload("Instructor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Content", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "course_id", "title", "description", "type", "position").
				Order("position asc")
		}).
		Order("created_at desc")

	var courses []models.Course
	pagination, err := utils.Paginate(query, page, limit, &courses)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": pagination,
	})
}

// GetCourseDetails returns the full course including content payloads. The
// response carries no per-user fields so it can sit behind the URL-keyed
// response cache; callers fetch their own progress from the progress routes.
func (ctl *CourseController) GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	var course models.Course
	err := ctl.db.
		Preload("Instructor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email")
		}).
		Preload("Content", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		First(&course, courseID).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course": course,
	})
}

func (ctl *CourseController) UpdateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Only the owning instructor may mutate the course
	if course.InstructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*struct {
		Title       string             `json:"title"`
		Description string             `json:"description"`
		CoverImage  string             `json:"cover_image"`
		Content     []ContentItemInput `json:"content"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}
	if reqData.CoverImage != "" {
		course.CoverImage = reqData.CoverImage
	}

	err := ctl.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&course).Error; err != nil {
			return err
		}

		// A provided content array replaces the whole sequence; positions
		// follow the request order so the sequence never silently reorders.
		if reqData.Content != nil {
			if err := tx.Unscoped().Where("course_id = ?", course.ID).
				Delete(&models.ContentItem{}).Error; err != nil {
				return err
			}
			items := buildContentItems(reqData.Content)
			for i := range items {
				items[i].CourseID = course.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	ctl.inv.CourseMutated(c.UserContext(), course.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func (ctl *CourseController) DeleteCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	var course models.Course
	if err := ctl.db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.InstructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not authorized!", nil)
	}

	if err := ctl.svc.PurgeCourse(c.UserContext(), courseID); err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		log.Printf("Error deleting course: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

func buildContentItems(inputs []ContentItemInput) []models.ContentItem {
	items := make([]models.ContentItem, len(inputs))
	for i, in := range inputs {
		items[i] = models.ContentItem{
			Title:       in.Title,
			Description: in.Description,
			Type:        in.Type,
			Data:        datatypes.JSON(in.Data),
			Position:    i,
		}
	}
	return items
}
