package courseValidator

import (
	"strconv"
	"strings"

	courseController "github.com/Ejay02/lms-backend/controllers/course"
	"github.com/Ejay02/lms-backend/middleware"
	"github.com/Ejay02/lms-backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var contentTypes = map[string]bool{
	models.ContentVideo:    true,
	models.ContentDocument: true,
	models.ContentQuiz:     true,
	models.ContentImage:    true,
	models.ContentText:     true,
}

// CourseID validates the :id route param and stores it as uint
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			idStr = strings.TrimSpace(c.Params("courseId"))
		}

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", uint(id))
		return c.Next()
	}
}

// CreateCourse validates course creation request
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string                              `json:"title"`
			Description string                              `json:"description"`
			CoverImage  string                              `json:"cover_image"`
			Content     []courseController.ContentItemInput `json:"content"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if err := validate.Var(reqData.Title, "required,min=3"); err != nil {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if err := validate.Var(reqData.Description, "required"); err != nil {
			errors["description"] = "Description is required!"
		}

		validateContent(reqData.Content, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates course update request; all fields optional
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string                              `json:"title"`
			Description string                              `json:"description"`
			CoverImage  string                              `json:"cover_image"`
			Content     []courseController.ContentItemInput `json:"content"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Title = strings.TrimSpace(reqData.Title)
		if reqData.Title != "" && len(reqData.Title) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		validateContent(reqData.Content, errors)

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// List validates pagination query params
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page != nil && *reqData.Page < 1 {
			errors["page"] = "Page must be a positive number!"
		}
		if reqData.Limit != nil && (*reqData.Limit < 1 || *reqData.Limit > 100) {
			errors["limit"] = "Limit must be between 1 and 100!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func validateContent(content []courseController.ContentItemInput, errors map[string]string) {
	for i, item := range content {
		if strings.TrimSpace(item.Title) == "" {
			errors["content"] = "Content title is required!"
			return
		}
		if !contentTypes[item.Type] {
			errors["content"] = "Invalid content type at position " + strconv.Itoa(i) + "!"
			return
		}
	}
}
