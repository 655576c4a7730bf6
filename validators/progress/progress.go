package progressValidator

import (
	"strconv"
	"strings"

	"github.com/Ejay02/lms-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

// CourseParam validates the :courseId route param
func CourseParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("courseId"))

		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		c.Locals("courseID", uint(id))
		return c.Next()
	}
}

// ContentBody validates the completion request body and stores the content ID
func ContentBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			ContentID uint `json:"content_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.ContentID == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Content ID is required!", nil)
		}

		c.Locals("contentID", reqData.ContentID)
		return c.Next()
	}
}
