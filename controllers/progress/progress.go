package progressController

import (
	"errors"
	"log"

	"github.com/Ejay02/lms-backend/middleware"
	"github.com/Ejay02/lms-backend/services"

	"github.com/gofiber/fiber/v2"
)

// ProgressController translates HTTP input into progress engine calls and
// engine results/errors into responses. No domain logic lives here.
type ProgressController struct {
	svc *services.ProgressService
}

func NewProgressController(svc *services.ProgressService) *ProgressController {
	return &ProgressController{svc: svc}
}

func (ctl *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	result, err := ctl.svc.GetProgress(c.UserContext(), userID, courseID)
	if err != nil {
		log.Printf("Error fetching progress: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", result)
}

func (ctl *ProgressController) RecordCompletion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	result, err := ctl.svc.RecordCompletion(c.UserContext(), userID, courseID, contentID)
	if err != nil {
		return progressError(c, err, "Failed to update progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", result)
}

func (ctl *ProgressController) UncheckCompletion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)
	contentID := c.Locals("contentID").(uint)

	result, err := ctl.svc.UncheckCompletion(c.UserContext(), userID, courseID, contentID)
	if err != nil {
		return progressError(c, err, "Failed to update progress!")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", result)
}

func progressError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrCourseNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	case errors.Is(err, services.ErrInvalidContent):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Content not found in this course!", nil)
	case errors.Is(err, services.ErrNotEnrolled):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No progress for this course!", nil)
	default:
		log.Printf("Progress error: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, fallback, nil)
	}
}
