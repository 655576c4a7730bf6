package progressRoutes

import (
	progressControllers "github.com/Ejay02/lms-backend/controllers/progress"
	"github.com/Ejay02/lms-backend/middleware"
	"github.com/Ejay02/lms-backend/models"
	progressValidators "github.com/Ejay02/lms-backend/validators/progress"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, ctl *progressControllers.ProgressController) {
	progressGroup := app.Group("/api/progress")

	studentOnly := middleware.RoleAuthMiddleware(models.RoleStudent)

	progressGroup.Get("/:courseId", middleware.JWTMiddleware, progressValidators.CourseParam(), ctl.GetProgress)
	progressGroup.Post("/:courseId", middleware.JWTMiddleware, studentOnly, progressValidators.CourseParam(), progressValidators.ContentBody(), ctl.RecordCompletion)
	progressGroup.Post("/:courseId/uncheck", middleware.JWTMiddleware, studentOnly, progressValidators.CourseParam(), progressValidators.ContentBody(), ctl.UncheckCompletion)
}
