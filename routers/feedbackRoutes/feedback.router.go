package feedbackRoutes

import (
	feedbackControllers "github.com/Ejay02/lms-backend/controllers/feedback"
	"github.com/Ejay02/lms-backend/middleware"
	feedbackValidators "github.com/Ejay02/lms-backend/validators/feedback"

	"github.com/gofiber/fiber/v2"
)

func SetupFeedbackRoutes(app *fiber.App, ctl *feedbackControllers.FeedbackController) {
	feedbackGroup := app.Group("/api/feedback")

	feedbackGroup.Post("/:courseId", middleware.JWTMiddleware, feedbackValidators.CourseParam(), feedbackValidators.Submit(), ctl.SubmitFeedback)
	feedbackGroup.Get("/:courseId", middleware.JWTMiddleware, feedbackValidators.CourseParam(), ctl.GetFeedback)
}
