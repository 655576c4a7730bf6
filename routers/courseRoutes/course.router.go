package courseRoutes

import (
	"time"

	"github.com/Ejay02/lms-backend/cache"
	courseControllers "github.com/Ejay02/lms-backend/controllers/course"
	"github.com/Ejay02/lms-backend/middleware"
	"github.com/Ejay02/lms-backend/models"
	courseValidators "github.com/Ejay02/lms-backend/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes wires course CRUD and enrollment routes. Read endpoints
// sit behind the response cache; mutations invalidate through the controller.
func SetupCourseRoutes(app *fiber.App, ctl *courseControllers.CourseController, store cache.Store, cacheTTL time.Duration) {
	courseGroup := app.Group("/api/courses")

	instructorOnly := middleware.RoleAuthMiddleware(models.RoleInstructor, models.RoleAdmin)
	cached := middleware.CacheResponse(store, cacheTTL)

	courseGroup.Post("/", middleware.JWTMiddleware, instructorOnly, courseValidators.CreateCourse(), ctl.CreateCourse)
	courseGroup.Get("/", middleware.JWTMiddleware, cached, courseValidators.List(), ctl.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, cached, courseValidators.CourseID(), ctl.GetCourseDetails)
	courseGroup.Put("/:id", middleware.JWTMiddleware, instructorOnly, courseValidators.CourseID(), courseValidators.UpdateCourse(), ctl.UpdateCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, instructorOnly, courseValidators.CourseID(), ctl.DeleteCourse)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, courseValidators.CourseID(), ctl.EnrollInCourse)
	courseGroup.Post("/:id/unenroll", middleware.JWTMiddleware, courseValidators.CourseID(), ctl.UnenrollFromCourse)

	app.Get("/api/enrollments", middleware.JWTMiddleware, courseValidators.List(), ctl.GetEnrollments)
}
