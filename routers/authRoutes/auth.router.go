package authRoutes

import (
	authControllers "github.com/Ejay02/lms-backend/controllers/auth"
	"github.com/Ejay02/lms-backend/middleware"
	authValidators "github.com/Ejay02/lms-backend/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/signup/instructor", authValidators.Signup(), authControllers.InstructorSignup)
	authGroup.Post("/signup/admin", authValidators.Signup(), authControllers.AdminSignup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/google", authControllers.GoogleAuth)
	authGroup.Patch("/reset-password", authValidators.ResetPassword(), authControllers.ResetPassword)
	authGroup.Put("/profile", middleware.JWTMiddleware, authControllers.UpdateProfile)
	authGroup.Get("/me", middleware.JWTMiddleware, authControllers.GetUser)
}
