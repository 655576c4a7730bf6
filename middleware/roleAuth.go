package middleware

import (
	"github.com/Ejay02/lms-backend/database"
	"github.com/Ejay02/lms-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RoleAuthMiddleware returns a middleware that checks if the user has one of
// the required roles. Must run after JWTMiddleware.
func RoleAuthMiddleware(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		if err := database.Database.Db.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking role!", nil)
		}

		for _, role := range roles {
			if user.Role == role {
				c.Locals("userRole", user.Role)
				return c.Next()
			}
		}

		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
