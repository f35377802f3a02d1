package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

// Protected resolves the bearer token into a typed user exactly once per
// request and stores it in locals. Revocation is handled through the
// auth_tokens table; redis only shortcuts the lookup.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.NotAuthenticated(c)
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return utils.NotAuthenticated(c)
		}
		key := tokenParts[1]

		// Reject tampered tokens before touching storage.
		if _, err := utils.ParseAuthToken(key); err != nil {
			return utils.Detail(c, fiber.StatusUnauthorized, "Invalid or expired token.")
		}

		userID := utils.CachedTokenUser(c.Context(), key)
		if userID == 0 {
			var token models.AuthToken
			if err := config.DB.Where("key = ?", key).First(&token).Error; err != nil {
				return utils.Detail(c, fiber.StatusUnauthorized, "Invalid or expired token.")
			}
			if !token.IsValid() {
				return utils.Detail(c, fiber.StatusUnauthorized, "Invalid or expired token.")
			}
			userID = token.UserID
			utils.CacheToken(c.Context(), key, userID)
		}

		var user models.User
		if err := config.DB.First(&user, userID).Error; err != nil {
			return utils.Detail(c, fiber.StatusUnauthorized, "Invalid or expired token.")
		}

		if !user.IsActive {
			return utils.Detail(c, fiber.StatusForbidden, "Account is not active.")
		}

		c.Locals("user", &user)
		c.Locals("tokenKey", key)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user set by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
