package utils

import "github.com/gofiber/fiber/v2"

// Error bodies mirror the wire contract exactly: {"detail": "..."} with the
// canonical permission/auth/not-found phrasings.

func Detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

func NotAuthenticated(c *fiber.Ctx) error {
	return Detail(c, fiber.StatusUnauthorized, "Authentication credentials were not provided.")
}

func PermissionDenied(c *fiber.Ctx) error {
	return Detail(c, fiber.StatusForbidden, "You do not have permission to perform this action.")
}

func NotFound(c *fiber.Ctx, resource string) error {
	return Detail(c, fiber.StatusNotFound, "No "+resource+" matches the given query.")
}

func ValidationError(c *fiber.Ctx, err error) error {
	return Detail(c, fiber.StatusBadRequest, err.Error())
}

func ServerError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}
