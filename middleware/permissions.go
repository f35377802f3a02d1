package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

// Role checks live here rather than in each handler so adding a role or a
// resource type means one new capability, not edits across every controller.

// RequireAdminOrStaff allows only administrators and staff users (managers).
func RequireAdminOrStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.NotAuthenticated(c)
		}
		if !user.IsAdmin && !user.IsStaff {
			return utils.PermissionDenied(c)
		}
		return c.Next()
	}
}

// RequireTeamMemberOrAdmin allows users who belong to or lead at least one
// team, plus administrators and staff.
func RequireTeamMemberOrAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.NotAuthenticated(c)
		}
		if user.IsAdmin || user.IsStaff {
			return c.Next()
		}
		if !BelongsToAnyTeam(user.ID) {
			return utils.PermissionDenied(c)
		}
		return c.Next()
	}
}

// RequireTeamLeaderOrAdmin allows team leaders, administrators and staff.
func RequireTeamLeaderOrAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.NotAuthenticated(c)
		}
		if user.IsAdmin || user.IsStaff || LeadsAnyTeam(user.ID) {
			return c.Next()
		}
		return utils.PermissionDenied(c)
	}
}

// CanEditOrder reports whether the user may edit the order: its owner, an
// administrator, or staff.
func CanEditOrder(user *models.User, order *models.Order) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || user.IsStaff || order.OwnerID == user.ID
}

// BelongsToAnyTeam reports whether the user is a member or leader of any team.
func BelongsToAnyTeam(userID uint) bool {
	var count int64
	config.DB.Table("team_members").Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		return true
	}
	config.DB.Model(&models.Team{}).Where("leader_id = ?", userID).Count(&count)
	return count > 0
}

// LeadsAnyTeam reports whether the user leads at least one team.
func LeadsAnyTeam(userID uint) bool {
	var count int64
	config.DB.Model(&models.Team{}).Where("leader_id = ?", userID).Count(&count)
	return count > 0
}
