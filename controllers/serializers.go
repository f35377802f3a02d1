package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

// Response shapes are part of the wire contract and built explicitly here
// instead of leaning on model JSON tags.

func userResponse(u *models.User) fiber.Map {
	return fiber.Map{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
		"phoneNumber":  u.PhoneNumber,
		"isTeamMember": u.IsTeamMember,
		"isAdmin":      u.IsAdmin,
		"isStaff":      u.IsStaff,
		"isActive":     u.IsActive,
	}
}

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// pageParams reads limit/offset query parameters for the list views.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type memberInfo struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func memberOf(u models.User) memberInfo {
	return memberInfo{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

func teamResponse(t *models.Team) fiber.Map {
	members := make([]memberInfo, 0, len(t.Members))
	leaderListed := false
	for _, m := range t.Members {
		if m.ID == t.LeaderID {
			leaderListed = true
		}
		members = append(members, memberOf(m))
	}
	if !leaderListed {
		members = append([]memberInfo{memberOf(t.Leader)}, members...)
	}

	return fiber.Map{
		"team_id":         t.ID,
		"leader":          memberOf(t.Leader),
		"list_of_members": members,
		"status":          t.Status,
	}
}

func taskResponse(t *models.Task) fiber.Map {
	return fiber.Map{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"executor":    t.ExecutorID,
		"team":        t.TeamID,
		"order":       t.OrderID,
		"status":      t.Status,
		"deadline":    utils.FormatDate(t.Deadline),
	}
}

func orderResponse(db *gorm.DB, o *models.Order) fiber.Map {
	var tasks []models.Task
	db.Where("order_id = ?", o.ID).Order("id").Find(&tasks)

	taskList := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		taskList = append(taskList, taskResponse(&tasks[i]))
	}

	return fiber.Map{
		"id":          o.ID,
		"owner":       o.OwnerID,
		"name":        o.Name,
		"description": o.Description,
		"deadline":    utils.FormatDateValue(o.Deadline),
		"createdAt":   utils.FormatDateValue(o.CreatedAt),
		"updatedAt":   utils.FormatDate(o.UpdatedAt),
		"acceptedAt":  utils.FormatDate(o.AcceptedAt),
		"accepted":    o.Accepted,
		"team":        o.TeamID,
		"tasks":       taskList,
		"status":      o.Status,
	}
}
