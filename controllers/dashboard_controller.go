package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logrus.WithField("resource", "dashboard"),
	}
}

// Dashboard returns compact rows for every order the caller can see, with the
// owner shown by first name.
func (dc *DashboardController) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit, offset := pageParams(c)

	var orders []models.Order
	err := dc.DB.
		Preload("Owner").
		Distinct("orders.*").
		Joins("LEFT JOIN team_members ON team_members.team_id = orders.team_id").
		Joins("LEFT JOIN teams ON teams.id = orders.team_id").
		Where("orders.owner_id = ? OR team_members.user_id = ? OR teams.leader_id = ?",
			user.ID, user.ID, user.ID).
		Order("orders.created_at").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		dc.Logger.WithError(err).Error("failed to load dashboard")
		return utils.ServerError(c, "An error occurred while retrieving the dashboard.")
	}

	response := make([]fiber.Map, 0, len(orders))
	for _, order := range orders {
		response = append(response, fiber.Map{
			"id":        order.ID,
			"name":      order.Name,
			"owner":     order.Owner.FirstName,
			"createdAt": utils.FormatDateValue(order.CreatedAt),
			"accepted":  order.Accepted,
			"status":    order.Status,
		})
	}
	return c.JSON(response)
}
