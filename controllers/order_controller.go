package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:     db,
		Logger: logrus.WithField("resource", "orders"),
	}
}

const (
	orderNameMinLen        = 5
	orderDescriptionMinLen = 100
	orderDescriptionMaxLen = 3000
)

func validateOrderName(name string) error {
	if len(name) < orderNameMinLen {
		return errors.New("Name must be at least 5 characters long.")
	}
	return nil
}

func validateOrderDescription(description string) error {
	if len(description) < orderDescriptionMinLen {
		return errors.New("Description must be at least 100 characters long.")
	}
	if len(description) > orderDescriptionMaxLen {
		return errors.New("Description must not exceed 3000 characters.")
	}
	return nil
}

// CreateOrder opens a new project request owned by the caller. Fresh orders
// are unaccepted, teamless and active.
func (oc *OrderController) CreateOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description" validate:"required"`
		Deadline    string `json:"deadline" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationError(c, err)
	}

	if err := validateOrderName(input.Name); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"name": err.Error()})
	}
	if err := validateOrderDescription(input.Description); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"description": err.Error()})
	}

	deadline, err := utils.ParseDate(input.Deadline)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"deadline": "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
		})
	}

	order := models.Order{
		OwnerID:     user.ID,
		Name:        input.Name,
		Description: input.Description,
		Deadline:    deadline,
		Status:      models.OrderStatusActive,
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		oc.Logger.WithError(err).Error("failed to create order")
		return utils.ServerError(c, "An error occurred while creating the order.")
	}

	oc.Logger.WithFields(logrus.Fields{"user_id": user.ID, "order_id": order.ID}).Info("order created")

	return c.Status(fiber.StatusCreated).JSON(orderResponse(oc.DB, &order))
}

// ListOwn returns orders the caller owns or can see through team membership.
func (oc *OrderController) ListOwn(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	orders, err := oc.visibleOrders(user)
	if err != nil {
		oc.Logger.WithError(err).Error("failed to list orders")
		return utils.ServerError(c, "An error occurred while retrieving orders.")
	}

	response := make([]fiber.Map, 0, len(orders))
	for i := range orders {
		response = append(response, orderResponse(oc.DB, &orders[i]))
	}
	return c.JSON(response)
}

func (oc *OrderController) visibleOrders(user *models.User) ([]models.Order, error) {
	var orders []models.Order
	err := oc.DB.
		Distinct("orders.*").
		Joins("LEFT JOIN team_members ON team_members.team_id = orders.team_id").
		Joins("LEFT JOIN teams ON teams.id = orders.team_id").
		Where("orders.owner_id = ? OR team_members.user_id = ? OR teams.leader_id = ?",
			user.ID, user.ID, user.ID).
		Order("orders.created_at").
		Find(&orders).Error
	return orders, err
}

// EditOrder lets the owner (or administration) adjust name, description and
// deadline. Acceptance state is out of reach here.
func (oc *OrderController) EditOrder(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var order models.Order
	if err := oc.DB.First(&order, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Order")
	}

	if !middleware.CanEditOrder(user, &order) {
		return utils.PermissionDenied(c)
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Deadline    *string `json:"deadline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if input.Name != nil {
		if err := validateOrderName(*input.Name); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"name": err.Error()})
		}
		order.Name = *input.Name
	}
	if input.Description != nil {
		if err := validateOrderDescription(*input.Description); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"description": err.Error()})
		}
		order.Description = *input.Description
	}
	if input.Deadline != nil {
		deadline, err := utils.ParseDate(*input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"deadline": "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
			})
		}
		order.Deadline = deadline
	}

	now := time.Now()
	order.UpdatedAt = &now
	if err := oc.DB.Save(&order).Error; err != nil {
		oc.Logger.WithError(err).Error("failed to update order")
		return utils.ServerError(c, "An error occurred while updating the order")
	}

	oc.Logger.WithFields(logrus.Fields{"user_id": user.ID, "order_id": order.ID}).Info("order updated")

	return c.JSON(fiber.Map{
		"id":          order.ID,
		"name":        order.Name,
		"description": order.Description,
		"deadline":    utils.FormatDateValue(order.Deadline),
		"updatedAt":   utils.FormatDate(order.UpdatedAt),
		"status":      order.Status,
	})
}

// ListForManagement is the administration view over all incoming orders.
func (oc *OrderController) ListForManagement(c *fiber.Ctx) error {
	query := oc.DB.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if isAccepted := c.Query("is_accepted"); isAccepted != "" {
		query = query.Where("accepted = ?", isAccepted == "true")
	}

	orderBy := "created_at DESC"
	if c.Query("order_by_date") == "created_at" {
		orderBy = "created_at"
	}

	limit, offset := pageParams(c)

	var orders []models.Order
	if err := query.Order(orderBy).Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		oc.Logger.WithError(err).Error("failed to list orders for management")
		return utils.ServerError(c, "An error occurred while retrieving orders.")
	}

	response := make([]fiber.Map, 0, len(orders))
	for _, order := range orders {
		response = append(response, fiber.Map{
			"id":          order.ID,
			"name":        order.Name,
			"description": order.Description,
			"deadline":    utils.FormatDateValue(order.Deadline),
			"createdAt":   utils.FormatDateValue(order.CreatedAt),
			"status":      order.Status,
		})
	}
	return c.JSON(response)
}

// ManageOrder is the administrator decision point: accepting an order binds
// a team and stamps acceptedAt exactly once; closing it releases the team.
func (oc *OrderController) ManageOrder(c *fiber.Ctx) error {
	var order models.Order
	if err := oc.DB.First(&order, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Order")
	}

	var input struct {
		Accepted bool   `json:"accepted"`
		Team     *uint  `json:"team"`
		Status   string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationError(c, err)
	}

	var team *models.Team
	if input.Team != nil {
		team = &models.Team{}
		if err := oc.DB.First(team, *input.Team).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Team with this Id does not exist.",
			})
		}
	}

	switch {
	case input.Accepted && input.Status == models.OrderStatusActive && team != nil:
		if team.Status == models.TeamStatusUnavailable && (order.TeamID == nil || *order.TeamID != team.ID) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "This team is currently unavailable.",
			})
		}
		if err := oc.acceptOrder(&order, team); err != nil {
			oc.Logger.WithError(err).Error("failed to accept order")
			return utils.ServerError(c, "An error occurred while updating the order")
		}

	case input.Status == models.OrderStatusClosed:
		if err := oc.closeOrder(&order); err != nil {
			oc.Logger.WithError(err).Error("failed to close order")
			return utils.ServerError(c, "An error occurred while updating the order")
		}

	default:
		order.Status = input.Status
		if err := oc.DB.Save(&order).Error; err != nil {
			oc.Logger.WithError(err).Error("failed to update order status")
			return utils.ServerError(c, "An error occurred while updating the order")
		}
	}

	return c.JSON(fiber.Map{
		"id":         order.ID,
		"name":       order.Name,
		"accepted":   order.Accepted,
		"acceptedAt": utils.FormatDate(order.AcceptedAt),
		"team":       order.TeamID,
		"status":     order.Status,
	})
}

func (oc *OrderController) acceptOrder(order *models.Order, team *models.Team) error {
	return oc.DB.Transaction(func(tx *gorm.DB) error {
		order.Accepted = true
		if order.AcceptedAt == nil {
			// Set once at acceptance, never reset by later edits.
			now := time.Now()
			order.AcceptedAt = &now
		}
		order.TeamID = &team.ID
		order.Status = models.OrderStatusActive
		if err := tx.Save(order).Error; err != nil {
			return err
		}

		team.Status = models.TeamStatusUnavailable
		return tx.Save(team).Error
	})
}

func (oc *OrderController) closeOrder(order *models.Order) error {
	return oc.DB.Transaction(func(tx *gorm.DB) error {
		order.Status = models.OrderStatusClosed
		if err := tx.Save(order).Error; err != nil {
			return err
		}

		if order.TeamID != nil {
			return tx.Model(&models.Team{}).
				Where("id = ?", *order.TeamID).
				Update("status", models.TeamStatusAvailable).Error
		}
		return nil
	})
}
