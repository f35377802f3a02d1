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

type TaskController struct {
	DB     *gorm.DB
	Logger *logrus.Entry
}

func NewTaskController(db *gorm.DB) *TaskController {
	return &TaskController{
		DB:     db,
		Logger: logrus.WithField("resource", "tasks"),
	}
}

const (
	taskTitleMinLen       = 5
	taskTitleMaxLen       = 255
	taskDescriptionMinLen = 10
	taskDescriptionMaxLen = 2500
)

func validateTaskTitle(title string) error {
	if len(title) < taskTitleMinLen {
		return errors.New("Title must be at least 5 characters long.")
	}
	if len(title) > taskTitleMaxLen {
		return errors.New("Title must not exceed 255 characters.")
	}
	return nil
}

func validateTaskDescription(description string) error {
	if len(description) < taskDescriptionMinLen {
		return errors.New("Description must be at least 10 characters long.")
	}
	if len(description) > taskDescriptionMaxLen {
		return errors.New("Description must not exceed 2500 characters.")
	}
	return nil
}

// executorTeam resolves the team a would-be executor works on. Leading a team
// counts the same as being in its member list.
func (tc *TaskController) executorTeam(executorID uint) (*models.Team, error) {
	var team models.Team
	err := tc.DB.
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ? OR teams.leader_id = ?", executorID, executorID).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (tc *TaskController) activeOrderForTeam(teamID uint) (*models.Order, error) {
	var order models.Order
	err := tc.DB.
		Where("team_id = ? AND status = ?", teamID, models.OrderStatusActive).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateTask assigns a unit of work to an executor. The task binds to the
// executor's team and that team's active order.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description" validate:"required"`
		Executor    uint   `json:"executor" validate:"required"`
		Deadline    string `json:"deadline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationError(c, err)
	}

	if err := validateTaskTitle(input.Title); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"title": err.Error()})
	}
	if err := validateTaskDescription(input.Description); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"description": err.Error()})
	}

	var executor models.User
	if err := tc.DB.First(&executor, input.Executor).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"executor": "User with this Id does not exist.",
		})
	}

	team, err := tc.executorTeam(executor.ID)
	if err != nil {
		tc.Logger.WithError(err).Error("failed to resolve executor team")
		return utils.ServerError(c, "An error occurred while creating the task.")
	}
	if team == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"executor": "User is not a member or leader of any team.",
		})
	}

	order, err := tc.activeOrderForTeam(team.ID)
	if err != nil {
		tc.Logger.WithError(err).Error("failed to resolve team order")
		return utils.ServerError(c, "An error occurred while creating the task.")
	}
	if order == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"executor": "Executor's team has no active order.",
		})
	}

	var deadline *time.Time
	if input.Deadline != "" {
		parsed, err := utils.ParseDate(input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"deadline": "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
			})
		}
		if parsed.Before(time.Now().Truncate(24 * time.Hour)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"deadline": "Deadline cannot be in the past.",
			})
		}
		deadline = &parsed
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		ExecutorID:  &executor.ID,
		TeamID:      team.ID,
		OrderID:     &order.ID,
		Status:      models.TaskStatusPending,
		Deadline:    deadline,
	}
	if err := tc.DB.Create(&task).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to create task")
		return utils.ServerError(c, "An error occurred while creating the task.")
	}

	tc.Logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"task_id": task.ID,
		"team_id": team.ID,
	}).Info("task created")

	return c.Status(fiber.StatusCreated).JSON(taskResponse(&task))
}

// ListTasks scopes the task list by role: administration sees everything,
// team members see their team's tasks, order owners see tasks on their
// own orders.
func (tc *TaskController) ListTasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	query := tc.DB.Model(&models.Task{})

	switch {
	case user.IsAdmin || user.IsStaff:
		// Unscoped.
	case middleware.BelongsToAnyTeam(user.ID):
		query = query.
			Joins("LEFT JOIN team_members ON team_members.team_id = tasks.team_id").
			Joins("LEFT JOIN teams ON teams.id = tasks.team_id").
			Where("team_members.user_id = ? OR teams.leader_id = ?", user.ID, user.ID).
			Distinct("tasks.*")
	default:
		var count int64
		tc.DB.Model(&models.Order{}).Where("owner_id = ?", user.ID).Count(&count)
		if count == 0 {
			return utils.PermissionDenied(c)
		}
		query = query.
			Joins("JOIN orders ON orders.id = tasks.order_id").
			Where("orders.owner_id = ?", user.ID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("tasks.status = ?", status)
	} else {
		query = query.Where("tasks.status = ?", models.TaskStatusActive)
	}
	if executor := c.Query("executor"); executor != "" {
		query = query.Where("tasks.executor_id = ?", executor)
	}

	limit, offset := pageParams(c)

	var tasks []models.Task
	if err := query.Order("tasks.deadline DESC").Limit(limit).Offset(offset).Find(&tasks).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to list tasks")
		return utils.ServerError(c, "An error occurred while retrieving tasks.")
	}

	response := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		response = append(response, taskResponse(&tasks[i]))
	}
	return c.JSON(response)
}

// canViewTask applies the same visibility rule as the task list: the
// administration, the task's team, or the owner of the task's order.
func (tc *TaskController) canViewTask(user *models.User, task *models.Task) bool {
	if user.IsAdmin || user.IsStaff {
		return true
	}

	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, task.TeamID).Error; err == nil && team.HasMember(user.ID) {
		return true
	}

	if task.OrderID != nil {
		var order models.Order
		if err := tc.DB.First(&order, *task.OrderID).Error; err == nil && order.OwnerID == user.ID {
			return true
		}
	}
	return false
}

// GetTask returns a single task, subject to the caller's visibility.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var task models.Task
	if err := tc.DB.First(&task, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Task")
	}
	if !tc.canViewTask(user, &task) {
		return utils.PermissionDenied(c)
	}
	return c.JSON(taskResponse(&task))
}

// EditTask applies a partial update. Reassigning the executor re-runs team
// and order binding.
func (tc *TaskController) EditTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Task")
	}

	var input struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Executor    *uint   `json:"executor"`
		Status      *string `json:"status"`
		Deadline    *string `json:"deadline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if input.Title != nil {
		if err := validateTaskTitle(*input.Title); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"title": err.Error()})
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if err := validateTaskDescription(*input.Description); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"description": err.Error()})
		}
		task.Description = *input.Description
	}
	if input.Executor != nil {
		var executor models.User
		if err := tc.DB.First(&executor, *input.Executor).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"executor": "User with this Id does not exist.",
			})
		}
		team, err := tc.executorTeam(executor.ID)
		if err != nil {
			tc.Logger.WithError(err).Error("failed to resolve executor team")
			return utils.ServerError(c, "An error occurred while updating the task.")
		}
		if team == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"executor": "User is not a member or leader of any team.",
			})
		}
		task.ExecutorID = &executor.ID
		task.TeamID = team.ID
		if order, err := tc.activeOrderForTeam(team.ID); err == nil && order != nil {
			task.OrderID = &order.ID
		}
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Deadline != nil {
		parsed, err := utils.ParseDate(*input.Deadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"deadline": "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
			})
		}
		task.Deadline = &parsed
	}

	if err := tc.DB.Save(&task).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to update task")
		return utils.ServerError(c, "An error occurred while updating the task.")
	}

	tc.Logger.WithField("task_id", task.ID).Info("task updated")

	return c.JSON(taskResponse(&task))
}

// DeleteTask removes a task permanently.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	var task models.Task
	if err := tc.DB.First(&task, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Task")
	}

	if err := tc.DB.Unscoped().Delete(&task).Error; err != nil {
		tc.Logger.WithError(err).Error("failed to delete task")
		return utils.ServerError(c, "An error occurred while deleting the task.")
	}

	tc.Logger.WithField("task_id", task.ID).Info("task deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
