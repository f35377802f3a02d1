package controller

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

type ChatController struct {
	DB     *gorm.DB
	Hub    *Hub
	Logger *logrus.Entry
}

func NewChatController(db *gorm.DB, hub *Hub) *ChatController {
	return &ChatController{
		DB:     db,
		Hub:    hub,
		Logger: logrus.WithField("resource", "chats"),
	}
}

// CreateChat opens a chat and enrolls the caller plus the listed participants.
func (cc *ChatController) CreateChat(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Name         string `json:"name" validate:"required,max=255"`
		Participants []uint `json:"participants"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ValidationError(c, err)
	}

	chat := models.Chat{Name: input.Name, IsGroup: len(input.Participants) > 1}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		ids := append([]uint{user.ID}, input.Participants...)
		for _, id := range uniqueIDs(ids) {
			if err := tx.Create(&models.Participant{ChatID: chat.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		cc.Logger.WithError(err).Error("failed to create chat")
		return utils.ServerError(c, "An error occurred while creating the chat.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       chat.ID,
		"name":     chat.Name,
		"is_group": chat.IsGroup,
	})
}

// ListChats returns the chats the caller participates in.
func (cc *ChatController) ListChats(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var chats []models.Chat
	err := cc.DB.
		Joins("JOIN participants ON participants.chat_id = chats.id").
		Where("participants.user_id = ?", user.ID).
		Find(&chats).Error
	if err != nil {
		cc.Logger.WithError(err).Error("failed to list chats")
		return utils.ServerError(c, "An error occurred while retrieving chats.")
	}

	response := make([]fiber.Map, 0, len(chats))
	for _, chat := range chats {
		response = append(response, fiber.Map{
			"id":       chat.ID,
			"name":     chat.Name,
			"is_group": chat.IsGroup,
		})
	}
	return c.JSON(response)
}

// GetChat returns a chat with its recent messages, participants only.
func (cc *ChatController) GetChat(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var chat models.Chat
	if err := cc.DB.Preload("Participants").First(&chat, c.Params("id")).Error; err != nil {
		return utils.NotFound(c, "Chat")
	}

	isParticipant := false
	for _, p := range chat.Participants {
		if p.UserID == user.ID {
			isParticipant = true
			break
		}
	}
	if !isParticipant && !user.IsAdmin {
		return utils.PermissionDenied(c)
	}

	var messages []models.Message
	cc.DB.Where("chat_id = ?", chat.ID).Order("created_at").Limit(100).Find(&messages)

	msgList := make([]fiber.Map, 0, len(messages))
	for _, m := range messages {
		msgList = append(msgList, fiber.Map{
			"id":      m.ID,
			"sender":  m.SenderID,
			"content": m.Content,
			"sentAt":  m.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"id":       chat.ID,
		"name":     chat.Name,
		"is_group": chat.IsGroup,
		"messages": msgList,
	})
}

// wsUser authenticates a websocket connection from its token query parameter.
// Fiber upgrades before any HTTP middleware can see the header, so the token
// travels as ?token=.
func (cc *ChatController) wsUser(conn *websocket.Conn) *models.User {
	key := conn.Query("token")
	if key == "" {
		return nil
	}

	var token models.AuthToken
	if err := cc.DB.Where("key = ?", key).First(&token).Error; err != nil || !token.IsValid() {
		return nil
	}

	var user models.User
	if err := cc.DB.First(&user, token.UserID).Error; err != nil || !user.IsActive {
		return nil
	}
	return &user
}

// CommentsSocket handles the per-task comments room. Incoming frames carry a
// content field; each persisted comment is echoed to everyone in the room.
func (cc *ChatController) CommentsSocket(conn *websocket.Conn) {
	client := newWSClient(conn)

	user := cc.wsUser(conn)
	if user == nil {
		client.WriteJSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		client.Close()
		return
	}

	taskID, err := strconv.ParseUint(conn.Params("taskId"), 10, 64)
	if err != nil {
		client.WriteJSON(fiber.Map{"detail": "Invalid task id."})
		client.Close()
		return
	}

	var task models.Task
	if err := cc.DB.First(&task, taskID).Error; err != nil {
		client.WriteJSON(fiber.Map{"detail": "No Task matches the given query."})
		client.Close()
		return
	}

	// Only the task's team (or administration) takes part in its discussion.
	if !user.IsAdmin && !user.IsStaff {
		var team models.Team
		if err := cc.DB.Preload("Members").First(&team, task.TeamID).Error; err != nil || !team.HasMember(user.ID) {
			client.WriteJSON(fiber.Map{"detail": "You do not have permission to perform this action."})
			client.Close()
			return
		}
	}

	room := fmt.Sprintf("comments:%d", task.ID)
	cc.Hub.Join(room, client)
	defer func() {
		cc.Hub.Leave(room, client)
		client.Close()
	}()

	for {
		var frame struct {
			Content string `json:"content"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Content == "" {
			client.WriteJSON(fiber.Map{"detail": "Content is required."})
			continue
		}

		comment := models.Comment{TaskID: task.ID, MemberID: user.ID, Content: frame.Content}
		if err := cc.DB.Create(&comment).Error; err != nil {
			cc.Logger.WithError(err).Error("failed to persist comment")
			client.WriteJSON(fiber.Map{"detail": "Failed to save comment."})
			continue
		}

		cc.Hub.Broadcast(room, fiber.Map{
			"id":      comment.ID,
			"task":    comment.TaskID,
			"member":  comment.MemberID,
			"content": comment.Content,
			"sentAt":  comment.CreatedAt,
		})
	}
}

// NotificationsSocket streams the caller's notifications. On connect it
// replays unread history, then pushes anything broadcast to the user's room.
func (cc *ChatController) NotificationsSocket(conn *websocket.Conn) {
	client := newWSClient(conn)

	user := cc.wsUser(conn)
	if user == nil {
		client.WriteJSON(fiber.Map{"detail": "Authentication credentials were not provided."})
		client.Close()
		return
	}

	room := fmt.Sprintf("notifications:%d", user.ID)
	cc.Hub.Join(room, client)
	defer func() {
		cc.Hub.Leave(room, client)
		client.Close()
	}()

	var pending []models.Notification
	cc.DB.Where("user_id = ?", user.ID).Order("created_at").Find(&pending)
	for _, n := range pending {
		client.WriteJSON(fiber.Map{
			"id":      n.ID,
			"content": n.Content,
			"sentAt":  n.CreatedAt,
		})
	}

	// Keep the connection open; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Notify persists a notification and pushes it to the user's room if they are
// connected.
func (cc *ChatController) Notify(userID uint, content string) {
	n := models.Notification{UserID: userID, Content: content}
	if err := cc.DB.Create(&n).Error; err != nil {
		cc.Logger.WithError(err).Error("failed to persist notification")
		return
	}
	cc.Hub.Broadcast(fmt.Sprintf("notifications:%d", userID), fiber.Map{
		"id":      n.ID,
		"content": n.Content,
		"sentAt":  n.CreatedAt,
	})
}
