package controller

import (
	"errors"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

var authLog = logrus.WithField("resource", "auth")

type RegisterRequest struct {
	Username     string  `json:"username" validate:"required,max=150"`
	FirstName    string  `json:"firstName" validate:"required,max=150"`
	LastName     string  `json:"lastName" validate:"required,max=150"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8"`
	Password2    string  `json:"password2" validate:"required"`
	PhoneNumber  *string `json:"phoneNumber" validate:"omitempty,max=15"`
	IsTeamMember bool    `json:"isTeamMember"`
	IsAdmin      bool    `json:"isAdmin"`
	IsStaff      bool    `json:"isStaff"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new user account and mails an activation link.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationError(c, err)
	}

	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "email must be a valid email")
	}

	if req.Password != req.Password2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"password": "Passwords fields didn't match.",
		})
	}

	if !utils.ValidatePassword(req.Password, req.Username, req.FirstName, req.LastName, req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"password":        "Not a reliable password.",
			"password scheme": utils.PasswordScheme,
		})
	}

	// Uniqueness checks surface as plain validation failures.
	var existing models.User
	if err := config.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return utils.Detail(c, fiber.StatusBadRequest, "A user with that username already exists.")
	}
	if err := config.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return utils.Detail(c, fiber.StatusBadRequest, "A user with that email already exists.")
	}
	if req.PhoneNumber != nil {
		if err := config.DB.Where("phone_number = ?", *req.PhoneNumber).First(&existing).Error; err == nil {
			return utils.Detail(c, fiber.StatusBadRequest, "A user with that phone number already exists.")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ServerError(c, "Failed to hash password")
	}

	user := models.User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		PhoneNumber:  req.PhoneNumber,
		IsTeamMember: req.IsTeamMember,
		IsAdmin:      req.IsAdmin,
		IsStaff:      req.IsStaff,
		IsActive:     true,
	}

	if err := config.DB.Create(&user).Error; err != nil {
		return utils.ServerError(c, "Failed to create user")
	}

	if token, err := utils.GenerateActivationToken(user.ID); err == nil {
		// Best effort; registration already succeeded.
		_ = utils.SendActivationEmail(user.Email, user.FirstName, token)
	}

	authLog.WithField("user_id", user.ID).Info("user registered")

	return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
}

// Activate confirms the email address behind a signed activation link.
func Activate(c *fiber.Ctx) error {
	userID, err := utils.ParseActivationToken(c.Params("token"))
	if err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid or expired link")
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid or expired link")
	}

	user.IsActive = true
	user.EmailVerified = true
	if err := config.DB.Save(&user).Error; err != nil {
		return utils.ServerError(c, "Failed to activate account")
	}

	return utils.Detail(c, fiber.StatusOK, "Account successfully activated")
}

// Login verifies credentials and hands out a persisted bearer token. A still
// valid token issued to the same user agent is reused (200 instead of 201).
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ValidationError(c, err)
	}

	var user models.User
	if err := config.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return utils.Detail(c, fiber.StatusUnauthorized, "Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.Detail(c, fiber.StatusUnauthorized, "Invalid email or password.")
	}

	if !user.IsActive {
		return utils.Detail(c, fiber.StatusForbidden, "Account is not active.")
	}

	now := time.Now()
	user.LastLogin = &now
	config.DB.Model(&user).Update("last_login", now)

	token, created, err := utils.GetOrCreateToken(config.DB, &user, c.Get("User-Agent"))
	if err != nil {
		return utils.ServerError(c, "Failed to generate token")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}

	authLog.WithField("user_id", user.ID).Info("user logged in")

	return c.Status(status).JSON(fiber.Map{"token": token.Key})
}

// Logout revokes the presented token.
func Logout(c *fiber.Ctx) error {
	key, _ := c.Locals("tokenKey").(string)
	if key != "" {
		config.DB.Where("key = ?", key).Delete(&models.AuthToken{})
		utils.InvalidateToken(c.Context(), key)
	}
	return utils.Detail(c, fiber.StatusOK, "Logged out.")
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(userResponse(user))
}

// EditUser lets an account owner update their own profile. Anyone else gets
// 403, including administrators.
func EditUser(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.NotFound(c, "User")
	}
	if uint(id) != user.ID {
		return utils.PermissionDenied(c)
	}

	var input struct {
		Username    *string `json:"username"`
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		Email       *string `json:"email"`
		PhoneNumber *string `json:"phoneNumber"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if input.Username != nil && *input.Username != user.Username {
		var existing models.User
		if err := config.DB.Where("username = ? AND id <> ?", *input.Username, user.ID).
			First(&existing).Error; err == nil {
			return utils.Detail(c, fiber.StatusBadRequest, "A user with that username already exists.")
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if err := checkmail.ValidateFormat(*input.Email); err != nil {
			return utils.Detail(c, fiber.StatusBadRequest, "email must be a valid email")
		}
		var existing models.User
		if err := config.DB.Where("email = ? AND id <> ?", *input.Email, user.ID).
			First(&existing).Error; err == nil {
			return utils.Detail(c, fiber.StatusBadRequest, "A user with that email already exists.")
		}
		user.Email = *input.Email
		user.EmailVerified = false
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		var existing models.User
		if err := config.DB.Where("phone_number = ? AND id <> ?", *input.PhoneNumber, user.ID).
			First(&existing).Error; err == nil {
			return utils.Detail(c, fiber.StatusBadRequest, "A user with that phone number already exists.")
		}
		user.PhoneNumber = input.PhoneNumber
	}

	if err := config.DB.Save(user).Error; err != nil {
		return utils.ServerError(c, "Failed to update user")
	}

	authLog.WithField("user_id", user.ID).Info("profile updated")

	return c.JSON(userResponse(user))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func findUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := config.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
