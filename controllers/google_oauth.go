package controller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.AppConfig.Google.ClientID,
		ClientSecret: config.AppConfig.Google.ClientSecret,
		RedirectURL:  config.AppConfig.Google.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleOAuth starts the Google login flow with CSRF protection via a
// short-lived state cookie.
func GoogleOAuth(c *fiber.Ctx) error {
	state, err := utils.GenerateSecureToken()
	if err != nil {
		return utils.ServerError(c, "Failed to generate state token")
	}

	cookie := new(fiber.Cookie)
	cookie.Name = "oauth_state"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.HTTPOnly = true
	cookie.Secure = true
	cookie.SameSite = "Lax"
	c.Cookie(cookie)

	url := googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOffline)
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// GoogleOAuthCallback exchanges the authorization code, provisions the user
// on first login, and issues the same persisted bearer token as Login.
func GoogleOAuthCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	cookieState := c.Cookies("oauth_state")

	if state == "" || cookieState == "" || state != cookieState {
		return utils.Detail(c, fiber.StatusBadRequest, "CSRF check failed.")
	}
	c.ClearCookie("oauth_state")

	code := c.Query("code")
	if code == "" {
		return utils.Detail(c, fiber.StatusBadRequest, "Code and state are required.")
	}

	oauthCfg := googleOAuthConfig()
	token, err := oauthCfg.Exchange(context.Background(), code)
	if err != nil {
		return utils.ServerError(c, "Failed to exchange token: "+err.Error())
	}

	client := oauthCfg.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return utils.ServerError(c, "Failed to get user info: "+err.Error())
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		GivenName string `json:"given_name"`
		Surname   string `json:"family_name"`
		Verified  bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return utils.ServerError(c, "Failed to parse user info: "+err.Error())
	}

	if googleUser.Email == "" {
		return utils.Detail(c, fiber.StatusBadRequest, "Google account email is required")
	}

	user, err := findUserByEmail(googleUser.Email)
	if err != nil {
		return utils.ServerError(c, "Database error: "+err.Error())
	}

	if user == nil {
		// Google accounts authenticate via OAuth only; the local password is
		// a random secret nobody knows.
		password, err := utils.GenerateSecureToken()
		if err != nil {
			return utils.ServerError(c, "Failed to generate password")
		}
		hash, err := hashPassword(password)
		if err != nil {
			return utils.ServerError(c, "Failed to hash password")
		}

		user = &models.User{
			Username:      googleUser.Email,
			FirstName:     googleUser.GivenName,
			LastName:      googleUser.Surname,
			Email:         googleUser.Email,
			PasswordHash:  hash,
			GoogleID:      &googleUser.ID,
			IsActive:      true,
			EmailVerified: googleUser.Verified,
		}
		if err := config.DB.Create(user).Error; err != nil {
			return utils.ServerError(c, "Failed to create user: "+err.Error())
		}
	} else if user.GoogleID == nil || *user.GoogleID != googleUser.ID {
		user.GoogleID = &googleUser.ID
		if googleUser.Verified {
			user.EmailVerified = true
		}
		if err := config.DB.Save(user).Error; err != nil {
			return utils.ServerError(c, "Failed to update user: "+err.Error())
		}
	}

	authToken, created, err := utils.GetOrCreateToken(config.DB, user, c.Get("User-Agent"))
	if err != nil {
		return utils.ServerError(c, "Failed to generate token")
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"token": authToken.Key})
}
