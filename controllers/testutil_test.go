package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/models"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	config.DB = db
	config.Redis = nil
	config.AppConfig.SecretKey = "test-secret-key"
	config.AppConfig.TokenTTL = 168 * time.Hour
	config.AppConfig.RateLimitLogin = 1000

	app := fiber.New()

	users := app.Group("/api/users")
	users.Post("/registration/", Register)
	users.Get("/activate/:token", Activate)
	users.Post("/login/", Login)
	users.Post("/logout/", middleware.Protected(), Logout)
	users.Get("/me/", middleware.Protected(), GetCurrentUser)
	users.Patch("/edit/:id", middleware.Protected(), EditUser)

	dc := NewDashboardController(db)
	users.Get("/dashboard/", middleware.Protected(), dc.Dashboard)

	tc := NewTeamController(db)
	teams := app.Group("/api/teams", middleware.Protected())
	teams.Get("/", middleware.RequireTeamMemberOrAdmin(), tc.ListTeams)
	teams.Get("/:id", middleware.RequireTeamMemberOrAdmin(), tc.GetTeam)
	teams.Post("/create/", middleware.RequireAdminOrStaff(), tc.CreateTeam)
	teams.Patch("/edit/:id", middleware.RequireAdminOrStaff(), tc.EditTeam)

	oc := NewOrderController(db)
	orders := app.Group("/api/orders", middleware.Protected())
	orders.Get("/", oc.ListOwn)
	orders.Post("/create/", oc.CreateOrder)
	orders.Patch("/edit/:id", oc.EditOrder)
	orders.Get("/management/", middleware.RequireAdminOrStaff(), oc.ListForManagement)
	orders.Patch("/management/:id", middleware.RequireAdminOrStaff(), oc.ManageOrder)

	kc := NewTaskController(db)
	tasks := app.Group("/api/tasks", middleware.Protected())
	tasks.Get("/", kc.ListTasks)
	tasks.Get("/:id", kc.GetTask)
	tasks.Post("/create/", middleware.RequireTeamLeaderOrAdmin(), kc.CreateTask)
	tasks.Patch("/edit/:id", middleware.RequireTeamLeaderOrAdmin(), kc.EditTask)
	tasks.Delete("/delete/:id", middleware.RequireTeamLeaderOrAdmin(), kc.DeleteTask)

	return app, db
}

type userOption func(*models.User)

func asAdmin() userOption { return func(u *models.User) { u.IsAdmin = true } }
func asStaff() userOption { return func(u *models.User) { u.IsStaff = true } }

func inactive() userOption { return func(u *models.User) { u.IsActive = false } }

func createUser(t *testing.T, db *gorm.DB, username string, opts ...userOption) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(user)
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, db *gorm.DB, user *models.User) string {
	t.Helper()
	token, _, err := utils.GetOrCreateToken(db, user, "test-agent")
	require.NoError(t, err)
	return token.Key
}

func createTeam(t *testing.T, db *gorm.DB, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()

	team := &models.Team{LeaderID: leader.ID, Status: models.TeamStatusAvailable}
	require.NoError(t, db.Create(team).Error)

	all := append([]*models.User{leader}, members...)
	for _, m := range all {
		require.NoError(t, db.Model(team).Association("Members").Append(m))
		require.NoError(t, db.Model(m).Update("is_team_member", true).Error)
	}
	return team
}

func createOrder(t *testing.T, db *gorm.DB, owner *models.User) *models.Order {
	t.Helper()

	order := &models.Order{
		OwnerID:     owner.ID,
		Name:        "Test order",
		Description: longDescription(),
		Deadline:    time.Now().AddDate(0, 1, 0),
		Status:      models.OrderStatusActive,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func longDescription() string {
	return "This is a sufficiently long order description used across the test " +
		"suite so that length validation passes without each test repeating it."
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var parsed map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

func doRequestList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var parsed []map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}
