package routes

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/Yumi00000/WABToDo-back-end/config"
	controller "github.com/Yumi00000/WABToDo-back-end/controllers"
	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/utils"
)

// SetupRoutes wires every HTTP and websocket endpoint onto the app.
func SetupRoutes(app *fiber.App) {
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	hub := controller.NewHub()

	setupAuthRoutes(app)
	setupUserRoutes(app)
	setupTeamRoutes(app)
	setupOrderRoutes(app)
	setupTaskRoutes(app)
	setupChatRoutes(app, hub)

	app.Use(func(c *fiber.Ctx) error {
		return utils.Detail(c, fiber.StatusNotFound, "Not found.")
	})
}

func setupAuthRoutes(app *fiber.App) {
	users := app.Group("/api/users")
	users.Post("/registration/", controller.Register)
	users.Get("/activate/:token", controller.Activate)
	users.Post("/login/", middleware.LoginRateLimiter(), controller.Login)
	users.Post("/logout/", middleware.Protected(), controller.Logout)
	users.Get("/me/", middleware.Protected(), controller.GetCurrentUser)
	users.Patch("/edit/:id", middleware.Protected(), controller.EditUser)

	auth := app.Group("/auth")
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)
}

func setupUserRoutes(app *fiber.App) {
	dc := controller.NewDashboardController(config.DB)

	users := app.Group("/api/users", middleware.Protected())
	users.Get("/dashboard/", dc.Dashboard)
}

func setupTeamRoutes(app *fiber.App) {
	tc := controller.NewTeamController(config.DB)

	teams := app.Group("/api/teams", middleware.Protected())
	teams.Get("/", middleware.RequireTeamMemberOrAdmin(), tc.ListTeams)
	teams.Get("/:id", middleware.RequireTeamMemberOrAdmin(), tc.GetTeam)
	teams.Post("/create/", middleware.RequireAdminOrStaff(), tc.CreateTeam)
	teams.Patch("/edit/:id", middleware.RequireAdminOrStaff(), tc.EditTeam)
}

func setupOrderRoutes(app *fiber.App) {
	oc := controller.NewOrderController(config.DB)

	orders := app.Group("/api/orders", middleware.Protected())
	orders.Get("/", oc.ListOwn)
	orders.Post("/create/", oc.CreateOrder)
	orders.Patch("/edit/:id", oc.EditOrder)
	orders.Get("/management/", middleware.RequireAdminOrStaff(), oc.ListForManagement)
	orders.Patch("/management/:id", middleware.RequireAdminOrStaff(), oc.ManageOrder)
}

func setupTaskRoutes(app *fiber.App) {
	tc := controller.NewTaskController(config.DB)

	tasks := app.Group("/api/tasks", middleware.Protected())
	tasks.Get("/", tc.ListTasks)
	tasks.Get("/:id", tc.GetTask)
	tasks.Post("/create/", middleware.RequireTeamLeaderOrAdmin(), tc.CreateTask)
	tasks.Patch("/edit/:id", middleware.RequireTeamLeaderOrAdmin(), tc.EditTask)
	tasks.Delete("/delete/:id", middleware.RequireTeamLeaderOrAdmin(), tc.DeleteTask)
}

func setupChatRoutes(app *fiber.App, hub *controller.Hub) {
	cc := controller.NewChatController(config.DB, hub)

	chats := app.Group("/api/chats", middleware.Protected())
	chats.Get("/", cc.ListChats)
	chats.Get("/:id", cc.GetChat)
	chats.Post("/create/", cc.CreateChat)

	ws := app.Group("/ws")
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/comments/:taskId", websocket.New(cc.CommentsSocket))
	ws.Get("/notifications", websocket.New(cc.NotificationsSocket))
}
