package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/Yumi00000/WABToDo-back-end/config"
	"github.com/Yumi00000/WABToDo-back-end/middleware"
	"github.com/Yumi00000/WABToDo-back-end/routes"
	"github.com/Yumi00000/WABToDo-back-end/utils"
	"github.com/Yumi00000/WABToDo-back-end/worker"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("ENVIRONMENT") == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if err := config.LoadConfig(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if config.AppConfig.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		})
		if err != nil {
			logrus.WithError(err).Warn("sentry initialization failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := config.ConnectDB(); err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := config.ConnectRedis(); err != nil {
		logrus.WithError(err).Warn("redis unavailable, falling back to database token lookups")
	}

	app := fiber.New(fiber.Config{
		AppName:      "WABToDo API",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.CORS())

	routes.SetupRoutes(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanup := worker.NewTokenCleanupWorker(config.DB, time.Hour)
	go cleanup.Start(ctx)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logrus.Info("shutting down")
		cancel()
		_ = app.Shutdown()
	}()

	addr := ":" + config.AppConfig.ServerPort
	logrus.WithField("addr", addr).Info("server listening")
	if err := app.Listen(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if code >= fiber.StatusInternalServerError {
		sentry.CaptureException(err)
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		return utils.ServerError(c, "Internal server error.")
	}
	return utils.Detail(c, code, err.Error())
}
