// Package router wires middleware and HTTP routes onto an Echo instance.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/middleware"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Auth      *handler.AuthHandler
	Tasks     *handler.TaskHandler
	Sessions  middleware.SessionValidator
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
	Log       *logrus.Logger
}

// New builds a fully wired Echo instance.
func New(d Deps) *echo.Echo {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Log)

	RegisterMiddleware(e, d)
	RegisterRoutes(e)
	RegisterAuth(e, d.Auth)
	RegisterTasks(e, d.Tasks)
	return e
}

// RegisterMiddleware installs the global chain. The session gate runs on
// every request, so unknown routes are also answered with 401 for
// anonymous callers.
func RegisterMiddleware(e *echo.Echo, d Deps) {
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Recover())
	e.Use(middleware.SessionAuth(d.Sessions, middleware.PublicRoutes))
	e.Use(middleware.RateLimit(d.RateLimit, d.Redis, d.Log))
}

// RegisterRoutes registers the unauthenticated informational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers account and session endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/users", a.Register)
	e.POST("/sessions", a.Login)
	e.GET("/users/me", a.Me)
}

// RegisterTasks registers the task endpoints. All of them sit behind the gate.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler) {
	e.GET("/tasks", t.List)
	e.POST("/tasks", t.Create)
	e.GET("/tasks/:id", t.Get)
	e.PUT("/tasks/:id", t.Update)
	e.DELETE("/tasks/:id", t.Delete)
}
