// Package handler implements the HTTP endpoints of the task tracker. Handlers
// assume the session gate has already run for protected routes and read the
// caller's id from the echo context.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// EventPublisher delivers domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

const publishTimeout = 2 * time.Second

var errNoUser = errors.New("invalid user_id in context")

// getUserID extracts the id the session gate stored on the context.
func getUserID(c echo.Context) (int64, error) {
	switch v := c.Get(middleware.ContextKeyUserID).(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	}
	return 0, errNoUser
}

// writeError maps repository errors onto status codes. Anything unexpected
// is logged and reported as a bare 500.
func writeError(c echo.Context, log *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, repository.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// publish sends ev without letting broker trouble reach the client.
func publish(c echo.Context, p EventPublisher, log *logrus.Logger, ev queue.Event) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.WithError(err).WithField("event", ev.Type).Warn("publish event failed")
	}
}

// ErrorHandler replaces echo's default so framework errors (unknown route,
// wrong method, bad binding) share the {"error": "..."} body shape and no
// internal detail leaks on 500s.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				if s, ok := he.Message.(string); ok {
					msg = s
				} else {
					msg = http.StatusText(code)
				}
			}
		}
		if code >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			log.WithError(err).Error("write error response")
		}
	}
}
