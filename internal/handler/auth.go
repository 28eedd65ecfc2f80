package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// AuthHandler serves registration, login and the current-account lookup.
type AuthHandler struct {
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
	Events   EventPublisher
	Log      *logrus.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users. The response never includes the password hash.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	user, err := h.Users.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	publish(c, h.Events, h.Log, queue.UserRegistered(user))
	return c.JSON(http.StatusCreated, user)
}

// Login handles POST /sessions and returns the new session, token included.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sess, err := h.Sessions.Login(req.Email, req.Password)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	publish(c, h.Events, h.Log, queue.SessionCreated(sess))
	return c.JSON(http.StatusCreated, sess)
}

// Me handles GET /users/me.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	user, err := h.Users.GetByID(uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, user)
}
