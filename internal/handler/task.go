package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// TaskHandler serves the /tasks endpoints. Every operation is scoped to
// the authenticated user; another user's task looks exactly like a
// missing one.
type TaskHandler struct {
	Tasks  *repository.TaskRepo
	Events EventPublisher
	Log    *logrus.Logger
}

// List handles GET /tasks.
func (h *TaskHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, h.Tasks.List(uid))
}

// Create handles POST /tasks. Client supplied id and userId are ignored.
func (h *TaskHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in repository.TaskInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	task, err := h.Tasks.Create(uid, in)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	publish(c, h.Events, h.Log, queue.TaskCreated(task))
	return c.JSON(http.StatusCreated, task)
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	uid, id, err := taskScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	task, err := h.Tasks.Get(uid, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PUT /tasks/:id. Only name and completed are applied; any
// other key in the body is dropped when decoding.
func (h *TaskHandler) Update(c echo.Context) error {
	uid, id, err := taskScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	var patch repository.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	task, err := h.Tasks.Update(uid, id, patch)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	publish(c, h.Events, h.Log, queue.TaskUpdated(task))
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	uid, id, err := taskScope(c)
	if err != nil {
		return scopeError(c, err)
	}
	if err := h.Tasks.Delete(uid, id); err != nil {
		return writeError(c, h.Log, err)
	}
	publish(c, h.Events, h.Log, queue.TaskDeleted(uid, id))
	return c.NoContent(http.StatusNoContent)
}

var errBadID = errors.New("invalid id")

// taskScope resolves the caller and the :id path parameter.
func taskScope(c echo.Context) (uid, id int64, err error) {
	if uid, err = getUserID(c); err != nil {
		return 0, 0, err
	}
	id, err = strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, errBadID
	}
	return uid, id, nil
}

// scopeError answers a request whose taskScope failed.
func scopeError(c echo.Context, err error) error {
	if errors.Is(err, errBadID) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
