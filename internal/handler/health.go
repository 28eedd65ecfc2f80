package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// apiDoc is served at the service root.
const apiDoc = `task-tracker API
  POST   /users        register {name, email, password}
  POST   /sessions     log in {email, password}; returns a bearer token
  GET    /users/me     current account
  GET    /tasks        list your tasks
  POST   /tasks        create {name, completed}
  GET    /tasks/:id    read one task
  PUT    /tasks/:id    update {name, completed}
  DELETE /tasks/:id    delete
Protected endpoints need "Authorization: Bearer <token>".
`

// Root serves a short description of the API.
func Root(c echo.Context) error {
	return c.String(http.StatusOK, apiDoc)
}

// Health is a liveness probe for load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
