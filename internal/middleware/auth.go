package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/model"
)

// Context keys set by SessionAuth for downstream handlers.
const (
	ContextKeyUserID  = "user_id"
	ContextKeySession = "session"
)

const bearerPrefix = "Bearer "

// Route identifies an endpoint by method and exact path. An empty Method
// matches every method.
type Route struct {
	Method string
	Path   string
}

// PublicRoutes are reachable without a session: the service root, the
// health probe, registration and login.
var PublicRoutes = []Route{
	{Path: "/"},
	{Method: http.MethodGet, Path: "/healthz"},
	{Method: http.MethodPost, Path: "/users"},
	{Method: http.MethodPost, Path: "/sessions"},
}

// SessionValidator resolves a bearer token to a live session.
type SessionValidator interface {
	Validate(token string) (model.Session, error)
}

// SessionAuth is the authorization gate. Requests to a public route pass
// straight through. Every other request must carry "Authorization: Bearer
// <token>" naming a live session, otherwise it is answered with 401 and no
// handler runs. On success the session and its user id are stored on the
// context under ContextKeySession and ContextKeyUserID.
func SessionAuth(sessions SessionValidator, public []Route) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if IsPublic(public, r.Method, r.URL.Path) {
				return next(c)
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			sess, err := sessions.Validate(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}

			c.Set(ContextKeyUserID, sess.UserID)
			c.Set(ContextKeySession, sess)
			return next(c)
		}
	}
}

// IsPublic reports whether method+path is on the allow-list.
func IsPublic(public []Route, method, path string) bool {
	for _, rt := range public {
		if rt.Path == path && (rt.Method == "" || rt.Method == method) {
			return true
		}
	}
	return false
}

// bearerToken strips the fixed 7-character "Bearer " prefix.
func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}
