package server

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const flashCookieName = "inkwell_flash"

// parseID extracts a route parameter by name as a positive uint.
// On failure it renders a 404 page and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = s.renderError(c, fiber.StatusNotFound)
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// setFlash stores a one-shot message shown on the next rendered page.
// Category is a Bootstrap alert class suffix: success, info, danger.
func (s *Server) setFlash(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(5 * time.Minute),
	})
}

// Flash is a one-shot message surfaced to templates.
type Flash struct {
	Category string
	Message  string
}

// takeFlash reads and clears the flash cookie, if present.
func (s *Server) takeFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookieName)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	category, message, found := strings.Cut(decoded, "|")
	if !found || message == "" {
		return nil
	}
	return &Flash{Category: category, Message: message}
}

// render wraps c.Render, merging the current user and any pending flash
// message into the binding so every page can show the navbar and alerts.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if user, ok := c.Locals("CurrentUser").(*models.User); ok {
		bind["CurrentUser"] = user
	}
	if flash := s.takeFlash(c); flash != nil {
		bind["Flash"] = flash
	}
	return c.Render(name, bind)
}

// currentUserID returns the authenticated user's ID. Handlers behind
// RequireAuth can rely on the second return being true.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok
}

// safeNextPath validates a post-login redirect target. Only local absolute
// paths are honored so the login flow cannot be abused as an open redirect.
func safeNextPath(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	if strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}

// renderError renders the standalone error page for the given status.
func (s *Server) renderError(c *fiber.Ctx, status int) error {
	bind := fiber.Map{}
	if user, ok := c.Locals("CurrentUser").(*models.User); ok {
		bind["CurrentUser"] = user
	}
	var name string
	switch status {
	case fiber.StatusNotFound:
		name = "errors/404"
	case fiber.StatusForbidden:
		name = "errors/403"
	default:
		name = "errors/500"
	}
	return c.Status(status).Render(name, bind)
}

// handleServiceError maps a service-layer error onto the right error page.
func (s *Server) handleServiceError(c *fiber.Ctx, err error) error {
	switch models.ErrorCode(err) {
	case "NOT_FOUND":
		return s.renderError(c, fiber.StatusNotFound)
	case "FORBIDDEN":
		return s.renderError(c, fiber.StatusForbidden)
	case "VALIDATION_ERROR":
		return s.renderError(c, fiber.StatusBadRequest)
	case "UNAUTHORIZED":
		return s.renderError(c, fiber.StatusForbidden)
	default:
		middleware.Logger.ErrorContext(c.UserContext(), "internal error", "error", err, "path", c.Path())
		return s.renderError(c, fiber.StatusInternalServerError)
	}
}

// errorHandler is the app-level Fiber error handler for errors that escape
// the handlers, including panics surfaced by the recover middleware.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusNotFound {
		return s.renderError(c, fiber.StatusNotFound)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	return s.renderError(c, fiber.StatusInternalServerError)
}
