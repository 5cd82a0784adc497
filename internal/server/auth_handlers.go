package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ShowRegister handles GET /register
func (s *Server) ShowRegister(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "register", fiber.Map{
		"Title":  "Register",
		"Errors": service.FieldErrors{},
		"Form":   fiber.Map{"Username": "", "Email": ""},
	})
}

// Register handles POST /register
func (s *Server) Register(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	in := service.RegisterInput{
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("confirm_password"),
	}

	_, fieldErrs, err := s.accountService.Register(c.Context(), in)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	if len(fieldErrs) > 0 {
		// Re-render with the submitted values; passwords are never echoed back.
		return c.Status(fiber.StatusBadRequest).Render("register", s.bindForm(c, fiber.Map{
			"Title":  "Register",
			"Errors": fieldErrs,
			"Form": fiber.Map{
				"Username": in.Username,
				"Email":    in.Email,
			},
		}))
	}

	s.setFlash(c, "success", "Your account has been created! You are now able to log in.")
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// ShowLogin handles GET /login
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, "login", fiber.Map{
		"Title": "Log In",
		"Next":  safeNextPath(c.Query("next")),
		"Email": "",
	})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	if _, ok := currentUserID(c); ok {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	email := c.FormValue("email")
	password := c.FormValue("password")
	remember := c.FormValue("remember") != ""
	next := safeNextPath(c.FormValue("next"))

	user, err := s.accountService.Authenticate(c.Context(), email, password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return c.Status(fiber.StatusUnauthorized).Render("login", s.bindForm(c, fiber.Map{
				"Title": "Log In",
				"Next":  next,
				"Email": email,
				"Flash": &Flash{Category: "danger", Message: "Login unsuccessful. Please check email and password."},
			}))
		}
		return s.handleServiceError(c, err)
	}

	token, err := s.sessions.Issue(user.ID, user.Username, remember)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	c.Cookie(session.Cookie(token, remember, s.config.IsProduction()))

	return c.Redirect(next, fiber.StatusSeeOther)
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(session.ExpiredCookie(s.config.IsProduction()))
	s.setFlash(c, "info", "You have been logged out.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// bindForm merges the current user into a binding for responses rendered
// directly (without redirect), keeping the navbar state intact.
func (s *Server) bindForm(c *fiber.Ctx, bind fiber.Map) fiber.Map {
	if user, ok := c.Locals("CurrentUser").(*models.User); ok {
		bind["CurrentUser"] = user
	}
	return bind
}
