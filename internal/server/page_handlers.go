package server

import (
	"github.com/gofiber/fiber/v2"
)

// About handles GET /about
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, "about", fiber.Map{
		"Title": "About",
	})
}
