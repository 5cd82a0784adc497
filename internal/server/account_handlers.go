package server

import (
	"io"
	"mime/multipart"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShowAccount handles GET /account
func (s *Server) ShowAccount(c *fiber.Ctx) error {
	user := c.Locals("CurrentUser").(*models.User)
	return s.render(c, "account", fiber.Map{
		"Title":  "Account",
		"Errors": service.FieldErrors{},
		"Form": fiber.Map{
			"Username": user.Username,
			"Email":    user.Email,
		},
	})
}

// UpdateAccount handles POST /account (multipart form, optional picture)
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	in := service.UpdateAccountInput{
		UserID:   userID,
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
	}

	// The picture field is optional; FormFile errors when it is absent.
	if header, err := c.FormFile("picture"); err == nil && header != nil && header.Size > 0 {
		picture, readErr := readUpload(header)
		if readErr != nil {
			return s.handleServiceError(c, models.NewInternalError(readErr))
		}
		in.Picture = picture
		in.PictureName = header.Filename
	}

	_, fieldErrs, err := s.accountService.UpdateAccount(c.Context(), in)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("account", s.bindForm(c, fiber.Map{
			"Title":  "Account",
			"Errors": fieldErrs,
			"Form": fiber.Map{
				"Username": in.Username,
				"Email":    in.Email,
			},
		}))
	}

	s.setFlash(c, "success", "Your account has been updated!")
	return c.Redirect("/account", fiber.StatusSeeOther)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
