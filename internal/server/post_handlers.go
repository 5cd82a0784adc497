package server

import (
	"fmt"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// postsPerPage is the page size for the home and per-author listings.
const postsPerPage = 5

// Home handles GET / and GET /home: the paginated post feed, newest first.
func (s *Server) Home(c *fiber.Ctx) error {
	page, err := s.postService.List(c.Context(), c.QueryInt("page", 1))
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return s.render(c, "home", fiber.Map{
		"Page": page,
	})
}

// UserPosts handles GET /user/:username: one author's posts, newest first.
func (s *Server) UserPosts(c *fiber.Ctx) error {
	username := c.Params("username")

	author, page, err := s.postService.ListByAuthor(c.Context(), username, c.QueryInt("page", 1))
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return s.render(c, "user_posts", fiber.Map{
		"Title":  author.Username,
		"Author": author,
		"Page":   page,
	})
}

// ShowPost handles GET /post/:id
func (s *Server) ShowPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.Context(), id)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	return s.render(c, "post", fiber.Map{
		"Title": post.Title,
		"Post":  post,
	})
}

// ShowNewPost handles GET /post/new
func (s *Server) ShowNewPost(c *fiber.Ctx) error {
	return s.render(c, "post_form", fiber.Map{
		"Title":  "New Post",
		"Legend": "New Post",
		"Action": "/post/new",
		"Form":   fiber.Map{"Title": "", "Content": ""},
	})
}

// CreatePost handles POST /post/new
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	title := c.FormValue("title")
	content := c.FormValue("content")

	_, err := s.postService.Create(c.Context(), userID, title, content)
	if err != nil {
		if models.ErrorCode(err) == "VALIDATION_ERROR" {
			return c.Status(fiber.StatusBadRequest).Render("post_form", s.bindForm(c, fiber.Map{
				"Title":  "New Post",
				"Legend": "New Post",
				"Action": "/post/new",
				"Flash":  &Flash{Category: "danger", Message: err.Error()},
				"Form": fiber.Map{
					"Title":   title,
					"Content": content,
				},
			}))
		}
		return s.handleServiceError(c, err)
	}

	s.setFlash(c, "success", "Your post has been created!")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ShowEditPost handles GET /post/:id/update
func (s *Server) ShowEditPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)

	post, err := s.postService.Get(c.Context(), id)
	if err != nil {
		return s.handleServiceError(c, err)
	}
	if post.UserID != userID {
		return s.renderError(c, fiber.StatusForbidden)
	}

	return s.render(c, "post_form", fiber.Map{
		"Title":  "Update Post",
		"Legend": "Update Post",
		"Action": fmt.Sprintf("/post/%d/update", post.ID),
		"Form": fiber.Map{
			"Title":   post.Title,
			"Content": post.Content,
		},
	})
}

// UpdatePost handles POST /post/:id/update
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)
	title := c.FormValue("title")
	content := c.FormValue("content")

	post, err := s.postService.Update(c.Context(), userID, id, title, content)
	if err != nil {
		if models.ErrorCode(err) == "VALIDATION_ERROR" {
			return c.Status(fiber.StatusBadRequest).Render("post_form", s.bindForm(c, fiber.Map{
				"Title":  "Update Post",
				"Legend": "Update Post",
				"Action": fmt.Sprintf("/post/%d/update", id),
				"Flash":  &Flash{Category: "danger", Message: err.Error()},
				"Form": fiber.Map{
					"Title":   title,
					"Content": content,
				},
			}))
		}
		return s.handleServiceError(c, err)
	}

	s.setFlash(c, "success", "Your post has been updated!")
	return c.Redirect(fmt.Sprintf("/post/%d", post.ID), fiber.StatusSeeOther)
}

// DeletePost handles POST /post/:id/delete
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := currentUserID(c)

	if err := s.postService.Delete(c.Context(), userID, id); err != nil {
		return s.handleServiceError(c, err)
	}

	s.setFlash(c, "success", "Your post has been deleted!")
	return c.Redirect("/", fiber.StatusSeeOther)
}
