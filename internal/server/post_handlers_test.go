package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	_, app := newTestServer(t, userRepo, postRepo)

	posts := []*models.Post{
		{ID: 2, Title: "Second", Content: "Newer", UserID: 1,
			User: models.User{ID: 1, Username: "alice", ImageFile: models.DefaultAvatar},
			CreatedAt: time.Now()},
		{ID: 1, Title: "First", Content: "Older", UserID: 1,
			User: models.User{ID: 1, Username: "alice", ImageFile: models.DefaultAvatar},
			CreatedAt: time.Now().Add(-time.Hour)},
	}
	postRepo.On("Count", mock.Anything).Return(int64(2), nil)
	postRepo.On("List", mock.Anything, postsPerPage, 0).Return(posts, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Second")
	assert.Contains(t, string(body), "First")
	// The layout must ship Bootstrap's JS so the delete-confirmation modal works.
	assert.Contains(t, string(body), "bootstrap.bundle.min.js")
}

func TestHomePagination(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	_, app := newTestServer(t, userRepo, postRepo)

	postRepo.On("Count", mock.Anything).Return(int64(12), nil)
	postRepo.On("List", mock.Anything, postsPerPage, postsPerPage).
		Return([]*models.Post{}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page=2", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	postRepo.AssertExpectations(t)
}

func TestShowPost(t *testing.T) {
	t.Run("Renders an existing post", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		postRepo.On("GetByID", mock.Anything, uint(7)).Return(&models.Post{
			ID: 7, Title: "Hello", Content: "World", UserID: 1,
			User: models.User{ID: 1, Username: "alice", ImageFile: models.DefaultAvatar},
		}, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/post/7", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Hello")
	})

	t.Run("Missing post is 404", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		postRepo.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("Post", 99))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/post/99", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Non-numeric ID is 404", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/post/abc", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCreatePostHandler(t *testing.T) {
	t.Run("Authenticated user creates a post", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		alice := &models.User{ID: 1, Username: "alice"}
		cookie := loginAs(t, s, userRepo, alice)

		postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
			return p.UserID == 1 && p.Title == "My Post"
		})).Return(nil)

		req := formRequest("/post/new", url.Values{
			"title":   {"My Post"},
			"content": {"Some thoughts."},
		})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		postRepo.AssertExpectations(t)
	})

	t.Run("Empty title re-renders the form", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		alice := &models.User{ID: 1, Username: "alice"}
		cookie := loginAs(t, s, userRepo, alice)

		req := formRequest("/post/new", url.Values{
			"title":   {""},
			"content": {"Some thoughts."},
		})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Anonymous user is redirected to login", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		resp, err := app.Test(formRequest("/post/new", url.Values{
			"title":   {"My Post"},
			"content": {"Some thoughts."},
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/login"))
		postRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdatePostHandler(t *testing.T) {
	t.Run("Owner updates their post", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		alice := &models.User{ID: 1, Username: "alice"}
		cookie := loginAs(t, s, userRepo, alice)

		postRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Post{ID: 7, Title: "Old", Content: "Old", UserID: 1}, nil)
		postRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		req := formRequest("/post/7/update", url.Values{
			"title":   {"New Title"},
			"content": {"New content."},
		})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/post/7", resp.Header.Get("Location"))
	})

	t.Run("Non-owner gets 403 and the post is unchanged", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		mallory := &models.User{ID: 2, Username: "mallory"}
		cookie := loginAs(t, s, userRepo, mallory)

		postRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Post{ID: 7, Title: "Old", UserID: 1}, nil)

		req := formRequest("/post/7/update", url.Values{
			"title":   {"Hijacked"},
			"content": {"Hijacked content."},
		})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		postRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Edit form is forbidden for non-owners", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		mallory := &models.User{ID: 2, Username: "mallory"}
		cookie := loginAs(t, s, userRepo, mallory)

		postRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Post{ID: 7, Title: "Old", UserID: 1}, nil)

		req := httptest.NewRequest(http.MethodGet, "/post/7/update", nil)
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeletePostHandler(t *testing.T) {
	t.Run("Owner deletes their post", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		alice := &models.User{ID: 1, Username: "alice"}
		cookie := loginAs(t, s, userRepo, alice)

		postRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Post{ID: 7, UserID: 1}, nil)
		postRepo.On("Delete", mock.Anything, uint(7)).Return(nil)

		req := formRequest("/post/7/delete", url.Values{})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		postRepo.AssertExpectations(t)
	})

	t.Run("Non-owner gets 403", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		s, app := newTestServer(t, userRepo, postRepo)

		mallory := &models.User{ID: 2, Username: "mallory"}
		cookie := loginAs(t, s, userRepo, mallory)

		postRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Post{ID: 7, UserID: 1}, nil)

		req := formRequest("/post/7/delete", url.Values{})
		req.AddCookie(cookie)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		postRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUserPosts(t *testing.T) {
	t.Run("Lists an author's posts", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		alice := &models.User{ID: 1, Username: "alice", ImageFile: models.DefaultAvatar}
		userRepo.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)
		postRepo.On("CountByUserID", mock.Anything, uint(1)).Return(int64(1), nil)
		postRepo.On("ListByUserID", mock.Anything, uint(1), postsPerPage, 0).
			Return([]*models.Post{{ID: 3, Title: "Mine", Content: "Hello", UserID: 1}}, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/user/alice", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Posts by alice")
	})

	t.Run("Unknown author is 404", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/user/ghost", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
