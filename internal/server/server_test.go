package server

import (
	"context"
	"net/http"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the repository.UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockPostRepository is a mock of the repository.PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const testSecret = "test-secret-key-for-handler-tests"

// newTestServer wires a Server around mock repositories and returns the
// configured Fiber app. Templates are loaded from the repository's views dir.
func newTestServer(t *testing.T, userRepo *MockUserRepository, postRepo *MockPostRepository) (*Server, *fiber.App) {
	t.Helper()

	cfg := &config.Config{
		Port:          "0",
		SessionSecret: testSecret,
		ViewsDir:      "../../views",
		AvatarDir:     t.TempDir(),
		Env:           "test",
	}

	avatars := service.NewAvatarService(cfg.AvatarDir)
	s := &Server{
		config:         cfg,
		userRepo:       userRepo,
		postRepo:       postRepo,
		sessions:       session.NewManager(cfg.SessionSecret),
		avatarService:  avatars,
		accountService: service.NewAccountService(userRepo, avatars),
		postService:    service.NewPostService(postRepo, userRepo, postsPerPage),
	}

	return s, s.NewApp()
}

// loginAs issues a session cookie for the given user and wires the repo
// lookup LoadUser performs on every request.
func loginAs(t *testing.T, s *Server, userRepo *MockUserRepository, user *models.User) *http.Cookie {
	t.Helper()

	token, err := s.sessions.Issue(user.ID, user.Username, false)
	require.NoError(t, err)
	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	return &http.Cookie{Name: session.CookieName, Value: token}
}

func responseCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
