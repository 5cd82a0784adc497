package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// PostPage is one page of the post listing.
type PostPage struct {
	Posts      []*models.Post
	Page       int
	TotalPages int
}

// PostService implements the post management flow: list, create, view,
// update and delete with ownership checks.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	perPage  int
}

// NewPostService creates a PostService paginating perPage posts at a time.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, perPage int) *PostService {
	if perPage <= 0 {
		perPage = 5
	}
	return &PostService{postRepo: postRepo, userRepo: userRepo, perPage: perPage}
}

// List returns one page of all posts, newest first.
func (s *PostService) List(ctx context.Context, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx, s.perPage, (page-1)*s.perPage)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages(total, s.perPage),
	}, nil
}

// ListByAuthor returns one page of a single author's posts, newest first.
// The author is resolved by username; a missing author is NotFound.
func (s *PostService) ListByAuthor(ctx context.Context, username string, page int) (*models.User, *PostPage, error) {
	if page < 1 {
		page = 1
	}

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if author == nil {
		return nil, nil, models.NewNotFoundError("User", username)
	}

	total, err := s.postRepo.CountByUserID(ctx, author.ID)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.postRepo.ListByUserID(ctx, author.ID, s.perPage, (page-1)*s.perPage)
	if err != nil {
		return nil, nil, err
	}

	return author, &PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages(total, s.perPage),
	}, nil
}

// Get fetches a post by ID, NotFound if absent.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// Create persists a new post authored by userID.
func (s *PostService) Create(ctx context.Context, userID uint, title, content string) (*models.Post, error) {
	if err := validatePostInput(title, content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   title,
		Content: content,
		UserID:  userID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update mutates a post's title and content. NotFound if the post is absent,
// Forbidden if userID is not the author; the post is unchanged either way.
func (s *PostService) Update(ctx context.Context, userID, postID uint, title, content string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if err := validatePostInput(title, content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. NotFound if absent, Forbidden if userID is not the author.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, postID)
}

func validatePostInput(title, content string) error {
	if err := validation.ValidatePostTitle(title); err != nil {
		return models.NewValidationError(err.Error())
	}
	if content == "" {
		return models.NewValidationError("content is required")
	}
	return nil
}

func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}
