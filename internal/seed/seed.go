// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	MaxDays     int
}

// Seeder builds fake users and posts and persists them.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

// NewSeeder creates a Seeder with sane defaults filled in.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 40
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db, opts: opts}
}

// Run seeds the database according to the configured options.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.createUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.createPosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	return nil
}

// ClearAll removes all seeded rows. Posts go first to satisfy the user FK.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	// All seeded users share one password so the hash is computed once.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	seen := map[string]bool{}
	for len(users) < n {
		username := strings.ToLower(gofakeit.Username())
		if len(username) > 20 {
			username = username[:20]
		}
		if seen[username] || len(username) < 3 {
			continue
		}
		seen[username] = true

		user := &models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:  string(hashed),
			ImageFile: models.DefaultAvatar,
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author posts")
	}

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]

		title := gofakeit.Sentence(5)
		if len(title) > 100 {
			title = title[:100]
		}

		post := &models.Post{
			Title:   strings.TrimSuffix(title, "."),
			Content: gofakeit.Paragraph(2, 4, 8, "\n\n"),
			UserID:  author.ID,
		}
		// realistic created_at spread
		daysAgo := rand.Intn(s.opts.MaxDays)
		post.CreatedAt = time.Now().AddDate(0, 0, -daysAgo).
			Add(-time.Duration(rand.Intn(24)) * time.Hour)

		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
