package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// FieldErrors maps form field names to validation messages for re-rendering.
type FieldErrors map[string]string

// ErrInvalidCredentials is the single message surfaced for any login failure,
// so responses never reveal whether the email exists.
var ErrInvalidCredentials = models.NewUnauthorizedError("Invalid email or password")

// RegisterInput carries a registration form submission.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// UpdateAccountInput carries an account form submission. Picture is the raw
// uploaded image, empty when the user did not choose a new avatar.
type UpdateAccountInput struct {
	UserID      uint
	Username    string
	Email       string
	Picture     []byte
	PictureName string
}

// AccountService implements registration, authentication and profile updates.
type AccountService struct {
	userRepo repository.UserRepository
	avatars  *AvatarService
}

// NewAccountService creates an AccountService.
func NewAccountService(userRepo repository.UserRepository, avatars *AvatarService) *AccountService {
	return &AccountService{userRepo: userRepo, avatars: avatars}
}

// Register validates the input and creates a new user with a bcrypt-hashed
// password. Validation problems come back as FieldErrors and leave the store
// unchanged; the error return is reserved for infrastructure failures.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, FieldErrors, error) {
	errs := FieldErrors{}

	if err := validation.ValidateUsername(in.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		errs["password"] = err.Error()
	}
	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "passwords do not match"
	}

	if len(errs) == 0 {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			errs["username"] = "that username is taken"
		}

		existing, err = s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			errs["email"] = "that email is already registered"
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashedPassword),
		ImageFile: models.DefaultAvatar,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	return user, nil, nil
}

// Authenticate looks up the user by email and compares the password hash.
// Both a missing user and a wrong password return ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpdateAccount applies username/email changes and, when a picture was
// uploaded, replaces the stored avatar. The new image is written to disk
// before the user record is mutated; the old file is removed only after the
// record commit so a failed write never strands the record.
func (s *AccountService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.User, FieldErrors, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, nil, err
	}

	errs := FieldErrors{}
	if err := validation.ValidateUsername(in.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		errs["email"] = err.Error()
	}

	if len(errs) == 0 {
		if in.Username != user.Username {
			existing, err := s.userRepo.GetByUsername(ctx, in.Username)
			if err != nil {
				return nil, nil, err
			}
			if existing != nil && existing.ID != user.ID {
				errs["username"] = "that username is taken"
			}
		}
		if in.Email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, in.Email)
			if err != nil {
				return nil, nil, err
			}
			if existing != nil && existing.ID != user.ID {
				errs["email"] = "that email is already registered"
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	oldAvatar := user.ImageFile
	newAvatar := ""
	if len(in.Picture) > 0 {
		filename, err := s.avatars.Save(in.Picture, in.PictureName)
		if err != nil {
			if models.ErrorCode(err) == "VALIDATION_ERROR" {
				errs["picture"] = err.Error()
				return nil, errs, nil
			}
			return nil, nil, err
		}
		newAvatar = filename
		user.ImageFile = filename
	}

	user.Username = in.Username
	user.Email = in.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		// The record kept its old avatar, so drop the file we just wrote.
		if newAvatar != "" {
			_ = s.avatars.Remove(newAvatar)
		}
		return nil, nil, err
	}

	if newAvatar != "" && oldAvatar != newAvatar {
		_ = s.avatars.Remove(oldAvatar)
	}

	return user, nil, nil
}
