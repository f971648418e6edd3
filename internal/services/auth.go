package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/restcatalog/apiserver/internal/auth"
	"github.com/restcatalog/apiserver/internal/store"
	"github.com/restcatalog/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
}

// AuthService handles registration and login.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewAuthService(repo UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// Register creates a new USER-role account. Validation runs before any
// persistence, so no partial record is ever stored. The pre-checks give
// precise conflict messages; the store's uniqueness constraints close the
// race two concurrent registrations would otherwise win together.
func (s *AuthService) Register(ctx context.Context, username, password, email string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return ErrInvalidRegistration
	}

	if exists, err := s.repo.ExistsByEmail(ctx, email); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("user with email %s is already registered: %w", email, store.ErrEmailExists)
	}

	if exists, err := s.repo.ExistsByUsername(ctx, username); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("user with username %s is already registered: %w", username, store.ErrUsernameExists)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.repo.Create(ctx, types.User{
		Username:     username,
		Email:        email,
		Role:         types.RoleUser,
		PasswordHash: hashed,
	})
	return err
}

// Login verifies the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// Users returns all registered users.
func (s *AuthService) Users(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// UserByID returns a single user by identifier.
func (s *AuthService) UserByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}
