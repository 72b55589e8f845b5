package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/google/uuid"
)

type AuthService struct {
	repo     domain.UserRepository
	tokens   *TokenService
	sessions *SessionRegistry
}

func NewAuthService(repo domain.UserRepository, tokens *TokenService, sessions *SessionRegistry) *AuthService {
	return &AuthService{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	id := uuid.NewString()
	user, err := domain.NewUser(id, input.Email)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials, issues a token and opens the user's session.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to load user: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.sessions.Open(user.ID)

	return &LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) Logout(userID string) {
	s.sessions.Close(userID)
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}
