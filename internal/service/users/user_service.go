package users

import (
	"context"
	"fmt"
	"time"

	"github.com/nmoskvitin/skyfare/internal/auth"
	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/nmoskvitin/skyfare/internal/repository"
	"github.com/sirupsen/logrus"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error)
	GetPreferences(ctx context.Context, userID int64) (map[string]any, error)
	UpdatePreferences(ctx context.Context, userID int64, patch map[string]any) (map[string]any, error)
}

// Mailer sends account mail; failures are logged, never surfaced.
type Mailer interface {
	SendWelcome(to, name string) error
}

// TokenRevoker remembers logged-out token ids until they expire.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

type LoginResult struct {
	Token string
	User  *domain.User
}

type UserService struct {
	repo    repository.UserRepository
	tokens  *auth.TokenManager
	revoker TokenRevoker
	mailer  Mailer
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, revoker TokenRevoker, mailer Mailer) *UserService {
	return &UserService{repo: repo, tokens: tokens, revoker: revoker, mailer: mailer}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !auth.ValidName(input.Name) {
		return nil, fmt.Errorf("%w: name may only contain letters, digits, underscores and dots", domain.ErrInvalidInput)
	}
	if !auth.ValidPassword(input.Password) {
		return nil, fmt.Errorf("%w: password needs an uppercase letter, a digit and at least 4 characters", domain.ErrInvalidInput)
	}
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Email: input.Email, PasswordHash: hash, Name: input.Name}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
			logrus.WithError(err).WithField("email", user.Email).Warn("send welcome email")
		}
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.ComparePassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, time.Now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if s.revoker == nil {
		return nil
	}
	return s.revoker.RevokeToken(ctx, claims.JTI, time.Until(claims.ExpiresAt))
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile merges the provided fields into the user row; empty values
// keep the stored ones.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, email string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = user.Name
	}
	if email == "" {
		email = user.Email
	}
	return s.repo.UpdateProfile(ctx, userID, name, email)
}

func (s *UserService) GetPreferences(ctx context.Context, userID int64) (map[string]any, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		return map[string]any{}, nil
	}
	return user.Preferences, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID int64, patch map[string]any) (map[string]any, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for k, v := range user.Preferences {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}

	updated, err := s.repo.UpdatePreferences(ctx, userID, merged)
	if err != nil {
		return nil, err
	}
	return updated.Preferences, nil
}

var _ UserUseCase = (*UserService)(nil)
