package users

import (
	"context"
	"testing"
	"time"

	"github.com/nmoskvitin/skyfare/internal/auth"
	"github.com/nmoskvitin/skyfare/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) (*domain.User, error) {
	args := m.Called(ctx, id, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, id int64, prefs map[string]any) (*domain.User, error) {
	args := m.Called(ctx, id, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	args := m.Called(ctx, jti, ttl)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(to, name string) error {
	args := m.Called(to, name)
	return args.Error(0)
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", 24*time.Hour)
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &MockUserRepository{}
	mockMailer := &MockMailer{}
	service := NewUserService(mockRepo, newTestTokens(), nil, mockMailer)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*domain.User)
			u.ID = 1
		}).
		Return(nil).Once()
	mockMailer.On("SendWelcome", "john@example.com", "john_doe").Return(nil).Once()

	user, err := service.Register(ctx, RegisterInput{
		Email:    "john@example.com",
		Password: "Secret1",
		Name:     "john_doe",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "Secret1", user.PasswordHash)

	mockRepo.AssertExpectations(t)
	mockMailer.AssertExpectations(t)
}

func TestUserService_Register_NameWithSpace(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "john@example.com",
		Password: "Secret1",
		Name:     "john doe",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestUserService_Register_WeakPassword(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	user, err := service.Register(context.Background(), RegisterInput{
		Email:    "john@example.com",
		Password: "secret",
		Name:     "john_doe",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(domain.ErrEmailTaken).Once()

	user, err := service.Register(ctx, RegisterInput{
		Email:    "john@example.com",
		Password: "Secret1",
		Name:     "john_doe",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserService_Register_EmailFailureIgnored(t *testing.T) {
	mockRepo := &MockUserRepository{}
	mockMailer := &MockMailer{}
	service := NewUserService(mockRepo, newTestTokens(), nil, mockMailer)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()
	mockMailer.On("SendWelcome", "john@example.com", "john_doe").Return(assert.AnError).Once()

	user, err := service.Register(ctx, RegisterInput{
		Email:    "john@example.com",
		Password: "Secret1",
		Name:     "john_doe",
	})

	assert.NoError(t, err)
	assert.NotNil(t, user)
}

func TestUserService_Login_Success(t *testing.T) {
	mockRepo := &MockUserRepository{}
	tokens := newTestTokens()
	service := NewUserService(mockRepo, tokens, nil, nil)

	hash, err := auth.HashPassword("Secret1")
	assert.NoError(t, err)

	ctx := context.Background()
	user := &domain.User{ID: 42, Email: "john@example.com", PasswordHash: hash}
	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(user, nil).Once()

	result, err := service.Login(ctx, "john@example.com", "Secret1")

	assert.NoError(t, err)
	assert.Equal(t, user, result.User)

	claims, err := tokens.Parse(result.Token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, time.Minute)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	hash, err := auth.HashPassword("Secret1")
	assert.NoError(t, err)

	ctx := context.Background()
	user := &domain.User{ID: 42, Email: "john@example.com", PasswordHash: hash}
	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(user, nil).Once()

	result, err := service.Login(ctx, "john@example.com", "Wrong1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrNotFound).Once()

	result, err := service.Login(ctx, "nobody@example.com", "Secret1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserService_Logout_RevokesToken(t *testing.T) {
	mockRevoker := &MockRevoker{}
	tokens := newTestTokens()
	service := NewUserService(&MockUserRepository{}, tokens, mockRevoker, nil)

	token, err := tokens.Issue(42, time.Now())
	assert.NoError(t, err)

	ctx := context.Background()
	mockRevoker.On("RevokeToken", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil).Once()

	err = service.Logout(ctx, token)

	assert.NoError(t, err)
	mockRevoker.AssertExpectations(t)
}

func TestUserService_Logout_InvalidToken(t *testing.T) {
	service := NewUserService(&MockUserRepository{}, newTestTokens(), &MockRevoker{}, nil)

	err := service.Logout(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUserService_UpdateProfile_KeepsEmptyFields(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	ctx := context.Background()
	current := &domain.User{ID: 42, Name: "john_doe", Email: "john@example.com"}
	updated := &domain.User{ID: 42, Name: "jane_doe", Email: "john@example.com"}

	mockRepo.On("GetByID", ctx, int64(42)).Return(current, nil).Once()
	mockRepo.On("UpdateProfile", ctx, int64(42), "jane_doe", "john@example.com").Return(updated, nil).Once()

	result, err := service.UpdateProfile(ctx, 42, "jane_doe", "")

	assert.NoError(t, err)
	assert.Equal(t, updated, result)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdatePreferences_Merges(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	ctx := context.Background()
	current := &domain.User{ID: 42, Preferences: map[string]any{"seat": "aisle", "meal": "vegan"}}
	merged := map[string]any{"seat": "window", "meal": "vegan"}
	updated := &domain.User{ID: 42, Preferences: merged}

	mockRepo.On("GetByID", ctx, int64(42)).Return(current, nil).Once()
	mockRepo.On("UpdatePreferences", ctx, int64(42), merged).Return(updated, nil).Once()

	result, err := service.UpdatePreferences(ctx, 42, map[string]any{"seat": "window"})

	assert.NoError(t, err)
	assert.Equal(t, merged, result)
}

func TestUserService_GetPreferences_NilDefaultsToEmpty(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, newTestTokens(), nil, nil)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, int64(42)).Return(&domain.User{ID: 42}, nil).Once()

	prefs, err := service.GetPreferences(ctx, 42)

	assert.NoError(t, err)
	assert.Equal(t, map[string]any{}, prefs)
}
