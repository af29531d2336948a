package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"vendicraft/internal/models"
	"vendicraft/internal/services"
	"vendicraft/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, session.NewRegistry(), testJWTSecret, nil)

	user := &models.User{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	}

	mockRepo.On("GetByUsername", user.Username).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(ctx, user)
	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")), "password is stored hashed")
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", user.Username).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(ctx, user)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")

	// Email already registered
	mockRepo.On("GetByUsername", user.Username).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(&models.User{ID: "1"}, nil).Once()
	err = authService.RegisterUser(ctx, user)
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.Contains(t, err.Error(), "email 'test@example.com' already registered")

	// Database failure
	mockRepo.On("GetByUsername", user.Username).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("GetByEmail", user.Email).Return(nil, fmt.Errorf("not found")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(fmt.Errorf("disk full")).Once()
	err = authService.RegisterUser(ctx, user)
	assert.ErrorIs(t, err, services.ErrOperationFailed)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginValidateLogout(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	registry := session.NewRegistry()
	authService := services.NewAuthService(mockRepo, registry, testJWTSecret, nil)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	var events []session.Event
	sub := registry.Subscribe(func(e session.Event) { events = append(events, e) })
	defer sub.Close()

	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "testuser", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Username, claims["username"])
	assert.NotEmpty(t, claims["sid"])

	require.Len(t, events, 1)
	assert.Equal(t, session.SignedIn, events[0].Kind)
	assert.Equal(t, "user-123", events[0].Session.UserID)

	assert.True(t, authService.Logout(user.ID))
	_, err = authService.ValidateToken(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
	assert.Equal(t, session.SignedOut, events[len(events)-1].Kind)

	// Wrong password
	mockRepo.On("GetByUsername", user.Username).Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Unknown user gets the same answer
	mockRepo.On("GetByUsername", "nobody").Return(nil, fmt.Errorf("user with username nobody not found")).Once()
	_, err = authService.LoginUser(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Rejections(t *testing.T) {
	registry := session.NewRegistry()
	authService := services.NewAuthService(new(MockUserRepository), registry, testJWTSecret, nil)
	registry.Open(session.Session{ID: "sid-1", UserID: "user-123"})

	sign := func(secret string, exp time.Time, sid string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "user-123",
			"sid":     sid,
			"exp":     exp.Unix(),
		})
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	_, err := authService.ValidateToken(sign(testJWTSecret, time.Now().Add(time.Hour), "sid-1"))
	assert.NoError(t, err)

	cases := map[string]string{
		"garbage":       "invalid.token.string",
		"wrong secret":  sign("other", time.Now().Add(time.Hour), "sid-1"),
		"expired":       sign(testJWTSecret, time.Now().Add(-time.Hour), "sid-1"),
		"stale session": sign(testJWTSecret, time.Now().Add(time.Hour), "sid-0"),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := authService.ValidateToken(token)
			assert.ErrorIs(t, err, services.ErrInvalidToken)
		})
	}
}
