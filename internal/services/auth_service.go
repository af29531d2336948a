package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict is returned when a username or email is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidToken covers malformed, expired and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService handles administrator registration, login and logout.
// Every login opens a session in the registry; tokens are only honoured
// while their session is open.
type AuthService struct {
	userRepo  repositories.UserRepository
	sessions  *session.Registry
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessions *session.Registry, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour, // Token valid for 24 hours
		logger:    logger,
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to the database.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, ErrConflict)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return backendError("register user", err)
	}
	return nil
}

// LoginUser authenticates a user, opens a session and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	sess := session.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"sid":      sess.ID,
		"exp":      sess.ExpiresAt.Unix(),
		"iat":      now.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.sessions.Open(sess)
	return tokenString, nil
}

// Logout closes the user's session. Tokens issued for it stop working.
func (s *AuthService) Logout(userID string) bool {
	return s.sessions.Close(userID)
}

// ValidateToken parses a JWT and checks that its session is still open.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation error", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	sid, _ := claims["sid"].(string)
	if _, open := s.sessions.Lookup(userID, sid); !open {
		return nil, fmt.Errorf("%w: session is closed", ErrInvalidToken)
	}
	return claims, nil
}
