package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"fishlog/internal/logging"
	"fishlog/internal/metrics"
	"fishlog/internal/models"
	"fishlog/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

var (
	// ErrInvalidCredentials is returned for any failed login, whether or not the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken is returned when provisioning a user whose name already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidRole is returned when provisioning a user with an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidToken is returned when a session token cannot be trusted.
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService handles business logic for authentication.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// CreateUser provisions a new account with a hashed password.
func (s *AuthService) CreateUser(username, password, role string) (*models.User, error) {
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}

	existing, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: hashed, Role: r}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logging.Info().Str("username", username).Str("role", string(r)).Msg("user created")
	return user, nil
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", nil, fmt.Errorf("failed to look up user: %w", err)
		}
		metrics.RecordLogin(false)
		return "", nil, ErrInvalidCredentials
	}

	if !CheckPassword(user.PasswordHash, password) {
		metrics.RecordLogin(false)
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	metrics.RecordLogin(true)
	return token, user, nil
}

// IssueToken signs a session token carrying the user's ID.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": strconv.FormatUint(uint64(user.ID), 10),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses a session token and returns the user ID it carries.
func (s *AuthService) ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed user_id", ErrInvalidToken)
	}
	return uint(id), nil
}

// ResolveSession maps a session token to the user record it belongs to.
func (s *AuthService) ResolveSession(tokenString string) (*models.User, error) {
	id, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, err
	}
	return user, nil
}
