package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/chatrelay/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// UserLookup resolves the user a token is issued for.
type UserLookup interface {
	GetUser(id int64) (models.User, error)
}

// AuthService issues and verifies the HS256 tokens that bind a connection to
// a user.
type AuthService struct {
	Users  UserLookup
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(users UserLookup, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		Users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueToken creates a JWT for an existing user.
func (s *AuthService) IssueToken(userID int64) (string, time.Time, models.User, error) {
	user, err := s.Users.GetUser(userID)
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}

	expiresAt := s.now().Add(s.ttl)
	token, err := s.GenerateJWT(user.ID, user.Username, expiresAt)
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}
	return token, expiresAt, user, nil
}

// GenerateJWT creates a JWT token for authentication
func (s *AuthService) GenerateJWT(userID int64, username string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"user_id":  userID,
		"exp":      expiresAt.Unix(),
	})
	return token.SignedString(s.secret)
}

// ParseToken validates a token and returns the user id it was issued for.
func (s *AuthService) ParseToken(tokenStr string) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// JWT numbers are decoded as float64
	raw, ok := claims["user_id"].(float64)
	if !ok || raw <= 0 {
		return 0, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	return int64(raw), nil
}
