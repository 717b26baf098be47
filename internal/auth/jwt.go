package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mantonx/cinelog/internal/config"
	"github.com/mantonx/cinelog/internal/database"
)

// Claims carries the authenticated user's identity inside a token.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates bearer tokens (HMAC-SHA256).
type TokenManager struct {
	secret  []byte
	timeout time.Duration
}

// NewTokenManager creates a token manager from the auth configuration.
// The JWT secret is mandatory; tokens signed with a guessable secret are
// forgeable.
func NewTokenManager(cfg *config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("CINELOG_JWT_SECRET is required but was empty")
	}

	return &TokenManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.TokenExpiration,
	}, nil
}

// GenerateToken creates a signed token for the user, valid for the configured
// expiration window.
func (m *TokenManager) GenerateToken(user *database.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.timeout)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// ValidateToken checks the signature and expiry of a token and returns its
// claims.
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// Global token manager, initialized once at startup from configuration.

var defaultManager *TokenManager

// Initialize sets up the global token manager from the loaded configuration.
func Initialize() error {
	manager, err := NewTokenManager(&config.Get().Auth)
	if err != nil {
		return err
	}
	defaultManager = manager
	return nil
}

// GetTokenManager returns the global token manager instance.
func GetTokenManager() *TokenManager {
	return defaultManager
}
