package ports

import (
	"context"
	"time"

	"github.com/devlog/devlog/internal/domain"
)

// TokenClaims is the identity carried inside an access token
type TokenClaims struct {
	UserID string
	Name   string
	Email  string
	Role   domain.Role
}

// TokenService issues and verifies bearer credentials
type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and verifies user passwords
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) (bool, error)
}

// RateLimiter throttles repeated attempts on a key
type RateLimiter interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) error
	Block(ctx context.Context, key string, duration time.Duration) error
	IsBlocked(ctx context.Context, key string) (bool, error)
}
