package ports

import (
	"context"
	"errors"

	"github.com/devlog/devlog/internal/domain"
)

var (
	ErrLogNotFound  = errors.New("log not found")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// LogRepository is the log record store
type LogRepository interface {
	Create(ctx context.Context, log *domain.Log) error
	FindByID(ctx context.Context, id string) (*domain.Log, error)
	// ListByOwner returns the owner's logs, most recent first.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Log, error)
	// ListAll returns every log annotated with the owner's display
	// name, most recent first; the caller applies the filter predicate.
	ListAll(ctx context.Context) ([]*domain.LogWithOwner, error)
	Update(ctx context.Context, log *domain.Log) error
	// DeleteByOwner removes the log only when it belongs to ownerID;
	// a miss on either condition reports ErrLogNotFound.
	DeleteByOwner(ctx context.Context, id, ownerID string) error
}

// UserRepository is the account store
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
