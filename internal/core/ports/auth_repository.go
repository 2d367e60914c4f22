package ports

import (
	"context"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// UserRepository defines persistence for registered users.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
