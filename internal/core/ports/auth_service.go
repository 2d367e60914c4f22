package ports

import (
	"context"

	"github.com/duveen2546R/FinManager/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	PhoneNo  *string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed token (empty when signing is disabled) and the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
