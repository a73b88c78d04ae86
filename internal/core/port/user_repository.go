package port

import (
	"context"

	"github.com/karimezz22/Library/internal/core/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Status domain.UserStatus
	Limit  int
	Offset int
}

// UserRepository persists and retrieves user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	SetOnline(ctx context.Context, id string, online bool) error
	Delete(ctx context.Context, id string) error
}
