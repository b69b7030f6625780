package repository

import (
	"context"

	"github.com/biofolio/backend/domain"
)

// DirectoryRepository holds the full set of registered users. The directory is
// append-only; the only read shapes are a full listing and an email lookup.
type DirectoryRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Append(ctx context.Context, user *domain.User) error
}
