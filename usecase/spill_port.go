package usecase

import (
	"context"

	"github.com/biofolio/backend/domain"
)

// RegistrationSpill abstracts the spillover queue so use cases stay storage-agnostic.
type RegistrationSpill interface {
	SpillRegistration(ctx context.Context, user *domain.User) error
}
