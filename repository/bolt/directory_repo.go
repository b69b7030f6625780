package bolt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/internal/infrastructure/localstore"
	"github.com/biofolio/backend/repository"
)

// KeyDirectory is the persisted key holding the serialized user list.
const KeyDirectory = "directory"

type directoryRepository struct {
	store *localstore.Store
}

// NewDirectoryRepository instantiates a Bolt-backed user directory. The whole
// directory lives under a single key as a JSON list, matching the persisted
// blob format described in the data model.
func NewDirectoryRepository(store *localstore.Store) repository.DirectoryRepository {
	return &directoryRepository{store: store}
}

func (r *directoryRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load()
}

func (r *directoryRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *directoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *directoryRepository) Append(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	users, err := r.load()
	if err != nil {
		return err
	}
	users = append(users, *user)

	payload, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.store.Put(localstore.BucketApp, KeyDirectory, payload)
}

func (r *directoryRepository) load() ([]domain.User, error) {
	raw, err := r.store.Get(localstore.BucketApp, KeyDirectory)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "corrupt directory blob", err)
	}
	return users, nil
}
