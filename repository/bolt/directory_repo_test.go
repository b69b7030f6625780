package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/internal/infrastructure/localstore"
)

func newStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleUser(id, email string) *domain.User {
	return &domain.User{
		ID:        id,
		Name:      "Sample",
		Email:     email,
		Password:  "secret1",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func TestDirectoryEmpty(t *testing.T) {
	repo := NewDirectoryRepository(newStore(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.FindByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByID(ctx, "u-1")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDirectoryAppendAndRead(t *testing.T) {
	repo := NewDirectoryRepository(newStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, sampleUser("u-1", "a@x.com")))
	require.NoError(t, repo.Append(ctx, sampleUser("u-2", "b@x.com")))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u-1", users[0].ID)
	assert.Equal(t, "u-2", users[1].ID)

	byEmail, err := repo.FindByEmail(ctx, "B@X.com")
	require.NoError(t, err)
	assert.Equal(t, "u-2", byEmail.ID)

	byID, err := repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)
	assert.Equal(t, "secret1", byID.Password, "password round-trips as stored")
}

func TestDirectoryAppendInvalid(t *testing.T) {
	repo := NewDirectoryRepository(newStore(t))
	ctx := context.Background()

	require.ErrorIs(t, repo.Append(ctx, nil), domain.ErrInvalidPayload)
	require.ErrorIs(t, repo.Append(ctx, &domain.User{}), domain.ErrInvalidPayload)
}

func TestDirectorySurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	store, err := localstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, NewDirectoryRepository(store).Append(ctx, sampleUser("u-1", "a@x.com")))
	require.NoError(t, store.Close())

	store, err = localstore.Open(path)
	require.NoError(t, err)
	defer store.Close()

	users, err := NewDirectoryRepository(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u-1", users[0].ID)
}
