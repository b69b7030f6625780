package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofolio/backend/domain"
)

// noDelay disables the simulated latency so tests run instantly.
var noDelay = Options{LoginDelay: -1, RegisterDelay: -1}

type fakeDirectory struct {
	users     []domain.User
	appendErr error
}

func (f *fakeDirectory) List(context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeDirectory) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range f.users {
		if strings.EqualFold(f.users[i].Email, email) {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeDirectory) Append(_ context.Context, user *domain.User) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.users = append(f.users, *user)
	return nil
}

type fakeSessions struct {
	session *domain.Session
	saveErr error
}

func (f *fakeSessions) Get(context.Context) (*domain.Session, error) {
	if f.session == nil {
		return nil, domain.ErrSessionNotFound
	}
	s := *f.session
	return &s, nil
}

func (f *fakeSessions) Save(_ context.Context, session *domain.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	s := *session
	f.session = &s
	return nil
}

func (f *fakeSessions) Clear(context.Context) error {
	f.session = nil
	return nil
}

type fakeSpill struct {
	spilled []domain.User
	err     error
}

func (f *fakeSpill) SpillRegistration(_ context.Context, user *domain.User) error {
	if f.err != nil {
		return f.err
	}
	f.spilled = append(f.spilled, *user)
	return nil
}

func seededDirectory() *fakeDirectory {
	return &fakeDirectory{users: []domain.User{
		{ID: "u-1", Name: "Alice", Email: "a@x.com", Password: "secret1", Role: domain.RoleUser},
	}}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "matching pair succeeds", email: "a@x.com", password: "secret1"},
		{name: "email case is ignored", email: "A@X.COM", password: "secret1"},
		{name: "wrong password", email: "a@x.com", password: "wrong", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@x.com", password: "secret1", wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := seededDirectory()
			sessions := &fakeSessions{}
			uc := New(directory, sessions, nil, nil, noDelay)

			user, err := uc.Login(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, uc.Current(), "session must stay unchanged on failure")
				assert.Nil(t, sessions.session)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, "u-1", user.ID)
			require.NotNil(t, uc.Current())
			assert.Equal(t, "u-1", uc.Current().UserID)
			require.NotNil(t, sessions.session, "session must be persisted")
			assert.Equal(t, uc.Current().ID, sessions.session.ID)
		})
	}
}

func TestLoginLeavesExistingSession(t *testing.T) {
	directory := seededDirectory()
	sessions := &fakeSessions{session: &domain.Session{ID: "s-1", UserID: "u-1"}}
	uc := New(directory, sessions, nil, nil, noDelay)

	_, err := uc.Login(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NotNil(t, uc.Current())
	assert.Equal(t, "s-1", uc.Current().ID)
}

func TestRegister(t *testing.T) {
	directory := seededDirectory()
	sessions := &fakeSessions{}
	uc := New(directory, sessions, nil, nil, noDelay)

	user, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "b@x.com",
		Password: "secret2",
		Bio:      "likes fishing",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	require.Len(t, directory.users, 2, "exactly one record appended")
	assert.Equal(t, "b@x.com", directory.users[1].Email)

	require.NotNil(t, uc.Current())
	assert.Equal(t, user.ID, uc.Current().UserID)
	require.NotNil(t, sessions.session)
}

func TestRegisterEmailTaken(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "exact email", email: "a@x.com"},
		{name: "different case", email: "A@x.Com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directory := seededDirectory()
			sessions := &fakeSessions{}
			uc := New(directory, sessions, nil, nil, noDelay)

			_, err := uc.Register(context.Background(), RegisterInput{
				Name:     "Impostor",
				Email:    tt.email,
				Password: "secret9",
			})
			require.ErrorIs(t, err, domain.ErrEmailTaken)
			assert.Len(t, directory.users, 1, "directory must stay unchanged")
			assert.Nil(t, uc.Current())
		})
	}
}

func TestRegisterSpillsOnDirectoryFailure(t *testing.T) {
	directory := seededDirectory()
	directory.appendErr = errors.New("connection refused")
	sessions := &fakeSessions{}
	spill := &fakeSpill{}
	uc := New(directory, sessions, spill, nil, noDelay)

	user, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "b@x.com",
		Password: "secret2",
	})
	require.NoError(t, err)

	require.Len(t, spill.spilled, 1)
	assert.Equal(t, user.ID, spill.spilled[0].ID)
	require.NotNil(t, uc.Current())
	assert.Equal(t, user.ID, uc.Current().UserID)
}

func TestRegisterFailsWithoutSpill(t *testing.T) {
	directory := seededDirectory()
	directory.appendErr = errors.New("connection refused")
	uc := New(directory, &fakeSessions{}, nil, nil, noDelay)

	_, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "b@x.com",
		Password: "secret2",
	})
	require.Error(t, err)
	assert.Nil(t, uc.Current())
}

func TestLogout(t *testing.T) {
	directory := seededDirectory()
	sessions := &fakeSessions{session: &domain.Session{ID: "s-1", UserID: "u-1"}}
	uc := New(directory, sessions, nil, nil, noDelay)
	require.NotNil(t, uc.Current(), "session rehydrated at startup")

	require.NoError(t, uc.Logout(context.Background()))
	assert.Nil(t, uc.Current())
	assert.Nil(t, sessions.session)
	assert.Len(t, directory.users, 1, "directory unaffected by logout")

	// Logging out again is not an error.
	require.NoError(t, uc.Logout(context.Background()))
}

func TestRehydrate(t *testing.T) {
	sessions := &fakeSessions{session: &domain.Session{ID: "s-9", UserID: "u-1"}}
	uc := New(seededDirectory(), sessions, nil, nil, noDelay)

	require.NotNil(t, uc.Current())
	assert.Equal(t, "s-9", uc.Current().ID)
	assert.False(t, uc.Loading())

	user, err := uc.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	uc := New(seededDirectory(), &fakeSessions{}, nil, nil, noDelay)

	_, err := uc.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestUsers(t *testing.T) {
	uc := New(seededDirectory(), &fakeSessions{}, nil, nil, noDelay)

	users, err := uc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)
}

func TestDelayRespectsContextCancellation(t *testing.T) {
	uc := New(seededDirectory(), &fakeSessions{}, nil, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Login(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, uc.Current())
}
