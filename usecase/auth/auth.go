package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/repository"
	"github.com/biofolio/backend/usecase"
)

// Options controls the simulated latency applied before login and register
// resolve. Zero values fall back to the defaults the demo uses.
type Options struct {
	LoginDelay    time.Duration
	RegisterDelay time.Duration
}

const (
	defaultLoginDelay    = 800 * time.Millisecond
	defaultRegisterDelay = time.Second
)

// RegisterInput carries the fields collected by the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Bio      string
}

// UseCase owns the user directory and the current session. All mutation is
// funneled through its methods; the session mutates under a single lock so
// concurrent requests observe a consistent directory/session pair.
type UseCase struct {
	directory repository.DirectoryRepository
	sessions  repository.SessionRepository
	spill     usecase.RegistrationSpill
	logger    *zap.Logger
	opts      Options

	mu      sync.Mutex
	current *domain.Session
	loading bool
}

func New(directory repository.DirectoryRepository, sessions repository.SessionRepository, spill usecase.RegistrationSpill, logger *zap.Logger, opts Options) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.LoginDelay < 0 {
		opts.LoginDelay = 0
	} else if opts.LoginDelay == 0 {
		opts.LoginDelay = defaultLoginDelay
	}
	if opts.RegisterDelay < 0 {
		opts.RegisterDelay = 0
	} else if opts.RegisterDelay == 0 {
		opts.RegisterDelay = defaultRegisterDelay
	}

	uc := &UseCase{
		directory: directory,
		sessions:  sessions,
		spill:     spill,
		logger:    logger,
		opts:      opts,
	}
	uc.rehydrate()
	return uc
}

// rehydrate restores the persisted session at startup. A missing or unreadable
// session simply means nobody is logged in.
func (uc *UseCase) rehydrate() {
	uc.mu.Lock()
	uc.loading = true
	uc.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := uc.sessions.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			uc.logger.Warn("session rehydration failed", zap.Error(err))
		}
		session = nil
	}

	uc.mu.Lock()
	uc.current = session
	uc.loading = false
	uc.mu.Unlock()
}

// Loading reports whether the initial session rehydration is still running.
func (uc *UseCase) Loading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.loading
}

// Login scans the directory for an exact email and password match. On a match
// the user becomes the current session; otherwise the session is left
// unchanged and domain.ErrInvalidCredentials is returned.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := uc.wait(ctx, uc.opts.LoginDelay); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	user, err := uc.directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	// Plain-text comparison, same as the demo this service models.
	if user.Password != password {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.setSession(ctx, user.ID); err != nil {
		return nil, err
	}
	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, nil
}

// Register appends a new user to the directory and makes it the current
// session. It fails with domain.ErrEmailTaken when the email is already
// present; the directory is left unchanged in that case.
func (uc *UseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := uc.wait(ctx, uc.opts.RegisterDelay); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, err := uc.directory.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  input.Password,
		Bio:       input.Bio,
		Role:      domain.RoleUser,
		CreatedAt: time.Now(),
	}

	if err := uc.directory.Append(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		if uc.spill == nil {
			return nil, err
		}
		if spillErr := uc.spill.SpillRegistration(ctx, user); spillErr != nil {
			uc.logger.Error("failed to spill registration", zap.Error(spillErr))
			return nil, err
		}
		uc.logger.Warn("registration spilled due to directory error", zap.Error(err))
	}

	if err := uc.setSession(ctx, user.ID); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Logout clears the current session. The directory is untouched and logging
// out without a session is not an error.
func (uc *UseCase) Logout(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.sessions.Clear(ctx); err != nil {
		return err
	}
	uc.current = nil
	return nil
}

// Current returns the active session, if any.
func (uc *UseCase) Current() *domain.Session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.current
}

// CurrentUser resolves the active session to its user record.
func (uc *UseCase) CurrentUser(ctx context.Context) (*domain.User, error) {
	session := uc.Current()
	if !session.IsActive() {
		return nil, domain.ErrSessionNotFound
	}
	return uc.directory.GetByID(ctx, session.UserID)
}

// Users lists the full directory for the dashboard.
func (uc *UseCase) Users(ctx context.Context) ([]domain.User, error) {
	return uc.directory.List(ctx)
}

// setSession must be called with uc.mu held.
func (uc *UseCase) setSession(ctx context.Context, userID string) error {
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return err
	}
	uc.current = session
	return nil
}

func (uc *UseCase) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
