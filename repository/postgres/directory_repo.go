package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biofolio/backend/domain"
	"github.com/biofolio/backend/repository"
)

type directoryRepository struct {
	pool *pgxpool.Pool
}

// NewDirectoryRepository instantiates a Postgres-backed user directory.
func NewDirectoryRepository(pool *pgxpool.Pool) repository.DirectoryRepository {
	return &directoryRepository{pool: pool}
}

func (r *directoryRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT id, name, email, password, bio, role, created_at
		FROM users
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Bio, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *directoryRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, name, email, password, bio, role, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *directoryRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT id, name, email, password, bio, role, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *directoryRepository) Append(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
		INSERT INTO users (id, name, email, password, bio, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.Bio,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *directoryRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Bio, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
