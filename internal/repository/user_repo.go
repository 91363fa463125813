// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nayuta9382/taskdeck/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id, name, imgPath string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

// Create inserts a new user.
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, password, img_path)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	if user.ImgPath == "" {
		user.ImgPath = "/uploads/default-img.png"
	}

	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Password,
		user.ImgPath,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// GetByID retrieves a user by ID. Returns nil when the user does not exist.
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, password, img_path, created_at, updated_at
		FROM users WHERE id = $1`

	var user models.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Password,
		&user.ImgPath,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update overwrites the mutable profile fields.
func (r *userRepo) Update(ctx context.Context, id, name, imgPath string) error {
	query := `
		UPDATE users SET name = $2, img_path = $3, updated_at = now()
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, name, imgPath)
	return err
}
