package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns the user with the given email or ErrNotFound.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(ctx,
		`SELECT email, name, photo, role, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.Email, &u.Name, &u.Photo, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Create inserts a user. An existing row for the email is left untouched and
// reported as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (model.InsertResult, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO users (email, name, photo, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING`,
		u.Email, u.Name, u.Photo, u.Role, u.CreatedAt,
	)
	if err != nil {
		return model.InsertResult{}, fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.InsertResult{}, ErrDuplicate
	}
	return model.InsertResult{Acknowledged: true, InsertedID: u.Email}, nil
}
