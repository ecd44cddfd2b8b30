package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackwise/api/models"
)

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new user into the database.
func (s *UserStore) CreateUser(ctx context.Context, userID string, secretCode []byte) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (user_id, secret_code)
		VALUES ($1, $2)
		RETURNING id, user_id, created_at;
	`
	err := s.db.QueryRowContext(ctx, query, userID, secretCode).Scan(
		&user.ID,
		&user.UserID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UserCredentials looks up the internal key and stored secret code for a
// public user id.
func (s *UserStore) UserCredentials(ctx context.Context, userID string) (int, []byte, error) {
	var id int
	var secretCode []byte
	query := `
		SELECT id, secret_code
		FROM users
		WHERE user_id = $1;
	`
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&id, &secretCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil, ErrNotFound
		}
		return 0, nil, fmt.Errorf("failed to get user credentials: %w", err)
	}

	return id, secretCode, nil
}
