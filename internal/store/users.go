package store

import (
	"context"
	"database/sql"
	"errors"

	"bookwish/internal/domain"
)

func (db *DB) CreateUser(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, password_hash, group_name, created_at)
		VALUES (:username, :password_hash, :group_name, :created_at)`

	_, err := db.NamedExecContext(ctx, query, u)
	return err
}

func (db *DB) GetUser(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password_hash, group_name, created_at FROM users WHERE username = ?`

	u := &domain.User{}
	err := db.GetContext(ctx, u, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

// DeleteUser removes the user; request rows cascade with it.
func (db *DB) DeleteUser(ctx context.Context, username string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	return err
}
