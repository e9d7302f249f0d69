package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

func CreateUser(ctx context.Context, database *sql.DB, u models.User) (*models.User, error) {
	err := database.QueryRowContext(ctx, `
INSERT INTO users (username, password_hash, role, student_id)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		u.Username, u.PasswordHash, u.Role, u.StudentID).Scan(&u.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("username %q: %w", u.Username, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByUsername(ctx context.Context, database *sql.DB, username string) (*models.User, error) {
	var u models.User
	err := database.QueryRowContext(ctx, `
SELECT id, username, password_hash, role, student_id
FROM users WHERE username = $1`, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.StudentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserRole(ctx context.Context, database *sql.DB, id int64) (models.Role, error) {
	var role models.Role
	err := database.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return role, err
}
