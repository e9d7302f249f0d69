package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/student-of-the-year/internal/models"
)

func ListDepartments(ctx context.Context, database *sql.DB) ([]models.Department, error) {
	rows, err := database.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func GetDepartment(ctx context.Context, database dbtx, id int64) (*models.Department, error) {
	var d models.Department
	err := database.QueryRowContext(ctx,
		`SELECT id, name FROM departments WHERE id = $1`, id).Scan(&d.ID, &d.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func CreateDepartment(ctx context.Context, database *sql.DB, name string) (*models.Department, error) {
	var d models.Department
	d.Name = name
	err := database.QueryRowContext(ctx,
		`INSERT INTO departments (name) VALUES ($1) RETURNING id`, name).Scan(&d.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("department %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func UpdateDepartment(ctx context.Context, database *sql.DB, id int64, name string) (*models.Department, error) {
	res, err := database.ExecContext(ctx,
		`UPDATE departments SET name = $1 WHERE id = $2`, name, id)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("department %q: %w", name, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	return &models.Department{ID: id, Name: name}, nil
}

func DeleteDepartment(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("department %d: %w", id, ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique constraint error
// (SQLSTATE 23505), from either the pgx or pq driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}
