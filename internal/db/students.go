package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

func ListStudents(ctx context.Context, database *sql.DB) ([]models.Student, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, roll_number, name, year, department_id, created_at
FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Student
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Year, &s.DepartmentID, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func GetStudent(ctx context.Context, database *sql.DB, id int64) (*models.Student, error) {
	return scanStudent(database.QueryRowContext(ctx, `
SELECT id, roll_number, name, year, department_id, created_at
FROM students WHERE id = $1`, id), fmt.Sprintf("student %d", id))
}

// GetStudentByRoll looks a student up by the college roll number, used when a
// caller passes an identifier that is not a database id.
func GetStudentByRoll(ctx context.Context, database *sql.DB, roll string) (*models.Student, error) {
	return scanStudent(database.QueryRowContext(ctx, `
SELECT id, roll_number, name, year, department_id, created_at
FROM students WHERE roll_number = $1`, roll), fmt.Sprintf("student %q", roll))
}

func scanStudent(row *sql.Row, label string) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Year, &s.DepartmentID, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", label, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func CreateStudent(ctx context.Context, database *sql.DB, s models.Student) (*models.Student, error) {
	if _, err := GetDepartment(ctx, database, s.DepartmentID); err != nil {
		return nil, err
	}
	err := database.QueryRowContext(ctx, `
INSERT INTO students (roll_number, name, year, department_id)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`,
		s.RollNumber, s.Name, s.Year, s.DepartmentID).Scan(&s.ID, &s.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("roll number %q: %w", s.RollNumber, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func UpdateStudent(ctx context.Context, database *sql.DB, s models.Student) (*models.Student, error) {
	if _, err := GetDepartment(ctx, database, s.DepartmentID); err != nil {
		return nil, err
	}
	err := database.QueryRowContext(ctx, `
UPDATE students SET roll_number = $1, name = $2, year = $3, department_id = $4
WHERE id = $5
RETURNING created_at`,
		s.RollNumber, s.Name, s.Year, s.DepartmentID, s.ID).Scan(&s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", s.ID, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("roll number %q: %w", s.RollNumber, ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteStudent removes the student; ledger, totals and notification rows go
// with it via FK cascade. Snapshot rows stay, they are historical copies.
func DeleteStudent(ctx context.Context, database *sql.DB, id int64) error {
	res, err := database.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return nil
}
