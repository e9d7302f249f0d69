//go:build testutil
// +build testutil

package db_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Spok95/student-of-the-year/internal/models"
)

func mustSeedDepartment(t *testing.T, dbx *sql.DB, name string) int64 {
	t.Helper()
	var id int64
	err := dbx.QueryRow(`
		INSERT INTO departments (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustSeedStudent(t *testing.T, dbx *sql.DB, roll, name string, year int, deptID int64) int64 {
	t.Helper()
	var id int64
	err := dbx.QueryRow(`
		INSERT INTO students (roll_number, name, year, department_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, roll, name, year, deptID).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

// mustSeedStudentAt forces a creation time, which the ranking chain uses as
// its final tiebreak.
func mustSeedStudentAt(t *testing.T, dbx *sql.DB, roll, name string, year int, deptID int64, createdAt time.Time) int64 {
	t.Helper()
	var id int64
	err := dbx.QueryRow(`
		INSERT INTO students (roll_number, name, year, department_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, roll, name, year, deptID, createdAt).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func mustSeedEvent(t *testing.T, dbx *sql.DB, title string, category models.Category, participation, winner int) int64 {
	t.Helper()
	var id int64
	err := dbx.QueryRow(`
		INSERT INTO events (title, category, participation_points, winner_points)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, title, string(category), participation, winner).Scan(&id)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func ptrString(v string) *string { return &v }
