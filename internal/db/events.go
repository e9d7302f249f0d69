package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

func ListEvents(ctx context.Context, database *sql.DB) ([]models.Event, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, title, category, event_date, participation_points, winner_points, description
FROM events ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Date,
			&e.ParticipationPoints, &e.WinnerPoints, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func GetEvent(ctx context.Context, database *sql.DB, id int64) (*models.Event, error) {
	var e models.Event
	err := database.QueryRowContext(ctx, `
SELECT id, title, category, event_date, participation_points, winner_points, description
FROM events WHERE id = $1`, id).Scan(&e.ID, &e.Title, &e.Category, &e.Date,
		&e.ParticipationPoints, &e.WinnerPoints, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func CreateEvent(ctx context.Context, database *sql.DB, e models.Event) (*models.Event, error) {
	err := database.QueryRowContext(ctx, `
INSERT INTO events (title, category, event_date, participation_points, winner_points, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		e.Title, e.Category, e.Date, e.ParticipationPoints, e.WinnerPoints, e.Description).Scan(&e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func UpdateEvent(ctx context.Context, database *sql.DB, e models.Event) (*models.Event, error) {
	res, err := database.ExecContext(ctx, `
UPDATE events SET title = $1, category = $2, event_date = $3,
       participation_points = $4, winner_points = $5, description = $6
WHERE id = $7`,
		e.Title, e.Category, e.Date, e.ParticipationPoints, e.WinnerPoints, e.Description, e.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("event %d: %w", e.ID, ErrNotFound)
	}
	return &e, nil
}

// DeleteEvent removes the event together with its ledger entries and
// recomputes every student it had touched, all in one transaction.
func DeleteEvent(ctx context.Context, database *sql.DB, id int64) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureEventExists(ctx, tx, id); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `
DELETE FROM point_transactions WHERE event_id = $1 RETURNING student_id`, id)
	if err != nil {
		return fmt.Errorf("delete event transactions: %w", err)
	}
	affected := make(map[int64]struct{})
	for rows.Next() {
		var sid int64
		if err := rows.Scan(&sid); err != nil {
			_ = rows.Close()
			return err
		}
		affected[sid] = struct{}{}
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for sid := range affected {
		if err := recalcTotalsTx(ctx, tx, sid); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return tx.Commit()
}

// ListEventParticipants returns the students that self-registered for the
// event.
func ListEventParticipants(ctx context.Context, database *sql.DB, eventID int64) ([]models.Student, error) {
	if err := ensureEventExists(ctx, database, eventID); err != nil {
		return nil, err
	}
	rows, err := database.QueryContext(ctx, `
SELECT s.id, s.roll_number, s.name, s.year, s.department_id, s.created_at
FROM students s
JOIN point_transactions p ON p.student_id = s.id
WHERE p.event_id = $1 AND p.kind = 'participation'
ORDER BY p.id`, eventID)
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
