package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

// RegisterParticipation appends a zero-point participation entry plus its
// paired unseen notification row, then recomputes the student. Registering
// twice for the same event is ErrConflict. Everything commits as one unit so
// a ledger entry never exists without its notification.
func RegisterParticipation(ctx context.Context, database *sql.DB, studentID, eventID int64) (*models.PointTransaction, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin participation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var category models.Category
	err = tx.QueryRowContext(ctx, `SELECT category FROM events WHERE id = $1`, eventID).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if !category.Valid() {
		category = models.CategoryAcademics
	}
	if err := ensureStudentExists(ctx, tx, studentID); err != nil {
		return nil, err
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
SELECT EXISTS(
    SELECT 1 FROM point_transactions
    WHERE student_id = $1 AND event_id = $2 AND kind = 'participation'
)`, studentID, eventID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("student %d already registered for event %d: %w", studentID, eventID, ErrConflict)
	}

	reason := models.ReasonParticipation
	created, err := insertTransaction(ctx, tx, models.PointTransaction{
		StudentID: studentID,
		EventID:   eventID,
		Points:    0,
		Category:  category,
		Kind:      models.KindParticipation,
		Reason:    &reason,
	})
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO admin_notification_status (point_transaction_id, seen)
VALUES ($1, FALSE)`, created.ID); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	if err := recalcTotalsTx(ctx, tx, studentID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit participation: %w", err)
	}
	return created, nil
}

func CountUnseenNotifications(ctx context.Context, database *sql.DB) (int64, error) {
	var n int64
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admin_notification_status WHERE NOT seen`).Scan(&n)
	return n, err
}

// MarkAllNotificationsSeen flips the whole unseen backlog, returning how many
// rows changed.
func MarkAllNotificationsSeen(ctx context.Context, database *sql.DB) (int64, error) {
	res, err := database.ExecContext(ctx,
		`UPDATE admin_notification_status SET seen = TRUE WHERE NOT seen`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecentUnseenParticipations returns the newest unseen participation events
// joined with student and event names for the admin feed.
func RecentUnseenParticipations(ctx context.Context, database *sql.DB, limit int) ([]models.ParticipationLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := database.QueryContext(ctx, `
SELECT s.name, e.title, p.created_at
FROM point_transactions p
JOIN students s ON s.id = p.student_id
JOIN events e ON e.id = p.event_id
JOIN admin_notification_status n ON n.point_transaction_id = p.id
WHERE p.kind = 'participation' AND NOT n.seen
ORDER BY p.id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ParticipationLog
	for rows.Next() {
		var l models.ParticipationLog
		if err := rows.Scan(&l.StudentName, &l.EventTitle, &l.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
