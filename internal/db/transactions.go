package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

// AwardPoints appends one ledger entry and recomputes the student's totals in
// the same transaction. The caller is expected to have validated the category.
func AwardPoints(ctx context.Context, database *sql.DB, t models.PointTransaction) (*models.PointTransaction, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin award: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureEventExists(ctx, tx, t.EventID); err != nil {
		return nil, err
	}
	if err := ensureStudentExists(ctx, tx, t.StudentID); err != nil {
		return nil, err
	}

	created, err := insertTransaction(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	if err := recalcTotalsTx(ctx, tx, t.StudentID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit award: %w", err)
	}
	return created, nil
}

// AwardPointsBulk awards the same event/points/category to several students.
// Unknown student ids are skipped, matching single-award semantics for the
// rest. Everything commits as one unit.
func AwardPointsBulk(ctx context.Context, database *sql.DB, studentIDs []int64, t models.PointTransaction) ([]int64, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk award: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureEventExists(ctx, tx, t.EventID); err != nil {
		return nil, err
	}

	awarded := make([]int64, 0, len(studentIDs))
	for _, sid := range studentIDs {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, sid).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check student %d: %w", sid, err)
		}
		if !exists {
			continue
		}
		entry := t
		entry.StudentID = sid
		if _, err := insertTransaction(ctx, tx, entry); err != nil {
			return nil, err
		}
		if err := recalcTotalsTx(ctx, tx, sid); err != nil {
			return nil, err
		}
		awarded = append(awarded, sid)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk award: %w", err)
	}
	return awarded, nil
}

// DeleteTransaction removes a single ledger entry (admin correction) and
// recomputes the affected student.
func DeleteTransaction(ctx context.Context, database *sql.DB, id int64) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var studentID int64
	err = tx.QueryRowContext(ctx,
		`DELETE FROM point_transactions WHERE id = $1 RETURNING student_id`, id).Scan(&studentID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := recalcTotalsTx(ctx, tx, studentID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTransactionsByStudent wipes a student's ledger. The totals row is not
// removed: the recompute resets it to zeros.
func DeleteTransactionsByStudent(ctx context.Context, database *sql.DB, studentID int64) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM point_transactions WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if err := recalcTotalsTx(ctx, tx, studentID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListTransactionsByStudent returns the student's ledger newest first.
// limit <= 0 means no limit.
func ListTransactionsByStudent(ctx context.Context, database *sql.DB, studentID int64, limit int) ([]models.PointTransaction, error) {
	query := `
SELECT id, student_id, event_id, points, category, kind, reason, awarded_by, created_at
FROM point_transactions
WHERE student_id = $1
ORDER BY created_at DESC, id DESC`
	args := []any{studentID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.PointTransaction
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.StudentID, &t.EventID, &t.Points, &t.Category,
			&t.Kind, &t.Reason, &t.AwardedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertTransaction(ctx context.Context, q dbtx, t models.PointTransaction) (*models.PointTransaction, error) {
	err := q.QueryRowContext(ctx, `
INSERT INTO point_transactions (student_id, event_id, points, category, kind, reason, awarded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at`,
		t.StudentID, t.EventID, t.Points, t.Category, t.Kind, t.Reason, t.AwardedBy,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return &t, nil
}

func ensureStudentExists(ctx context.Context, q dbtx, id int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check student: %w", err)
	}
	if !exists {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	return nil
}

func ensureEventExists(ctx context.Context, q dbtx, id int64) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return nil
}
