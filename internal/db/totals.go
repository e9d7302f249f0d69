package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/student-of-the-year/internal/metrics"
	"github.com/Spok95/student-of-the-year/internal/models"
	"go.uber.org/zap"
)

// dbtx lets the query helpers run against either *sql.DB or *sql.Tx, so a
// ledger mutation and its recompute share one transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var logger = zap.NewNop().Sugar()

// SetLogger installs the process logger. Aggregation warnings (unknown
// categories in the ledger) go through it.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// RecalculateTotals recomputes a student's per-category and composite sums
// from the full ledger and upserts the student_totals row. Idempotent: with
// no intervening ledger change a second run writes the same values.
func RecalculateTotals(ctx context.Context, database *sql.DB, studentID int64) error {
	start := time.Now()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recalc: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := recalcTotalsTx(ctx, tx, studentID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recalc: %w", err)
	}
	metrics.ObserveRecalc(time.Since(start))
	return nil
}

// recalcTotalsTx is the transaction-scoped recompute used after every ledger
// mutation. Categories outside the canonical five are excluded from the sums;
// they are logged because they usually mean bad data upstream, not fixed here.
func recalcTotalsTx(ctx context.Context, q dbtx, studentID int64) error {
	// Take the totals row lock before scanning the ledger. Concurrent
	// mutations for one student then recompute strictly one after another,
	// each seeing the other's committed entries, so no award is ever lost
	// even at read-committed isolation.
	if _, err := q.ExecContext(ctx, `
INSERT INTO student_totals (student_id) VALUES ($1)
ON CONFLICT (student_id) DO NOTHING`, studentID); err != nil {
		return fmt.Errorf("ensure totals row: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		`SELECT 1 FROM student_totals WHERE student_id = $1 FOR UPDATE`, studentID); err != nil {
		return fmt.Errorf("lock totals row: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
SELECT category, COALESCE(SUM(points), 0)
FROM point_transactions
WHERE student_id = $1
GROUP BY category`, studentID)
	if err != nil {
		return fmt.Errorf("aggregate transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sums := make(map[models.Category]int, len(models.Categories))
	for rows.Next() {
		var cat models.Category
		var total int
		if err := rows.Scan(&cat, &total); err != nil {
			return fmt.Errorf("scan aggregate: %w", err)
		}
		if !cat.Valid() {
			logger.Warnw("ignoring unknown category in ledger", "student_id", studentID, "category", cat)
			continue
		}
		sums[cat] = total
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("aggregate rows: %w", err)
	}

	composite := 0
	for _, c := range models.Categories {
		composite += sums[c]
	}

	_, err = q.ExecContext(ctx, `
INSERT INTO student_totals (
    student_id, academics_points, sports_points, cultural_points,
    technical_points, social_points, composite_points, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (student_id) DO UPDATE SET
    academics_points = EXCLUDED.academics_points,
    sports_points = EXCLUDED.sports_points,
    cultural_points = EXCLUDED.cultural_points,
    technical_points = EXCLUDED.technical_points,
    social_points = EXCLUDED.social_points,
    composite_points = EXCLUDED.composite_points,
    updated_at = now()`,
		studentID,
		sums[models.CategoryAcademics],
		sums[models.CategorySports],
		sums[models.CategoryCultural],
		sums[models.CategoryTechnical],
		sums[models.CategorySocial],
		composite,
	)
	if err != nil {
		return fmt.Errorf("upsert totals: %w", err)
	}
	return nil
}

// GetTotals returns the stored totals row plus the derived win count.
// ErrNotFound means the student has no totals row yet; callers that need a
// zero view synthesize it themselves.
func GetTotals(ctx context.Context, database *sql.DB, studentID int64) (*models.StudentTotal, error) {
	var t models.StudentTotal
	err := database.QueryRowContext(ctx, `
SELECT student_id, academics_points, sports_points, cultural_points,
       technical_points, social_points, composite_points, updated_at
FROM student_totals
WHERE student_id = $1`, studentID).Scan(
		&t.StudentID, &t.AcademicsPoints, &t.SportsPoints, &t.CulturalPoints,
		&t.TechnicalPoints, &t.SocialPoints, &t.CompositePoints, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("totals for student %d: %w", studentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	err = database.QueryRowContext(ctx, `
SELECT COUNT(*) FROM point_transactions WHERE student_id = $1 AND kind = 'win'`,
		studentID).Scan(&t.Wins)
	if err != nil {
		return nil, fmt.Errorf("count wins: %w", err)
	}
	return &t, nil
}
