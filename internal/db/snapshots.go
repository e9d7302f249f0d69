package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/metrics"
	"github.com/Spok95/student-of-the-year/internal/models"
)

// CreateSnapshot freezes the current whole-organization standing into a new
// snapshot generation, hidden until reveal. The ranking read and the row
// writes share one transaction so the copy can never be torn. Zero students
// is ErrNotFound: a snapshot of nobody is a caller mistake, not an empty list.
func CreateSnapshot(ctx context.Context, database *sql.DB) (int, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ranked, err := rankTx(ctx, tx, RankScope{})
	if err != nil {
		return 0, err
	}
	if len(ranked) == 0 {
		return 0, fmt.Errorf("no students to snapshot: %w", ErrNotFound)
	}

	var generation int64
	if err := tx.QueryRowContext(ctx, `SELECT nextval('snapshot_generation_seq')`).Scan(&generation); err != nil {
		return 0, fmt.Errorf("next generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO final_snapshots (
    generation, student_id, academics_points, sports_points, cultural_points,
    technical_points, social_points, composite_points, rank, revealed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)`)
	if err != nil {
		return 0, fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range ranked {
		if _, err := stmt.ExecContext(ctx,
			generation, r.Student.ID,
			r.Total.AcademicsPoints, r.Total.SportsPoints, r.Total.CulturalPoints,
			r.Total.TechnicalPoints, r.Total.SocialPoints, r.Total.CompositePoints,
			r.Rank,
		); err != nil {
			return 0, fmt.Errorf("insert snapshot rank %d: %w", r.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	metrics.SnapshotsCreated.Inc()
	return len(ranked), nil
}

// ListRevealedSnapshots returns every revealed row, best rank first. Empty
// before any reveal.
func ListRevealedSnapshots(ctx context.Context, database *sql.DB) ([]models.FinalSnapshot, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, generation, student_id, academics_points, sports_points, cultural_points,
       technical_points, social_points, composite_points, rank, revealed, created_at
FROM final_snapshots
WHERE revealed
ORDER BY generation DESC, rank ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.FinalSnapshot
	for rows.Next() {
		var s models.FinalSnapshot
		if err := rows.Scan(&s.ID, &s.Generation, &s.StudentID,
			&s.AcademicsPoints, &s.SportsPoints, &s.CulturalPoints,
			&s.TechnicalPoints, &s.SocialPoints, &s.CompositePoints,
			&s.Rank, &s.Revealed, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Winner is the ceremonial reveal payload: the student's profile with its
// current totals. The transaction list stays empty on purpose, reveal is a
// summary, not a drill-down.
type Winner struct {
	Student        models.Student
	DepartmentName string
	Total          models.StudentTotal
	Snapshot       models.FinalSnapshot
}

// RevealWinner flips revealed on the rank-1 row of the latest generation and
// returns the winner's profile. ErrNotFound when no snapshot exists, or when
// the winning student has been deleted since the snapshot was taken.
func RevealWinner(ctx context.Context, database *sql.DB) (*Winner, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reveal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var s models.FinalSnapshot
	err = tx.QueryRowContext(ctx, `
SELECT id, generation, student_id, academics_points, sports_points, cultural_points,
       technical_points, social_points, composite_points, rank, revealed, created_at
FROM final_snapshots
WHERE generation = (SELECT MAX(generation) FROM final_snapshots) AND rank = 1
FOR UPDATE`).Scan(&s.ID, &s.Generation, &s.StudentID,
		&s.AcademicsPoints, &s.SportsPoints, &s.CulturalPoints,
		&s.TechnicalPoints, &s.SocialPoints, &s.CompositePoints,
		&s.Rank, &s.Revealed, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no snapshot, create one first: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load winner snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE final_snapshots SET revealed = TRUE WHERE id = $1`, s.ID); err != nil {
		return nil, fmt.Errorf("mark revealed: %w", err)
	}
	s.Revealed = true

	w := Winner{Snapshot: s}
	err = tx.QueryRowContext(ctx, `
SELECT s.id, s.roll_number, s.name, s.year, s.department_id, d.name, s.created_at
FROM students s
JOIN departments d ON d.id = s.department_id
WHERE s.id = $1`, s.StudentID).Scan(
		&w.Student.ID, &w.Student.RollNumber, &w.Student.Name, &w.Student.Year,
		&w.Student.DepartmentID, &w.DepartmentName, &w.Student.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("winner student %d: %w", s.StudentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load winner student: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
SELECT COALESCE(t.academics_points, 0), COALESCE(t.sports_points, 0),
       COALESCE(t.cultural_points, 0), COALESCE(t.technical_points, 0),
       COALESCE(t.social_points, 0), COALESCE(t.composite_points, 0),
       (SELECT COUNT(*) FROM point_transactions WHERE student_id = s.id AND kind = 'win')
FROM students s
LEFT JOIN student_totals t ON t.student_id = s.id
WHERE s.id = $1`, s.StudentID).Scan(
		&w.Total.AcademicsPoints, &w.Total.SportsPoints, &w.Total.CulturalPoints,
		&w.Total.TechnicalPoints, &w.Total.SocialPoints, &w.Total.CompositePoints,
		&w.Total.Wins)
	if err != nil {
		return nil, fmt.Errorf("load winner totals: %w", err)
	}
	w.Total.StudentID = s.StudentID

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reveal: %w", err)
	}
	return &w, nil
}
