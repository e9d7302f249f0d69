package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/student-of-the-year/internal/models"
)

// RankScope optionally restricts the candidate set. Zero value = whole
// organization.
type RankScope struct {
	DepartmentID *int64
	Year         *int
}

// Rank produces the tie-broken standing for the scope. Win counts come from a
// single grouped subquery over the candidate set, and students without a
// totals row are included with zeros. The order is total: composite desc,
// academics desc, wins desc, technical desc, registration time asc, id asc.
func Rank(ctx context.Context, database *sql.DB, scope RankScope) ([]models.RankedStudent, error) {
	if scope.DepartmentID != nil {
		if _, err := GetDepartment(ctx, database, *scope.DepartmentID); err != nil {
			return nil, err
		}
	}
	return rankTx(ctx, database, scope)
}

func rankTx(ctx context.Context, q dbtx, scope RankScope) ([]models.RankedStudent, error) {
	query := `
SELECT s.id, s.roll_number, s.name, s.year, s.department_id, d.name, s.created_at,
       COALESCE(t.academics_points, 0),
       COALESCE(t.sports_points, 0),
       COALESCE(t.cultural_points, 0),
       COALESCE(t.technical_points, 0),
       COALESCE(t.social_points, 0),
       COALESCE(t.composite_points, 0),
       COALESCE(w.wins, 0)
FROM students s
JOIN departments d ON d.id = s.department_id
LEFT JOIN student_totals t ON t.student_id = s.id
LEFT JOIN (
    SELECT student_id, COUNT(*) AS wins
    FROM point_transactions
    WHERE kind = 'win'
    GROUP BY student_id
) w ON w.student_id = s.id`

	var args []any
	switch {
	case scope.DepartmentID != nil:
		query += ` WHERE s.department_id = $1`
		args = append(args, *scope.DepartmentID)
	case scope.Year != nil:
		query += ` WHERE s.year = $1`
		args = append(args, *scope.Year)
	}

	query += `
ORDER BY COALESCE(t.composite_points, 0) DESC,
         COALESCE(t.academics_points, 0) DESC,
         COALESCE(w.wins, 0) DESC,
         COALESCE(t.technical_points, 0) DESC,
         s.created_at ASC,
         s.id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rank query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RankedStudent
	for rows.Next() {
		var r models.RankedStudent
		if err := rows.Scan(
			&r.Student.ID, &r.Student.RollNumber, &r.Student.Name, &r.Student.Year,
			&r.Student.DepartmentID, &r.DepartmentName, &r.Student.CreatedAt,
			&r.Total.AcademicsPoints, &r.Total.SportsPoints, &r.Total.CulturalPoints,
			&r.Total.TechnicalPoints, &r.Total.SocialPoints, &r.Total.CompositePoints,
			&r.Total.Wins,
		); err != nil {
			return nil, fmt.Errorf("rank scan: %w", err)
		}
		r.Total.StudentID = r.Student.ID
		r.Rank = len(out) + 1
		out = append(out, r)
	}
	return out, rows.Err()
}
