package models

import "time"

// StudentTotal is the denormalized per-student score cache. The ledger is the
// source of truth; this row is recomputed after every ledger mutation.
// Wins is transient: it is counted from the ledger per query, never stored.
type StudentTotal struct {
	StudentID       int64     `db:"student_id"`
	AcademicsPoints int       `db:"academics_points"`
	SportsPoints    int       `db:"sports_points"`
	CulturalPoints  int       `db:"cultural_points"`
	TechnicalPoints int       `db:"technical_points"`
	SocialPoints    int       `db:"social_points"`
	CompositePoints int       `db:"composite_points"`
	UpdatedAt       time.Time `db:"updated_at"`
	Wins            int       `db:"-"`
}

// PointsFor returns the stored sum for one category.
func (t StudentTotal) PointsFor(c Category) int {
	switch c {
	case CategoryAcademics:
		return t.AcademicsPoints
	case CategorySports:
		return t.SportsPoints
	case CategoryCultural:
		return t.CulturalPoints
	case CategoryTechnical:
		return t.TechnicalPoints
	case CategorySocial:
		return t.SocialPoints
	}
	return 0
}

// RankedStudent is one leaderboard line: the student joined with its totals
// and the batched win count. Students without a totals row get zero values.
type RankedStudent struct {
	Student        Student
	DepartmentName string
	Total          StudentTotal
	Rank           int
}

// FinalSnapshot is one immutable row of a frozen ranking. Generation groups
// the rows written by a single snapshot invocation; reveal only ever touches
// the latest generation. StudentID is a historical copy and carries no FK, so
// the row survives student deletion.
type FinalSnapshot struct {
	ID              int64     `db:"id"`
	Generation      int64     `db:"generation"`
	StudentID       int64     `db:"student_id"`
	AcademicsPoints int       `db:"academics_points"`
	SportsPoints    int       `db:"sports_points"`
	CulturalPoints  int       `db:"cultural_points"`
	TechnicalPoints int       `db:"technical_points"`
	SocialPoints    int       `db:"social_points"`
	CompositePoints int       `db:"composite_points"`
	Rank            int       `db:"rank"`
	Revealed        bool      `db:"revealed"`
	CreatedAt       time.Time `db:"created_at"`
}

// ParticipationLog is an unseen participation event joined with names,
// for the admin review feed.
type ParticipationLog struct {
	StudentName string
	EventTitle  string
	Timestamp   time.Time
}
