package models

import "time"

type Department struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Student struct {
	ID           int64     `db:"id"`
	RollNumber   string    `db:"roll_number"`
	Name         string    `db:"name"`
	Year         int       `db:"year"`
	DepartmentID int64     `db:"department_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type Event struct {
	ID                  int64      `db:"id"`
	Title               string     `db:"title"`
	Category            Category   `db:"category"`
	Date                *time.Time `db:"event_date"`
	ParticipationPoints int        `db:"participation_points"`
	WinnerPoints        int        `db:"winner_points"`
	Description         *string    `db:"description"`
}
