package models

import "time"

// Category is one of the five point categories tracked by the platform.
// Everything else that sneaks into the ledger is ignored by aggregation.
type Category string

const (
	CategoryAcademics Category = "academics"
	CategorySports    Category = "sports"
	CategoryCultural  Category = "cultural"
	CategoryTechnical Category = "technical"
	CategorySocial    Category = "social"
)

var Categories = []Category{
	CategoryAcademics,
	CategorySports,
	CategoryCultural,
	CategoryTechnical,
	CategorySocial,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryAcademics, CategorySports, CategoryCultural, CategoryTechnical, CategorySocial:
		return true
	}
	return false
}

// TransactionKind tags what a ledger entry represents, so that wins and
// participations are not derived by matching free-text reasons.
type TransactionKind string

const (
	KindAward         TransactionKind = "award"
	KindParticipation TransactionKind = "participation"
	KindWin           TransactionKind = "win"
)

// Legacy reason strings kept for API compatibility with existing clients.
const (
	ReasonParticipation = "Student opted to participate"
	ReasonWinner        = "winner"
)

// KindForReason maps an award reason to its typed kind.
func KindForReason(reason string) TransactionKind {
	switch reason {
	case ReasonParticipation:
		return KindParticipation
	case ReasonWinner:
		return KindWin
	}
	return KindAward
}

type PointTransaction struct {
	ID        int64           `db:"id"`
	StudentID int64           `db:"student_id"`
	EventID   int64           `db:"event_id"`
	Points    int             `db:"points"`
	Category  Category        `db:"category"`
	Kind      TransactionKind `db:"kind"`
	Reason    *string         `db:"reason"`
	AwardedBy *int64          `db:"awarded_by"`
	CreatedAt time.Time       `db:"created_at"`
}
