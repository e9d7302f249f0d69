package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/gin-gonic/gin"
)

func CreateSnapshot(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := db.CreateSnapshot(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "snapshots_created": n})
	}
}

type snapshotResponse struct {
	ID              int64     `json:"id"`
	Generation      int64     `json:"generation"`
	StudentID       int64     `json:"student_id"`
	AcademicsPoints int       `json:"academics_points"`
	SportsPoints    int       `json:"sports_points"`
	CulturalPoints  int       `json:"cultural_points"`
	TechnicalPoints int       `json:"technical_points"`
	SocialPoints    int       `json:"social_points"`
	CompositePoints int       `json:"composite_points"`
	Rank            int       `json:"rank"`
	Revealed        bool      `json:"revealed"`
	CreatedAt       time.Time `json:"created_at"`
}

func ListRevealedSnapshots(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		snaps, err := db.ListRevealedSnapshots(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]snapshotResponse, 0, len(snaps))
		for _, s := range snaps {
			out = append(out, snapshotResponse{
				ID:              s.ID,
				Generation:      s.Generation,
				StudentID:       s.StudentID,
				AcademicsPoints: s.AcademicsPoints,
				SportsPoints:    s.SportsPoints,
				CulturalPoints:  s.CulturalPoints,
				TechnicalPoints: s.TechnicalPoints,
				SocialPoints:    s.SocialPoints,
				CompositePoints: s.CompositePoints,
				Rank:            s.Rank,
				Revealed:        s.Revealed,
				CreatedAt:       s.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// Reveal flips the winner of the latest snapshot generation public and
// returns the ceremonial profile: department and totals, no transaction
// drill-down.
func Reveal(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := db.RevealWinner(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}

		resp := toStudentResponse(w.Student)
		tr := toTotalsResponse(w.Total)
		resp.Total = &tr
		resp.Transactions = []transactionResponse{}
		c.JSON(http.StatusOK, gin.H{
			"winner":     resp,
			"department": departmentResponse{ID: w.Student.DepartmentID, Name: w.DepartmentName},
			"rank":       w.Snapshot.Rank,
			"generation": w.Snapshot.Generation,
		})
	}
}
