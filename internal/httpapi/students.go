package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/gin-gonic/gin"
)

type totalsResponse struct {
	StudentID       int64 `json:"student_id"`
	AcademicsPoints int   `json:"academics_points"`
	SportsPoints    int   `json:"sports_points"`
	CulturalPoints  int   `json:"cultural_points"`
	TechnicalPoints int   `json:"technical_points"`
	SocialPoints    int   `json:"social_points"`
	CompositePoints int   `json:"composite_points"`
	Wins            int   `json:"wins"`
}

func toTotalsResponse(t models.StudentTotal) totalsResponse {
	return totalsResponse{
		StudentID:       t.StudentID,
		AcademicsPoints: t.AcademicsPoints,
		SportsPoints:    t.SportsPoints,
		CulturalPoints:  t.CulturalPoints,
		TechnicalPoints: t.TechnicalPoints,
		SocialPoints:    t.SocialPoints,
		CompositePoints: t.CompositePoints,
		Wins:            t.Wins,
	}
}

// studentResponse is assembled explicitly from persisted and derived parts,
// the stored entities are never mutated to carry computed fields.
type studentResponse struct {
	ID           int64                 `json:"id"`
	RollNumber   string                `json:"roll_number"`
	Name         string                `json:"name"`
	Year         int                   `json:"year"`
	DepartmentID int64                 `json:"department_id"`
	CreatedAt    time.Time             `json:"created_at"`
	Total        *totalsResponse       `json:"total,omitempty"`
	Transactions []transactionResponse `json:"point_transactions,omitempty"`
}

func toStudentResponse(s models.Student) studentResponse {
	return studentResponse{
		ID:           s.ID,
		RollNumber:   s.RollNumber,
		Name:         s.Name,
		Year:         s.Year,
		DepartmentID: s.DepartmentID,
		CreatedAt:    s.CreatedAt,
	}
}

func ListStudents(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		students, err := db.ListStudents(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]studentResponse, 0, len(students))
		for _, s := range students {
			out = append(out, toStudentResponse(s))
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetStudent accepts either a database id or a roll number, and attaches the
// totals plus the last 10 ledger entries.
func GetStudent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ident := c.Param("id")

		var student *models.Student
		var err error
		if id, convErr := strconv.ParseInt(ident, 10, 64); convErr == nil {
			student, err = db.GetStudent(ctx, database, id)
		} else {
			student, err = db.GetStudentByRoll(ctx, database, ident)
		}
		if err != nil {
			fail(c, err)
			return
		}

		resp := toStudentResponse(*student)

		totals, err := db.GetTotals(ctx, database, student.ID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			fail(c, err)
			return
		}
		if totals != nil {
			tr := toTotalsResponse(*totals)
			resp.Total = &tr
		}

		txns, err := db.ListTransactionsByStudent(ctx, database, student.ID, 10)
		if err != nil {
			fail(c, err)
			return
		}
		resp.Transactions = make([]transactionResponse, 0, len(txns))
		for _, t := range txns {
			resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
		}
		c.JSON(http.StatusOK, resp)
	}
}

type studentRequest struct {
	RollNumber   string `json:"roll_number" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Year         int    `json:"year" binding:"required"`
	DepartmentID int64  `json:"department_id" binding:"required"`
}

func CreateStudent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req studentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		student, err := db.CreateStudent(c.Request.Context(), database, models.Student{
			RollNumber:   req.RollNumber,
			Name:         req.Name,
			Year:         req.Year,
			DepartmentID: req.DepartmentID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, toStudentResponse(*student))
	}
}

func UpdateStudent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		var req studentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		student, err := db.UpdateStudent(c.Request.Context(), database, models.Student{
			ID:           id,
			RollNumber:   req.RollNumber,
			Name:         req.Name,
			Year:         req.Year,
			DepartmentID: req.DepartmentID,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toStudentResponse(*student))
	}
}

func DeleteStudent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		if err := db.DeleteStudent(c.Request.Context(), database, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// StudentTimeline is the full ledger for one student, newest first.
func StudentTimeline(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		if _, err := db.GetStudent(ctx, database, id); err != nil {
			fail(c, err)
			return
		}
		txns, err := db.ListTransactionsByStudent(ctx, database, id, 0)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]transactionResponse, 0, len(txns))
		for _, t := range txns {
			out = append(out, toTransactionResponse(t))
		}
		c.JSON(http.StatusOK, out)
	}
}

// StudentBreakdown returns the per-category totals; a student without a
// totals row gets an all-zero view rather than a 404.
func StudentBreakdown(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		totals, err := db.GetTotals(ctx, database, id)
		if errors.Is(err, db.ErrNotFound) {
			if _, err := db.GetStudent(ctx, database, id); err != nil {
				fail(c, err)
				return
			}
			c.JSON(http.StatusOK, toTotalsResponse(models.StudentTotal{StudentID: id}))
			return
		}
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toTotalsResponse(*totals))
	}
}

type achievementResponse struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	EventID  int64     `json:"event_id"`
	Points   int       `json:"points"`
	Date     time.Time `json:"date"`
}

// StudentAchievements renders the ledger as an achievement feed.
func StudentAchievements(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		if _, err := db.GetStudent(ctx, database, id); err != nil {
			fail(c, err)
			return
		}
		txns, err := db.ListTransactionsByStudent(ctx, database, id, 0)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]achievementResponse, 0, len(txns))
		for _, t := range txns {
			title := "Achievement"
			if t.Reason != nil && *t.Reason != "" {
				title = *t.Reason
			}
			out = append(out, achievementResponse{
				ID:       t.ID,
				Title:    title,
				Category: string(t.Category),
				EventID:  t.EventID,
				Points:   t.Points,
				Date:     t.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}
