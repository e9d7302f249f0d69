package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/gin-gonic/gin"
)

type transactionResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	EventID   int64     `json:"event_id"`
	Points    int       `json:"points"`
	Category  string    `json:"category"`
	Kind      string    `json:"kind"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResponse(t models.PointTransaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		StudentID: t.StudentID,
		EventID:   t.EventID,
		Points:    t.Points,
		Category:  string(t.Category),
		Kind:      string(t.Kind),
		Reason:    t.Reason,
		CreatedAt: t.CreatedAt,
	}
}

type awardRequest struct {
	StudentID int64   `json:"student_id" binding:"required"`
	EventID   int64   `json:"event_id" binding:"required"`
	Points    int     `json:"points"`
	Category  string  `json:"category" binding:"required"`
	Reason    *string `json:"reason"`
}

func AwardPoints(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req awardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		category := models.Category(req.Category)
		if !category.Valid() {
			badRequest(c, "invalid category")
			return
		}

		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		created, err := db.AwardPoints(c.Request.Context(), database, models.PointTransaction{
			StudentID: req.StudentID,
			EventID:   req.EventID,
			Points:    req.Points,
			Category:  category,
			Kind:      models.KindForReason(reason),
			Reason:    req.Reason,
			AwardedBy: callerID(c),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, toTransactionResponse(*created))
	}
}

type bulkAwardRequest struct {
	StudentIDs []int64 `json:"student_ids" binding:"required,min=1"`
	EventID    int64   `json:"event_id" binding:"required"`
	Points     int     `json:"points"`
	Category   string  `json:"category" binding:"required"`
	Reason     *string `json:"reason"`
}

func AwardPointsBulk(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkAwardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		category := models.Category(req.Category)
		if !category.Valid() {
			badRequest(c, "invalid category")
			return
		}

		reason := ""
		if req.Reason != nil {
			reason = *req.Reason
		}
		awarded, err := db.AwardPointsBulk(c.Request.Context(), database, req.StudentIDs, models.PointTransaction{
			EventID:   req.EventID,
			Points:    req.Points,
			Category:  category,
			Kind:      models.KindForReason(reason),
			Reason:    req.Reason,
			AwardedBy: callerID(c),
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"awarded_to": awarded,
			"points":     req.Points,
			"category":   req.Category,
		})
	}
}

func DeleteTransaction(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid transaction id")
			return
		}
		if err := db.DeleteTransaction(c.Request.Context(), database, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func DeleteStudentTransactions(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid student id")
			return
		}
		if err := db.DeleteTransactionsByStudent(c.Request.Context(), database, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func Participate(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StudentID int64 `json:"student_id" binding:"required"`
			EventID   int64 `json:"event_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		if _, err := db.RegisterParticipation(c.Request.Context(), database, req.StudentID, req.EventID); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "participation registered"})
	}
}

func ParticipationLogs(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := db.RecentUnseenParticipations(c.Request.Context(), database, 20)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]gin.H, 0, len(logs))
		for _, l := range logs {
			out = append(out, gin.H{
				"student_name": l.StudentName,
				"event_title":  l.EventTitle,
				"timestamp":    l.Timestamp,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func UnreadNotificationCount(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := db.CountUnseenNotifications(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": n})
	}
}

func MarkNotificationsSeen(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := db.MarkAllNotificationsSeen(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"marked_seen": n})
	}
}

type eventRequest struct {
	Title               string     `json:"title" binding:"required"`
	Category            string     `json:"category" binding:"required"`
	Date                *time.Time `json:"date"`
	ParticipationPoints int        `json:"participation_points"`
	WinnerPoints        int        `json:"winner_points"`
	Description         *string    `json:"description"`
}

type eventResponse struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Category            string     `json:"category"`
	Date                *time.Time `json:"date"`
	ParticipationPoints int        `json:"participation_points"`
	WinnerPoints        int        `json:"winner_points"`
	Description         *string    `json:"description"`
}

func toEventResponse(e models.Event) eventResponse {
	return eventResponse{
		ID:                  e.ID,
		Title:               e.Title,
		Category:            string(e.Category),
		Date:                e.Date,
		ParticipationPoints: e.ParticipationPoints,
		WinnerPoints:        e.WinnerPoints,
		Description:         e.Description,
	}
}

func ListEvents(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := db.ListEvents(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toEventResponse(e))
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetEvent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid event id")
			return
		}
		event, err := db.GetEvent(c.Request.Context(), database, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toEventResponse(*event))
	}
}

func CreateEvent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		category := models.Category(req.Category)
		if !category.Valid() {
			badRequest(c, "invalid category")
			return
		}
		event, err := db.CreateEvent(c.Request.Context(), database, models.Event{
			Title:               req.Title,
			Category:            category,
			Date:                req.Date,
			ParticipationPoints: req.ParticipationPoints,
			WinnerPoints:        req.WinnerPoints,
			Description:         req.Description,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, toEventResponse(*event))
	}
}

func UpdateEvent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid event id")
			return
		}
		var req eventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		category := models.Category(req.Category)
		if !category.Valid() {
			badRequest(c, "invalid category")
			return
		}
		event, err := db.UpdateEvent(c.Request.Context(), database, models.Event{
			ID:                  id,
			Title:               req.Title,
			Category:            category,
			Date:                req.Date,
			ParticipationPoints: req.ParticipationPoints,
			WinnerPoints:        req.WinnerPoints,
			Description:         req.Description,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toEventResponse(*event))
	}
}

func DeleteEvent(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid event id")
			return
		}
		if err := db.DeleteEvent(c.Request.Context(), database, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func EventParticipants(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid event id")
			return
		}
		students, err := db.ListEventParticipants(c.Request.Context(), database, id)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]gin.H, 0, len(students))
		for _, s := range students {
			out = append(out, gin.H{"id": s.ID, "name": s.Name})
		}
		c.JSON(http.StatusOK, out)
	}
}
