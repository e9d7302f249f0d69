package httpapi

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/export"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/gin-gonic/gin"
)

type leaderboardEntry struct {
	Rank       int            `json:"rank"`
	ID         int64          `json:"id"`
	RollNumber string         `json:"roll_number"`
	Name       string         `json:"name"`
	Year       int            `json:"year"`
	Department string         `json:"department"`
	Total      totalsResponse `json:"total"`
}

func toLeaderboard(ranked []models.RankedStudent) []leaderboardEntry {
	out := make([]leaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, leaderboardEntry{
			Rank:       r.Rank,
			ID:         r.Student.ID,
			RollNumber: r.Student.RollNumber,
			Name:       r.Student.Name,
			Year:       r.Student.Year,
			Department: r.DepartmentName,
			Total:      toTotalsResponse(r.Total),
		})
	}
	return out
}

func Leaderboard(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ranked, err := db.Rank(c.Request.Context(), database, db.RankScope{})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toLeaderboard(ranked))
	}
}

func DepartmentLeaderboard(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid department id")
			return
		}
		ranked, err := db.Rank(c.Request.Context(), database, db.RankScope{DepartmentID: &id})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toLeaderboard(ranked))
	}
}

func ClassLeaderboard(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, err := strconv.Atoi(c.Param("year"))
		if err != nil {
			badRequest(c, "invalid year")
			return
		}
		ranked, err := db.Rank(c.Request.Context(), database, db.RankScope{Year: &year})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toLeaderboard(ranked))
	}
}

// ExportLeaderboard streams the whole-organization standing as an Excel
// workbook (admin only).
func ExportLeaderboard(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ranked, err := db.Rank(c.Request.Context(), database, db.RankScope{})
		if err != nil {
			fail(c, err)
			return
		}
		wb, err := export.NewLeaderboardWorkbook(ranked)
		if err != nil {
			fail(c, err)
			return
		}

		name := fmt.Sprintf("leaderboard_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := wb.File.Write(c.Writer); err != nil {
			fail(c, err)
			return
		}
	}
}
