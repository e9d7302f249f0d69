package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/gin-gonic/gin"
)

type departmentRequest struct {
	Name string `json:"name" binding:"required"`
}

type departmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toDepartmentResponse(d models.Department) departmentResponse {
	return departmentResponse{ID: d.ID, Name: d.Name}
}

func ListDepartments(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		departments, err := db.ListDepartments(c.Request.Context(), database)
		if err != nil {
			fail(c, err)
			return
		}
		out := make([]departmentResponse, 0, len(departments))
		for _, d := range departments {
			out = append(out, toDepartmentResponse(d))
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetDepartment(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid department id")
			return
		}
		department, err := db.GetDepartment(c.Request.Context(), database, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toDepartmentResponse(*department))
	}
}

func CreateDepartment(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req departmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		department, err := db.CreateDepartment(c.Request.Context(), database, req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, toDepartmentResponse(*department))
	}
}

func UpdateDepartment(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid department id")
			return
		}
		var req departmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		department, err := db.UpdateDepartment(c.Request.Context(), database, id, req.Name)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, toDepartmentResponse(*department))
	}
}

func DeleteDepartment(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "invalid department id")
			return
		}
		if err := db.DeleteDepartment(c.Request.Context(), database, id); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
