package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/student-of-the-year/internal/config"
	"github.com/Spok95/student-of-the-year/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewRouter wires the full API surface. Admin routes stack the auth and
// admin middlewares; leaderboard, revealed snapshots and participation stay
// public.
func NewRouter(database *sql.DB, cfg *config.Config, log *zap.SugaredLogger) *gin.Engine {
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMetrics(log))
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db not ok: %v", err)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		c.String(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authed := AuthMiddleware(cfg.JWTSecret)
	admin := AdminMiddleware(database)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", Register(database))
			auth.POST("/login", Login(database, cfg.JWTSecret, cfg.TokenTTL))
		}

		departments := api.Group("/departments")
		{
			departments.GET("", ListDepartments(database))
			departments.GET("/:id", GetDepartment(database))
			departments.POST("", authed, admin, CreateDepartment(database))
			departments.PUT("/:id", authed, admin, UpdateDepartment(database))
			departments.DELETE("/:id", authed, admin, DeleteDepartment(database))
		}

		students := api.Group("/students")
		{
			students.GET("", ListStudents(database))
			students.GET("/:id", GetStudent(database))
			students.POST("", authed, admin, CreateStudent(database))
			students.PUT("/:id", authed, admin, UpdateStudent(database))
			students.DELETE("/:id", authed, admin, DeleteStudent(database))
			students.GET("/:id/timeline", StudentTimeline(database))
			students.GET("/:id/breakdown", StudentBreakdown(database))
			students.GET("/:id/achievements", StudentAchievements(database))
		}

		events := api.Group("/events")
		{
			events.GET("", ListEvents(database))
			events.GET("/:id", GetEvent(database))
			events.POST("", authed, admin, CreateEvent(database))
			events.PUT("/:id", authed, admin, UpdateEvent(database))
			events.DELETE("/:id", authed, admin, DeleteEvent(database))
			events.GET("/:id/participants", EventParticipants(database))

			events.POST("/participate", Participate(database))
			events.POST("/award_points", authed, admin, AwardPoints(database))
			events.POST("/award_points_bulk", authed, admin, AwardPointsBulk(database))
			events.DELETE("/transactions/:id", authed, admin, DeleteTransaction(database))
			events.DELETE("/transactions/student/:student_id", authed, admin, DeleteStudentTransactions(database))

			events.GET("/participation_logs", authed, admin, ParticipationLogs(database))
			events.GET("/notifications/unread_count", authed, admin, UnreadNotificationCount(database))
			events.PATCH("/notifications/mark_seen", authed, admin, MarkNotificationsSeen(database))
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.GET("", Leaderboard(database))
			leaderboard.GET("/department/:id", DepartmentLeaderboard(database))
			leaderboard.GET("/class/:year", ClassLeaderboard(database))
			leaderboard.GET("/export", authed, admin, ExportLeaderboard(database))
		}

		snapshots := api.Group("/snapshots")
		{
			snapshots.POST("", authed, admin, CreateSnapshot(database))
			snapshots.GET("", ListRevealedSnapshots(database))
		}

		api.POST("/reveal", authed, admin, Reveal(database))
	}

	return router
}

func requestMetrics(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Errorw("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	opts := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return func(c *gin.Context) {
		opts.HandlerFunc(c.Writer, c.Request)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
