package jobs

import (
	"context"
	"database/sql"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/metrics"
)

// NotificationStats refreshes the unseen-participation gauge so dashboards
// see the admin backlog without polling the API.
func NotificationStats(database *sql.DB) Job {
	return func(ctx context.Context) error {
		n, err := db.CountUnseenNotifications(ctx, database)
		if err != nil {
			return err
		}
		metrics.UnreadNotifications.Set(float64(n))
		return nil
	}
}
