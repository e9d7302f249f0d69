//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/Spok95/student-of-the-year/internal/testutil/testdb"
)

func TestRegisterParticipation_OncePerEvent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CSE")
	stID := mustSeedStudent(t, h.DB, "CS-001", "Asha", 3, deptID)
	evID := mustSeedEvent(t, h.DB, "Hackathon", models.CategoryTechnical, 5, 20)

	tr, err := db.RegisterParticipation(ctx, h.DB, stID, evID)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Points != 0 {
		t.Fatalf("participation entry must carry zero points, got %d", tr.Points)
	}
	if tr.Kind != models.KindParticipation {
		t.Fatalf("want participation kind, got %q", tr.Kind)
	}
	if tr.Reason == nil || *tr.Reason != models.ReasonParticipation {
		t.Fatalf("want canonical reason, got %v", tr.Reason)
	}

	if _, err := db.RegisterParticipation(ctx, h.DB, stID, evID); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("duplicate participation: want ErrConflict, got %v", err)
	}

	var n int
	if err := h.DB.QueryRow(`
		SELECT COUNT(*) FROM point_transactions
		WHERE student_id = $1 AND event_id = $2`, stID, evID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("duplicate must not add ledger rows, found %d", n)
	}

	// Participation never moves the score.
	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.CompositePoints != 0 {
		t.Fatalf("participation changed composite: %d", total.CompositePoints)
	}
}

func TestRegisterParticipation_UnknownStudentOrEvent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "ECE")
	stID := mustSeedStudent(t, h.DB, "EC-001", "Ravi", 2, deptID)
	evID := mustSeedEvent(t, h.DB, "Quiz", models.CategoryAcademics, 2, 10)

	if _, err := db.RegisterParticipation(ctx, h.DB, 9999, evID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("unknown student: want ErrNotFound, got %v", err)
	}
	if _, err := db.RegisterParticipation(ctx, h.DB, stID, 9999); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("unknown event: want ErrNotFound, got %v", err)
	}
}

func TestNotifications_CountAndMarkSeen(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "MECH")
	st1 := mustSeedStudent(t, h.DB, "ME-001", "Priya", 4, deptID)
	st2 := mustSeedStudent(t, h.DB, "ME-002", "Leela", 4, deptID)
	evID := mustSeedEvent(t, h.DB, "Drama", models.CategoryCultural, 3, 12)

	if _, err := db.RegisterParticipation(ctx, h.DB, st1, evID); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RegisterParticipation(ctx, h.DB, st2, evID); err != nil {
		t.Fatal(err)
	}

	unseen, err := db.CountUnseenNotifications(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if unseen != 2 {
		t.Fatalf("want 2 unseen, got %d", unseen)
	}

	feed, err := db.RecentUnseenParticipations(ctx, h.DB, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 2 {
		t.Fatalf("want 2 feed entries, got %d", len(feed))
	}
	// Newest first.
	if feed[0].StudentName != "Leela" || feed[1].StudentName != "Priya" {
		t.Fatalf("feed order wrong: %q then %q", feed[0].StudentName, feed[1].StudentName)
	}
	if feed[0].EventTitle != "Drama" {
		t.Fatalf("event title not joined: %q", feed[0].EventTitle)
	}

	marked, err := db.MarkAllNotificationsSeen(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if marked != 2 {
		t.Fatalf("want 2 marked, got %d", marked)
	}

	unseen, err = db.CountUnseenNotifications(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if unseen != 0 {
		t.Fatalf("want 0 unseen after mark, got %d", unseen)
	}
	feed, err = db.RecentUnseenParticipations(ctx, h.DB, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(feed) != 0 {
		t.Fatalf("seen entries must leave the feed, got %d", len(feed))
	}
}
