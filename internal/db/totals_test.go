//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Spok95/student-of-the-year/internal/db"
	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/Spok95/student-of-the-year/internal/testutil/testdb"
)

func TestAwardPoints_AggregatesPerCategory(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CSE")
	stID := mustSeedStudent(t, h.DB, "CS-001", "Asha", 3, deptID)
	evID := mustSeedEvent(t, h.DB, "Hackathon", models.CategoryTechnical, 5, 20)

	awards := []struct {
		points   int
		category models.Category
	}{
		{10, models.CategoryAcademics},
		{15, models.CategoryAcademics},
		{7, models.CategorySports},
		{3, models.CategoryTechnical},
	}
	for _, a := range awards {
		if _, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
			StudentID: stID,
			EventID:   evID,
			Points:    a.points,
			Category:  a.category,
			Kind:      models.KindAward,
		}); err != nil {
			t.Fatal(err)
		}
	}

	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.AcademicsPoints != 25 {
		t.Fatalf("academics: want 25, got %d", total.AcademicsPoints)
	}
	if total.SportsPoints != 7 {
		t.Fatalf("sports: want 7, got %d", total.SportsPoints)
	}
	if total.TechnicalPoints != 3 {
		t.Fatalf("technical: want 3, got %d", total.TechnicalPoints)
	}
	if total.CulturalPoints != 0 || total.SocialPoints != 0 {
		t.Fatalf("untouched categories must stay zero, got cultural=%d social=%d",
			total.CulturalPoints, total.SocialPoints)
	}
	if total.CompositePoints != 35 {
		t.Fatalf("composite: want 35, got %d", total.CompositePoints)
	}
}

func TestDeleteTransaction_RecomputesTotals(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "ECE")
	stID := mustSeedStudent(t, h.DB, "EC-001", "Ravi", 2, deptID)
	evID := mustSeedEvent(t, h.DB, "Quiz", models.CategoryAcademics, 2, 10)

	first, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
		StudentID: stID, EventID: evID, Points: 10,
		Category: models.CategoryAcademics, Kind: models.KindAward,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
		StudentID: stID, EventID: evID, Points: 4,
		Category: models.CategoryAcademics, Kind: models.KindAward,
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteTransaction(ctx, h.DB, first.ID); err != nil {
		t.Fatal(err)
	}

	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.AcademicsPoints != 4 || total.CompositePoints != 4 {
		t.Fatalf("after delete want 4/4, got %d/%d",
			total.AcademicsPoints, total.CompositePoints)
	}

	if err := db.DeleteTransaction(ctx, h.DB, first.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteTransactionsByStudent_LeavesZeroRow(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "MECH")
	stID := mustSeedStudent(t, h.DB, "ME-001", "Priya", 4, deptID)
	evID := mustSeedEvent(t, h.DB, "Drama", models.CategoryCultural, 3, 12)

	if _, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
		StudentID: stID, EventID: evID, Points: 9,
		Category: models.CategoryCultural, Kind: models.KindAward,
	}); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteTransactionsByStudent(ctx, h.DB, stID); err != nil {
		t.Fatal(err)
	}

	// The totals row survives the wipe, zeroed rather than deleted.
	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.CompositePoints != 0 || total.CulturalPoints != 0 {
		t.Fatalf("want zeroed totals, got composite=%d cultural=%d",
			total.CompositePoints, total.CulturalPoints)
	}
}

func TestRecalculateTotals_IgnoresUnknownCategories(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CIVIL")
	stID := mustSeedStudent(t, h.DB, "CV-001", "Neel", 1, deptID)
	evID := mustSeedEvent(t, h.DB, "Essay", models.CategoryAcademics, 2, 8)

	if _, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
		StudentID: stID, EventID: evID, Points: 6,
		Category: models.CategoryAcademics, Kind: models.KindAward,
	}); err != nil {
		t.Fatal(err)
	}
	// Ledger row with a category aggregation does not know about.
	if _, err := h.DB.Exec(`
		INSERT INTO point_transactions (student_id, event_id, points, category, kind)
		VALUES ($1, $2, 99, 'chess-club', 'award')`, stID, evID); err != nil {
		t.Fatal(err)
	}

	if err := db.RecalculateTotals(ctx, h.DB, stID); err != nil {
		t.Fatal(err)
	}

	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.CompositePoints != 6 {
		t.Fatalf("unknown category leaked into composite: want 6, got %d", total.CompositePoints)
	}

	// Recomputing again from the same ledger must not drift.
	if err := db.RecalculateTotals(ctx, h.DB, stID); err != nil {
		t.Fatal(err)
	}
	again, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if again.CompositePoints != total.CompositePoints || again.AcademicsPoints != total.AcademicsPoints {
		t.Fatalf("recalculate is not idempotent: %+v vs %+v", total, again)
	}
}

func TestGetTotals_Wins(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "EEE")
	stID := mustSeedStudent(t, h.DB, "EE-001", "Mira", 2, deptID)
	evID := mustSeedEvent(t, h.DB, "Robotics", models.CategoryTechnical, 5, 25)

	for i := 0; i < 2; i++ {
		if _, err := db.AwardPoints(ctx, h.DB, models.PointTransaction{
			StudentID: stID, EventID: evID, Points: 25,
			Category: models.CategoryTechnical, Kind: models.KindWin,
			Reason: ptrString(models.ReasonWinner),
		}); err != nil {
			t.Fatal(err)
		}
	}

	total, err := db.GetTotals(ctx, h.DB, stID)
	if err != nil {
		t.Fatal(err)
	}
	if total.Wins != 2 {
		t.Fatalf("wins: want 2, got %d", total.Wins)
	}
}

func TestGetTotals_UnknownStudent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := db.GetTotals(context.Background(), h.DB, 424242); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAwardPoints_Parallel(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "IT")
	st1ID := mustSeedStudent(t, h.DB, "IT-001", "Kiran", 3, deptID)
	st2ID := mustSeedStudent(t, h.DB, "IT-002", "Leela", 3, deptID)
	evID := mustSeedEvent(t, h.DB, "Marathon", models.CategorySports, 5, 15)

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = db.AwardPoints(ctx, h.DB, models.PointTransaction{
				StudentID: st1ID, EventID: evID, Points: 10,
				Category: models.CategorySports, Kind: models.KindAward,
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = db.AwardPoints(ctx, h.DB, models.PointTransaction{
				StudentID: st2ID, EventID: evID, Points: 10,
				Category: models.CategorySports, Kind: models.KindAward,
			})
		}()
	}
	wg.Wait()

	t1, err := db.GetTotals(ctx, h.DB, st1ID)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := db.GetTotals(ctx, h.DB, st2ID)
	if err != nil {
		t.Fatal(err)
	}
	if t1.CompositePoints != 500 || t2.CompositePoints != 500 {
		t.Fatalf("want 500 each, got %d and %d", t1.CompositePoints, t2.CompositePoints)
	}
}
