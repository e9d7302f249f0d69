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

func TestDeleteEvent_RecomputesEveryAffectedStudent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CSE")
	st1 := mustSeedStudent(t, h.DB, "CS-001", "Asha", 3, deptID)
	st2 := mustSeedStudent(t, h.DB, "CS-002", "Ravi", 3, deptID)
	quiz := mustSeedEvent(t, h.DB, "Quiz", models.CategoryAcademics, 2, 10)
	drama := mustSeedEvent(t, h.DB, "Drama", models.CategoryCultural, 3, 12)

	award(t, h, st1, quiz, 10, models.CategoryAcademics, models.KindAward)
	award(t, h, st2, quiz, 7, models.CategoryAcademics, models.KindAward)
	award(t, h, st1, drama, 3, models.CategoryCultural, models.KindAward)

	if err := db.DeleteEvent(ctx, h.DB, quiz); err != nil {
		t.Fatal(err)
	}

	// Both students lose exactly the deleted event's points; the other
	// event's entries survive.
	t1, err := db.GetTotals(ctx, h.DB, st1)
	if err != nil {
		t.Fatal(err)
	}
	if t1.AcademicsPoints != 0 || t1.CulturalPoints != 3 || t1.CompositePoints != 3 {
		t.Fatalf("student 1 after delete: want 0/3/3, got %d/%d/%d",
			t1.AcademicsPoints, t1.CulturalPoints, t1.CompositePoints)
	}
	t2, err := db.GetTotals(ctx, h.DB, st2)
	if err != nil {
		t.Fatal(err)
	}
	if t2.CompositePoints != 0 {
		t.Fatalf("student 2 after delete: want 0, got %d", t2.CompositePoints)
	}

	if _, err := db.GetEvent(ctx, h.DB, quiz); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("event must be gone, got %v", err)
	}
	txns, err := db.ListTransactionsByStudent(ctx, h.DB, st1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 1 || txns[0].EventID != drama {
		t.Fatalf("only the other event's entry may remain, got %+v", txns)
	}
}

func TestDeleteEvent_Unknown(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := db.DeleteEvent(context.Background(), h.DB, 424242); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
