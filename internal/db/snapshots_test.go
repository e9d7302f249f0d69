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

func TestCreateSnapshot_EmptyOrganization(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if _, err := db.CreateSnapshot(context.Background(), h.DB); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	var n int
	if err := h.DB.QueryRow(`SELECT COUNT(*) FROM final_snapshots`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("failed snapshot must write nothing, found %d rows", n)
	}
}

func TestSnapshot_FrozenAgainstLaterAwards(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CSE")
	stID := mustSeedStudent(t, h.DB, "CS-001", "Asha", 3, deptID)
	evID := mustSeedEvent(t, h.DB, "Quiz", models.CategoryAcademics, 2, 10)
	award(t, h, stID, evID, 12, models.CategoryAcademics, models.KindAward)

	n, err := db.CreateSnapshot(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 snapshot row, got %d", n)
	}

	// Mutate the ledger after the freeze.
	award(t, h, stID, evID, 100, models.CategoryAcademics, models.KindAward)

	var frozen int
	if err := h.DB.QueryRow(
		`SELECT composite_points FROM final_snapshots WHERE student_id = $1`, stID).Scan(&frozen); err != nil {
		t.Fatal(err)
	}
	if frozen != 12 {
		t.Fatalf("snapshot must keep pre-award totals: want 12, got %d", frozen)
	}
}

func TestRevealWinner_GatesAndReveals(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	if _, err := db.RevealWinner(ctx, h.DB); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("reveal without snapshot: want ErrNotFound, got %v", err)
	}

	deptID := mustSeedDepartment(t, h.DB, "ECE")
	champ := mustSeedStudent(t, h.DB, "EC-001", "Mira", 2, deptID)
	other := mustSeedStudent(t, h.DB, "EC-002", "Ravi", 2, deptID)
	evID := mustSeedEvent(t, h.DB, "Robotics", models.CategoryTechnical, 5, 25)
	award(t, h, champ, evID, 25, models.CategoryTechnical, models.KindWin)
	award(t, h, other, evID, 5, models.CategoryTechnical, models.KindAward)

	if _, err := db.CreateSnapshot(ctx, h.DB); err != nil {
		t.Fatal(err)
	}

	// Nothing is visible until reveal.
	revealed, err := db.ListRevealedSnapshots(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(revealed) != 0 {
		t.Fatalf("want no revealed rows before reveal, got %d", len(revealed))
	}

	w, err := db.RevealWinner(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if w.Student.ID != champ {
		t.Fatalf("wrong winner: want %d, got %d", champ, w.Student.ID)
	}
	if w.Snapshot.Rank != 1 || !w.Snapshot.Revealed {
		t.Fatalf("winner snapshot not marked: %+v", w.Snapshot)
	}
	if w.DepartmentName != "ECE" {
		t.Fatalf("department not joined: %q", w.DepartmentName)
	}
	if w.Total.Wins != 1 {
		t.Fatalf("live wins: want 1, got %d", w.Total.Wins)
	}

	revealed, err = db.ListRevealedSnapshots(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if len(revealed) != 1 || revealed[0].StudentID != champ {
		t.Fatalf("exactly the rank-1 row must be revealed, got %+v", revealed)
	}
}

func TestRevealWinner_LatestGeneration(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "IT")
	first := mustSeedStudent(t, h.DB, "IT-001", "Kiran", 3, deptID)
	second := mustSeedStudent(t, h.DB, "IT-002", "Leela", 3, deptID)
	evID := mustSeedEvent(t, h.DB, "Marathon", models.CategorySports, 5, 15)

	award(t, h, first, evID, 10, models.CategorySports, models.KindAward)
	if _, err := db.CreateSnapshot(ctx, h.DB); err != nil {
		t.Fatal(err)
	}

	// The standings flip, then a second freeze supersedes the first.
	award(t, h, second, evID, 50, models.CategorySports, models.KindAward)
	if _, err := db.CreateSnapshot(ctx, h.DB); err != nil {
		t.Fatal(err)
	}

	w, err := db.RevealWinner(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	if w.Student.ID != second {
		t.Fatalf("reveal must read the latest generation: want %d, got %d", second, w.Student.ID)
	}
}

func TestRevealWinner_DeletedStudent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	deptID := mustSeedDepartment(t, h.DB, "CIVIL")
	stID := mustSeedStudent(t, h.DB, "CV-001", "Neel", 1, deptID)
	evID := mustSeedEvent(t, h.DB, "Essay", models.CategoryAcademics, 2, 8)
	award(t, h, stID, evID, 8, models.CategoryAcademics, models.KindAward)

	if _, err := db.CreateSnapshot(ctx, h.DB); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteStudent(ctx, h.DB, stID); err != nil {
		t.Fatal(err)
	}

	// The snapshot row survives the deletion, but the reveal cannot
	// resolve the winner any more.
	if _, err := db.RevealWinner(ctx, h.DB); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound for deleted winner, got %v", err)
	}

	var n int
	if err := h.DB.QueryRow(`SELECT COUNT(*) FROM final_snapshots`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("snapshot rows must outlive the student, found %d", n)
	}
}
