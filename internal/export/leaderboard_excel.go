package export

import (
	"fmt"
	"strconv"

	"github.com/Spok95/student-of-the-year/internal/models"
	"github.com/xuri/excelize/v2"
)

type LeaderboardWorkbook struct {
	File *excelize.File
}

var leaderboardHeader = []string{
	"Rank", "Roll number", "Name", "Year", "Department",
	"Academics", "Sports", "Cultural", "Technical", "Social",
	"Composite", "Wins",
}

// NewLeaderboardWorkbook renders a ranked standing as a single-sheet workbook
// with a bold, filterable header.
func NewLeaderboardWorkbook(ranked []models.RankedStudent) (*LeaderboardWorkbook, error) {
	f := excelize.NewFile()
	const sheet = "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for col, h := range leaderboardHeader {
		cell := fmt.Sprintf("%s1", colName(col+1))
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	end := colName(len(leaderboardHeader)) + "1"
	_ = f.SetCellStyle(sheet, "A1", end, bold)
	_ = f.AutoFilter(sheet, "A1:"+end, nil)

	for i, r := range ranked {
		row := []string{
			strconv.Itoa(r.Rank),
			r.Student.RollNumber,
			r.Student.Name,
			strconv.Itoa(r.Student.Year),
			r.DepartmentName,
			strconv.Itoa(r.Total.AcademicsPoints),
			strconv.Itoa(r.Total.SportsPoints),
			strconv.Itoa(r.Total.CulturalPoints),
			strconv.Itoa(r.Total.TechnicalPoints),
			strconv.Itoa(r.Total.SocialPoints),
			strconv.Itoa(r.Total.CompositePoints),
			strconv.Itoa(r.Total.Wins),
		}
		for c, val := range row {
			cell := fmt.Sprintf("%s%d", colName(c+1), i+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	// width heuristic: header length vs the first rows
	for c := 1; c <= len(leaderboardHeader); c++ {
		maxim := len(leaderboardHeader[c-1])
		for r := 0; r < min(50, len(ranked)); r++ {
			if c == 3 {
				if l := len(ranked[r].Student.Name); l > maxim {
					maxim = l
				}
			}
			if c == 5 {
				if l := len(ranked[r].DepartmentName); l > maxim {
					maxim = l
				}
			}
		}
		w := float64(maxim) * 0.9
		if w < 10 {
			w = 10
		}
		if w > 40 {
			w = 40
		}
		_ = f.SetColWidth(sheet, colName(c), colName(c), w)
	}

	return &LeaderboardWorkbook{File: f}, nil
}

func colName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
