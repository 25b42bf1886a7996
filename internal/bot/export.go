package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bandroom/internal/models"
	"bandroom/internal/schedule"

	"github.com/xuri/excelize/v2"
)

// exportMonthToExcel создает Excel файл с расписанием репетиций за месяц
func (b *Bot) exportMonthToExcel(ctx context.Context, year int, month time.Month) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	snap := b.store.Snapshot()
	days := schedule.MonthDays(year, month, b.loc)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Репетиции"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Репетиции: %s", monthTitle(year, month)))

	headers := []string{"Дата", "День недели", "Слот", "Ансамбль"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A2", "D2", headerStyle)

	row := 3
	for _, day := range days {
		key := schedule.DateKey(day)
		slots := schedule.SlotsForDate(day, snap.Rules, snap.SpecialSchedules)

		bySlot := make(map[string]models.Booking)
		for _, bk := range snap.Bookings {
			if bk.Date == key {
				bySlot[bk.TimeSlot] = bk
			}
		}

		for _, slot := range slots {
			band := ""
			if bk, ok := bySlot[slot]; ok {
				band = bk.BandName
			}
			b.writeExportRow(f, sheetName, row, day, slot, band)
			row++
			delete(bySlot, slot)
		}

		// Брони вне актуального расписания тоже попадают в выгрузку
		for slot, bk := range bySlot {
			b.writeExportRow(f, sheetName, row, day, slot, bk.BandName)
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 16)
	_ = f.SetColWidth(sheetName, "C", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "D", 30)

	_ = f.MergeCell(sheetName, "A1", "D1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("rehearsals_%04d-%02d.xlsx", year, int(month))
	filePath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	b.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (b *Bot) writeExportRow(f *excelize.File, sheetName string, row int, day time.Time, slot, band string) {
	values := []interface{}{
		day.Format("02.01.2006"),
		weekdayFull[schedule.Weekday(day)],
		slot,
		band,
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
}
