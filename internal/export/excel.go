package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/resume-admin/internal/analytics"
	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	dataSheet      = "Detailed Resume Data"
	analyticsSheet = "Role Analytics"
)

// Columns is the fixed export column order
var Columns = []string{
	"Name", "Email", "Mobile Number", "Location", "Role",
	"LinkedIn", "GitHub", "Date of Birth", "Summary", "Received At", "Source",
}

var columnWidths = []float64{25, 30, 18, 20, 25, 30, 30, 15, 50, 20, 40}

// Writer encodes export rows into a file
type Writer interface {
	Write(rows []models.ExportRow, path string) (string, error)
}

// ExcelWriter writes rows to an .xlsx workbook
type ExcelWriter struct {
	// Overview adds a role analytics sheet when set
	Overview *analytics.Overview
}

// Write generates the workbook and returns the final path
func (w ExcelWriter) Write(rows []models.ExportRow, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f.SetSheetName("Sheet1", dataSheet)
	if err := createDataSheet(f, dataSheet, rows); err != nil {
		return "", fmt.Errorf("failed to create data sheet: %w", err)
	}

	if w.Overview != nil {
		if _, err := f.NewSheet(analyticsSheet); err != nil {
			return "", fmt.Errorf("failed to add analytics sheet: %w", err)
		}
		if err := createAnalyticsSheet(f, analyticsSheet, *w.Overview); err != nil {
			return "", fmt.Errorf("failed to create analytics sheet: %w", err)
		}
	}

	// Try to save the file directly
	if err := f.SaveAs(outputPath); err != nil {
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
}

// createDataSheet writes one row per resume under a styled header
func createDataSheet(f *excelize.File, sheetName string, rows []models.ExportRow) error {
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	for i, header := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, style)
	}

	for r, row := range rows {
		for c, value := range row.Values() {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if len(rows) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// createAnalyticsSheet writes the role distribution and a few totals
func createAnalyticsSheet(f *excelize.File, sheetName string, o analytics.Overview) error {
	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "C", 15)

	style, err := headerStyle(f)
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Total Resumes:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), o.Total)
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Distinct Roles:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), o.DistinctRoles)
	row += 2

	for col, header := range []string{"Role", "Count", "Share (%)"} {
		cell := fmt.Sprintf("%s%d", string(rune('A'+col)), row)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, style)
	}
	row++

	if !o.HasData() {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), analytics.NoData)
		return nil
	}

	for _, stat := range o.Roles {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), stat.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), stat.Count)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), analytics.FormatPercent(stat.Count, o.Total))
		row++
	}

	return nil
}

// Filename returns the default export file name for the given day
func Filename(now time.Time) string {
	return fmt.Sprintf("Resume_Data_%s.xlsx", now.Format("2006-01-02"))
}
