package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-admin/internal/analytics"
	"github.com/fmuoria/resume-admin/internal/models"
)

func sampleRecords() []models.ResumeRecord {
	received := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	return []models.ResumeRecord{
		{
			ID:            "1",
			HasAttachment: true,
			Subject:       "Application: Backend Engineer",
			ReceivedAt:    &received,
			AttachmentData: &models.AttachmentData{
				Name:          "Jane Doe",
				Email:         "jane@example.com",
				ContactNumber: "+1 555 0100",
				Location:      "Nairobi",
				Role:          "Backend Engineer",
				DateOfBirth:   "1990-04-02",
				Summary:       "Go developer",
				Links:         models.Links{LinkedIn: "https://linkedin.com/in/jane", GitHub: "https://github.com/jane"},
			},
		},
		{
			ID:             "2",
			HasAttachment:  true,
			AttachmentData: &models.AttachmentData{Email: "anon@example.com"},
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRecords(), time.UTC)
	require.Len(t, rows, 2)

	full := rows[0]
	assert.Equal(t, "Jane Doe", full.Name)
	assert.Equal(t, "+1 555 0100", full.MobileNumber)
	assert.Equal(t, "3/5/2024, 2:07:09 PM", full.ReceivedAt)
	assert.Equal(t, "Application: Backend Engineer", full.Source)

	sparse := rows[1]
	assert.Equal(t, models.NotAvailable, sparse.Name)
	assert.Equal(t, "anon@example.com", sparse.Email)
	assert.Equal(t, models.NotSpecified, sparse.Role)
	assert.Equal(t, models.NotAvailable, sparse.ReceivedAt)
	assert.Equal(t, DefaultSource, sparse.Source)

	for _, row := range rows {
		values := row.Values()
		assert.Len(t, values, len(Columns))
		for i, v := range values {
			assert.NotEmpty(t, v, "column %s must never be blank", Columns[i])
		}
	}

	assert.Empty(t, Rows(nil, nil))
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 10, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Resume_Data_2025-10-15.xlsx", Filename(now))
}

// TestExcelWriter_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExcelWriter_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "test_export")
	path, err := ExcelWriter{}.Write(Rows(sampleRecords(), time.UTC), outputPath)
	require.NoError(t, err)

	assert.Equal(t, outputPath+".xlsx", path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.False(t, strings.HasSuffix(path, ".xlsx.xlsx"))
}

func TestExcelWriter_WritesRowsInColumnOrder(t *testing.T) {
	tmpDir := t.TempDir()
	rows := Rows(sampleRecords(), time.UTC)

	path, err := ExcelWriter{}.Write(rows, filepath.Join(tmpDir, "data.xlsx"))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(dataSheet)
	require.NoError(t, err)
	require.Len(t, got, len(rows)+1)
	assert.Equal(t, Columns, got[0])
	assert.Equal(t, rows[0].Values(), got[1])
	assert.Equal(t, rows[1].Values(), got[2])
}

func TestExcelWriter_AnalyticsSheet(t *testing.T) {
	tmpDir := t.TempDir()
	records := sampleRecords()
	overview := analytics.Summarize(records)

	path, err := ExcelWriter{Overview: &overview}.Write(Rows(records, time.UTC), filepath.Join(tmpDir, "with_stats.xlsx"))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), analyticsSheet)
	total, err := f.GetCellValue(analyticsSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}

// TestExcelWriter_EmptyRows tests export with no resumes
func TestExcelWriter_EmptyRows(t *testing.T) {
	tmpDir := t.TempDir()

	empty := analytics.Summarize(nil)
	path, err := ExcelWriter{Overview: &empty}.Write(nil, filepath.Join(tmpDir, "empty.xlsx"))
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
