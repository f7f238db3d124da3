package gui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/session"
)

func TestCellText(t *testing.T) {
	received := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)
	rec := models.ResumeRecord{
		ID:            "r1",
		HasAttachment: true,
		AttachmentData: &models.AttachmentData{
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
		},
		ReceivedAt: &received,
	}

	tests := []struct {
		col  int
		want string
	}{
		{0, "Ada Lovelace"},
		{1, "ada@example.com"},
		{2, models.NotSpecified},
		{3, models.NotAvailable},
		{4, models.NotAvailable},
		{5, "Mar 14, 2025"},
		{9, ""},
	}
	for _, tt := range tests {
		if got := cellText(rec, tt.col); got != tt.want {
			t.Errorf("cellText(col %d) = %q, want %q", tt.col, got, tt.want)
		}
	}

	rec.ReceivedAt = nil
	if got := cellText(rec, 5); got != models.NotAvailable {
		t.Errorf("Expected %q for a missing date, got %q", models.NotAvailable, got)
	}
}

func TestWithShare(t *testing.T) {
	if got := withShare(1, 4); got != "1 (25.0%)" {
		t.Errorf("Expected '1 (25.0%%)', got %q", got)
	}
	if got := withShare(0, 0); got != "0" {
		t.Errorf("Expected '0' for an empty set, got %q", got)
	}
}

func TestLabels(t *testing.T) {
	if statusText(true) == statusText(false) {
		t.Error("Expected distinct live and offline labels")
	}
	if themeButtonLabel(session.ThemeDark) != "Light mode" {
		t.Errorf("Expected 'Light mode' in dark theme, got %q", themeButtonLabel(session.ThemeDark))
	}
	if themeButtonLabel(session.ThemeLight) != "Dark mode" {
		t.Errorf("Expected 'Dark mode' in light theme, got %q", themeButtonLabel(session.ThemeLight))
	}
}

func TestDiscardPlaceholder(t *testing.T) {
	dir := t.TempDir()

	placeholder := filepath.Join(dir, "report")
	if err := os.WriteFile(placeholder, nil, 0644); err != nil {
		t.Fatalf("Failed to create placeholder: %v", err)
	}
	if err := discardPlaceholder(placeholder, placeholder+".xlsx"); err != nil {
		t.Fatalf("discardPlaceholder failed: %v", err)
	}
	if _, err := os.Stat(placeholder); !os.IsNotExist(err) {
		t.Error("Expected the empty placeholder to be removed when the workbook went elsewhere")
	}

	// a failed export leaves nothing behind either
	failed := filepath.Join(dir, "failed.xlsx")
	if err := os.WriteFile(failed, nil, 0644); err != nil {
		t.Fatalf("Failed to create placeholder: %v", err)
	}
	if err := discardPlaceholder(failed, ""); err != nil {
		t.Fatalf("discardPlaceholder failed: %v", err)
	}
	if _, err := os.Stat(failed); !os.IsNotExist(err) {
		t.Error("Expected the placeholder of a failed export to be removed")
	}

	written := filepath.Join(dir, "kept.xlsx")
	if err := os.WriteFile(written, []byte("PK"), 0644); err != nil {
		t.Fatalf("Failed to create workbook: %v", err)
	}
	if err := discardPlaceholder(written, written); err != nil {
		t.Fatalf("discardPlaceholder failed: %v", err)
	}
	if _, err := os.Stat(written); err != nil {
		t.Error("Expected the written workbook to be kept")
	}

	// a non-empty file that was not overwritten is never deleted
	existing := filepath.Join(dir, "notes")
	if err := os.WriteFile(existing, []byte("keep me"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if err := discardPlaceholder(existing, existing+".xlsx"); err != nil {
		t.Fatalf("discardPlaceholder failed: %v", err)
	}
	if _, err := os.Stat(existing); err != nil {
		t.Error("Expected a non-empty file to be kept")
	}

	if err := discardPlaceholder(filepath.Join(dir, "missing"), ""); err != nil {
		t.Errorf("Expected a missing placeholder to be ignored, got %v", err)
	}
}

func TestSettingsFormParse(t *testing.T) {
	form := settingsForm{
		apiURL:         "http://10.0.0.2:5000",
		downloadsDir:   "/tmp/dl",
		exportDir:      "/tmp/xl",
		pageSize:       " 12 ",
		healthInterval: "15",
	}
	got, err := form.parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got.PageSize != 12 || got.HealthIntervalSeconds != 15 {
		t.Errorf("Unexpected numbers %d/%d", got.PageSize, got.HealthIntervalSeconds)
	}
	if got.APIURL != "http://10.0.0.2:5000" {
		t.Errorf("Expected API URL to be carried over, got %q", got.APIURL)
	}

	form.pageSize = "six"
	if _, err := form.parse(); err == nil {
		t.Error("Expected a non-numeric page size to be rejected")
	}
	form.pageSize = "6"
	form.healthInterval = ""
	if _, err := form.parse(); err == nil {
		t.Error("Expected an empty health interval to be rejected")
	}
}
