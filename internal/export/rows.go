package export

import (
	"time"

	"github.com/fmuoria/resume-admin/internal/models"
)

const (
	// DefaultSource labels records that did not arrive through a mailbox
	DefaultSource = "Web Upload"
	// ReceivedAtLayout matches the en-US locale date-time rendering
	ReceivedAtLayout = "1/2/2006, 3:04:05 PM"
)

// Rows flattens the filtered resumes into export rows.
// receivedAt is rendered in loc; a nil loc means local time.
func Rows(filtered []models.ResumeRecord, loc *time.Location) []models.ExportRow {
	if loc == nil {
		loc = time.Local
	}

	rows := make([]models.ExportRow, 0, len(filtered))
	for _, r := range filtered {
		d := r.Data()

		receivedAt := models.NotAvailable
		if r.ReceivedAt != nil && !r.ReceivedAt.IsZero() {
			receivedAt = r.ReceivedAt.In(loc).Format(ReceivedAtLayout)
		}

		source := r.Subject
		if source == "" {
			source = DefaultSource
		}

		rows = append(rows, models.ExportRow{
			Name:         models.FieldOr(d.Name),
			Email:        models.FieldOr(d.Email),
			MobileNumber: models.FieldOr(d.ContactNumber),
			Location:     models.FieldOr(d.Location),
			Role:         models.RoleOrDefault(d.Role),
			LinkedIn:     models.FieldOr(d.Links.LinkedIn),
			GitHub:       models.FieldOr(d.Links.GitHub),
			DateOfBirth:  models.FieldOr(d.DateOfBirth),
			Summary:      models.FieldOr(d.Summary),
			ReceivedAt:   receivedAt,
			Source:       source,
		})
	}
	return rows
}
