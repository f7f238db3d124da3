package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-admin/internal/models"
)

// showEditDialog opens the details form for one record, pre-filled
func showEditDialog(a *App, record models.ResumeRecord) {
	current := models.DetailsFromRecord(record)

	bind := func(value, placeholder string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(value)
		e.SetPlaceHolder(placeholder)
		return e
	}

	name := bind(current.Name, "Full name")
	email := bind(current.Email, "email@example.com")
	contact := bind(current.ContactNumber, "+254 700 000000")
	dob := bind(current.DateOfBirth, "YYYY-MM-DD")
	role := bind(current.Role, "Role")
	location := bind(current.Location, "City, Country")
	experience := bind(current.Experience, "Years of experience")
	linkedIn := bind(current.Links.LinkedIn, "https://linkedin.com/in/...")
	github := bind(current.Links.GitHub, "https://github.com/...")
	portfolio := bind(current.Links.Portfolio, "https://...")

	summary := widget.NewMultiLineEntry()
	summary.SetText(current.Summary)
	summary.SetMinRowsVisible(4)
	summary.Wrapping = fyne.TextWrapWord

	items := []*widget.FormItem{
		widget.NewFormItem("Name", name),
		widget.NewFormItem("Email", email),
		widget.NewFormItem("Contact", contact),
		widget.NewFormItem("Date of birth", dob),
		widget.NewFormItem("Role", role),
		widget.NewFormItem("Location", location),
		widget.NewFormItem("Experience", experience),
		widget.NewFormItem("Summary", summary),
		widget.NewFormItem("LinkedIn", linkedIn),
		widget.NewFormItem("GitHub", github),
		widget.NewFormItem("Portfolio", portfolio),
	}

	d := dialog.NewForm("Edit Resume Details", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		update := models.DetailsUpdate{
			Name:          name.Text,
			Email:         email.Text,
			ContactNumber: contact.Text,
			DateOfBirth:   dob.Text,
			Role:          role.Text,
			Location:      location.Text,
			Experience:    experience.Text,
			Summary:       summary.Text,
			Links: models.Links{
				LinkedIn:  linkedIn.Text,
				GitHub:    github.Text,
				Portfolio: portfolio.Text,
			},
		}
		go a.deps.Dashboard.SaveDetails(a.ctx, record.ID, update)
	}, a.mainWindow)
	d.Resize(fyne.NewSize(560, 640))
	d.Show()
}
