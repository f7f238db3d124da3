package gui

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/dashboard"
	"github.com/fmuoria/resume-admin/internal/models"
)

func (a *App) handleShowBirthdays() {
	birthdays := a.deps.Dashboard.Snapshot().Birthdays

	list := container.NewVBox()
	if len(birthdays) == 0 {
		list.Add(widget.NewLabel("No birthdays today"))
	}
	for _, b := range birthdays {
		list.Add(a.birthdayRow(b))
	}

	d := dialog.NewCustom(fmt.Sprintf("Today's Birthdays (%d)", len(birthdays)), "Close",
		container.NewVScroll(list), a.mainWindow)
	d.Resize(fyne.NewSize(480, 400))
	d.Show()
}

func (a *App) birthdayRow(b models.BirthdayNotification) fyne.CanvasObject {
	details := b.Name
	if b.Age > 0 {
		details = fmt.Sprintf("%s (turns %d)", b.Name, b.Age)
	}
	info := container.NewVBox(
		widget.NewLabelWithStyle(details, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel(models.FieldOr(b.ContactNumber)),
	)

	send := widget.NewButtonWithIcon("WhatsApp", theme.MailSendIcon(), func() {
		u, err := url.Parse(dashboard.WhatsAppURL(b.ContactNumber, b.Name))
		if err != nil {
			a.deps.Notifier.Error("Invalid contact number")
			return
		}
		if err := a.fyneApp.OpenURL(u); err != nil {
			log.Error().Err(err).Msg("failed to open WhatsApp link")
			a.deps.Notifier.Error("Failed to open the browser")
		}
	})
	if b.ContactNumber == "" {
		send.Disable()
	}

	return container.NewBorder(nil, nil, nil, send, info)
}
