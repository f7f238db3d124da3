package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/client"
)

const loginFallback = "Login failed. Please check your credentials and try again."

// createLoginView builds the sign-in form. Errors are shown inline.
func (a *App) createLoginView() fyne.CanvasObject {
	username := widget.NewEntry()
	username.SetPlaceHolder("Username")
	password := widget.NewPasswordEntry()
	password.SetPlaceHolder("Password")

	errorLabel := widget.NewLabel("")
	errorLabel.Wrapping = fyne.TextWrapWord
	errorLabel.Hide()

	var loginBtn *widget.Button
	submit := func() {
		errorLabel.Hide()
		loginBtn.Disable()
		loginBtn.SetText("Signing in...")

		user, pass := username.Text, password.Text
		go func() {
			resp, err := a.deps.Client.Login(a.ctx, user, pass)
			if err == nil {
				err = a.deps.Session.Save(resp.Token, resp.Admin)
			}

			fyne.Do(func() {
				loginBtn.Enable()
				loginBtn.SetText("Sign in")
				if err != nil {
					log.Info().Err(err).Msg("login rejected")
					errorLabel.SetText(client.Message(err, loginFallback))
					errorLabel.Show()
					return
				}
				password.SetText("")
				a.deps.Gate.SignedIn()
			})
		}()
	}

	loginBtn = widget.NewButton("Sign in", submit)
	loginBtn.Importance = widget.HighImportance
	password.OnSubmitted = func(string) { submit() }

	settingsBtn := widget.NewButton("Server settings", func() {
		d := dialog.NewCustom("Settings", "Close", a.createSettingsTab(), a.mainWindow)
		d.Resize(fyne.NewSize(560, 360))
		d.Show()
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("Resume Admin", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Sign in to manage incoming resumes", fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewForm(
			widget.NewFormItem("Username", username),
			widget.NewFormItem("Password", password),
		),
		errorLabel,
		loginBtn,
		widget.NewLabelWithStyle("Server: "+a.deps.Client.BaseURL(), fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		settingsBtn,
	)

	return container.NewCenter(container.NewGridWrap(fyne.NewSize(380, 360), form))
}
