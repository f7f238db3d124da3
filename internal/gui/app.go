package gui

import (
	"context"
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/client"
	"github.com/fmuoria/resume-admin/internal/config"
	"github.com/fmuoria/resume-admin/internal/dashboard"
	"github.com/fmuoria/resume-admin/internal/live"
	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/notify"
	"github.com/fmuoria/resume-admin/internal/session"
)

const appID = "com.fmuoria.resumeadmin"

// Deps are the services the window drives
type Deps struct {
	Config    *config.Config
	Session   *session.Context
	Gate      *session.Gate
	Prefs     *session.Preferences
	Client    *client.Client
	Dashboard *dashboard.Controller
	Live      *live.Subscription
	Notifier  *notify.Notifier
}

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	deps       Deps
	ctx        context.Context

	// screen is the state currently shown, to ignore repeated transitions
	screen session.State

	// Shared chrome
	notificationLabel *widget.Label
	statusLabel       *widget.Label
	adminLabel        *widget.Label
	themeBtn          *widget.Button
	birthdaysBtn      *widget.Button

	resumes  *resumesTab
	stats    *analyticsTab
	uploader *uploadTab
}

// NewApp creates a new GUI application
func NewApp(deps Deps) *App {
	a := app.NewWithID(appID)
	w := a.NewWindow("Resume Admin")
	w.Resize(fyne.NewSize(1100, 750))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		deps:       deps,
		ctx:        context.Background(),
		screen:     session.Unchecked,
	}

	guiApp.applyTheme(deps.Prefs.ThemeMode())
	guiApp.setupChrome()
	guiApp.wire()

	w.SetContent(container.NewCenter(widget.NewLabel("Checking session...")))
	return guiApp
}

// Run resolves the stored session and starts the GUI loop
func (a *App) Run() {
	go a.deps.Gate.Check(a.ctx, a.deps.Client)
	a.mainWindow.ShowAndRun()
}

func (a *App) setupChrome() {
	a.notificationLabel = widget.NewLabel("")
	a.notificationLabel.Wrapping = fyne.TextWrapWord
	a.notificationLabel.Hide()

	a.statusLabel = widget.NewLabel("○ Offline")
	a.adminLabel = widget.NewLabel("")
	a.themeBtn = widget.NewButton(themeButtonLabel(a.deps.Prefs.ThemeMode()), a.handleToggleTheme)
	a.birthdaysBtn = widget.NewButton("Birthdays", a.handleShowBirthdays)
}

// wire subscribes the window to every background source. Callbacks arrive on
// other goroutines, so all UI updates go through fyne.Do.
func (a *App) wire() {
	d := a.deps

	d.Gate.OnChange(func(s session.State) {
		if !s.Resolved() {
			return
		}
		fyne.Do(func() { a.showScreen(s) })
	})

	d.Notifier.Subscribe(func(n *notify.Notification) {
		fyne.Do(func() { a.showNotification(n) })
	})

	d.Live.OnStatus(func(connected bool) {
		fyne.Do(func() { a.statusLabel.SetText(statusText(connected)) })
	})

	d.Live.OnNewRecord(func(e models.NewRecordEvent) {
		a.fyneApp.SendNotification(fyne.NewNotification("New resume", e.Message))
		// run outside the push-channel goroutine so a sign-out can stop it
		go d.Dashboard.HandleNewRecord(a.ctx, e)
	})

	d.Dashboard.OnChange(func() {
		fyne.Do(a.render)
	})
}

// showScreen swaps between the login and dashboard views
func (a *App) showScreen(s session.State) {
	if s == a.screen {
		return
	}
	a.screen = s

	switch s {
	case session.Authenticated:
		a.mainWindow.SetContent(a.createDashboard())
		a.startSession()
	default:
		go a.deps.Live.Stop()
		a.deps.Dashboard.Reset()
		a.mainWindow.SetContent(a.createLoginView())
	}
}

// startSession loads the data of a freshly authenticated session
func (a *App) startSession() {
	d := a.deps
	if admin := d.Session.Admin(); admin != nil {
		a.adminLabel.SetText(admin.Username)
	}

	d.Live.Start(a.ctx)
	go func() {
		if err := d.Dashboard.Refresh(a.ctx); err != nil {
			log.Warn().Err(err).Msg("initial fetch failed")
		}
	}()
	go func() {
		if err := d.Dashboard.LoadBirthdays(a.ctx); err == nil {
			fyne.Do(a.render)
		}
	}()
}

func (a *App) createDashboard() fyne.CanvasObject {
	a.resumes = newResumesTab(a)
	a.stats = newAnalyticsTab()
	a.uploader = newUploadTab(a)

	connectBtn := widget.NewButton("Connect Outlook", a.handleConnectMailbox)
	logoutBtn := widget.NewButton("Logout", func() {
		a.deps.Dashboard.Logout(a.deps.Gate)
	})

	header := container.NewHBox(
		widget.NewLabelWithStyle("Resume Admin", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.statusLabel,
		layoutSpacer(),
		a.adminLabel,
		a.birthdaysBtn,
		connectBtn,
		a.themeBtn,
		logoutBtn,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("Resumes", a.resumes.content()),
		container.NewTabItem("Analytics", a.stats.content()),
		container.NewTabItem("Upload", a.uploader.content()),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.render()
	return container.NewBorder(
		container.NewVBox(header, a.notificationLabel, widget.NewSeparator()),
		nil, nil, nil,
		tabs,
	)
}

// render pushes the current dashboard snapshot into the widgets
func (a *App) render() {
	if a.screen != session.Authenticated || a.resumes == nil {
		return
	}
	snap := a.deps.Dashboard.Snapshot()

	a.resumes.render(snap)
	a.stats.render(snap)
	a.birthdaysBtn.SetText(fmt.Sprintf("Birthdays (%d)", len(snap.Birthdays)))
	a.statusLabel.SetText(statusText(a.deps.Live.Connected()))
}

func (a *App) showNotification(n *notify.Notification) {
	if n == nil {
		a.notificationLabel.SetText("")
		a.notificationLabel.Hide()
		return
	}

	prefix := "✔ "
	if n.Kind == notify.Error {
		prefix = "✖ "
	}
	a.notificationLabel.SetText(prefix + n.Message)
	a.notificationLabel.Show()
}

// handleConnectMailbox opens the server's mailbox-connect flow in the browser
func (a *App) handleConnectMailbox() {
	u, err := url.Parse(a.deps.Client.MailboxLoginURL())
	if err != nil {
		a.deps.Notifier.Error("Invalid server URL")
		return
	}
	if err := a.fyneApp.OpenURL(u); err != nil {
		log.Error().Err(err).Msg("failed to open browser")
		a.deps.Notifier.Error("Failed to open the browser")
	}
}

func (a *App) handleToggleTheme() {
	mode, err := a.deps.Prefs.ToggleThemeMode()
	if err != nil {
		log.Error().Err(err).Msg("failed to save theme mode")
	}
	a.applyTheme(mode)
	a.themeBtn.SetText(themeButtonLabel(mode))
}

func statusText(connected bool) string {
	if connected {
		return "● Live"
	}
	return "○ Offline"
}
