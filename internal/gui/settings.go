package gui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/client"
	"github.com/fmuoria/resume-admin/internal/config"
)

// settingsForm holds the raw text of the settings entries
type settingsForm struct {
	apiURL         string
	downloadsDir   string
	exportDir      string
	pageSize       string
	healthInterval string
}

// parse converts the entries into config settings
func (f settingsForm) parse() (config.Settings, error) {
	pageSize, err := strconv.Atoi(strings.TrimSpace(f.pageSize))
	if err != nil {
		return config.Settings{}, fmt.Errorf("page size must be a whole number")
	}
	interval, err := strconv.Atoi(strings.TrimSpace(f.healthInterval))
	if err != nil {
		return config.Settings{}, fmt.Errorf("health interval must be a whole number of seconds")
	}
	return config.Settings{
		APIURL:                f.apiURL,
		DownloadsDir:          f.downloadsDir,
		ExportDir:             f.exportDir,
		PageSize:              pageSize,
		HealthIntervalSeconds: interval,
	}, nil
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	current := a.deps.Config.Settings()

	apiEntry := widget.NewEntry()
	apiEntry.SetText(current.APIURL)

	downloadsEntry := widget.NewEntry()
	downloadsEntry.SetText(current.DownloadsDir)

	exportEntry := widget.NewEntry()
	exportEntry.SetText(current.ExportDir)

	pageSizeEntry := widget.NewEntry()
	pageSizeEntry.SetText(strconv.Itoa(current.PageSize))

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(strconv.Itoa(current.HealthIntervalSeconds))

	browse := func(target *widget.Entry) *widget.Button {
		return widget.NewButton("Browse...", func() {
			dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
				if err == nil && dir != nil {
					target.SetText(dir.Path())
				}
			}, a.mainWindow)
		})
	}

	form := widget.NewForm(
		widget.NewFormItem("API URL", apiEntry),
		widget.NewFormItem("Downloads folder", container.NewBorder(nil, nil, nil, browse(downloadsEntry), downloadsEntry)),
		widget.NewFormItem("Export folder", container.NewBorder(nil, nil, nil, browse(exportEntry), exportEntry)),
		widget.NewFormItem("Page size", pageSizeEntry),
		widget.NewFormItem("Health check (seconds)", intervalEntry),
	)

	read := func() (*config.Config, error) {
		settings, err := settingsForm{
			apiURL:         apiEntry.Text,
			downloadsDir:   downloadsEntry.Text,
			exportDir:      exportEntry.Text,
			pageSize:       pageSizeEntry.Text,
			healthInterval: intervalEntry.Text,
		}.parse()
		if err != nil {
			return nil, err
		}
		return a.deps.Config.WithSettings(settings)
	}

	saveBtn := widget.NewButton("Save Settings", func() {
		next, err := read()
		if err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		if err := next.Save(); err != nil {
			log.Error().Err(err).Msg("failed to save settings")
			dialog.ShowError(err, a.mainWindow)
			return
		}
		*a.deps.Config = *next
		log.Info().Str("api", next.APIURL).Msg("settings saved")
		dialog.ShowInformation("Success", "Settings saved. Restart the app to apply them.", a.mainWindow)
	})

	testBtn := widget.NewButton("Test Connection", func() {
		next, err := read()
		if err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		go func() {
			err := client.New(next.APIURL, nil).Health(a.ctx)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("server unreachable: %w", err), a.mainWindow)
					return
				}
				dialog.ShowInformation("Success", "Server is reachable", a.mainWindow)
			})
		}()
	})

	return container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn),
	)
}
