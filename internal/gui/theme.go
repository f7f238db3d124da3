package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"

	"github.com/fmuoria/resume-admin/internal/session"
)

// variantTheme renders the default theme in a fixed light or dark variant
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

func (a *App) applyTheme(mode string) {
	variant := theme.VariantLight
	if mode == session.ThemeDark {
		variant = theme.VariantDark
	}
	a.fyneApp.Settings().SetTheme(&variantTheme{Theme: theme.DefaultTheme(), variant: variant})
}

func themeButtonLabel(mode string) string {
	if mode == session.ThemeDark {
		return "Light mode"
	}
	return "Dark mode"
}

func layoutSpacer() fyne.CanvasObject {
	return layout.NewSpacer()
}
