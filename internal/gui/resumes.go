package gui

import (
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/dashboard"
	"github.com/fmuoria/resume-admin/internal/export"
	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/pipeline"
)

const allRolesLabel = "All Roles"

var resumeHeaders = []string{"Name", "Email", "Role", "Location", "Contact", "Received"}

// resumesTab lists the paginated records with search, role filter and actions
type resumesTab struct {
	app *App

	searchEntry *widget.Entry
	roleSelect  *widget.Select
	table       *widget.Table
	countLabel  *widget.Label
	pageLabel   *widget.Label
	prevBtn     *widget.Button
	nextBtn     *widget.Button
	exportBtn   *widget.Button
	editBtn     *widget.Button
	deleteBtn   *widget.Button
	downloadBtn *widget.Button

	page     []models.ResumeRecord
	current  pipeline.View
	pages    int
	selected string

	// rendering suppresses widget callbacks while state is pushed in
	rendering bool
}

func newResumesTab(a *App) *resumesTab {
	t := &resumesTab{app: a}

	t.searchEntry = widget.NewEntry()
	t.searchEntry.SetPlaceHolder("Search by name...")
	t.searchEntry.OnChanged = func(q string) {
		if !t.rendering {
			a.deps.Dashboard.SetQuery(q)
		}
	}

	t.roleSelect = widget.NewSelect([]string{allRolesLabel}, func(label string) {
		if t.rendering {
			return
		}
		role := label
		if label == allRolesLabel {
			role = pipeline.AllRoles
		}
		a.deps.Dashboard.SetRole(role)
	})
	t.roleSelect.Selected = allRolesLabel

	t.table = widget.NewTable(
		func() (int, int) {
			return len(t.page) + 1, len(resumeHeaders)
		},
		func() fyne.CanvasObject {
			label := widget.NewLabel("Template")
			label.Truncation = fyne.TextTruncateEllipsis
			return label
		},
		func(id widget.TableCellID, cell fyne.CanvasObject) {
			label := cell.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(resumeHeaders[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			if id.Row-1 < len(t.page) {
				label.SetText(cellText(t.page[id.Row-1], id.Col))
			}
		},
	)
	for col, width := range []float32{200, 230, 170, 150, 140, 120} {
		t.table.SetColumnWidth(col, width)
	}
	t.table.OnSelected = func(id widget.TableCellID) {
		if id.Row == 0 || id.Row-1 >= len(t.page) {
			t.selected = ""
		} else {
			t.selected = t.page[id.Row-1].ID
		}
		t.updateActions()
	}

	t.countLabel = widget.NewLabel("")
	t.pageLabel = widget.NewLabel("")
	t.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		a.deps.Dashboard.SetPage(t.current.Page - 1)
	})
	t.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		a.deps.Dashboard.SetPage(t.current.Page + 1)
	})

	t.exportBtn = widget.NewButtonWithIcon("Export XLSX", theme.DocumentSaveIcon(), t.handleExport)
	t.editBtn = widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), t.handleEdit)
	t.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), t.handleDelete)
	t.downloadBtn = widget.NewButtonWithIcon("Download PDF", theme.DownloadIcon(), t.handleDownload)
	t.updateActions()
	return t
}

func (t *resumesTab) content() fyne.CanvasObject {
	a := t.app
	addBtn := widget.NewButtonWithIcon("Add from URL", theme.ContentAddIcon(), t.handleAddFromURL)
	refreshBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		go a.deps.Dashboard.Refresh(a.ctx)
	})

	filters := container.NewBorder(nil, nil, nil,
		container.NewHBox(container.NewGridWrap(fyne.NewSize(220, t.roleSelect.MinSize().Height), t.roleSelect), t.exportBtn),
		t.searchEntry,
	)
	actions := container.NewHBox(addBtn, t.editBtn, t.deleteBtn, t.downloadBtn, refreshBtn, layoutSpacer(), t.countLabel)
	pager := container.NewHBox(layoutSpacer(), t.prevBtn, t.pageLabel, t.nextBtn, layoutSpacer())

	return container.NewBorder(
		container.NewVBox(filters, actions),
		pager,
		nil, nil,
		t.table,
	)
}

func (t *resumesTab) render(snap dashboard.Snapshot) {
	t.rendering = true
	defer func() { t.rendering = false }()

	t.page = snap.Result.Page
	t.current = snap.View
	t.pages = snap.Result.Pages

	options := append([]string{allRolesLabel}, snap.Result.Roles...)
	t.roleSelect.SetOptions(options)
	selected := snap.View.Role
	if selected == pipeline.AllRoles || selected == "" {
		selected = allRolesLabel
	}
	if t.roleSelect.Selected != selected {
		t.roleSelect.SetSelected(selected)
	}

	t.countLabel.SetText(fmt.Sprintf("%d shown · %d eligible · %d total", len(snap.Result.Filtered), len(snap.Result.Eligible), snap.Stats.Count))
	if snap.Loading {
		t.countLabel.SetText("Loading...")
	}

	pages := t.pages
	if pages == 0 {
		pages = 1
	}
	t.pageLabel.SetText(fmt.Sprintf("Page %d of %d", snap.View.Page, pages))
	setEnabled(t.prevBtn, snap.View.Page > 1)
	setEnabled(t.nextBtn, snap.View.Page < t.pages)

	t.exportBtn.SetText(fmt.Sprintf("Export XLSX (%d)", len(snap.Result.Filtered)))
	setEnabled(t.exportBtn, len(snap.Result.Filtered) > 0)

	if t.selectedRecord() == nil {
		t.selected = ""
		t.table.UnselectAll()
	}
	t.updateActions()
	t.table.Refresh()
}

func (t *resumesTab) selectedRecord() *models.ResumeRecord {
	for i := range t.page {
		if t.page[i].ID == t.selected {
			return &t.page[i]
		}
	}
	return nil
}

func (t *resumesTab) updateActions() {
	has := t.selectedRecord() != nil
	setEnabled(t.editBtn, has)
	setEnabled(t.deleteBtn, has)
	setEnabled(t.downloadBtn, has)
}

func (t *resumesTab) handleExport() {
	a := t.app
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		// the dialog leaves an empty file behind that the writer may not reuse
		path := uc.URI().Path()
		uc.Close()

		go func() {
			written, _ := a.deps.Dashboard.Export(path)
			if err := discardPlaceholder(path, written); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to remove empty export placeholder")
			}
		}()
	}, a.mainWindow)
	save.SetFileName(export.Filename(a.deps.Dashboard.Now()))
	save.Show()
}

func (t *resumesTab) handleAddFromURL() {
	a := t.app
	entry := widget.NewEntry()
	entry.SetPlaceHolder("https://example.com/resume.pdf")

	dialog.ShowForm("Add Resume from URL", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("PDF URL", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			link := entry.Text
			go a.deps.Dashboard.AddFromURL(a.ctx, link)
		}, a.mainWindow)
}

func (t *resumesTab) handleDelete() {
	a := t.app
	rec := t.selectedRecord()
	if rec == nil {
		return
	}
	id, name := rec.ID, models.FieldOr(rec.Name())

	dialog.ShowConfirm("Delete Resume",
		fmt.Sprintf("Delete the resume of %s? This cannot be undone.", name),
		func(ok bool) {
			if ok {
				go a.deps.Dashboard.Delete(a.ctx, id)
			}
		}, a.mainWindow)
}

func (t *resumesTab) handleDownload() {
	a := t.app
	rec := t.selectedRecord()
	if rec == nil {
		return
	}
	record := *rec
	go a.deps.Dashboard.Download(a.ctx, record)
}

func (t *resumesTab) handleEdit() {
	rec := t.selectedRecord()
	if rec == nil {
		return
	}
	showEditDialog(t.app, *rec)
}

func cellText(r models.ResumeRecord, col int) string {
	d := r.Data()
	switch col {
	case 0:
		return models.FieldOr(d.Name)
	case 1:
		return models.FieldOr(d.Email)
	case 2:
		return r.Role()
	case 3:
		return models.FieldOr(d.Location)
	case 4:
		return models.FieldOr(d.ContactNumber)
	case 5:
		if r.ReceivedAt == nil {
			return models.NotAvailable
		}
		return r.ReceivedAt.Local().Format("Jan 2, 2006")
	}
	return ""
}

// discardPlaceholder removes the empty file created by the save dialog when
// the export went elsewhere (an added .xlsx suffix) or failed.
func discardPlaceholder(placeholder, written string) error {
	if placeholder == "" || filepath.Clean(placeholder) == filepath.Clean(written) {
		return nil
	}
	info, err := os.Stat(placeholder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() || info.Size() > 0 {
		return nil
	}
	return os.Remove(placeholder)
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
