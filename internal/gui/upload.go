package gui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-admin/internal/client"
	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/upload"
)

const uploadFallback = "Failed to upload resumes. Please try again."

// uploadTab collects local PDF files and sends them in one batch
type uploadTab struct {
	app *App

	paths      []string
	fileList   *widget.List
	countLabel *widget.Label
	errorLabel *widget.Label
	results    *fyne.Container
	uploadBtn  *widget.Button
	clearBtn   *widget.Button
	busy       bool
}

func newUploadTab(a *App) *uploadTab {
	t := &uploadTab{app: a}

	t.fileList = widget.NewList(
		func() int { return len(t.paths) },
		func() fyne.CanvasObject { return widget.NewLabel("Template") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			item.(*widget.Label).SetText(filepath.Base(t.paths[id]))
		},
	)
	t.fileList.OnSelected = func(id widget.ListItemID) {
		// clicking a file removes it from the batch
		if t.busy || id >= len(t.paths) {
			return
		}
		t.paths = append(t.paths[:id], t.paths[id+1:]...)
		t.fileList.UnselectAll()
		t.refresh()
	}

	t.countLabel = widget.NewLabel("")
	t.errorLabel = widget.NewLabel("")
	t.errorLabel.Wrapping = fyne.TextWrapWord
	t.errorLabel.Importance = widget.DangerImportance
	t.errorLabel.Hide()
	t.results = container.NewVBox()

	t.uploadBtn = widget.NewButtonWithIcon("Upload", theme.UploadIcon(), t.handleUpload)
	t.uploadBtn.Importance = widget.HighImportance
	t.clearBtn = widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		t.paths = nil
		t.results.RemoveAll()
		t.errorLabel.Hide()
		t.refresh()
	})
	t.refresh()
	return t
}

func (t *uploadTab) content() fyne.CanvasObject {
	addFileBtn := widget.NewButtonWithIcon("Add PDF", theme.FileIcon(), t.handleAddFile)
	addFolderBtn := widget.NewButtonWithIcon("Add Folder", theme.FolderOpenIcon(), t.handleAddFolder)

	hint := widget.NewLabel(fmt.Sprintf("PDF files only, up to %d files of %d MB each. Click a file to remove it.",
		upload.MaxFiles, upload.MaxFileSize/(1024*1024)))
	hint.Wrapping = fyne.TextWrapWord

	top := container.NewVBox(
		container.NewHBox(addFileBtn, addFolderBtn, t.clearBtn, layoutSpacer(), t.countLabel, t.uploadBtn),
		hint,
		t.errorLabel,
	)
	bottom := container.NewVBox(
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Results", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWrap(fyne.NewSize(900, 180), container.NewVScroll(t.results)),
	)

	return container.NewBorder(top, bottom, nil, nil, t.fileList)
}

func (t *uploadTab) refresh() {
	t.countLabel.SetText(fmt.Sprintf("%d file(s) selected", len(t.paths)))
	setEnabled(t.uploadBtn, len(t.paths) > 0 && !t.busy)
	setEnabled(t.clearBtn, !t.busy)
	t.fileList.Refresh()
}

func (t *uploadTab) add(paths ...string) {
	seen := make(map[string]bool, len(t.paths))
	for _, p := range t.paths {
		seen[p] = true
	}
	for _, p := range paths {
		if !seen[p] {
			t.paths = append(t.paths, p)
			seen[p] = true
		}
	}
	t.errorLabel.Hide()
	t.refresh()
}

func (t *uploadTab) handleAddFile() {
	a := t.app
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if reader == nil {
			return // User canceled
		}
		path := reader.URI().Path()
		reader.Close()
		t.add(path)
	}, a.mainWindow)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".PDF"}))
	open.Show()
}

func (t *uploadTab) handleAddFolder() {
	a := t.app
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if dir == nil {
			return // User canceled
		}

		children, err := dir.List()
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		var pdfs []string
		for _, u := range children {
			if strings.EqualFold(u.Extension(), ".pdf") {
				pdfs = append(pdfs, u.Path())
			}
		}
		if len(pdfs) == 0 {
			t.showError(upload.ErrNoFiles)
			return
		}
		t.add(pdfs...)
	}, a.mainWindow)
}

func (t *uploadTab) handleUpload() {
	a := t.app
	paths := append([]string(nil), t.paths...)

	t.busy = true
	t.uploadBtn.SetText("Uploading...")
	t.errorLabel.Hide()
	t.results.RemoveAll()
	t.refresh()

	go func() {
		resp, err := a.deps.Dashboard.Upload(a.ctx, paths)
		fyne.Do(func() {
			t.busy = false
			t.uploadBtn.SetText("Upload")
			defer t.refresh()

			// a failed re-fetch after a completed upload is reported by the dashboard
			if len(resp.Results) > 0 {
				t.showResults(resp)
				t.paths = nil
				return
			}
			if err != nil {
				t.showError(err)
			}
		})
	}()
}

func (t *uploadTab) showError(err error) {
	var msg string
	switch {
	case errors.Is(err, upload.ErrNoFiles), errors.Is(err, upload.ErrTooManyFiles),
		errors.Is(err, upload.ErrNotPDF), errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrEmptyFile):
		msg = upload.Message(err)
	case errors.Is(err, client.ErrUnauthorized):
		return
	default:
		msg = client.Message(err, uploadFallback)
	}
	t.errorLabel.SetText(msg)
	t.errorLabel.Show()
}

func (t *uploadTab) showResults(resp models.UploadResponse) {
	if resp.Message != "" {
		t.results.Add(widget.NewLabel(resp.Message))
	}
	for _, r := range resp.Results {
		text := "✔ " + r.Filename
		if r.Name != "" {
			text += " - " + r.Name
		}
		label := widget.NewLabel(text)
		if !r.Success {
			label.SetText("✖ " + r.Filename + ": " + r.Error)
			label.Importance = widget.DangerImportance
		}
		t.results.Add(label)
	}
}
