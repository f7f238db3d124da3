package dashboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/analytics"
	"github.com/fmuoria/resume-admin/internal/client"
	"github.com/fmuoria/resume-admin/internal/export"
	"github.com/fmuoria/resume-admin/internal/models"
	"github.com/fmuoria/resume-admin/internal/notify"
	"github.com/fmuoria/resume-admin/internal/pipeline"
	"github.com/fmuoria/resume-admin/internal/upload"
)

// ErrNothingToExport is returned when the filtered list is empty
var ErrNothingToExport = errors.New("No resumes to export")

// API is the part of the REST client the dashboard drives
type API interface {
	ListResumes(ctx context.Context) ([]models.ResumeRecord, error)
	Count(ctx context.Context) (models.Stats, error)
	Delete(ctx context.Context, id string) error
	AddFromURL(ctx context.Context, link string) error
	UpdateDetails(ctx context.Context, id string, update models.DetailsUpdate) error
	Upload(ctx context.Context, files []client.UploadFile) (models.UploadResponse, error)
	Download(ctx context.Context, id string) ([]byte, string, error)
	BirthdaysToday(ctx context.Context) ([]models.BirthdayNotification, error)
}

// Options configures a Controller
type Options struct {
	PageSize     int
	DownloadsDir string
	ExportDir    string
	Location     *time.Location
	Now          func() time.Time
	// NewWriter builds the export encoder; defaults to the Excel writer
	NewWriter func(overview analytics.Overview) export.Writer
}

// Snapshot is everything the dashboard renders
type Snapshot struct {
	View      pipeline.View
	Result    pipeline.Result
	Stats     models.Stats
	RoleStats []models.RoleStat
	Overview  analytics.Overview
	Birthdays []models.BirthdayNotification
	Loading   bool
}

// Controller owns the record list. Every view is derived from it; it is only
// replaced by a full re-fetch, except for in-place detail edits.
type Controller struct {
	api      API
	notifier *notify.Notifier
	opts     Options

	mu        sync.RWMutex
	records   []models.ResumeRecord
	stats     models.Stats
	view      pipeline.View
	birthdays []models.BirthdayNotification
	loading   int
	listeners []func()
}

// New creates a controller with an empty record list
func New(api API, notifier *notify.Notifier, opts Options) *Controller {
	if opts.PageSize < 1 {
		opts.PageSize = pipeline.DefaultPageSize
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewWriter == nil {
		opts.NewWriter = func(o analytics.Overview) export.Writer {
			return export.ExcelWriter{Overview: &o}
		}
	}

	view := pipeline.DefaultView()
	view.PageSize = opts.PageSize
	return &Controller{
		api:      api,
		notifier: notifier,
		opts:     opts,
		view:     view,
	}
}

// OnChange registers fn to be called after every state change
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) changed() {
	c.mu.RLock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// Snapshot derives the current view
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	records := c.records
	view := c.view
	snap := Snapshot{
		View:      view,
		Stats:     c.stats,
		Birthdays: append([]models.BirthdayNotification(nil), c.birthdays...),
		Loading:   c.loading > 0,
	}
	c.mu.RUnlock()

	snap.Result = pipeline.Derive(records, view, c.opts.Now())
	snap.RoleStats = analytics.RoleStats(snap.Result.Eligible)
	snap.Overview = analytics.Summarize(snap.Result.Eligible)
	return snap
}

// Now returns the controller's clock reading
func (c *Controller) Now() time.Time {
	return c.opts.Now()
}

// SetQuery changes the name search and returns to the first page
func (c *Controller) SetQuery(query string) {
	c.updateView(func(v pipeline.View) pipeline.View { return v.WithQuery(query) })
}

// SetRole changes the role filter and returns to the first page
func (c *Controller) SetRole(role string) {
	c.updateView(func(v pipeline.View) pipeline.View { return v.WithRole(role) })
}

// SetPage moves to a page of the filtered list
func (c *Controller) SetPage(page int) {
	c.updateView(func(v pipeline.View) pipeline.View { return v.WithPage(page) })
}

func (c *Controller) updateView(fn func(pipeline.View) pipeline.View) {
	c.mu.Lock()
	c.view = fn(c.view)
	c.mu.Unlock()
	c.changed()
}

// Reset drops all loaded data, used on sign-out
func (c *Controller) Reset() {
	c.mu.Lock()
	c.records = nil
	c.stats = models.Stats{}
	c.birthdays = nil
	view := pipeline.DefaultView()
	view.PageSize = c.opts.PageSize
	c.view = view
	c.mu.Unlock()
	c.changed()
}

// SignOuter ends the authenticated session
type SignOuter interface {
	SignOut()
}

// Logout ends the session and drops the loaded data
func (c *Controller) Logout(s SignOuter) {
	s.SignOut()
	c.Reset()
}

// fail reports err through the notifier unless the session expired, in which
// case the login view takes over
func (c *Controller) fail(err error, fallback string) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	c.notifier.Error(client.Message(err, fallback))
	return err
}

// Refresh re-fetches the records and the count
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refetchAll(ctx)
}

// refetchAll replaces the record list and stats with fresh server copies.
// Concurrent calls are not ordered: the last response to arrive wins.
func (c *Controller) refetchAll(ctx context.Context) error {
	c.setLoading(1)
	defer c.setLoading(-1)

	var wg sync.WaitGroup
	var listErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		records, err := c.api.ListResumes(ctx)
		if err != nil {
			listErr = err
			return
		}
		c.mu.Lock()
		c.records = records
		c.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		stats, err := c.api.Count(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to fetch resume count")
			return
		}
		c.mu.Lock()
		c.stats = stats
		c.mu.Unlock()
	}()
	wg.Wait()

	if listErr != nil {
		log.Error().Err(listErr).Msg("failed to fetch resumes")
		return c.fail(listErr, "Failed to fetch resumes")
	}
	return nil
}

func (c *Controller) setLoading(delta int) {
	c.mu.Lock()
	c.loading += delta
	c.mu.Unlock()
	c.changed()
}

// patchLocal applies a confirmed detail edit to the local copy without a re-fetch
func (c *Controller) patchLocal(id string, update models.DetailsUpdate) {
	c.mu.Lock()
	records := make([]models.ResumeRecord, len(c.records))
	for i, r := range c.records {
		if r.ID == id {
			r = models.ApplyDetails(r, update)
		}
		records[i] = r
	}
	c.records = records
	c.mu.Unlock()
	c.changed()
}

// Delete removes a record on the server and re-fetches
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete resume")
		return c.fail(err, "Failed to delete resume")
	}
	c.notifier.Success("Resume deleted successfully")
	return c.refetchAll(ctx)
}

// AddFromURL asks the server to ingest a PDF link and re-fetches
func (c *Controller) AddFromURL(ctx context.Context, link string) error {
	if err := c.api.AddFromURL(ctx, link); err != nil {
		log.Error().Err(err).Msg("failed to add resume from url")
		return c.fail(err, "Failed to add resume from URL")
	}
	c.notifier.Success("Resume added successfully!")
	return c.refetchAll(ctx)
}

// SaveDetails updates the editable fields of a record and patches the local copy
func (c *Controller) SaveDetails(ctx context.Context, id string, update models.DetailsUpdate) error {
	update = update.Trimmed()
	if err := c.api.UpdateDetails(ctx, id, update); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update resume details")
		return c.fail(err, "Failed to update resume details")
	}
	c.patchLocal(id, update)
	c.notifier.Success("Resume details updated successfully!")
	return nil
}

// Upload validates the selected files, sends them and re-fetches. Validation
// and transfer errors are returned for inline display.
func (c *Controller) Upload(ctx context.Context, paths []string) (models.UploadResponse, error) {
	files, err := upload.LoadFiles(paths)
	if err != nil {
		return models.UploadResponse{}, err
	}
	if err := upload.Validate(files); err != nil {
		return models.UploadResponse{}, err
	}

	resp, err := c.api.Upload(ctx, upload.Parts(files))
	if err != nil {
		log.Error().Err(err).Int("files", len(files)).Msg("upload failed")
		return resp, err
	}

	ok := 0
	for _, r := range resp.Results {
		if r.Success {
			ok++
		}
	}
	log.Info().Int("files", len(files)).Int("succeeded", ok).Msg("upload complete")

	return resp, c.refetchAll(ctx)
}

// Download saves the original PDF of a record and returns its path
func (c *Controller) Download(ctx context.Context, record models.ResumeRecord) (string, error) {
	data, _, err := c.api.Download(ctx, record.ID)
	if err != nil {
		log.Error().Err(err).Str("id", record.ID).Msg("failed to download resume")
		return "", c.fail(err, "Failed to download PDF")
	}

	path, err := upload.SaveDownload(c.opts.DownloadsDir, record.Name(), data)
	if err != nil {
		c.notifier.Error(upload.Message(err))
		return "", err
	}
	c.notifier.Success("Resume PDF downloaded successfully!")
	return path, nil
}

// Export writes the filtered list to a workbook. An empty path writes the
// dated default file into the export directory.
func (c *Controller) Export(path string) (string, error) {
	snap := c.Snapshot()
	if len(snap.Result.Filtered) == 0 {
		c.notifier.Error(ErrNothingToExport.Error())
		return "", ErrNothingToExport
	}

	if path == "" {
		path = filepath.Join(c.opts.ExportDir, export.Filename(c.opts.Now()))
	}

	rows := export.Rows(snap.Result.Filtered, c.opts.Location)
	written, err := c.opts.NewWriter(snap.Overview).Write(rows, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("export failed")
		c.notifier.Error("Failed to export resumes")
		return "", err
	}

	c.notifier.Success(fmt.Sprintf("Exported %d resume(s) to %s", len(rows), filepath.Base(written)))
	return written, nil
}

// LoadBirthdays fetches today's birthdays. Failures are logged only.
func (c *Controller) LoadBirthdays(ctx context.Context) error {
	birthdays, err := c.api.BirthdaysToday(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch birthday notifications")
		return err
	}

	c.mu.Lock()
	c.birthdays = birthdays
	c.mu.Unlock()
	c.changed()
	return nil
}

// HandleNewRecord announces a pushed record and re-fetches everything.
// Bursts of events are not coalesced.
func (c *Controller) HandleNewRecord(ctx context.Context, event models.NewRecordEvent) error {
	c.notifier.Push(event.Message)
	return c.refetchAll(ctx)
}
