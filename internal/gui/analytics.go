package gui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/resume-admin/internal/analytics"
	"github.com/fmuoria/resume-admin/internal/dashboard"
)

// analyticsTab shows the overview figures and the role distribution
type analyticsTab struct {
	total      *widget.Label
	roles      *widget.Label
	topRole    *widget.Label
	unassigned *widget.Label
	linkedIn   *widget.Label
	github     *widget.Label
	contact    *widget.Label
	bars       *fyne.Container
}

func newAnalyticsTab() *analyticsTab {
	return &analyticsTab{
		total:      widget.NewLabel("0"),
		roles:      widget.NewLabel("0"),
		topRole:    widget.NewLabel(analytics.NoData),
		unassigned: widget.NewLabel("0"),
		linkedIn:   widget.NewLabel("0"),
		github:     widget.NewLabel("0"),
		contact:    widget.NewLabel("0"),
		bars:       container.NewVBox(),
	}
}

func (t *analyticsTab) content() fyne.CanvasObject {
	overview := widget.NewForm(
		widget.NewFormItem("Total resumes", t.total),
		widget.NewFormItem("Distinct roles", t.roles),
		widget.NewFormItem("Top role", t.topRole),
		widget.NewFormItem("Role not specified", t.unassigned),
		widget.NewFormItem("With LinkedIn", t.linkedIn),
		widget.NewFormItem("With GitHub", t.github),
		widget.NewFormItem("With contact number", t.contact),
	)

	return container.NewVScroll(container.NewVBox(
		widget.NewCard("Overview", "", overview),
		widget.NewCard("Role distribution", fmt.Sprintf("Top %d roles", analytics.TopRoles), t.bars),
	))
}

func (t *analyticsTab) render(snap dashboard.Snapshot) {
	o := snap.Overview
	t.total.SetText(strconv.Itoa(o.Total))
	t.roles.SetText(strconv.Itoa(o.DistinctRoles))
	if o.TopRole == "" {
		t.topRole.SetText(analytics.NoData)
	} else {
		t.topRole.SetText(fmt.Sprintf("%s (%d)", o.TopRole, o.TopRoleCount))
	}
	t.unassigned.SetText(withShare(o.NotSpecified, o.Total))
	t.linkedIn.SetText(withShare(o.WithLinkedIn, o.Total))
	t.github.SetText(withShare(o.WithGitHub, o.Total))
	t.contact.SetText(withShare(o.WithContact, o.Total))

	t.bars.RemoveAll()
	if !o.HasData() {
		t.bars.Add(widget.NewLabel(analytics.NoData))
		return
	}
	for _, rs := range snap.RoleStats {
		bar := widget.NewProgressBar()
		bar.Max = 100
		bar.SetValue(rs.Percent)
		bar.TextFormatter = func() string { return "" }

		name := widget.NewLabel(rs.Name)
		name.Truncation = fyne.TextTruncateEllipsis
		share := widget.NewLabel(withShare(rs.Count, o.Total))

		t.bars.Add(container.NewBorder(nil, nil,
			container.NewGridWrap(fyne.NewSize(220, name.MinSize().Height), name),
			share,
			bar,
		))
	}
}

// withShare renders "count (x.x%)", or the bare count for an empty set
func withShare(count, total int) string {
	if total <= 0 {
		return strconv.Itoa(count)
	}
	return fmt.Sprintf("%d (%s%%)", count, analytics.FormatPercent(count, total))
}
