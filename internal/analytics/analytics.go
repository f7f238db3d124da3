package analytics

import (
	"fmt"

	"github.com/fmuoria/resume-admin/internal/models"
)

const (
	// TopRoles is the number of roles kept in the distribution
	TopRoles = 10
	// NoData is rendered instead of a percentage when there are no resumes
	NoData = "No data"
)

// RoleStats counts eligible resumes per resolved role.
// The result is ordered by count, highest first, with ties kept in the
// order the roles were first seen, and truncated to TopRoles entries.
func RoleStats(eligible []models.ResumeRecord) []models.RoleStat {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, r := range eligible {
		role := r.Role()
		if _, ok := counts[role]; !ok {
			order = append(order, role)
		}
		counts[role]++
	}

	stats := make([]models.RoleStat, 0, len(order))
	for _, role := range order {
		pct, _ := Percent(counts[role], len(eligible))
		stats = append(stats, models.RoleStat{
			Name:    role,
			Count:   counts[role],
			Percent: pct,
		})
	}

	// insertion sort keeps equal counts in first-seen order
	for i := 1; i < len(stats); i++ {
		for j := i; j > 0 && stats[j].Count > stats[j-1].Count; j-- {
			stats[j], stats[j-1] = stats[j-1], stats[j]
		}
	}

	if len(stats) > TopRoles {
		stats = stats[:TopRoles]
	}
	return stats
}

// Percent returns count/total*100. ok is false when total is zero.
func Percent(count, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(count) / float64(total) * 100, true
}

// FormatPercent renders a share with one decimal place, or NoData for an empty set
func FormatPercent(count, total int) string {
	pct, ok := Percent(count, total)
	if !ok {
		return NoData
	}
	return fmt.Sprintf("%.1f", pct)
}

// Overview summarises the eligible set for the analytics view
type Overview struct {
	Total         int
	DistinctRoles int
	TopRole       string
	TopRoleCount  int
	NotSpecified  int
	WithLinkedIn  int
	WithGitHub    int
	WithContact   int
	Roles         []models.RoleStat
}

// HasData reports whether there is anything to chart
func (o Overview) HasData() bool {
	return o.Total > 0
}

// Summarize builds the overview of the eligible set
func Summarize(eligible []models.ResumeRecord) Overview {
	o := Overview{
		Total: len(eligible),
		Roles: RoleStats(eligible),
	}

	distinct := make(map[string]struct{})
	for _, r := range eligible {
		distinct[r.Role()] = struct{}{}

		d := r.Data()
		if d.Role == "" {
			o.NotSpecified++
		}
		if d.Links.LinkedIn != "" {
			o.WithLinkedIn++
		}
		if d.Links.GitHub != "" {
			o.WithGitHub++
		}
		if d.ContactNumber != "" {
			o.WithContact++
		}
	}
	o.DistinctRoles = len(distinct)

	if len(o.Roles) > 0 {
		o.TopRole = o.Roles[0].Name
		o.TopRoleCount = o.Roles[0].Count
	}

	return o
}
