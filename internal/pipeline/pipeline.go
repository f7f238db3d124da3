// Package pipeline derives the visible resume page from the raw record list.
//
// Every step is a pure function: it never mutates its input and always
// returns a non-nil slice, so an empty input yields an empty output at each
// stage.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/fmuoria/resume-admin/internal/models"
)

const (
	// DefaultPageSize is the number of resumes shown per page
	DefaultPageSize = 6
	// AllRoles disables the role filter
	AllRoles = "all"
)

// Eligible keeps only records that are displayable resumes
func Eligible(records []models.ResumeRecord) []models.ResumeRecord {
	out := make([]models.ResumeRecord, 0, len(records))
	for _, r := range records {
		if r.IsEligible() {
			out = append(out, r)
		}
	}
	return out
}

// SortByRecency orders records newest first by resolved timestamp.
// Records with equal timestamps keep their relative order.
func SortByRecency(records []models.ResumeRecord, now time.Time) []models.ResumeRecord {
	out := make([]models.ResumeRecord, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ResolvedTimestamp(now).After(out[j].ResolvedTimestamp(now))
	})
	return out
}

// Search keeps records whose name contains the trimmed query, ignoring case
func Search(records []models.ResumeRecord, query string) []models.ResumeRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clone(records)
	}

	out := make([]models.ResumeRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name()), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRole keeps records whose resolved role equals role
func FilterRole(records []models.ResumeRecord, role string) []models.ResumeRecord {
	if role == AllRoles || role == "" {
		return clone(records)
	}

	out := make([]models.ResumeRecord, 0, len(records))
	for _, r := range records {
		if r.Role() == role {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns the 1-based page of records. Pages outside the range are empty.
func Paginate(records []models.ResumeRecord, page, pageSize int) []models.ResumeRecord {
	if page < 1 || pageSize < 1 {
		return []models.ResumeRecord{}
	}

	start := (page - 1) * pageSize
	if start >= len(records) {
		return []models.ResumeRecord{}
	}
	end := min(start+pageSize, len(records))

	return clone(records[start:end])
}

// PageCount returns the number of pages needed for n records
func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize < 1 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// UniqueRoles returns the sorted distinct resolved roles of the records
func UniqueRoles(records []models.ResumeRecord) []string {
	seen := make(map[string]struct{})
	roles := make([]string, 0)
	for _, r := range records {
		role := r.Role()
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// View is the filter state selected in the UI
type View struct {
	Query    string
	Role     string
	Page     int
	PageSize int
}

// DefaultView returns the initial view: no search, all roles, first page
func DefaultView() View {
	return View{
		Role:     AllRoles,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// WithQuery changes the search query and goes back to the first page
func (v View) WithQuery(query string) View {
	v.Query = query
	v.Page = 1
	return v
}

// WithRole changes the role filter and goes back to the first page
func (v View) WithRole(role string) View {
	v.Role = role
	v.Page = 1
	return v
}

// WithPage moves to the given page
func (v View) WithPage(page int) View {
	v.Page = page
	return v
}

// Result holds every stage a view renders from
type Result struct {
	// Eligible is the sorted eligible set, the base for analytics
	Eligible []models.ResumeRecord
	// Filtered is the searched and role-filtered set, the base for export
	Filtered []models.ResumeRecord
	// Page is the slice of Filtered to display
	Page  []models.ResumeRecord
	Pages int
	Roles []string
}

// Derive runs the whole pipeline for a view
func Derive(records []models.ResumeRecord, v View, now time.Time) Result {
	pageSize := v.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	eligible := SortByRecency(Eligible(records), now)
	filtered := FilterRole(Search(eligible, v.Query), v.Role)

	return Result{
		Eligible: eligible,
		Filtered: filtered,
		Page:     Paginate(filtered, v.Page, pageSize),
		Pages:    PageCount(len(filtered), pageSize),
		Roles:    UniqueRoles(eligible),
	}
}

func clone(records []models.ResumeRecord) []models.ResumeRecord {
	out := make([]models.ResumeRecord, len(records))
	copy(out, records)
	return out
}
