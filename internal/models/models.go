package models

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// NotSpecified is the role bucket for records without a role
	NotSpecified = "Not Specified"
	// NotAvailable is the placeholder for any other missing field
	NotAvailable = "N/A"
)

// Links holds the profile links extracted from a resume
type Links struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

// AttachmentData is the structured extraction of an uploaded resume
type AttachmentData struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Role          string `json:"role,omitempty"`
	Location      string `json:"location,omitempty"`
	Experience    string `json:"experience,omitempty"`
	Summary       string `json:"summary,omitempty"`
	Links         Links  `json:"links"`
}

// ResumeRecord is one ingested resume event as returned by the API
type ResumeRecord struct {
	ID             string          `json:"_id"`
	HasAttachment  bool            `json:"hasAttachment"`
	AttachmentData *AttachmentData `json:"attachmentData,omitempty"`
	ReceivedAt     *time.Time      `json:"receivedAt,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty"`
	Timestamp      *time.Time      `json:"timestamp,omitempty"`
	Subject        string          `json:"subject,omitempty"`
}

// UnmarshalJSON decodes a record with lenient timestamps: a value that is not
// a recognised date is treated as absent instead of failing the whole list.
func (r *ResumeRecord) UnmarshalJSON(data []byte) error {
	type plain ResumeRecord
	aux := struct {
		*plain
		ReceivedAt json.RawMessage `json:"receivedAt"`
		CreatedAt  json.RawMessage `json:"createdAt"`
		Timestamp  json.RawMessage `json:"timestamp"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ReceivedAt = parseTimestamp(aux.ReceivedAt)
	r.CreatedAt = parseTimestamp(aux.CreatedAt)
	r.Timestamp = parseTimestamp(aux.Timestamp)
	return nil
}

// timestampLayouts are tried in order; zone-less layouts are read as local time
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// parseTimestamp reads an ISO string, a bare date or epoch milliseconds.
// Anything else yields nil.
func parseTimestamp(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		t := time.UnixMilli(millis)
		return &t
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return &t
		}
	}
	// a bare date is midnight UTC
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return &t
	}
	return nil
}

// IsEligible reports whether the record is displayable as a resume
func (r ResumeRecord) IsEligible() bool {
	return r.HasAttachment && r.AttachmentData != nil &&
		(r.AttachmentData.Name != "" || r.AttachmentData.Email != "")
}

// ResolvedTimestamp returns the first present timestamp, or now when none is set
func (r ResumeRecord) ResolvedTimestamp(now time.Time) time.Time {
	for _, ts := range []*time.Time{r.ReceivedAt, r.CreatedAt, r.Timestamp} {
		if ts != nil && !ts.IsZero() {
			return *ts
		}
	}
	return now
}

// Data returns the attachment data, or an empty value when absent
func (r ResumeRecord) Data() AttachmentData {
	if r.AttachmentData == nil {
		return AttachmentData{}
	}
	return *r.AttachmentData
}

// Name returns the candidate name, empty if missing
func (r ResumeRecord) Name() string {
	return r.Data().Name
}

// Role returns the resolved role bucket of the record
func (r ResumeRecord) Role() string {
	return RoleOrDefault(r.Data().Role)
}

// RoleOrDefault maps an empty role to NotSpecified
func RoleOrDefault(role string) string {
	if role == "" {
		return NotSpecified
	}
	return role
}

// FieldOr maps an empty field to NotAvailable
func FieldOr(value string) string {
	if value == "" {
		return NotAvailable
	}
	return value
}

// Admin is the identity returned by the auth endpoints
type Admin struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the payload for the login endpoint
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the admin identity
type LoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// VerifyResponse is returned by the token verification endpoint
type VerifyResponse struct {
	Admin Admin `json:"admin"`
}

// Stats holds the record count reported by the server
type Stats struct {
	Count int `json:"count"`
}

// AddFromURLRequest asks the server to ingest a resume from a link
type AddFromURLRequest struct {
	URL string `json:"url" validate:"required"`
}

// DetailsUpdate is the full set of editable resume fields
type DetailsUpdate struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	DateOfBirth   string `json:"dateOfBirth"`
	Role          string `json:"role"`
	Location      string `json:"location"`
	Experience    string `json:"experience"`
	Summary       string `json:"summary"`
	Links         Links  `json:"links"`
}

// DetailsFromRecord pre-fills an edit form from a record
func DetailsFromRecord(r ResumeRecord) DetailsUpdate {
	d := r.Data()
	return DetailsUpdate{
		Name:          d.Name,
		Email:         d.Email,
		ContactNumber: d.ContactNumber,
		DateOfBirth:   d.DateOfBirth,
		Role:          d.Role,
		Location:      d.Location,
		Experience:    d.Experience,
		Summary:       d.Summary,
		Links:         d.Links,
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (u DetailsUpdate) Trimmed() DetailsUpdate {
	return DetailsUpdate{
		Name:          strings.TrimSpace(u.Name),
		Email:         strings.TrimSpace(u.Email),
		ContactNumber: strings.TrimSpace(u.ContactNumber),
		DateOfBirth:   strings.TrimSpace(u.DateOfBirth),
		Role:          strings.TrimSpace(u.Role),
		Location:      strings.TrimSpace(u.Location),
		Experience:    strings.TrimSpace(u.Experience),
		Summary:       strings.TrimSpace(u.Summary),
		Links: Links{
			LinkedIn:  strings.TrimSpace(u.Links.LinkedIn),
			GitHub:    strings.TrimSpace(u.Links.GitHub),
			Portfolio: strings.TrimSpace(u.Links.Portfolio),
		},
	}
}

// ApplyDetails returns a copy of the record with the update merged into its attachment data
func ApplyDetails(r ResumeRecord, u DetailsUpdate) ResumeRecord {
	data := r.Data()
	data.Name = u.Name
	data.Email = u.Email
	data.ContactNumber = u.ContactNumber
	data.DateOfBirth = u.DateOfBirth
	data.Role = u.Role
	data.Location = u.Location
	data.Experience = u.Experience
	data.Summary = u.Summary
	data.Links = u.Links

	r.AttachmentData = &data
	return r
}

// UploadResult is the per-file outcome reported by the upload endpoint
type UploadResult struct {
	Filename string `json:"filename"`
	Success  bool   `json:"success"`
	Name     string `json:"name,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UploadResponse is the body returned by the upload endpoint
type UploadResponse struct {
	Message string         `json:"message,omitempty"`
	Results []UploadResult `json:"results"`
}

// BirthdayNotification is a candidate whose birthday is today
type BirthdayNotification struct {
	ID            string `json:"_id,omitempty"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Age           int    `json:"age,omitempty"`
}

// BirthdaysResponse wraps the birthday list
type BirthdaysResponse struct {
	Birthdays []BirthdayNotification `json:"birthdays"`
}

// NewRecordEvent is the push-channel payload announcing a new resume
type NewRecordEvent struct {
	Message string          `json:"message"`
	Email   json.RawMessage `json:"email,omitempty"`
}

// RecordID returns the identifier of the announced record. The server sends
// either the bare id or the whole record under "email".
func (e NewRecordEvent) RecordID() string {
	if len(e.Email) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(e.Email, &id); err == nil {
		return id
	}
	var record struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(e.Email, &record); err == nil {
		return record.ID
	}
	return ""
}

// RoleStat is one bar of the role distribution
type RoleStat struct {
	Name    string  `json:"name"`
	Count   int     `json:"value"`
	Percent float64 `json:"percent"`
}

// ExportRow is one flattened record in export column order
type ExportRow struct {
	Name         string
	Email        string
	MobileNumber string
	Location     string
	Role         string
	LinkedIn     string
	GitHub       string
	DateOfBirth  string
	Summary      string
	ReceivedAt   string
	Source       string
}

// Values returns the row cells in column order
func (r ExportRow) Values() []string {
	return []string{
		r.Name, r.Email, r.MobileNumber, r.Location, r.Role,
		r.LinkedIn, r.GitHub, r.DateOfBirth, r.Summary, r.ReceivedAt, r.Source,
	}
}
