package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/fmuoria/resume-admin/internal/models"
)

const (
	// HealthTimeout bounds the health check
	HealthTimeout = 3 * time.Second
	// TransferTimeout bounds uploads and downloads
	TransferTimeout = 120 * time.Second
)

// TokenSource returns the current credential token, empty if signed out
type TokenSource func() string

// Client talks to the resume intake API
type Client struct {
	baseURL        string
	base           http.RoundTripper
	token          TokenSource
	onUnauthorized func()
}

// Option configures a Client
type Option func(*Client)

// WithTransport replaces the underlying HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithUnauthorizedHandler registers the hook fired on any 401 from an
// authenticated call. It is expected to clear credentials and show the login.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client for the API at baseURL
func New(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		base:    http.DefaultTransport,
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// httpClient returns a client that adds the bearer token, if any, to every request
func (c *Client) httpClient(token string, timeout time.Duration) *http.Client {
	rt := c.base
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base,
		}
	}
	return &http.Client{Transport: rt, Timeout: timeout}
}

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	timeout     time.Duration
	// authed calls carry the stored token and turn a 401 into ErrUnauthorized
	authed bool
	// token overrides the stored token (used by Verify)
	token        string
	fallback     string
	textFallback bool
}

// do sends the request and returns the response for a 2xx status.
// The caller owns the returned body.
func (c *Client) do(ctx context.Context, cl call) (*http.Response, error) {
	token := cl.token
	if cl.authed && token == "" && c.token != nil {
		token = c.token()
	}
	if cl.authed && token == "" {
		c.unauthorized()
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient(token, cl.timeout).Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", cl.method).Str("path", cl.path).Str("request_id", requestID).Msg("request failed")
		return nil, fmt.Errorf("%s: %w", cl.fallback, err)
	}

	log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("api call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := newAPIError(resp.StatusCode, body, cl.fallback, cl.textFallback)

	if cl.authed && resp.StatusCode == http.StatusUnauthorized {
		c.unauthorized()
	}
	return nil, apiErr
}

func (c *Client) unauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// doJSON sends an optional JSON payload and decodes a JSON response into out
func (c *Client) doJSON(ctx context.Context, cl call, in, out interface{}) error {
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		cl.body = bytes.NewReader(raw)
		cl.contentType = "application/json"
	}

	resp, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks the server with a short timeout
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     "/api/health",
		timeout:  HealthTimeout,
		fallback: "Server unreachable",
	}, nil, nil)
}

// Verify checks a token and returns the admin it belongs to
func (c *Client) Verify(ctx context.Context, token string) (models.Admin, error) {
	var resp models.VerifyResponse
	err := c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     "/api/auth/verify",
		token:    token,
		fallback: "Session verification failed",
	}, nil, &resp)
	return resp.Admin, err
}

// Login exchanges credentials for a token. Blank fields are rejected locally.
func (c *Client) Login(ctx context.Context, username, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse

	check := models.LoginRequest{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	msg := "Please enter both username and password"
	if err := validateRequest(check, map[string]string{"Username": msg, "Password": msg}); err != nil {
		return resp, err
	}

	err := c.doJSON(ctx, call{
		method:   http.MethodPost,
		path:     "/api/auth/login",
		fallback: "Login failed. Please check your credentials and try again.",
	}, models.LoginRequest{Username: check.Username, Password: password}, &resp)
	return resp, err
}

// ListResumes fetches the full record collection
func (c *Client) ListResumes(ctx context.Context) ([]models.ResumeRecord, error) {
	var records []models.ResumeRecord
	err := c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     "/api/resumes",
		authed:   true,
		fallback: "Failed to fetch resumes",
	}, nil, &records)
	if records == nil {
		records = []models.ResumeRecord{}
	}
	return records, err
}

// Count fetches the record count statistics
func (c *Client) Count(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	err := c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     "/api/resumes/stats/count",
		authed:   true,
		fallback: "Failed to fetch stats",
	}, nil, &stats)
	return stats, err
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/resumes/" + url.PathEscape(id),
		authed:   true,
		fallback: "Failed to delete resume",
	}, nil, nil)
}

// AddFromURL asks the server to ingest the PDF at link
func (c *Client) AddFromURL(ctx context.Context, link string) error {
	req := models.AddFromURLRequest{URL: strings.TrimSpace(link)}
	if err := validateRequest(req, map[string]string{"URL": "Please enter a valid PDF URL"}); err != nil {
		return err
	}

	return c.doJSON(ctx, call{
		method:   http.MethodPost,
		path:     "/api/resumes/add-from-url",
		authed:   true,
		fallback: "Failed to add resume from URL",
	}, req, nil)
}

// UpdateDetails replaces the editable fields of a record
func (c *Client) UpdateDetails(ctx context.Context, id string, update models.DetailsUpdate) error {
	return c.doJSON(ctx, call{
		method:   http.MethodPut,
		path:     "/api/resumes/" + url.PathEscape(id) + "/details",
		authed:   true,
		fallback: "Failed to update resume details",
	}, update, nil)
}

// BirthdaysToday lists candidates whose birthday is today
func (c *Client) BirthdaysToday(ctx context.Context) ([]models.BirthdayNotification, error) {
	var resp models.BirthdaysResponse
	err := c.doJSON(ctx, call{
		method:   http.MethodGet,
		path:     "/api/notifications/birthdays/today",
		authed:   true,
		fallback: "Failed to fetch birthday notifications",
	}, nil, &resp)
	return resp.Birthdays, err
}

// UploadFile is one PDF sent to the upload endpoint
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Upload streams the files as a multipart form under the "resumes" field
func (c *Client) Upload(ctx context.Context, files []UploadFile) (models.UploadResponse, error) {
	var resp models.UploadResponse

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeParts(mw, files))
	}()

	err := c.doJSON(ctx, call{
		method:      http.MethodPost,
		path:        "/api/resumes/upload",
		body:        pr,
		contentType: mw.FormDataContentType(),
		timeout:     TransferTimeout,
		authed:      true,
		fallback:    "Failed to upload resumes. Please try again.",
	}, nil, &resp)

	// unblock the writer if the request ended before the body was consumed
	pr.CloseWithError(io.ErrClosedPipe)
	return resp, err
}

func writeParts(mw *multipart.Writer, files []UploadFile) error {
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resumes"; filename="%s"`, escapeQuotes(f.Name)))
		h.Set("Content-Type", "application/pdf")

		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Name, err)
		}
		_, err = io.Copy(part, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Download fetches the original PDF of a record
func (c *Client) Download(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := c.do(ctx, call{
		method:       http.MethodGet,
		path:         "/api/resumes/download/" + url.PathEscape(id),
		timeout:      TransferTimeout,
		authed:       true,
		fallback:     "Failed to download PDF",
		textFallback: true,
	})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read download: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/pdf") {
		log.Warn().Str("id", id).Str("content_type", contentType).Msg("download is not a PDF")
	}
	return data, contentType, nil
}

// MailboxLoginURL is where the browser is sent to connect a mailbox
func (c *Client) MailboxLoginURL() string {
	return c.baseURL + "/api/outlook-auth/login"
}
