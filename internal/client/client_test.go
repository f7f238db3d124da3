package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-admin/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc, token string) (*Client, *int) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hits := 0
	c := New(srv.URL+"/", func() string { return token }, WithUnauthorizedHandler(func() { hits++ }))
	return c, &hits
}

func TestListResumesSendsBearerToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resumes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"a","hasAttachment":true,"attachmentData":{"name":"Ann"}}]`))
	}, "tok")

	records, err := c.ListResumes(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ann", records[0].Name())
}

func TestUnauthorizedFiresHook(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	}, "tok")

	_, err := c.Count(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, *hits)
	assert.Equal(t, "Invalid token", Message(err, "x"))
}

func TestMissingTokenShortCircuits(t *testing.T) {
	called := false
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	err := c.Delete(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, called)
	assert.Equal(t, 1, *hits)
}

func TestLoginValidation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("login must not reach the server")
	}, "")

	_, err := c.Login(context.Background(), "  ", "secret")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Please enter both username and password", valErr.Message)

	_, err = c.Login(context.Background(), "admin", "   ")
	require.ErrorAs(t, err, &valErr)
}

func TestLoginFailureUsesServerMessageWithoutHook(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin", req.Username)
		assert.Equal(t, " pw ", req.Password)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}, "")

	_, err := c.Login(context.Background(), " admin ", " pw ")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", Message(err, "fallback"))
	assert.Equal(t, 0, *hits)
}

func TestLoginFallbackMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "")

	_, err := c.Login(context.Background(), "admin", "pw")
	require.Error(t, err)
	assert.Equal(t, "Login failed. Please check your credentials and try again.", err.Error())
}

func TestVerifyUsesGivenToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"admin":{"username":"root"}}`))
	}, "ignored")

	admin, err := c.Verify(context.Background(), "stored")
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)
}

func TestAddFromURL(t *testing.T) {
	var got models.AddFromURLRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	}, "tok")

	err := c.AddFromURL(context.Background(), "   ")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Please enter a valid PDF URL", valErr.Message)

	require.NoError(t, c.AddFromURL(context.Background(), " https://x.test/cv.pdf "))
	assert.Equal(t, "https://x.test/cv.pdf", got.URL)
}

func TestUpdateDetails(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/resumes/r1/details", r.URL.Path)
		var u models.DetailsUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
		assert.Equal(t, "Lead", u.Role)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}, "tok")

	require.NoError(t, c.UpdateDetails(context.Background(), "r1", models.DetailsUpdate{Role: "Lead"}))
}

func TestUploadMultipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["resumes"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.pdf", files[0].Filename)
		assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))

		f, err := files[1].Open()
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-b", string(body))

		_, _ = w.Write([]byte(`{"results":[{"filename":"a.pdf","success":true,"name":"Ann"},{"filename":"b.pdf","success":false,"error":"parse"}]}`))
	}, "tok")

	open := func(s string) func() (io.ReadCloser, error) {
		return func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(s)), nil }
	}
	resp, err := c.Upload(context.Background(), []UploadFile{
		{Name: "a.pdf", Open: open("%PDF-a")},
		{Name: "b.pdf", Open: open("%PDF-b")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "parse", resp.Results[1].Error)
}

func TestDownloadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"json error", `{"error":"Resume not found"}`, "Resume not found"},
		{"text body", "gone", "gone"},
		{"empty", "", "Failed to download PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			_, _, err := c.Download(context.Background(), "r1")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestDownloadSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resumes/download/r1", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}, "tok")

	data, ct, err := c.Download(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "application/pdf", ct)
}

func TestBirthdaysAndHealth(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/api/notifications/birthdays/today":
			_, _ = w.Write([]byte(`{"birthdays":[{"name":"Ann","contactNumber":"+1 555"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, "tok")

	require.NoError(t, c.Health(context.Background()))
	b, err := c.BirthdaysToday(context.Background())
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "Ann", b[0].Name)
}

func TestMailboxLoginURL(t *testing.T) {
	c := New("http://localhost:5000/", nil)
	assert.Equal(t, "http://localhost:5000/api/outlook-auth/login", c.MailboxLoginURL())
}
