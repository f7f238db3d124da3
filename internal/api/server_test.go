package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackConsumesResultOnce(t *testing.T) {
	var got []MailboxResult
	s := NewServer(func(r MailboxResult) { got = append(got, r) })
	h := s.Router()

	tests := []struct {
		name     string
		target   string
		status   int
		reported bool
		want     string
	}{
		{"success", "/?outlook_auth=success&email=hr%40acme.test", http.StatusSeeOther, true, "Outlook account hr@acme.test connected successfully!"},
		{"error", "/?outlook_auth=error&message=access_denied", http.StatusSeeOther, true, "Outlook authentication failed: access_denied"},
		{"success without email", "/?outlook_auth=success", http.StatusSeeOther, false, ""},
		{"clean", "/", http.StatusOK, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = nil
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusSeeOther {
				assert.Equal(t, "/", rec.Header().Get("Location"))
			}
			if !tt.reported {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Notification())
		})
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStartAndShutdown(t *testing.T) {
	results := make(chan MailboxResult, 1)
	s := NewServer(func(r MailboxResult) { results <- r })

	addr, err := s.Start("127.0.0.1:0")
	require.NoError(t, err)
	defer s.Shutdown(context.Background())

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get("http://" + addr + "/?outlook_auth=success&email=a%40b.test")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	r := <-results
	assert.True(t, r.Success)
	assert.Equal(t, "a@b.test", r.Email)
}
