package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MailboxResult is the outcome of the mailbox-connect redirect flow
type MailboxResult struct {
	Success bool
	Email   string
	Message string
}

// Notification returns the operator-facing text for the result
func (r MailboxResult) Notification() string {
	if r.Success {
		return fmt.Sprintf("Outlook account %s connected successfully!", r.Email)
	}
	return fmt.Sprintf("Outlook authentication failed: %s", r.Message)
}

// parseMailboxResult reads the one-shot query parameters. ok is false when
// the request carries no complete result.
func parseMailboxResult(r *http.Request) (MailboxResult, bool) {
	q := r.URL.Query()
	switch q.Get("outlook_auth") {
	case "success":
		if email := q.Get("email"); email != "" {
			return MailboxResult{Success: true, Email: email}, true
		}
	case "error":
		if msg := q.Get("message"); msg != "" {
			return MailboxResult{Message: msg}, true
		}
	}
	return MailboxResult{}, false
}

// Server receives the browser redirect that ends the mailbox-connect flow
type Server struct {
	onResult func(MailboxResult)
	srv      *http.Server
}

// NewServer creates a callback receiver; onResult is called once per redirect
func NewServer(onResult func(MailboxResult)) *Server {
	return &Server{onResult: onResult}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleCallback)

	return s.loggingMiddleware(mux)
}

// handleCallback consumes the result parameters and redirects to a clean URL
// so a reload cannot report the same result twice
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if result, ok := parseMailboxResult(r); ok {
		log.Info().Bool("success", result.Success).Str("email", result.Email).Msg("mailbox connect finished")
		if s.onResult != nil {
			s.onResult(result)
		}
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	if r.URL.RawQuery != "" {
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<!doctype html><title>Resume Admin</title><p>You can close this tab and return to Resume Admin.</p>`)
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request_id", requestID).
			Dur("elapsed", time.Since(start)).
			Msg("callback request")
	})
}

// Start listens on addr in the background and returns the bound address
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("callback server stopped")
		}
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("callback server listening")
	return ln.Addr().String(), nil
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
