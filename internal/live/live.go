package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fmuoria/resume-admin/internal/models"
)

const (
	// DefaultHealthInterval is the period of the health poller
	DefaultHealthInterval = 10 * time.Second
	// DefaultReconnectDelay is the pause between push channel attempts
	DefaultReconnectDelay = time.Second
	// DefaultReconnectAttempts bounds consecutive failed connections
	DefaultReconnectAttempts = 5
	// DefaultDialTimeout bounds the websocket handshake and the first read
	DefaultDialTimeout = 20 * time.Second
)

// HealthChecker calls the API health endpoint
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options configures a Subscription
type Options struct {
	BaseURL           string
	Token             func() string
	Health            HealthChecker
	HealthInterval    time.Duration
	ReconnectDelay    time.Duration
	ReconnectAttempts int
	DialTimeout       time.Duration
}

func (o *Options) defaults() {
	if o.HealthInterval <= 0 {
		o.HealthInterval = DefaultHealthInterval
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.ReconnectAttempts <= 0 {
		o.ReconnectAttempts = DefaultReconnectAttempts
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = DefaultDialTimeout
	}
}

// Subscription keeps the push channel open and tracks server connectivity.
// It is started after sign-in and stopped on sign-out; handlers run on
// background goroutines.
type Subscription struct {
	opts Options

	mu          sync.Mutex
	run         *run
	connected   bool
	onNewRecord []func(models.NewRecordEvent)
	onStatus    []func(bool)

	// recheck asks the health poller for an immediate check
	recheck chan struct{}
}

// run is one Start..Stop lifetime. done closes once its goroutines return.
type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped subscription
func New(opts Options) *Subscription {
	opts.defaults()
	return &Subscription{opts: opts}
}

// OnNewRecord registers a handler for new resume announcements
func (s *Subscription) OnNewRecord(fn func(models.NewRecordEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNewRecord = append(s.onNewRecord, fn)
}

// OnStatus registers a handler for connectivity changes
func (s *Subscription) OnStatus(fn func(connected bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = append(s.onStatus, fn)
}

// Connected reports the last known connectivity
func (s *Subscription) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Start opens the push channel and the health poller. Calling Start on a
// running subscription is a no-op.
func (s *Subscription) Start(ctx context.Context) {
	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}
	s.run = r
	recheck := make(chan struct{}, 1)
	s.recheck = recheck
	s.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.listen(ctx)
	}()
	go func() {
		defer wg.Done()
		s.pollHealth(ctx, recheck)
	}()
	go func() {
		wg.Wait()
		close(r.done)
	}()
	log.Info().Str("server", s.opts.BaseURL).Msg("live updates started")
}

// Stop closes the channel and waits for the background goroutines of the
// current run. A Start issued meanwhile begins an independent run whose
// status is left untouched.
func (s *Subscription) Stop() {
	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()

	if r == nil {
		return
	}
	r.cancel()
	<-r.done

	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		log.Info().Msg("live updates stopped, a new run is active")
		return
	}
	handlers, changed := s.swapConnectedLocked(false)
	s.mu.Unlock()
	notifyStatus(handlers, changed, false)
	log.Info().Msg("live updates stopped")
}

// listen connects and reconnects until the context ends or the attempts run out
func (s *Subscription) listen(ctx context.Context) {
	failures := 0
	for ctx.Err() == nil {
		established, err := s.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if established {
			failures = 0
		}
		failures++
		log.Warn().Err(err).Int("attempt", failures).Msg("push channel disconnected")
		s.setConnected(false)
		s.requestProbe()

		if failures > s.opts.ReconnectAttempts {
			log.Error().Int("attempts", s.opts.ReconnectAttempts).Msg("giving up on push channel")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.opts.ReconnectDelay):
		}
	}
}

// session runs one connection until it fails. established reports whether
// the namespace handshake completed.
func (s *Subscription) session(ctx context.Context) (established bool, err error) {
	endpoint, err := socketURL(s.opts.BaseURL)
	if err != nil {
		return false, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.opts.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("connect error: %w", err)
	}
	defer conn.Close()

	// unblock the read loop when the subscription stops
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	readTimeout := s.opts.DialTimeout
	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return established, err
		}

		p, err := parsePacket(string(raw))
		if err != nil {
			log.Debug().Err(err).Msg("ignoring frame")
			continue
		}

		switch p.engine {
		case eioOpen:
			var open openPayload
			if err := json.Unmarshal([]byte(p.data), &open); err == nil && open.PingInterval > 0 {
				readTimeout = time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond
			}
			token := ""
			if s.opts.Token != nil {
				token = s.opts.Token()
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(connectFrame(token))); err != nil {
				return established, err
			}
		case eioPing:
			if err := conn.WriteMessage(websocket.TextMessage, []byte{eioPong}); err != nil {
				return established, err
			}
		case eioClose:
			return established, errors.New("server closed the connection")
		case eioMessage:
			switch p.socket {
			case sioConnect:
				established = true
				s.setConnected(true)
				log.Info().Msg("push channel connected")
			case sioConnectError:
				return established, fmt.Errorf("connect error: %s", p.data)
			case sioDisconnect:
				return established, errors.New("server disconnected the namespace")
			case sioEvent:
				s.dispatch(p.data)
			}
		}
	}
}

func (s *Subscription) dispatch(data string) {
	name, arg, err := parseEvent(data)
	if err != nil {
		log.Warn().Err(err).Msg("malformed push event")
		return
	}
	if name != NewRecordEvent {
		return
	}

	var event models.NewRecordEvent
	if len(arg) > 0 {
		if err := json.Unmarshal(arg, &event); err != nil {
			log.Warn().Err(err).Msg("malformed new record event")
			return
		}
	}
	log.Info().Str("record_id", event.RecordID()).Msg("new resume announced")

	s.mu.Lock()
	handlers := append([]func(models.NewRecordEvent){}, s.onNewRecord...)
	s.mu.Unlock()
	for _, fn := range handlers {
		fn(event)
	}
}

// pollHealth checks the server on a fixed interval and whenever the push
// channel drops
func (s *Subscription) pollHealth(ctx context.Context, recheck <-chan struct{}) {
	if s.opts.Health == nil {
		return
	}
	ticker := time.NewTicker(s.opts.HealthInterval)
	defer ticker.Stop()

	s.checkHealth(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-recheck:
		}
		s.checkHealth(ctx)
	}
}

func (s *Subscription) checkHealth(ctx context.Context) {
	err := s.opts.Health.Health(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Debug().Err(err).Msg("health check failed")
	}
	s.setConnected(err == nil)
}

func (s *Subscription) requestProbe() {
	s.mu.Lock()
	recheck := s.recheck
	s.mu.Unlock()
	if recheck == nil {
		return
	}
	select {
	case recheck <- struct{}{}:
	default:
	}
}

func (s *Subscription) setConnected(connected bool) {
	s.mu.Lock()
	handlers, changed := s.swapConnectedLocked(connected)
	s.mu.Unlock()
	notifyStatus(handlers, changed, connected)
}

// swapConnectedLocked stores the status and returns the handlers to notify.
// s.mu must be held.
func (s *Subscription) swapConnectedLocked(connected bool) ([]func(bool), bool) {
	changed := s.connected != connected
	s.connected = connected
	return append([]func(bool){}, s.onStatus...), changed
}

func notifyStatus(handlers []func(bool), changed, connected bool) {
	if !changed {
		return
	}
	for _, fn := range handlers {
		fn(connected)
	}
}
