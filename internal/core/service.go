package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ShuffleRoster/internal/config"
)

// Service owns every live Session, keyed by an opaque ID. Access to a
// single session is serialized; different sessions proceed in parallel.
// Idle sessions expire after the configured TTL.
type Service struct {
	cfg     *config.Config
	limiter *DecodeLimiter
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock replaces time.Now, for expiry tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service and starts its expiry janitor. Call Close
// to stop it.
func NewService(cfg *config.Config, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:      cfg,
		limiter:  NewDecodeLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.janitor(cfg.Session.CleanupInterval)
	return s
}

// SessionOptions returns the options new sessions are created with.
func (s *Service) SessionOptions() SessionOptions {
	return OptionsFromConfig(s.cfg)
}

// OptionsFromConfig maps the grouping and upload settings to session
// options. An unknown default format falls back to xlsx.
func OptionsFromConfig(cfg *config.Config) SessionOptions {
	format, err := ParseFormat(cfg.Grouping.DefaultFormat)
	if err != nil {
		format = DefaultFormat
	}
	return SessionOptions{
		GroupSize:      cfg.Grouping.DefaultSize,
		GroupSizeLimit: cfg.Grouping.MaxSize,
		Format:         format,
		MaxFileSize:    cfg.Upload.MaxFileSize,
	}
}

// Create starts a new session and returns its ID. When the session limit
// is reached the least recently used session is evicted.
func (s *Service) Create() string {
	id := uuid.New().String()
	sess := NewSession(s.SessionOptions())
	sess.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit := s.cfg.Session.MaxSessions; limit > 0 && len(s.sessions) >= limit {
		s.evictOldestLocked()
	}
	s.sessions[id] = &sessionEntry{session: sess, lastSeen: s.now()}
	return id
}

// Ensure returns id if it names a live session, otherwise a new session's
// ID. created reports whether a session was made.
func (s *Service) Ensure(id string) (sessionID string, created bool) {
	if id != "" && s.Exists(id) {
		return id, false
	}
	return s.Create(), true
}

// Exists reports whether id names a live session.
func (s *Service) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// With runs fn with exclusive access to the session.
func (s *Service) With(id string, fn func(*Session) error) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Load reads a roster file into the session. Decoding waits for a slot
// from the shared DecodeLimiter.
func (s *Service) Load(ctx context.Context, id, name string, r io.Reader) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer s.limiter.Release()

	start := time.Now()
	err := s.With(id, func(sess *Session) error {
		return sess.Load(name, r)
	})
	if err != nil {
		return err
	}

	slog.Debug("roster loaded", "session", id, "file", name, "duration", time.Since(start))
	return nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// DecodeStatus reports the shared decode limiter state.
func (s *Service) DecodeStatus() DecodeLimiterStatus {
	return s.limiter.Status()
}

// Sweep removes sessions idle for longer than the TTL and returns how
// many were removed.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.cfg.Session.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Close stops the janitor. It is safe to call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *Service) entry(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	e.lastSeen = s.now()
	return e, nil
}

func (s *Service) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range s.sessions {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		slog.Info("session evicted", "session", oldestID, "last_seen", oldest)
	}
}

func (s *Service) janitor(interval time.Duration) {
	defer close(s.done)

	if interval <= 0 {
		<-s.stop
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Info("expired sessions removed", "count", n, "remaining", s.Len())
			}
		}
	}
}
