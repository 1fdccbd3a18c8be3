package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain"
)

// DefaultIdleTTL is how long a session may sit untouched before the
// sweeper evicts it.
const DefaultIdleTTL = 30 * time.Minute

// Registry creates and tracks live sessions and evicts idle ones.
type Registry struct {
	searcher  Searcher
	suggester Suggester
	logger    *zap.Logger
	idleTTL   time.Duration
	opts      []Option

	mu       sync.RWMutex
	sessions map[string]*Session
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTTL overrides the idle eviction window.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

// WithRegistryLogger attaches a logger to the registry and to every
// session it creates.
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithSessionOptions passes options through to each created session.
func WithSessionOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.opts = append(r.opts, opts...) }
}

// NewRegistry creates a session registry backed by the given search and
// suggestion providers.
func NewRegistry(searcher Searcher, suggester Suggester, opts ...RegistryOption) *Registry {
	r := &Registry{
		searcher:  searcher,
		suggester: suggester,
		logger:    zap.NewNop(),
		idleTTL:   DefaultIdleTTL,
		sessions:  make(map[string]*Session),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a fresh session and returns it.
func (r *Registry) Create() *Session {
	opts := append([]Option{WithLogger(r.logger)}, r.opts...)
	s := New(uuid.NewString(), r.searcher, r.suggester, opts...)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session created",
		zap.String("session_id", s.ID()),
		zap.Int("live_sessions", n))
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes a session. Unknown ids are a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes and removes sessions idle longer than the TTL.
func (r *Registry) Sweep() int {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.Close()
		r.logger.Info("session evicted", zap.String("session_id", s.ID()))
	}
	return len(evicted)
}

// StartSweeper runs Sweep on the given interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}
