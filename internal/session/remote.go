package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/app"
	"github.com/glabrego/pkbrowse/internal/logger"
)

var ErrSessionClosed = errors.New("session closed")

// Backend runs searches for remote sessions.
type Backend interface {
	Search(ctx context.Context, q address.QueryValue, limit int) (app.Results, error)
	Cached(ctx context.Context, q address.QueryValue) (app.Results, bool, error)
}

// RemoteProvider creates sessions that search through a Backend.
type RemoteProvider struct {
	backend Backend
	limit   int
}

func NewRemoteProvider(backend Backend, limit int) *RemoteProvider {
	if limit < 1 {
		limit = 50
	}
	return &RemoteProvider{backend: backend, limit: limit}
}

func (p *RemoteProvider) Create(a address.Address, q address.QueryValue) (Session, error) {
	if p.backend == nil {
		return nil, errors.New("no search backend")
	}
	return &RemoteSession{
		id:      uuid.NewString(),
		address: a,
		query:   q,
		backend: p.backend,
		limit:   p.limit,
	}, nil
}

// RemoteSession holds the latest result page for its query. Fetches run
// off the event loop, so the snapshot is guarded by mu.
type RemoteSession struct {
	id      string
	address address.Address
	query   address.QueryValue
	backend Backend
	limit   int

	mu       sync.Mutex
	snapshot Snapshot
	closed   bool
}

func (s *RemoteSession) ID() string                { return s.id }
func (s *RemoteSession) Query() address.QueryValue { return s.query }
func (s *RemoteSession) Address() address.Address  { return s.address }

func (s *RemoteSession) Results() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *RemoteSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *RemoteSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// LoadCached fills an empty snapshot from the cache. It reports whether
// cached results were applied.
func (s *RemoteSession) LoadCached(ctx context.Context) (bool, error) {
	results, found, err := s.backend.Cached(ctx, s.query)
	if err != nil || !found {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	if s.snapshot.Loaded {
		return false, nil
	}
	s.snapshot = snapshotOf(results)
	return true, nil
}

// Refresh fetches the first result page from the server. Results that
// arrive after Close are dropped.
func (s *RemoteSession) Refresh(ctx context.Context) error {
	results, err := s.backend.Search(ctx, s.query, s.limit)
	if err != nil {
		logger.WithSession(s.id).Warn("refresh failed", "query", s.query.String(), "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.snapshot = snapshotOf(results)
	return nil
}

func snapshotOf(r app.Results) Snapshot {
	return Snapshot{
		Items:     r.Refs,
		Meta:      r.Meta,
		Source:    r.Source,
		FetchedAt: r.FetchedAt,
		Loaded:    true,
	}
}
