package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/logger"
)

var ErrSessionCreateFailed = errors.New("session create failed")

// Coordinator owns the page's single live search session. It is not
// safe for concurrent use; callers drive it from one event loop.
type Coordinator struct {
	provider Provider
	live     Session

	generation uint64
	created    int

	log *slog.Logger
}

func NewCoordinator(provider Provider) *Coordinator {
	return &Coordinator{provider: provider, log: logger.ComponentLogger("session")}
}

// OnNavigate reconciles the live session with the query of a. A session
// whose query equals the new one is kept. Otherwise the live session is
// closed before a replacement is created.
//
// An undecodable raw query closes the live session and returns an error
// wrapping address.ErrInvalidRawQuery. A provider failure leaves no
// session and returns ErrSessionCreateFailed.
func (c *Coordinator) OnNavigate(a address.Address) error {
	q, err := address.DeriveQuery(a)
	if err != nil {
		c.drop()
		c.log.Warn("invalid raw query", "q", a.Query(), "error", err)
		return err
	}
	if c.live != nil && c.live.Query().Equal(q) {
		return nil
	}

	c.drop()
	s, err := c.provider.Create(a, q)
	if err != nil {
		c.log.Error("create session failed", "query", q.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrSessionCreateFailed, err)
	}
	c.live = s
	c.generation++
	c.created++
	logger.WithSession(s.ID()).Debug("session created", "query", q.String())
	return nil
}

// Current returns the live session, or nil.
func (c *Coordinator) Current() Session { return c.live }

// Results returns the live session's snapshot, or an empty one.
func (c *Coordinator) Results() Snapshot {
	if c.live == nil {
		return Snapshot{}
	}
	return c.live.Results()
}

// Generation changes whenever the live session is replaced or dropped.
func (c *Coordinator) Generation() uint64 { return c.generation }

// Created counts sessions created over the coordinator's lifetime.
func (c *Coordinator) Created() int { return c.created }

// Close releases the live session at teardown.
func (c *Coordinator) Close() {
	c.drop()
}

func (c *Coordinator) drop() {
	if c.live == nil {
		return
	}
	id := c.live.ID()
	if err := c.live.Close(); err != nil {
		logger.WithSession(id).Warn("close session", "error", err)
	}
	c.live = nil
	c.generation++
}
