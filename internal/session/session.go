package session

import (
	"time"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/perkeep"
)

// Session is a live search bound to one query value.
type Session interface {
	ID() string
	Query() address.QueryValue
	Results() Snapshot
	Close() error
}

// Provider creates sessions. Create must not block on the network;
// fetching happens after the session is owned by the coordinator.
type Provider interface {
	Create(a address.Address, q address.QueryValue) (Session, error)
}

// Snapshot is a read-only view of a session's current results.
type Snapshot struct {
	Items     []string
	Meta      map[string]perkeep.DescribedBlob
	Source    string
	FetchedAt time.Time
	Loaded    bool
}

func (s Snapshot) Len() int { return len(s.Items) }

// IsDynamicCollection looks id up in the result metadata. Unknown ids
// are not collections.
func (s Snapshot) IsDynamicCollection(id string) bool {
	d, ok := s.Meta[id]
	return ok && d.IsDynamicCollection()
}

func (s Snapshot) Title(id string) string {
	return perkeep.TitleOf(s.Meta, id)
}

func (s Snapshot) Describe(id string) (perkeep.DescribedBlob, bool) {
	d, ok := s.Meta[id]
	return d, ok
}
