package navigation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/mode"
	"github.com/glabrego/pkbrowse/internal/session"
)

type stubSession struct {
	id     string
	query  address.QueryValue
	closed bool
}

func (s *stubSession) ID() string                { return s.id }
func (s *stubSession) Query() address.QueryValue { return s.query }
func (s *stubSession) Results() session.Snapshot { return session.Snapshot{} }
func (s *stubSession) Close() error              { s.closed = true; return nil }

type stubProvider struct {
	created []*stubSession
	err     error
}

func (p *stubProvider) Create(_ address.Address, q address.QueryValue) (session.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	s := &stubSession{id: fmt.Sprintf("s%d", len(p.created)+1), query: q}
	p.created = append(p.created, s)
	return s, nil
}

func newStartedController(t *testing.T, start string) (*Controller, *stubProvider, *History) {
	t.Helper()
	p := &stubProvider{}
	h := NewHistory()
	c := NewController("/ui/", h, session.NewCoordinator(p))
	accepted, err := c.Start(address.MustParse(start))
	require.NoError(t, err)
	require.True(t, accepted)
	return c, p, h
}

func TestStart_ResolvesBaseAndCreatesSession(t *testing.T) {
	c, p, h := newStartedController(t, "http://localhost:3179/ui/?react=1&q=cats")

	assert.True(t, c.Ready())
	assert.Equal(t, "http://localhost:3179/ui/?react=1", c.Base().String())
	assert.Len(t, p.created, 1)
	assert.Equal(t, "cats", p.created[0].query.Text())
	assert.Equal(t, 1, h.Len())
}

func TestOnNavigate_BeforeStartAcceptsAnyPath(t *testing.T) {
	c := NewController("", NewHistory(), session.NewCoordinator(&stubProvider{}))
	assert.False(t, c.Ready())

	accepted, err := c.OnNavigate(address.MustParse("/elsewhere/?react=1"))
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.True(t, c.Ready())
}

func TestOnNavigate_CrossPageRejectedWithoutSideEffects(t *testing.T) {
	c, p, h := newStartedController(t, "/ui/?react=1&q=cats")
	before := c.Current()
	gen := c.Session().Generation()

	accepted, err := c.OnNavigate(address.MustParse("/other/?react=1&q=dogs"))

	require.NoError(t, err)
	assert.False(t, accepted)
	assert.True(t, before.Equal(c.Current()))
	assert.Equal(t, gen, c.Session().Generation())
	assert.Len(t, p.created, 1)
	assert.False(t, p.created[0].closed)

	accepted, err = c.NavigateRaw("/other/?react=1")
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 1, h.Len(), "rejected address must not enter history")
}

func TestOnNavigate_Idempotent(t *testing.T) {
	c, p, _ := newStartedController(t, "/ui/?react=1&q=cats")
	gen := c.Session().Generation()

	for i := 0; i < 3; i++ {
		accepted, err := c.OnNavigate(address.MustParse("/ui/?react=1&q=cats"))
		require.NoError(t, err)
		assert.True(t, accepted)
	}

	assert.Len(t, p.created, 1)
	assert.Equal(t, gen, c.Session().Generation())
}

func TestNavigateRaw_MalformedLeavesStateUntouched(t *testing.T) {
	c, p, h := newStartedController(t, "/ui/?react=1&q=cats")

	accepted, err := c.NavigateRaw("/ui/?q=%zz")

	assert.False(t, accepted)
	assert.True(t, errors.Is(err, address.ErrMalformedAddress))
	assert.Equal(t, "cats", c.Current().Query())
	assert.Len(t, p.created, 1)
	assert.Equal(t, 1, h.Len())
}

func TestOnNavigate_SessionErrorsAreNonFatal(t *testing.T) {
	c, p, _ := newStartedController(t, "/ui/?react=1&q=cats")

	p.err = errors.New("server down")
	accepted, err := c.NavigateRaw("/ui/?react=1&q=dogs")

	assert.True(t, accepted)
	assert.True(t, errors.Is(err, session.ErrSessionCreateFailed))
	assert.Equal(t, "dogs", c.Current().Query())
	assert.True(t, c.Modes().Search, "modes depend on the address only")
	assert.Nil(t, c.Session().Current())

	accepted, err = c.Navigate(address.MustParse("/ui/?react=1").With(address.ParamQuery, "raw:nope"))
	assert.True(t, accepted)
	assert.True(t, errors.Is(err, address.ErrInvalidRawQuery))
	assert.True(t, c.Modes().Search)
}

func TestEndToEnd_DetailKeepsSession(t *testing.T) {
	c, p, _ := newStartedController(t, "/ui/?react=1&q=cats")
	require.Len(t, p.created, 1)
	assert.Equal(t, "cats", p.created[0].query.Text())

	accepted, err := c.NavigateRaw("/ui/?react=1&q=cats&p=abc123")
	require.NoError(t, err)
	require.True(t, accepted)
	assert.Len(t, p.created, 1)
	assert.False(t, c.Modes().Detail)
	assert.False(t, c.Modes().Search)

	accepted, err = c.NavigateRaw("/ui/?react=1&q=cats&p=abc123&newui=1")
	require.NoError(t, err)
	require.True(t, accepted)
	assert.True(t, c.Modes().Detail)
	assert.Equal(t, mode.Detail, c.Modes().Primary())
	assert.Len(t, p.created, 1)
	assert.False(t, p.created[0].closed)
}

func TestViewModelAddresses(t *testing.T) {
	c, _, _ := newStartedController(t, "/ui/?react=1&q=cats")

	detail := c.DetailAddress(true, "sha224-a")
	assert.Equal(t, "/ui/?react=1&q=cats&p=sha224-a&newui=1", detail.String())
	assert.Equal(t, "/ui/?react=1&q=cats&p=sha224-a", c.DetailAddress(false, "sha224-a").String())

	_, err := c.Navigate(detail)
	require.NoError(t, err)

	assert.Equal(t, "/ui/?react=1&q=cats", c.SearchAddress().String())
	assert.Equal(t, "/ui/?react=1&p=sha224-a", c.OldUIAddress().String())
	assert.Equal(t, "/ui/?react=1&q=dogs", c.SearchFor("dogs").String())
}

func TestSearchAddress_WithoutQueryIsBase(t *testing.T) {
	c, _, _ := newStartedController(t, "/ui/?react=1")
	assert.True(t, c.SearchAddress().Equal(c.Base()))
}

func TestHistoryBack_RenavigatesPreviousAddress(t *testing.T) {
	c, p, h := newStartedController(t, "/ui/?react=1&q=cats")
	_, err := c.NavigateRaw("/ui/?react=1&q=dogs")
	require.NoError(t, err)

	require.True(t, h.Back())

	assert.Equal(t, "cats", c.Current().Query())
	assert.Len(t, p.created, 3)
	assert.False(t, h.Back())
}

func TestClose_ClosesLiveSession(t *testing.T) {
	c, p, _ := newStartedController(t, "/ui/?react=1")
	c.Close()
	assert.True(t, p.created[0].closed)
	assert.Nil(t, c.Session().Current())
}
