package navigation

import (
	"fmt"
	"log/slog"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/logger"
	"github.com/glabrego/pkbrowse/internal/mode"
	"github.com/glabrego/pkbrowse/internal/session"
)

const DefaultUIRoot = "/ui/"

// Outcome records how the controller handled one address.
type Outcome struct {
	Address  address.Address
	Accepted bool
	Err      error
}

// Controller maps intra-page address changes onto the session
// coordinator and publishes the current address.
type Controller struct {
	uiRoot      string
	navigator   Navigator
	coordinator *session.Coordinator

	ready   bool
	base    address.Address
	current address.Address
	last    Outcome

	log *slog.Logger
}

func NewController(uiRoot string, navigator Navigator, coordinator *session.Coordinator) *Controller {
	if uiRoot == "" {
		uiRoot = DefaultUIRoot
	}
	return &Controller{
		uiRoot:      uiRoot,
		navigator:   navigator,
		coordinator: coordinator,
		log:         logger.ComponentLogger("navigation"),
	}
}

// Start resolves the base address against current, subscribes to the
// navigator and handles current as the first navigation.
func (c *Controller) Start(current address.Address) (bool, error) {
	base, err := current.ResolveRoot(c.uiRoot)
	if err != nil {
		return false, fmt.Errorf("resolve ui root: %w", err)
	}
	c.base = base.With(address.ParamReact, "1")
	c.navigator.Observe(c.observe)
	return c.navigator.Navigate(current), c.last.Err
}

// OnNavigate handles an observed address. An address on a different
// path than the current one is rejected with (false, nil). Otherwise
// the session is reconciled before a becomes current, and any session
// error is returned alongside true.
func (c *Controller) OnNavigate(a address.Address) (bool, error) {
	if c.ready && a.Path() != c.current.Path() {
		c.log.Debug("rejected cross-page navigation", "from", c.current.Path(), "to", a.Path())
		c.last = Outcome{Address: a}
		return false, nil
	}

	err := c.coordinator.OnNavigate(a)
	c.current = a
	c.ready = true
	c.last = Outcome{Address: a, Accepted: true, Err: err}
	return true, err
}

// NavigateRaw parses raw and offers it to the navigator. A malformed
// address leaves all state untouched.
func (c *Controller) NavigateRaw(raw string) (bool, error) {
	a, err := address.Parse(raw)
	if err != nil {
		return false, err
	}
	return c.Navigate(a)
}

// Navigate asks the navigator to move to a and reports the outcome.
func (c *Controller) Navigate(a address.Address) (bool, error) {
	c.last = Outcome{Address: a}
	accepted := c.navigator.Navigate(a)
	return accepted, c.last.Err
}

func (c *Controller) observe(a address.Address) bool {
	accepted, _ := c.OnNavigate(a)
	return accepted
}

func (c *Controller) Ready() bool { return c.ready }

func (c *Controller) Current() address.Address { return c.current }

// Base is the UI root with react=1.
func (c *Controller) Base() address.Address { return c.base }

func (c *Controller) Last() Outcome { return c.last }

func (c *Controller) Modes() mode.Modes { return mode.Derive(c.current) }

// Session exposes the coordinator for read-only view models.
func (c *Controller) Session() *session.Coordinator { return c.coordinator }

// SearchFor is the base address with q set.
func (c *Controller) SearchFor(query string) address.Address {
	return c.base.With(address.ParamQuery, query)
}

// SearchAddress links back to the search the current address came from.
func (c *Controller) SearchAddress() address.Address {
	if !c.current.Has(address.ParamQuery) {
		return c.base
	}
	return c.SearchFor(c.current.Query())
}

// OldUIAddress is the base address showing the current item in the
// classic detail page.
func (c *Controller) OldUIAddress() address.Address {
	ref, _ := c.current.DetailRef()
	return c.base.With(address.ParamDetail, ref)
}

// DetailAddress is the current address with p set to ref, and newui=1
// when newUI is true.
func (c *Controller) DetailAddress(newUI bool, ref string) address.Address {
	a := c.current.With(address.ParamDetail, ref)
	if newUI {
		a = a.With(address.ParamNewUI, "1")
	}
	return a
}

// Close tears down the live session.
func (c *Controller) Close() {
	c.coordinator.Close()
}
