package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/logger"
	"github.com/glabrego/pkbrowse/internal/navigation"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/selection"
)

var ErrMutationFailed = errors.New("mutation failed")

// ThumbnailSizes are the grid cell sizes, smallest first.
var ThumbnailSizes = []int{75, 100, 150, 200, 250, 300}

const (
	DefaultThumbnailSizeIndex = 3
	DefaultFanoutLimit        = 8
	NewSetTitle               = "New set"
)

type MutationClient interface {
	CreateItem(ctx context.Context) (string, error)
	SetAttribute(ctx context.Context, item, name, value string) error
	AddMember(ctx context.Context, collection, member string) error
}

// SearchBox is the renderer's search input.
type SearchBox interface {
	Focus()
	Clear()
	Blur()
}

type Options struct {
	FanoutLimit        int
	ThumbnailSizeIndex int
}

// Handler runs user commands against the page. Methods other than the
// returned Pending funcs must be called from the event loop.
type Handler struct {
	nav       *navigation.Controller
	selection *selection.Tracker
	client    MutationClient
	searchBox SearchBox

	fanoutLimit int
	currentSet  string
	thumbIdx    int
	drawerOpen  bool
	closed      bool

	log *slog.Logger
}

func NewHandler(nav *navigation.Controller, sel *selection.Tracker, client MutationClient, box SearchBox, opts Options) *Handler {
	if opts.FanoutLimit < 1 {
		opts.FanoutLimit = DefaultFanoutLimit
	}
	return &Handler{
		nav:         nav,
		selection:   sel,
		client:      client,
		searchBox:   box,
		fanoutLimit: opts.FanoutLimit,
		thumbIdx:    clampIndex(opts.ThumbnailSizeIndex),
		log:         logger.ComponentLogger("commands"),
	}
}

func (h *Handler) Selection() *selection.Tracker { return h.selection }

func (h *Handler) CurrentSet() (string, bool) {
	return h.currentSet, h.currentSet != ""
}

// SetSearch navigates to the base address with q set to query.
func (h *Handler) SetSearch(query string) (bool, error) {
	return h.nav.Navigate(h.nav.SearchFor(query))
}

// ShowSearchRoots searches for permanodes marked as roots.
func (h *Handler) ShowSearchRoots() (bool, error) {
	raw, err := address.RawQuery(map[string]any{
		"permanode": map[string]any{
			"attr":     perkeep.AttrRoot,
			"numValue": map[string]any{"min": 1},
		},
	})
	if err != nil {
		return false, err
	}
	return h.SetSearch(raw)
}

// CanSelectAsCurrentSet reports whether the only selected item is a
// dynamic collection in the live session's results.
func (h *Handler) CanSelectAsCurrentSet() bool {
	id, ok := h.selection.Only()
	if !ok {
		return false
	}
	return h.nav.Session().Results().IsDynamicCollection(id)
}

// SelectAsCurrentSet makes the selected collection the target of later
// adds and clears the selection. It reports false when not offered.
func (h *Handler) SelectAsCurrentSet() bool {
	if !h.CanSelectAsCurrentSet() {
		return false
	}
	id, _ := h.selection.Only()
	h.currentSet = id
	h.selection.Clear()
	h.log.Info("current set selected", "set", id)
	return true
}

func (h *Handler) CanAddToCurrentSet() bool {
	return h.currentSet != "" && !h.selection.Empty()
}

func (h *Handler) ClearSelection() {
	h.selection.Clear()
}

func (h *Handler) ThumbnailSizeIndex() int { return h.thumbIdx }

func (h *Handler) ThumbnailSize() int { return ThumbnailSizes[h.thumbIdx] }

// Embiggen grows thumbnails one step. It reports false at the largest size.
func (h *Handler) Embiggen() bool {
	if h.thumbIdx+1 >= len(ThumbnailSizes) {
		return false
	}
	h.thumbIdx++
	return true
}

// Ensmallen shrinks thumbnails one step. It reports false at the smallest size.
func (h *Handler) Ensmallen() bool {
	if h.thumbIdx-1 < 0 {
		return false
	}
	h.thumbIdx--
	return true
}

func (h *Handler) DrawerOpen() bool { return h.drawerOpen }

func (h *Handler) OpenDrawer() {
	h.drawerOpen = true
}

// CloseDrawer closes the drawer and resets the search box.
func (h *Handler) CloseDrawer() {
	if h.searchBox != nil {
		h.searchBox.Clear()
		h.searchBox.Blur()
	}
	h.drawerOpen = false
}

// KeyPress handles the search shortcut. It reports whether the key was
// consumed; keys outside the controller's scope are ignored.
func (h *Handler) KeyPress(r rune, inScope bool) bool {
	if !inScope || r != '/' {
		return false
	}
	h.OpenDrawer()
	if h.searchBox != nil {
		h.searchBox.Focus()
	}
	return true
}

// Close marks the page torn down. In-flight Pending funcs still run to
// completion, but their results are ignored.
func (h *Handler) Close() {
	h.closed = true
}

func clampIndex(idx int) int {
	switch {
	case idx < 0:
		return 0
	case idx >= len(ThumbnailSizes):
		return len(ThumbnailSizes) - 1
	default:
		return idx
	}
}

func mutationError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMutationFailed, op, err)
}
