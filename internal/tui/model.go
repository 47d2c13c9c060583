package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/commands"
	"github.com/glabrego/pkbrowse/internal/logger"
	"github.com/glabrego/pkbrowse/internal/mode"
	"github.com/glabrego/pkbrowse/internal/navigation"
	"github.com/glabrego/pkbrowse/internal/selection"
	"github.com/glabrego/pkbrowse/internal/session"
	"github.com/glabrego/pkbrowse/internal/tui/actions"
	"github.com/glabrego/pkbrowse/internal/tui/platform"
	"github.com/glabrego/pkbrowse/internal/tui/state"
	tuitheme "github.com/glabrego/pkbrowse/internal/tui/theme"
	"github.com/glabrego/pkbrowse/internal/tui/view"
)

const recentQueryLimit = 20

type clearStatusMsg struct {
	id int
}

// Deps are the collaborators the model is built from.
type Deps struct {
	Start    address.Address
	UIRoot   string
	Provider session.Provider
	Client   commands.MutationClient
	// Service persists query history and preferences. Optional.
	Service actions.Service
	Options commands.Options
	// ItemURL builds the web UI link for a blobref. Optional.
	ItemURL func(ref string) string
}

type Model struct {
	controller *navigation.Controller
	history    *navigation.History
	handler    *commands.Handler
	selection  *selection.Tracker
	search     *searchBox
	service    actions.Service
	itemURL    func(string) string

	keys  KeyMap
	help  help.Model
	theme tuitheme.Theme

	cursor       int
	gridTop      int
	drawerCursor int
	detailTop    int
	width        int
	height       int
	showHelp     bool
	loading      bool
	status       string
	statusID     int
	err          error

	recent      []string
	suggestions []string

	openURLFn func(string) error
	copyFn    func(string) error

	log *slog.Logger
}

// NewModel wires the page controller and starts it at d.Start.
func NewModel(d Deps) Model {
	history := navigation.NewHistory()
	controller := navigation.NewController(d.UIRoot, history, session.NewCoordinator(d.Provider))
	box := newSearchBox()
	sel := selection.New()

	m := Model{
		controller: controller,
		history:    history,
		handler:    commands.NewHandler(controller, sel, d.Client, box, d.Options),
		selection:  sel,
		search:     box,
		service:    d.Service,
		itemURL:    d.ItemURL,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		theme:      tuitheme.Default(),
		openURLFn:  platform.OpenURLInBrowser,
		copyFn:     platform.CopyToClipboard,
		log:        logger.ComponentLogger("tui"),
	}
	if _, err := controller.Start(d.Start); err != nil {
		m.err = err
	}
	_, m.loading = controller.Session().Current().(actions.Loader)
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadSessionCmd()}
	if m.service != nil {
		cmds = append(cmds, actions.RecentQueriesCmd(m.service, recentQueryLimit))
	}
	return tea.Batch(cmds...)
}

// Close tears the page down. Pending commands still finish.
func (m Model) Close() {
	m.handler.Close()
	m.controller.Close()
}

func (m Model) Controller() *navigation.Controller { return m.controller }
func (m Model) Handler() *commands.Handler          { return m.handler }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case actions.CacheLoadedMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		if msg.Applied {
			m.clampCursor()
			m.status = fmt.Sprintf("Loaded %d cached results", m.results().Len())
		}
		return m, nil
	case actions.RefreshSuccessMsg:
		if m.stale(msg.Generation) {
			return m, nil
		}
		m.loading = false
		m.err = nil
		m.clampCursor()
		m.log.Debug("results refreshed", "count", m.results().Len(), "duration", msg.Duration)
		return m, nil
	case actions.RefreshErrorMsg:
		if m.stale(msg.Generation) || errors.Is(msg.Err, session.ErrSessionClosed) {
			return m, nil
		}
		m.loading = false
		m.status = ""
		m.err = msg.Err
		return m, nil
	case actions.CommandDoneMsg:
		return m.commandDone(msg.Result)
	case actions.RecentQueriesMsg:
		m.recent = msg.Queries
		m.suggestions = suggest(m.search.Value(), m.recent)
		return m, nil
	case actions.PersistErrorMsg:
		m.err = fmt.Errorf("%s: %w", msg.What, msg.Err)
		m.status = "Could not persist " + msg.What
		return m, nil
	case actions.OpenURLSuccessMsg:
		m.err = nil
		return m.setStatus(msg.Status, 3*time.Second)
	case actions.OpenURLErrorMsg:
		m.err = nil
		return m.setStatus(msg.Err.Error(), 4*time.Second)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	if m.search.Focused() {
		return m, m.search.update(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.search.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.showHelp = false
		} else if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if r := msg.Runes; len(r) == 1 && m.handler.KeyPress(r[0], m.controller.Modes().Search) {
		m.drawerCursor = 0
		m.suggestions = suggest("", m.recent)
		return m, textinput.Blink
	}
	if m.handler.DrawerOpen() {
		return m.handleDrawerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.History):
		prev := m.generation()
		if !m.history.Back() {
			return m.setStatus("No earlier address", 3*time.Second)
		}
		last := m.controller.Last()
		return m.navigated(last.Accepted, last.Err, prev)
	}

	switch m.controller.Modes().Primary() {
	case mode.Search:
		return m.handleGridKey(msg)
	case mode.Detail:
		return m.handleDetailKey(msg)
	default:
		return m.handleClassicKey(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		query := m.search.Value()
		m.handler.CloseDrawer()
		m.suggestions = nil
		prev := m.generation()
		accepted, err := m.handler.SetSearch(query)
		return m.navigated(accepted, err, prev)
	case msg.Type == tea.KeyEsc:
		m.handler.CloseDrawer()
		m.suggestions = nil
		return m, nil
	case key.Matches(msg, m.keys.Complete):
		if len(m.suggestions) > 0 {
			m.search.SetValue(m.suggestions[0])
			m.suggestions = suggest(m.search.Value(), m.recent)
		}
		return m, nil
	}
	cmd := m.search.update(msg)
	m.suggestions = suggest(m.search.Value(), m.recent)
	return m, cmd
}

func (m Model) handleDrawerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.handler.Menu()
	switch {
	case key.Matches(msg, m.keys.Back, m.keys.Menu):
		m.handler.CloseDrawer()
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.drawerCursor > 0 {
			m.drawerCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.drawerCursor < len(items)-1 {
			m.drawerCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if m.drawerCursor < 0 || m.drawerCursor >= len(items) {
			return m, nil
		}
		return m.runMenuItem(items[m.drawerCursor])
	}
	return m, nil
}

func (m Model) runMenuItem(item commands.MenuItem) (tea.Model, tea.Cmd) {
	switch item.Action {
	case commands.ActionSearch:
		m.handler.KeyPress('/', m.controller.Modes().Search)
		m.suggestions = suggest("", m.recent)
		return m, textinput.Blink
	case commands.ActionNewCollection:
		m.handler.CloseDrawer()
		m.status = "Creating permanode..."
		return m, actions.CommandCmd(m.handler.NewCollection())
	case commands.ActionSearchRoots:
		m.handler.CloseDrawer()
		prev := m.generation()
		accepted, err := m.handler.ShowSearchRoots()
		return m.navigated(accepted, err, prev)
	case commands.ActionSelectAsCurrentSet:
		if m.handler.SelectAsCurrentSet() {
			set, _ := m.handler.CurrentSet()
			m.status = "Current set: " + m.results().Title(set)
		}
	case commands.ActionAddToCurrentSet:
		if pending, ok := m.handler.AddToCurrentSet(); ok {
			m.handler.CloseDrawer()
			m.status = fmt.Sprintf("Adding %d items...", m.selection.Count())
			return m, actions.CommandCmd(pending)
		}
	case commands.ActionCreateSetWithSelection:
		if pending, ok := m.handler.CreateSetWithSelection(); ok {
			m.handler.CloseDrawer()
			m.status = "Creating set..."
			return m, actions.CommandCmd(pending)
		}
	case commands.ActionClearSelection:
		m.handler.ClearSelection()
	case commands.ActionEmbiggen:
		return m.resize(m.handler.Embiggen())
	case commands.ActionEnsmallen:
		return m.resize(m.handler.Ensmallen())
	case commands.ActionHome:
		m.handler.CloseDrawer()
		prev := m.generation()
		accepted, err := m.controller.Navigate(m.controller.Base())
		return m.navigated(accepted, err, prev)
	}
	m.clampDrawerCursor()
	return m, nil
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.results().Len()
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = state.GridMove(m.cursor, state.Up, cols, n)
	case key.Matches(msg, m.keys.Down):
		m.cursor = state.GridMove(m.cursor, state.Down, cols, n)
	case key.Matches(msg, m.keys.Left):
		m.cursor = state.GridMove(m.cursor, state.Left, cols, n)
	case key.Matches(msg, m.keys.Right):
		m.cursor = state.GridMove(m.cursor, state.Right, cols, n)
	case key.Matches(msg, m.keys.Top):
		m.cursor = state.GridMove(m.cursor, state.First, cols, n)
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = state.GridMove(m.cursor, state.Last, cols, n)
	case key.Matches(msg, m.keys.Select):
		if ref, ok := m.currentRef(); ok {
			m.selection.Toggle(ref)
		}
	case key.Matches(msg, m.keys.ClearSel):
		m.handler.ClearSelection()
	case key.Matches(msg, m.keys.Open):
		ref, ok := m.currentRef()
		if !ok {
			return m, nil
		}
		prev := m.generation()
		accepted, err := m.controller.Navigate(m.controller.DetailAddress(true, ref))
		return m.navigated(accepted, err, prev)
	case key.Matches(msg, m.keys.Menu):
		m.handler.OpenDrawer()
		m.drawerCursor = 0
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadSessionCmd()
	case key.Matches(msg, m.keys.Bigger):
		return m.resize(m.handler.Embiggen())
	case key.Matches(msg, m.keys.Smaller):
		return m.resize(m.handler.Ensmallen())
	case key.Matches(msg, m.keys.Browser):
		if ref, ok := m.currentRef(); ok {
			return m.openInBrowser(ref)
		}
	case key.Matches(msg, m.keys.CopyRef):
		if ref, ok := m.currentRef(); ok {
			return m, actions.CopyCmd(ref, "Blobref", m.copyFn)
		}
	}
	m.gridTop = state.WindowTop(m.gridTop, m.cursor, cols, m.gridRows())
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ref, _ := m.controller.Current().DetailRef()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.detailTop > 0 {
			m.detailTop--
		}
	case key.Matches(msg, m.keys.Down):
		if m.detailTop < view.DetailMaxTop(len(m.detailLines()), m.bodyHeight()) {
			m.detailTop++
		}
	case key.Matches(msg, m.keys.Back):
		return m.navigateTo(m.controller.SearchAddress())
	case key.Matches(msg, m.keys.Classic):
		return m.navigateTo(m.controller.OldUIAddress())
	case key.Matches(msg, m.keys.Select):
		m.selection.Toggle(ref)
	case key.Matches(msg, m.keys.Browser):
		return m.openInBrowser(ref)
	case key.Matches(msg, m.keys.CopyRef):
		return m, actions.CopyCmd(ref, "Blobref", m.copyFn)
	}
	return m, nil
}

// handleClassicKey covers addresses that belong to the classic web UI,
// which the terminal can only hand off to a browser.
func (m Model) handleClassicKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.navigateTo(m.controller.SearchAddress())
	case key.Matches(msg, m.keys.Browser):
		if ref, ok := m.controller.Current().DetailRef(); ok {
			return m.openInBrowser(ref)
		}
	}
	return m, nil
}

func (m Model) commandDone(r commands.Result) (tea.Model, tea.Cmd) {
	prev := m.generation()
	err := m.handler.Complete(r)
	m.clampDrawerCursor()
	if err != nil {
		m.err = err
		switch {
		case r.Failed > 0:
			m.status = fmt.Sprintf("%d of %d adds failed", r.Failed, r.Issued)
		default:
			m.status = "Could not " + r.Op.String()
		}
		return m, nil
	}
	m.err = nil
	switch r.Op {
	case commands.OpNewCollection:
		m.status = "Created " + r.Ref
		return m, m.afterNavigate(prev)
	case commands.OpAddToCurrentSet:
		m.status = fmt.Sprintf("Added %d items to the current set", r.Issued)
	case commands.OpCreateSetWithSelection:
		m.status = fmt.Sprintf("Created set %s with %d items", r.Ref, r.Issued)
	}
	return m, m.refreshCmd()
}

func (m Model) navigateTo(a address.Address) (tea.Model, tea.Cmd) {
	prev := m.generation()
	accepted, err := m.controller.Navigate(a)
	return m.navigated(accepted, err, prev)
}

// navigated reports a navigation outcome and reloads results when the
// session was replaced.
func (m Model) navigated(accepted bool, err error, prev uint64) (tea.Model, tea.Cmd) {
	m.err = err
	if !accepted && err == nil {
		m.status = "Address belongs to another page"
		return m, nil
	}
	if err != nil {
		m.log.Warn("navigation", "address", m.controller.Current().String(), "error", err)
	}
	m.status = ""
	return m, m.afterNavigate(prev)
}

func (m *Model) afterNavigate(prev uint64) tea.Cmd {
	m.detailTop = 0
	if m.generation() == prev {
		return nil
	}
	m.cursor, m.gridTop = 0, 0
	cmds := []tea.Cmd{m.loadSessionCmd()}
	if q := m.controller.Current().Query(); q != "" && m.service != nil {
		cmds = append(cmds, actions.RecordQueryCmd(m.service, q, recentQueryLimit))
	}
	return tea.Batch(cmds...)
}

func (m *Model) loadSessionCmd() tea.Cmd {
	loader, ok := m.controller.Session().Current().(actions.Loader)
	if !ok {
		m.loading = false
		return nil
	}
	m.loading = true
	gen := m.generation()
	return tea.Batch(actions.LoadCachedCmd(loader, gen), actions.RefreshSessionCmd(loader, gen))
}

func (m *Model) refreshCmd() tea.Cmd {
	loader, ok := m.controller.Session().Current().(actions.Loader)
	if !ok {
		return nil
	}
	return actions.RefreshSessionCmd(loader, m.generation())
}

func (m Model) resize(changed bool) (tea.Model, tea.Cmd) {
	if !changed {
		return m.setStatus("Thumbnail size unchanged", 2*time.Second)
	}
	m.status = fmt.Sprintf("Thumbnail size: %d", m.handler.ThumbnailSize())
	m.gridTop = state.WindowTop(0, m.cursor, m.columns(), m.gridRows())
	if m.service == nil {
		return m, nil
	}
	return m, actions.SaveThumbnailSizeCmd(m.service, m.handler.ThumbnailSizeIndex())
}

func (m Model) openInBrowser(ref string) (tea.Model, tea.Cmd) {
	if m.itemURL == nil {
		return m.setStatus("No web UI configured", 3*time.Second)
	}
	u, err := platform.ValidateItemURL(m.itemURL(ref))
	if err != nil {
		m.err = nil
		return m.setStatus(err.Error(), 4*time.Second)
	}
	return m, actions.OpenURLCmd(u, m.openURLFn, m.copyFn)
}

func (m Model) setStatus(status string, d time.Duration) (tea.Model, tea.Cmd) {
	m.status = status
	m.statusID++
	return m, clearStatusCmd(m.statusID, d)
}

func clearStatusCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m Model) stale(gen uint64) bool {
	return gen != m.generation()
}

func (m Model) generation() uint64 {
	return m.controller.Session().Generation()
}

func (m Model) results() session.Snapshot {
	return m.controller.Session().Results()
}

func (m Model) currentRef() (string, bool) {
	items := m.results().Items
	if m.cursor < 0 || m.cursor >= len(items) {
		return "", false
	}
	return items[m.cursor], true
}

func (m *Model) clampCursor() {
	m.cursor = state.ClampCursor(m.cursor, m.results().Len())
	m.gridTop = state.WindowTop(m.gridTop, m.cursor, m.columns(), m.gridRows())
}

func (m *Model) clampDrawerCursor() {
	m.drawerCursor = state.ClampCursor(m.drawerCursor, len(m.handler.Menu()))
}
