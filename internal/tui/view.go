package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/pkbrowse/internal/mode"
	"github.com/glabrego/pkbrowse/internal/render/describe"
	tuitheme "github.com/glabrego/pkbrowse/internal/tui/theme"
	"github.com/glabrego/pkbrowse/internal/tui/view"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeLines   = 6
)

func (m Model) View() string {
	primary := m.controller.Modes().Primary()

	var b strings.Builder
	b.WriteString(view.Header(primary.String(), m.controller.Current().Query(), m.theme))
	b.WriteString("\n")
	b.WriteString(view.Toolbar(primary, m.handler.DrawerOpen()))
	b.WriteString("\n\n")

	body := m.bodyView(primary)
	if m.showHelp {
		m.help.ShowAll = true
		body = m.help.View(m.keys) + "\n"
	} else if m.handler.DrawerOpen() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.drawerView(), " ", body)
		body = strings.TrimRight(body, "\n") + "\n"
	}
	b.WriteString(body)

	b.WriteString("\n")
	b.WriteString(m.messageView())
	b.WriteString("\n")
	b.WriteString(m.footerView())
	b.WriteString("\n")
	return b.String()
}

func (m Model) bodyView(primary mode.Primary) string {
	switch primary {
	case mode.Search:
		return m.gridView()
	case mode.Detail:
		return view.RenderDetailLines(m.detailLines(), m.detailTop, m.bodyHeight())
	default:
		lines := []string{"This address is served by the classic web UI."}
		if ref, ok := m.controller.Current().DetailRef(); ok {
			lines = append(lines, "Item: "+ref, "Press o to open it in a browser.")
		}
		lines = append(lines, "Address: "+m.controller.Current().String())
		return strings.Join(lines, "\n") + "\n"
	}
}

func (m Model) gridView() string {
	snapshot := m.results()
	if snapshot.Len() == 0 {
		switch {
		case m.loading:
			return "Loading results...\n"
		case m.controller.Session().Current() == nil:
			return "No search session.\n"
		default:
			return "No results.\n"
		}
	}
	return view.RenderGrid(view.GridParams{
		Items:     m.gridItems(),
		Cursor:    m.cursor,
		Top:       m.gridTop,
		Rows:      m.gridRows(),
		Width:     m.contentWidth(),
		CellWidth: m.cellWidth(),
	}, m.theme)
}

func (m Model) gridItems() []view.GridItem {
	snapshot := m.results()
	set, _ := m.handler.CurrentSet()
	items := make([]view.GridItem, 0, snapshot.Len())
	for _, ref := range snapshot.Items {
		items = append(items, view.GridItem{
			Ref:   ref,
			Label: snapshot.Title(ref),
			State: tuitheme.ItemState{
				Selected:   m.selection.Contains(ref),
				Collection: snapshot.IsDynamicCollection(ref),
				CurrentSet: ref == set,
			},
		})
	}
	return items
}

func (m Model) detailLines() []string {
	ref, _ := m.controller.Current().DetailRef()
	snapshot := m.results()
	blob, described := snapshot.Describe(ref)
	set, _ := m.handler.CurrentSet()

	in := view.DetailInput{
		Ref:        ref,
		Blob:       blob,
		Described:  described,
		Title:      snapshot.Title(ref),
		Selected:   m.selection.Contains(ref),
		CurrentSet: ref == set,
	}
	for _, member := range blob.Members() {
		in.Members = append(in.Members, snapshot.Title(member))
	}
	if m.itemURL != nil {
		in.URL = m.itemURL(ref)
	}
	return view.DetailLines(in, m.contentWidth(), describe.Lines)
}

func (m Model) drawerView() string {
	set, _ := m.handler.CurrentSet()
	return view.RenderDrawer(view.DrawerParams{
		Items:       m.handler.Menu(),
		Cursor:      m.drawerCursor,
		Search:      m.search.View(),
		Suggestions: m.suggestions,
		CurrentSet:  set,
	}, m.theme)
}

func (m Model) messageView() string {
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	return view.Message(m.loading, m.err != nil, m.status, warning, m.theme)
}

func (m Model) footerView() string {
	snapshot := m.results()
	set, _ := m.handler.CurrentSet()
	return view.Footer(view.FooterInfo{
		Shown:      snapshot.Len(),
		Selected:   m.selection.Count(),
		CurrentSet: set,
		ThumbSize:  m.handler.ThumbnailSize(),
		Source:     snapshot.Source,
		FetchedAt:  snapshot.FetchedAt,
	}, m.theme)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) bodyHeight() int {
	h := m.height
	if h <= 0 {
		h = defaultHeight
	}
	return max(1, h-chromeLines)
}

func (m Model) cellWidth() int {
	return view.CellWidth(m.handler.ThumbnailSize())
}

func (m Model) columns() int {
	return view.GridColumns(m.contentWidth(), m.cellWidth())
}

func (m Model) gridRows() int {
	return m.bodyHeight()
}
