package view

import (
	"strings"

	"github.com/glabrego/pkbrowse/internal/commands"
	tuitheme "github.com/glabrego/pkbrowse/internal/tui/theme"
)

type DrawerParams struct {
	Items       []commands.MenuItem
	Cursor      int
	Search      string // rendered search input
	Suggestions []string
	CurrentSet  string
}

// DrawerLines is the unstyled drawer body.
func DrawerLines(p DrawerParams) []string {
	lines := make([]string, 0, len(p.Items)+len(p.Suggestions)+4)
	lines = append(lines, p.Search)
	for _, s := range p.Suggestions {
		lines = append(lines, "  ↳ "+s)
	}
	lines = append(lines, "")
	for i, item := range p.Items {
		marker := "  "
		if i == p.Cursor {
			marker = "> "
		}
		label := item.Label
		if item.Href != "" {
			label += " → " + item.Href
		}
		lines = append(lines, marker+label)
	}
	if p.CurrentSet != "" {
		lines = append(lines, "", "Current set: "+p.CurrentSet)
	}
	return lines
}

func RenderDrawer(p DrawerParams, th tuitheme.Theme) string {
	lines := DrawerLines(p)
	offset := 1 + len(p.Suggestions) + 1
	if p.Cursor >= 0 && p.Cursor < len(p.Items) {
		lines[offset+p.Cursor] = th.RenderActiveLine(true, lines[offset+p.Cursor])
	}
	return th.Drawer.Render(strings.Join(lines, "\n"))
}
