package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style
	Drawer     lipgloss.Style

	ItemPlain      lipgloss.Style
	ItemCollection lipgloss.Style
	ItemSelected   lipgloss.Style
	ItemCurrentSet lipgloss.Style
}

func Default() Theme {
	cpRosewater := lipgloss.Color("#f5e0dc")
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		Drawer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cpOverlay1).
			Padding(0, 1),
		ItemPlain:      lipgloss.NewStyle().Foreground(cpText),
		ItemCollection: lipgloss.NewStyle().Foreground(cpTeal),
		ItemSelected:   lipgloss.NewStyle().Bold(true).Foreground(cpYellow),
		ItemCurrentSet: lipgloss.NewStyle().Bold(true).Italic(true).Foreground(cpRosewater),
	}
}

// ItemState is what the grid knows about one result item.
type ItemState struct {
	Selected   bool
	Collection bool
	CurrentSet bool
}

// StyleItemLabel colors an item label. Selection wins over the current
// set marker, which wins over the collection color.
func (t Theme) StyleItemLabel(s ItemState, label string) string {
	if label == "" {
		return label
	}
	switch {
	case s.Selected:
		return t.ItemSelected.Render(label)
	case s.CurrentSet:
		return t.ItemCurrentSet.Render(label)
	case s.Collection:
		return t.ItemCollection.Render(label)
	default:
		return t.ItemPlain.Render(label)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
