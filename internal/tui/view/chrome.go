package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/glabrego/pkbrowse/internal/mode"
	tuitheme "github.com/glabrego/pkbrowse/internal/tui/theme"
)

func Toolbar(primary mode.Primary, drawerOpen bool) string {
	if drawerOpen {
		return "j/k move | enter run | / search | esc close"
	}
	switch primary {
	case mode.Search:
		return "arrows move | space select | enter open | / search | m menu | +/- size | r refresh | ? help"
	case mode.Detail:
		return "j/k scroll | o open | y copy ref | c classic | esc back | ? help"
	default:
		return "o open in browser | esc search | b back | ? help"
	}
}

func Header(modeLabel, query string, th tuitheme.Theme) string {
	out := th.Title.Render("pkbrowse") + " " + th.ModePill.Render(modeLabel)
	if query != "" {
		out += " " + th.MetaLabel.Render("q") + " " + th.MetaValue.Render(query)
	}
	return out
}

type FooterInfo struct {
	Shown      int
	Selected   int
	CurrentSet string
	ThumbSize  int
	Source     string
	FetchedAt  time.Time
}

func Footer(info FooterInfo, th tuitheme.Theme) string {
	parts := []string{
		th.MetaValue.Render(fmt.Sprintf("%d shown", info.Shown)),
		th.MetaLabel.Render("selected") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.Selected)),
		th.MetaLabel.Render("size") + " " + th.MetaValue.Render(fmt.Sprintf("%d", info.ThumbSize)),
	}
	if info.CurrentSet != "" {
		parts = append(parts, th.MetaLabel.Render("set")+" "+th.MetaValue.Render(info.CurrentSet))
	}
	if info.Source != "" {
		from := info.Source
		if !info.FetchedAt.IsZero() {
			from += " " + info.FetchedAt.Local().Format(time.TimeOnly)
		}
		parts = append(parts, th.MetaLabel.Render("from")+" "+th.MetaValue.Render(from))
	}
	return strings.Join(parts, " • ")
}

func Message(loading, hasWarning bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
