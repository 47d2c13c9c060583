package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 5

// searchBox adapts a textinput to the command handler's SearchBox. It is
// shared by pointer so the handler and the model see one input.
type searchBox struct {
	input textinput.Model
}

func newSearchBox() *searchBox {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 512
	return &searchBox{input: ti}
}

func (b *searchBox) Focus() { b.input.Focus() }
func (b *searchBox) Clear() { b.input.SetValue("") }
func (b *searchBox) Blur()  { b.input.Blur() }

func (b *searchBox) Focused() bool { return b.input.Focused() }
func (b *searchBox) Value() string { return b.input.Value() }
func (b *searchBox) View() string  { return b.input.View() }

func (b *searchBox) SetValue(v string) {
	b.input.SetValue(v)
	b.input.CursorEnd()
}

func (b *searchBox) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return cmd
}

// suggest ranks recent queries against the typed value. An empty value
// lists the most recent ones.
func suggest(value string, recent []string) []string {
	if value == "" {
		return recent[:min(len(recent), maxSuggestions)]
	}
	matches := fuzzy.Find(value, recent)
	out := make([]string, 0, min(len(matches), maxSuggestions))
	for _, m := range matches {
		if m.Str == value {
			continue
		}
		out = append(out, m.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
