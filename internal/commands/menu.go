package commands

import "fmt"

type Action int

const (
	ActionSearch Action = iota + 1
	ActionNewCollection
	ActionSearchRoots
	ActionSelectAsCurrentSet
	ActionAddToCurrentSet
	ActionCreateSetWithSelection
	ActionClearSelection
	ActionEmbiggen
	ActionEnsmallen
	ActionHome
)

// MenuItem is one drawer entry. Href is set for link entries.
type MenuItem struct {
	Action Action
	Label  string
	Href   string
}

// Menu lists the drawer entries currently offered, in display order.
// The drawer only exists in search mode.
func (h *Handler) Menu() []MenuItem {
	if !h.nav.Modes().Search {
		return nil
	}
	items := []MenuItem{
		{Action: ActionSearch, Label: "Search"},
		{Action: ActionNewCollection, Label: "New permanode"},
		{Action: ActionSearchRoots, Label: "Search roots"},
	}
	if h.CanSelectAsCurrentSet() {
		items = append(items, MenuItem{Action: ActionSelectAsCurrentSet, Label: "Select as current set"})
	}
	if h.CanAddToCurrentSet() {
		items = append(items, MenuItem{Action: ActionAddToCurrentSet, Label: "Add to current set"})
	}
	if n := h.selection.Count(); n > 0 {
		items = append(items, MenuItem{Action: ActionCreateSetWithSelection, Label: CreateSetLabel(n)})
		items = append(items, MenuItem{Action: ActionClearSelection, Label: "Clear selection"})
	}
	items = append(items,
		MenuItem{Action: ActionEmbiggen, Label: "Moar bigger"},
		MenuItem{Action: ActionEnsmallen, Label: "Less bigger"},
		MenuItem{Action: ActionHome, Label: "Perkeep", Href: h.nav.Base().String()},
	)
	return items
}

func CreateSetLabel(n int) string {
	if n == 1 {
		return "Create set with item"
	}
	return fmt.Sprintf("Create set with %d items", n)
}
