package selection

import "sort"

// Tracker is the set of multi-selected item ids. The zero value is an
// empty selection ready to use.
type Tracker struct {
	ids map[string]struct{}
}

func New() *Tracker {
	return &Tracker{ids: make(map[string]struct{})}
}

// Toggle adds id if absent and removes it otherwise. It reports whether
// id is selected afterwards.
func (t *Tracker) Toggle(id string) bool {
	if t.ids == nil {
		t.ids = make(map[string]struct{})
	}
	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
		return false
	}
	t.ids[id] = struct{}{}
	return true
}

func (t *Tracker) Clear() {
	t.ids = make(map[string]struct{})
}

// ReplaceWith discards the current selection and selects ids.
// Duplicates collapse.
func (t *Tracker) ReplaceWith(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}
	t.ids = next
}

func (t *Tracker) Count() int { return len(t.ids) }

func (t *Tracker) Empty() bool { return len(t.ids) == 0 }

func (t *Tracker) Contains(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// Only returns the selected id when exactly one is selected.
func (t *Tracker) Only() (string, bool) {
	if len(t.ids) != 1 {
		return "", false
	}
	for id := range t.ids {
		return id, true
	}
	return "", false
}

// IDs returns a sorted snapshot of the selection.
func (t *Tracker) IDs() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
