package navigation

import "github.com/glabrego/pkbrowse/internal/address"

// Navigator changes the observed address. The observer decides whether
// the page handles an address; a rejected address is not recorded.
type Navigator interface {
	Navigate(a address.Address) bool
	Observe(fn func(address.Address) bool)
}

// History is an in-process Navigator with a back stack.
type History struct {
	entries  []address.Address
	observer func(address.Address) bool
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Observe(fn func(address.Address) bool) {
	h.observer = fn
}

// Navigate offers a to the observer and records it when accepted.
func (h *History) Navigate(a address.Address) bool {
	if h.observer != nil && !h.observer(a) {
		return false
	}
	h.entries = append(h.entries, a)
	return true
}

// Back returns to the previous entry. It reports false when there is
// nothing to go back to or the observer rejects the previous address.
func (h *History) Back() bool {
	if len(h.entries) < 2 {
		return false
	}
	prev := h.entries[len(h.entries)-2]
	if h.observer != nil && !h.observer(prev) {
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return true
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Current() (address.Address, bool) {
	if len(h.entries) == 0 {
		return address.Address{}, false
	}
	return h.entries[len(h.entries)-1], true
}
