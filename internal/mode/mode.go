package mode

import "github.com/glabrego/pkbrowse/internal/address"

type Primary int

const (
	Neither Primary = iota
	Search
	Detail
)

func (p Primary) String() string {
	switch p {
	case Search:
		return "search"
	case Detail:
		return "detail"
	default:
		return "neither"
	}
}

// Modes holds the two independent view predicates for an address.
type Modes struct {
	Search bool
	Detail bool
}

// Derive computes the modes of a. Search requires the parameter set to
// be exactly {react} or {react, q}; Detail requires p with newui=1.
func Derive(a address.Address) Modes {
	return Modes{
		Search: isSearch(a),
		Detail: isDetail(a),
	}
}

// Primary picks the view to render when only one fits. Detail wins.
func (m Modes) Primary() Primary {
	switch {
	case m.Detail:
		return Detail
	case m.Search:
		return Search
	default:
		return Neither
	}
}

func isSearch(a address.Address) bool {
	if !a.Has(address.ParamReact) {
		return false
	}
	switch a.ParamCount() {
	case 1:
		return true
	case 2:
		return a.Has(address.ParamQuery)
	default:
		return false
	}
}

func isDetail(a address.Address) bool {
	_, ok := a.DetailRef()
	return ok && a.IsNewDetailUI()
}
