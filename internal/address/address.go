package address

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query parameter names the page controller reads.
const (
	ParamQuery  = "q"
	ParamDetail = "p"
	ParamNewUI  = "newui"
	ParamReact  = "react"
)

var ErrMalformedAddress = errors.New("malformed address")

type param struct {
	key   string
	value string
}

// Address is a navigable location: a path plus ordered, unique query
// parameters. The zero value is the empty address. Address values are
// immutable; With and Without return modified copies.
type Address struct {
	scheme string
	host   string
	path   string
	params []param
}

// Parse decomposes raw into path and query parameters. Unknown
// parameters are kept. When a key repeats, the first value wins and the
// position of the first occurrence is kept.
func Parse(raw string) (Address, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrMalformedAddress, raw, err)
	}
	a := Address{scheme: u.Scheme, host: u.Host, path: u.Path}
	if u.RawQuery == "" {
		return a, nil
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Address{}, fmt.Errorf("%w: query key %q: %v", ErrMalformedAddress, rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return Address{}, fmt.Errorf("%w: query value for %q: %v", ErrMalformedAddress, key, err)
		}
		if a.Has(key) {
			continue
		}
		a.params = append(a.params, param{key: key, value: value})
	}
	return a, nil
}

// MustParse is Parse for constant addresses; it panics on error.
func MustParse(raw string) Address {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Path() string { return a.path }

// Has reports whether key is present, even with an empty value.
func (a Address) Has(key string) bool {
	_, ok := a.lookup(key)
	return ok
}

// Get returns the value of key, or "" if absent.
func (a Address) Get(key string) string {
	v, _ := a.lookup(key)
	return v
}

func (a Address) lookup(key string) (string, bool) {
	for _, p := range a.params {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// Keys returns parameter names in order.
func (a Address) Keys() []string {
	keys := make([]string, len(a.params))
	for i, p := range a.params {
		keys[i] = p.key
	}
	return keys
}

func (a Address) ParamCount() int { return len(a.params) }

// Query is the raw q parameter, possibly empty.
func (a Address) Query() string { return a.Get(ParamQuery) }

// DetailRef returns the p parameter and whether it is present.
func (a Address) DetailRef() (string, bool) { return a.lookup(ParamDetail) }

func (a Address) IsNewDetailUI() bool { return a.Get(ParamNewUI) == "1" }

func (a Address) IsReactMode() bool { return a.Has(ParamReact) }

// With returns a copy with key set to value. An existing key keeps its
// position; a new key is appended.
func (a Address) With(key, value string) Address {
	out := a.clone()
	for i := range out.params {
		if out.params[i].key == key {
			out.params[i].value = value
			return out
		}
	}
	out.params = append(out.params, param{key: key, value: value})
	return out
}

// Without returns a copy with key removed.
func (a Address) Without(key string) Address {
	out := a.clone()
	out.params = out.params[:0]
	for _, p := range a.params {
		if p.key != key {
			out.params = append(out.params, p)
		}
	}
	return out
}

// ClearParams returns a copy with the same location and no parameters.
func (a Address) ClearParams() Address {
	return Address{scheme: a.scheme, host: a.host, path: a.path}
}

// ResolveRoot resolves root (for example "/ui/") against a and returns
// the result without query parameters.
func (a Address) ResolveRoot(root string) (Address, error) {
	ref, err := url.Parse(root)
	if err != nil {
		return Address{}, fmt.Errorf("%w: ui root %q: %v", ErrMalformedAddress, root, err)
	}
	base := &url.URL{Scheme: a.scheme, Host: a.host, Path: a.path}
	resolved := base.ResolveReference(ref)
	return Address{scheme: resolved.Scheme, host: resolved.Host, path: resolved.Path}, nil
}

// Equal reports structural equality: same location and the same
// parameters in the same order.
func (a Address) Equal(b Address) bool {
	if a.scheme != b.scheme || a.host != b.host || a.path != b.path || len(a.params) != len(b.params) {
		return false
	}
	for i := range a.params {
		if a.params[i] != b.params[i] {
			return false
		}
	}
	return true
}

func (a Address) String() string {
	u := url.URL{Scheme: a.scheme, Host: a.host, Path: a.path}
	if len(a.params) > 0 {
		parts := make([]string, len(a.params))
		for i, p := range a.params {
			parts[i] = url.QueryEscape(p.key) + "=" + url.QueryEscape(p.value)
		}
		u.RawQuery = strings.Join(parts, "&")
	}
	return u.String()
}

func (a Address) clone() Address {
	out := a
	out.params = append([]param(nil), a.params...)
	return out
}
