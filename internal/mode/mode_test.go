package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glabrego/pkbrowse/internal/address"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		search bool
		detail bool
	}{
		{name: "react only", raw: "/ui/?react=1", search: true},
		{name: "react and q", raw: "/ui/?react=1&q=cats", search: true},
		{name: "react and empty q", raw: "/ui/?react=1&q=", search: true},
		{name: "react and p", raw: "/ui/?react=1&p=abc123"},
		{name: "q without react", raw: "/ui/?q=cats"},
		{name: "react q and extra", raw: "/ui/?react=1&q=cats&zoom=2"},
		{name: "p and newui", raw: "/ui/?p=abc123&newui=1", detail: true},
		{name: "p only", raw: "/ui/?p=abc123"},
		{name: "p and other newui", raw: "/ui/?p=abc123&newui=yes"},
		{name: "newui without p", raw: "/ui/?react=1&newui=1"},
		{name: "full detail with search context", raw: "/ui/?react=1&q=cats&p=abc123&newui=1", detail: true},
		{name: "no params", raw: "/ui/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(address.MustParse(tt.raw))
			assert.Equal(t, Modes{Search: tt.search, Detail: tt.detail}, got)
		})
	}
}

func TestDerive_UsesItsArgumentOnly(t *testing.T) {
	detail := address.MustParse("/ui/?p=abc&newui=1")
	search := address.MustParse("/ui/?react=1")

	assert.True(t, Derive(detail).Detail)
	assert.False(t, Derive(search).Detail)
	assert.True(t, Derive(detail).Detail, "earlier derivations must not leak")
}

func TestPrimary(t *testing.T) {
	assert.Equal(t, Detail, Modes{Search: true, Detail: true}.Primary())
	assert.Equal(t, Search, Modes{Search: true}.Primary())
	assert.Equal(t, Neither, Modes{}.Primary())
	assert.Equal(t, "detail", Detail.String())
}
