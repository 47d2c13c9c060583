package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/app"
	"github.com/glabrego/pkbrowse/internal/mode"
	"github.com/glabrego/pkbrowse/internal/navigation"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/session"
)

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, app.Results{
		Refs: []string{"sha224-a", "sha224-b"},
		Meta: map[string]perkeep.DescribedBlob{
			"sha224-a": {
				BlobRef:   "sha224-a",
				CamliType: "permanode",
				Permanode: &perkeep.DescribedPermanode{Attr: map[string][]string{perkeep.AttrTitle: {"Trip <b>photos</b>"}}},
			},
		},
		Source: app.SourceServer,
	})

	assert.Equal(t, "sha224-a  Trip photos\nsha224-b\n2 results from server\n", buf.String())
}

type stubBackend struct{}

func (stubBackend) Search(context.Context, address.QueryValue, int) (app.Results, error) {
	return app.Results{}, nil
}

func (stubBackend) Cached(context.Context, address.QueryValue) (app.Results, bool, error) {
	return app.Results{}, false, nil
}

func TestStartAddress(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		primary mode.Primary
	}{
		{name: "no argument", want: "/ui/?react=1", primary: mode.Search},
		{name: "search under root", args: []string{"/ui/?q=tag:cats"}, want: "/ui/?react=1&q=tag%3Acats", primary: mode.Search},
		{name: "bare query", args: []string{"?q=cats"}, want: "/ui/?react=1&q=cats", primary: mode.Search},
		{name: "root without slash", args: []string{"/ui?q=cats"}, want: "/ui/?react=1&q=cats", primary: mode.Search},
		{name: "already react", args: []string{"/ui/?react=1&q=cats"}, want: "/ui/?react=1&q=cats", primary: mode.Search},
		{name: "detail item", args: []string{"/ui/?p=sha224-a&newui=1"}, want: "/ui/?p=sha224-a&newui=1", primary: mode.Detail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := startAddress("/ui/", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, start.String())
			assert.Equal(t, tt.primary, mode.Derive(start).Primary())

			nav := navigation.NewController("/ui/", navigation.NewHistory(),
				session.NewCoordinator(session.NewRemoteProvider(stubBackend{}, 10)))
			defer nav.Close()
			accepted, err := nav.Start(start)
			require.NoError(t, err)
			require.True(t, accepted)

			accepted, err = nav.Navigate(nav.SearchFor("dogs"))
			require.NoError(t, err)
			assert.True(t, accepted, "later searches must stay on the same page")
		})
	}
}

func TestStartAddress_Malformed(t *testing.T) {
	_, err := startAddress("/ui/", []string{"%zz"})
	assert.ErrorIs(t, err, address.ErrMalformedAddress)
}
