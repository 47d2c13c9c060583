package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/app"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/render/describe"
)

var searchCached bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Print one page of search results",
	Long: `Runs a search expression, or a "raw:<json>" constraint, and prints one
result per line as "<blobref>  <title>".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchCached, "cached", false, "Print the cached page instead of querying the server")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	base, err := address.Parse(e.cfg.UIRoot)
	if err != nil {
		return err
	}
	q, err := address.DeriveQuery(base.With(address.ParamQuery, args[0]))
	if err != nil {
		return err
	}

	var results app.Results
	if searchCached {
		var ok bool
		results, ok, err = e.service.Cached(ctx, q)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no cached results for %q", q.String())
		}
	} else {
		results, err = e.service.Search(ctx, q, e.cfg.SearchLimit)
		if err != nil {
			return err
		}
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func printResults(w io.Writer, r app.Results) {
	for _, ref := range r.Refs {
		title := describe.Text(perkeep.TitleOf(r.Meta, ref))
		if title == "" || title == ref {
			fmt.Fprintln(w, ref)
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", ref, title)
	}
	fmt.Fprintf(w, "%d results from %s\n", len(r.Refs), r.Source)
}
