package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/pkbrowse/internal/commands"
)

// Service is the persistence side of the app service the TUI uses.
type Service interface {
	RecentQueries(ctx context.Context, limit int) ([]string, error)
	RecordQuery(ctx context.Context, query string) error
	SaveThumbnailSizeIndex(ctx context.Context, idx int) error
}

// Loader fills a session's result snapshot.
type Loader interface {
	LoadCached(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
}

type CacheLoadedMsg struct {
	Generation uint64
	Applied    bool
	Duration   time.Duration
}

type RefreshSuccessMsg struct {
	Generation uint64
	Duration   time.Duration
}

type RefreshErrorMsg struct {
	Generation uint64
	Err        error
	Duration   time.Duration
}

type CommandDoneMsg struct {
	Result commands.Result
}

type RecentQueriesMsg struct {
	Queries []string
}

type PersistErrorMsg struct {
	What string
	Err  error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

// LoadCachedCmd applies cached results for the session of generation gen.
// Cache errors are reported as refresh errors.
func LoadCachedCmd(loader Loader, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		applied, err := loader.LoadCached(ctx)
		if err != nil {
			return RefreshErrorMsg{Generation: gen, Err: err, Duration: time.Since(start)}
		}
		return CacheLoadedMsg{Generation: gen, Applied: applied, Duration: time.Since(start)}
	}
}

func RefreshSessionCmd(loader Loader, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		start := time.Now()

		if err := loader.Refresh(ctx); err != nil {
			return RefreshErrorMsg{Generation: gen, Err: err, Duration: time.Since(start)}
		}
		return RefreshSuccessMsg{Generation: gen, Duration: time.Since(start)}
	}
}

// CommandCmd runs the off-loop half of a server command. Fan-outs may
// issue many requests, so the deadline is longer than for reads.
func CommandCmd(pending commands.Pending) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return CommandDoneMsg{Result: pending(ctx)}
	}
}

func RecentQueriesCmd(service Service, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		queries, err := service.RecentQueries(ctx, limit)
		if err != nil {
			return PersistErrorMsg{What: "query history", Err: err}
		}
		return RecentQueriesMsg{Queries: queries}
	}
}

// RecordQueryCmd records query in the history and returns the updated
// recent list.
func RecordQueryCmd(service Service, query string, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.RecordQuery(ctx, query); err != nil {
			return PersistErrorMsg{What: "query history", Err: err}
		}
		queries, err := service.RecentQueries(ctx, limit)
		if err != nil {
			return PersistErrorMsg{What: "query history", Err: err}
		}
		return RecentQueriesMsg{Queries: queries}
	}
}

func SaveThumbnailSizeCmd(service Service, idx int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := service.SaveThumbnailSizeIndex(ctx, idx); err != nil {
			return PersistErrorMsg{What: "thumbnail size", Err: err}
		}
		return nil
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened item in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyCmd(text, label string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(text); err == nil {
				return OpenURLSuccessMsg{Status: label + " copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy %s to clipboard", label)}
	}
}
