package actions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/glabrego/pkbrowse/internal/commands"
)

type fakeLoader struct {
	applied    bool
	cachedErr  error
	refreshErr error

	lastCachedDeadline  time.Time
	lastRefreshDeadline time.Time
}

func (f *fakeLoader) LoadCached(ctx context.Context) (bool, error) {
	if dl, ok := ctx.Deadline(); ok {
		f.lastCachedDeadline = dl
	}
	return f.applied, f.cachedErr
}

func (f *fakeLoader) Refresh(ctx context.Context) error {
	if dl, ok := ctx.Deadline(); ok {
		f.lastRefreshDeadline = dl
	}
	return f.refreshErr
}

type fakeService struct {
	queries  []string
	err      error
	recorded []string
	savedIdx int

	lastDeadline time.Time
}

func (f *fakeService) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	if dl, ok := ctx.Deadline(); ok {
		f.lastDeadline = dl
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queries) > limit {
		return f.queries[:limit], nil
	}
	return f.queries, nil
}

func (f *fakeService) RecordQuery(_ context.Context, query string) error {
	f.recorded = append(f.recorded, query)
	return f.err
}

func (f *fakeService) SaveThumbnailSizeIndex(_ context.Context, idx int) error {
	f.savedIdx = idx
	return f.err
}

func TestLoadCachedCmd(t *testing.T) {
	loader := &fakeLoader{applied: true}
	msg := LoadCachedCmd(loader, 7)()
	loaded, ok := msg.(CacheLoadedMsg)
	if !ok {
		t.Fatalf("expected CacheLoadedMsg, got %T", msg)
	}
	if loaded.Generation != 7 || !loaded.Applied {
		t.Fatalf("unexpected payload: %+v", loaded)
	}
	if loader.lastCachedDeadline.IsZero() {
		t.Fatal("expected cache context deadline to be set")
	}

	loader.cachedErr = errors.New("disk gone")
	msg = LoadCachedCmd(loader, 8)()
	failed, ok := msg.(RefreshErrorMsg)
	if !ok || failed.Generation != 8 {
		t.Fatalf("expected RefreshErrorMsg for generation 8, got %#v", msg)
	}
}

func TestRefreshSessionCmd(t *testing.T) {
	loader := &fakeLoader{}
	msg := RefreshSessionCmd(loader, 3)()
	success, ok := msg.(RefreshSuccessMsg)
	if !ok || success.Generation != 3 {
		t.Fatalf("expected RefreshSuccessMsg for generation 3, got %#v", msg)
	}
	if loader.lastRefreshDeadline.IsZero() {
		t.Fatal("expected refresh context deadline to be set")
	}

	loader.refreshErr = errors.New("boom")
	msg = RefreshSessionCmd(loader, 4)()
	failed, ok := msg.(RefreshErrorMsg)
	if !ok || failed.Err == nil || failed.Generation != 4 {
		t.Fatalf("expected RefreshErrorMsg, got %#v", msg)
	}
}

func TestCommandCmd_PassesDeadlineAndResult(t *testing.T) {
	var deadline time.Time
	pending := commands.Pending(func(ctx context.Context) commands.Result {
		deadline, _ = ctx.Deadline()
		return commands.Result{Op: commands.OpNewCollection, Ref: "sha224-new"}
	})

	msg := CommandCmd(pending)()
	done, ok := msg.(CommandDoneMsg)
	if !ok {
		t.Fatalf("expected CommandDoneMsg, got %T", msg)
	}
	if done.Result.Ref != "sha224-new" {
		t.Fatalf("unexpected result: %+v", done.Result)
	}
	if deadline.IsZero() {
		t.Fatal("expected command context deadline to be set")
	}
}

func TestPersistenceCmds(t *testing.T) {
	svc := &fakeService{queries: []string{"cats", "dogs", "birds"}}

	msg := RecentQueriesCmd(svc, 2)()
	recent, ok := msg.(RecentQueriesMsg)
	if !ok || len(recent.Queries) != 2 {
		t.Fatalf("expected two recent queries, got %#v", msg)
	}
	if svc.lastDeadline.IsZero() {
		t.Fatal("expected history context deadline to be set")
	}

	msg = RecordQueryCmd(svc, "fish", 5)()
	if recorded, ok := msg.(RecentQueriesMsg); !ok || len(recorded.Queries) != 3 {
		t.Fatalf("expected recent queries after recording, got %#v", msg)
	}
	if msg := SaveThumbnailSizeCmd(svc, 4)(); msg != nil {
		t.Fatalf("expected nil msg on success, got %#v", msg)
	}
	if svc.savedIdx != 4 || len(svc.recorded) != 1 {
		t.Fatalf("unexpected service state: %+v", svc)
	}

	svc.err = errors.New("locked")
	for _, msg := range []any{RecentQueriesCmd(svc, 1)(), RecordQueryCmd(svc, "x", 1)(), SaveThumbnailSizeCmd(svc, 1)()} {
		if _, ok := msg.(PersistErrorMsg); !ok {
			t.Fatalf("expected PersistErrorMsg, got %T", msg)
		}
	}
}

func TestOpenURLCmd_Fallbacks(t *testing.T) {
	okFn := func(string) error { return nil }
	failFn := func(string) error { return errors.New("nope") }

	msg := OpenURLCmd("http://localhost/ui/?p=x", okFn, failFn)()
	if success, ok := msg.(OpenURLSuccessMsg); !ok || !success.Opened {
		t.Fatalf("expected opened success, got %#v", msg)
	}

	msg = OpenURLCmd("http://localhost/ui/?p=x", failFn, okFn)()
	success, ok := msg.(OpenURLSuccessMsg)
	if !ok || success.Opened || !strings.Contains(success.Status, "copied") {
		t.Fatalf("expected copy fallback, got %#v", msg)
	}

	msg = OpenURLCmd("http://localhost/ui/?p=x", failFn, failFn)()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected OpenURLErrorMsg, got %T", msg)
	}
}

func TestCopyCmd(t *testing.T) {
	var copied string
	msg := CopyCmd("sha224-abc", "Blobref", func(s string) error { copied = s; return nil })()
	success, ok := msg.(OpenURLSuccessMsg)
	if !ok || success.Status != "Blobref copied to clipboard" || copied != "sha224-abc" {
		t.Fatalf("unexpected copy result: %#v (copied %q)", msg, copied)
	}

	msg = CopyCmd("sha224-abc", "Blobref", nil)()
	if _, ok := msg.(OpenURLErrorMsg); !ok {
		t.Fatalf("expected OpenURLErrorMsg, got %T", msg)
	}
}
