package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/storage"
)

type fakeClient struct {
	result perkeep.SearchResult
	err    error

	requests []perkeep.SearchRequest
	claims   []string
	created  string
}

func (f *fakeClient) Search(_ context.Context, req perkeep.SearchRequest) (perkeep.SearchResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return perkeep.SearchResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeClient) CreatePermanode(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.created, nil
}

func (f *fakeClient) SetAttribute(_ context.Context, permanode, attr, value string) error {
	f.claims = append(f.claims, "set "+permanode+" "+attr+"="+value)
	return f.err
}

func (f *fakeClient) AddAttribute(_ context.Context, permanode, attr, value string) error {
	f.claims = append(f.claims, "add "+permanode+" "+attr+"="+value)
	return f.err
}

type fakeRepo struct {
	saved   map[string][]string
	cached  map[string]storage.CachedResult
	prefs   map[string]string
	queries []string
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		saved:  make(map[string][]string),
		cached: make(map[string]storage.CachedResult),
		prefs:  make(map[string]string),
	}
}

func (f *fakeRepo) SaveResults(_ context.Context, key string, refs []string, _ map[string]perkeep.DescribedBlob) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[key] = append([]string(nil), refs...)
	return nil
}

func (f *fakeRepo) LoadResults(_ context.Context, key string) (storage.CachedResult, bool, error) {
	c, ok := f.cached[key]
	return c, ok, nil
}

func (f *fakeRepo) RecordQuery(_ context.Context, q string) error {
	f.queries = append(f.queries, q)
	return nil
}

func (f *fakeRepo) RecentQueries(context.Context, int) ([]string, error) {
	return f.queries, nil
}

func (f *fakeRepo) SetPreference(_ context.Context, key, value string) error {
	f.prefs[key] = value
	return nil
}

func (f *fakeRepo) Preference(_ context.Context, key string) (string, bool, error) {
	v, ok := f.prefs[key]
	return v, ok, nil
}

func TestService_Search_SavesUnderCanonicalKey(t *testing.T) {
	client := &fakeClient{result: perkeep.SearchResult{Blobs: []perkeep.SearchResultBlob{{Blob: "sha224-a"}}}}
	repo := newFakeRepo()
	svc := NewService(client, repo)

	results, err := svc.Search(context.Background(), address.Text("cats"), 50)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if len(results.Refs) != 1 || results.Refs[0] != "sha224-a" || results.Source != SourceServer {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results.Meta == nil {
		t.Fatal("expected non-nil meta")
	}
	if got := repo.saved[`"cats"`]; len(got) != 1 {
		t.Fatalf("results were not cached under canonical key: %+v", repo.saved)
	}
	if client.requests[0].Expression != "cats" || client.requests[0].Limit != 50 {
		t.Fatalf("unexpected request: %+v", client.requests[0])
	}
}

func TestService_Search_StructuredQueryUsesConstraint(t *testing.T) {
	client := &fakeClient{}
	svc := NewService(client, newFakeRepo())

	constraint := map[string]any{"permanode": map[string]any{"attr": "camliRoot"}}
	if _, err := svc.Search(context.Background(), address.Structured(constraint), 10); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	req := client.requests[0]
	if req.Expression != "" || req.Constraint == nil {
		t.Fatalf("expected constraint request, got %+v", req)
	}
}

func TestService_Search_PropagatesErrors(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("boom")}, newFakeRepo())
	if _, err := svc.Search(context.Background(), address.MatchAll, 10); err == nil {
		t.Fatal("expected search error")
	}
}

func TestService_Search_CacheWriteFailureKeepsServerResults(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")
	client := &fakeClient{result: perkeep.SearchResult{Blobs: []perkeep.SearchResultBlob{{Blob: "sha224-a"}}}}
	svc := NewService(client, repo)

	results, err := svc.Search(context.Background(), address.Text("cats"), 10)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results.Refs) != 1 || results.Refs[0] != "sha224-a" || results.Source != SourceServer {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestService_Cached(t *testing.T) {
	repo := newFakeRepo()
	fetched := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo.cached[`"cats"`] = storage.CachedResult{Refs: []string{"sha224-c"}, FetchedAt: fetched}
	svc := NewService(&fakeClient{}, repo)

	results, found, err := svc.Cached(context.Background(), address.Text("cats"))
	if err != nil {
		t.Fatalf("Cached returned error: %v", err)
	}
	if !found || results.Source != SourceCache || !results.FetchedAt.Equal(fetched) {
		t.Fatalf("unexpected cached results: %+v found=%v", results, found)
	}

	_, found, _ = svc.Cached(context.Background(), address.Text("dogs"))
	if found {
		t.Fatal("expected miss for uncached query")
	}
}

func TestService_Mutations(t *testing.T) {
	client := &fakeClient{created: "sha224-new"}
	svc := NewService(client, newFakeRepo())
	ctx := context.Background()

	ref, err := svc.CreateItem(ctx)
	if err != nil || ref != "sha224-new" {
		t.Fatalf("CreateItem = %q, %v", ref, err)
	}
	if err := svc.SetAttribute(ctx, ref, "title", "New set"); err != nil {
		t.Fatalf("SetAttribute returned error: %v", err)
	}
	if err := svc.AddMember(ctx, ref, "sha224-a"); err != nil {
		t.Fatalf("AddMember returned error: %v", err)
	}

	want := []string{"set sha224-new title=New set", "add sha224-new camliMember=sha224-a"}
	if len(client.claims) != 2 || client.claims[0] != want[0] || client.claims[1] != want[1] {
		t.Fatalf("unexpected claims: %v", client.claims)
	}
}

func TestService_ThumbnailSizeIndex(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(&fakeClient{}, repo)
	ctx := context.Background()

	idx, err := svc.ThumbnailSizeIndex(ctx, 3)
	if err != nil || idx != 3 {
		t.Fatalf("expected fallback 3, got %d, %v", idx, err)
	}

	if err := svc.SaveThumbnailSizeIndex(ctx, 5); err != nil {
		t.Fatalf("SaveThumbnailSizeIndex returned error: %v", err)
	}
	idx, err = svc.ThumbnailSizeIndex(ctx, 3)
	if err != nil || idx != 5 {
		t.Fatalf("expected 5, got %d, %v", idx, err)
	}

	repo.prefs[prefThumbnailSizeIndex] = "huge"
	idx, _ = svc.ThumbnailSizeIndex(ctx, 3)
	if idx != 3 {
		t.Fatalf("expected fallback for unreadable value, got %d", idx)
	}
}

func TestService_RecordQuery_SkipsEmpty(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(&fakeClient{}, repo)

	_ = svc.RecordQuery(context.Background(), "")
	_ = svc.RecordQuery(context.Background(), "cats")

	got, _ := svc.RecentQueries(context.Background(), 10)
	if len(got) != 1 || got[0] != "cats" {
		t.Fatalf("unexpected history: %v", got)
	}
}
