package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/logger"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/storage"
)

const (
	SourceServer = "server"
	SourceCache  = "cache"

	prefThumbnailSizeIndex = "thumbnail_size_index"
)

type PerkeepClient interface {
	Search(ctx context.Context, req perkeep.SearchRequest) (perkeep.SearchResult, error)
	CreatePermanode(ctx context.Context) (string, error)
	SetAttribute(ctx context.Context, permanode, attr, value string) error
	AddAttribute(ctx context.Context, permanode, attr, value string) error
}

type Repository interface {
	SaveResults(ctx context.Context, queryKey string, refs []string, meta map[string]perkeep.DescribedBlob) error
	LoadResults(ctx context.Context, queryKey string) (storage.CachedResult, bool, error)
	RecordQuery(ctx context.Context, query string) error
	RecentQueries(ctx context.Context, limit int) ([]string, error)
	SetPreference(ctx context.Context, key, value string) error
	Preference(ctx context.Context, key string) (string, bool, error)
}

// Results is one page of search results with the descriptions needed to
// render and classify them.
type Results struct {
	Refs      []string
	Meta      map[string]perkeep.DescribedBlob
	Source    string
	FetchedAt time.Time
}

type Service struct {
	client PerkeepClient
	repo   Repository
	log    *slog.Logger
}

func NewService(client PerkeepClient, repo Repository) *Service {
	return &Service{client: client, repo: repo, log: logger.ComponentLogger("app")}
}

// Search runs q against the server and caches the page under q's
// canonical key. A failed cache write is logged; the server page is
// still returned.
func (s *Service) Search(ctx context.Context, q address.QueryValue, limit int) (Results, error) {
	result, err := s.client.Search(ctx, searchRequest(q, limit))
	if err != nil {
		return Results{}, fmt.Errorf("search perkeep: %w", err)
	}

	refs, meta := result.Refs(), result.Meta()
	if err := s.repo.SaveResults(ctx, q.Key(), refs, meta); err != nil {
		s.log.Warn("save results to cache", "query", q.String(), "error", err)
	}
	return Results{Refs: refs, Meta: meta, Source: SourceServer, FetchedAt: time.Now().UTC()}, nil
}

func (s *Service) Cached(ctx context.Context, q address.QueryValue) (Results, bool, error) {
	cached, found, err := s.repo.LoadResults(ctx, q.Key())
	if err != nil {
		return Results{}, false, fmt.Errorf("load results from cache: %w", err)
	}
	if !found {
		return Results{}, false, nil
	}
	return Results{Refs: cached.Refs, Meta: cached.Meta, Source: SourceCache, FetchedAt: cached.FetchedAt}, true, nil
}

func (s *Service) CreateItem(ctx context.Context) (string, error) {
	ref, err := s.client.CreatePermanode(ctx)
	if err != nil {
		return "", fmt.Errorf("create permanode: %w", err)
	}
	return ref, nil
}

func (s *Service) SetAttribute(ctx context.Context, item, name, value string) error {
	if err := s.client.SetAttribute(ctx, item, name, value); err != nil {
		return fmt.Errorf("set attribute: %w", err)
	}
	return nil
}

func (s *Service) AddMember(ctx context.Context, collection, member string) error {
	if err := s.client.AddAttribute(ctx, collection, perkeep.AttrMember, member); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *Service) RecordQuery(ctx context.Context, query string) error {
	if query == "" {
		return nil
	}
	return s.repo.RecordQuery(ctx, query)
}

func (s *Service) RecentQueries(ctx context.Context, limit int) ([]string, error) {
	queries, err := s.repo.RecentQueries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load query history: %w", err)
	}
	return queries, nil
}

// ThumbnailSizeIndex returns the stored index, or fallback when none is
// stored or the stored value is unreadable.
func (s *Service) ThumbnailSizeIndex(ctx context.Context, fallback int) (int, error) {
	value, found, err := s.repo.Preference(ctx, prefThumbnailSizeIndex)
	if err != nil {
		return fallback, fmt.Errorf("load thumbnail size: %w", err)
	}
	if !found {
		return fallback, nil
	}
	idx, err := strconv.Atoi(value)
	if err != nil {
		return fallback, nil
	}
	return idx, nil
}

func (s *Service) SaveThumbnailSizeIndex(ctx context.Context, idx int) error {
	if err := s.repo.SetPreference(ctx, prefThumbnailSizeIndex, strconv.Itoa(idx)); err != nil {
		return fmt.Errorf("save thumbnail size: %w", err)
	}
	return nil
}

func searchRequest(q address.QueryValue, limit int) perkeep.SearchRequest {
	req := perkeep.SearchRequest{
		Describe: &perkeep.DescribeRequest{
			Depth: 1,
			Rules: []perkeep.DescribeRule{{Attrs: []string{perkeep.AttrContent, perkeep.AttrMember}}},
		},
		Limit: limit,
	}
	if q.IsStructured() {
		req.Constraint = q.Constraint()
	} else {
		req.Expression = q.Text()
	}
	return req
}
