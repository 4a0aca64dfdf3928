// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/songbook/songbook/internal/cache"
	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
)

// Service errors.
var (
	ErrSongNotFound = errors.New("song not found")
)

// SongStore persists songs. Implemented by *repository.Repository.
type SongStore interface {
	CreateSong(ctx context.Context, song *model.Song) error
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)
	ListSongs(ctx context.Context, filter model.SongFilter) ([]*model.Song, error)
	UpdateSongOwned(ctx context.Context, id, ownerID int64, in model.SongInput) (*model.Song, error)
	DeleteSongOwned(ctx context.Context, id, ownerID int64) error
	ListDistinct(ctx context.Context, column repository.DistinctColumn) ([]string, error)
}

// CatalogCache caches the distinct genre and artist lists. Implemented by *cache.Cache.
type CatalogCache interface {
	GetCatalogList(ctx context.Context, list string) ([]string, error)
	SetCatalogList(ctx context.Context, list string, values []string, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

// catalogLanguage orders distinct lists alphabetically.
var catalogLanguage = language.Spanish

// SongService handles song business logic.
type SongService struct {
	store    SongStore
	catalog  CatalogCache
	cacheTTL time.Duration
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewSongService creates a new SongService.
// catalog may be nil, in which case distinct lists are always read from the store.
func NewSongService(store SongStore, catalog CatalogCache, cacheTTL time.Duration, recorder metrics.Recorder, logger *slog.Logger) *SongService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SongService{
		store:    store,
		catalog:  catalog,
		cacheTTL: cacheTTL,
		metrics:  recorder,
		logger:   logger,
	}
}

// Create stores a new song owned by ownerID.
func (s *SongService) Create(ctx context.Context, ownerID int64, in model.SongInput) (*model.Song, error) {
	song := in.ToSong(ownerID)
	if err := s.store.CreateSong(ctx, song); err != nil {
		return nil, err
	}

	s.metrics.IncSongCreated()
	s.invalidateCatalog(ctx)

	return song, nil
}

// Get returns the song with the given id.
func (s *SongService) Get(ctx context.Context, id int64) (*model.Song, error) {
	song, err := s.store.GetSongByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return song, nil
}

// List returns the songs matching filter.
func (s *SongService) List(ctx context.Context, filter model.SongFilter) ([]*model.Song, error) {
	return s.store.ListSongs(ctx, filter)
}

// ListByOwner returns every song owned by ownerID, newest first.
func (s *SongService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Song, error) {
	return s.store.ListSongs(ctx, model.SongFilter{OwnerID: &ownerID})
}

// Update replaces a song's fields if callerID owns it.
// A song that is absent or owned by someone else yields ErrSongNotFound.
func (s *SongService) Update(ctx context.Context, id, callerID int64, in model.SongInput) (*model.Song, error) {
	song, err := s.store.UpdateSongOwned(ctx, id, callerID, in)
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.metrics.IncSongUpdated()
	s.invalidateCatalog(ctx)

	return song, nil
}

// Delete removes a song if callerID owns it.
func (s *SongService) Delete(ctx context.Context, id, callerID int64) error {
	if err := s.store.DeleteSongOwned(ctx, id, callerID); err != nil {
		return mapStoreError(err)
	}

	s.metrics.IncSongDeleted()
	s.invalidateCatalog(ctx)

	return nil
}

// Stats aggregates the songs owned by callerID.
func (s *SongService) Stats(ctx context.Context, callerID int64) (*model.SongStats, error) {
	songs, err := s.store.ListSongs(ctx, model.SongFilter{OwnerID: &callerID})
	if err != nil {
		return nil, err
	}
	return model.ComputeStats(songs), nil
}

// Genres returns the distinct non-blank genres in alphabetical order.
func (s *SongService) Genres(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, cache.ListGenres, repository.ColumnGenre)
}

// Artists returns the distinct non-blank artists in alphabetical order.
func (s *SongService) Artists(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, cache.ListArtists, repository.ColumnArtist)
}

func (s *SongService) distinct(ctx context.Context, list string, column repository.DistinctColumn) ([]string, error) {
	if s.catalog != nil {
		values, err := s.catalog.GetCatalogList(ctx, list)
		if err == nil {
			s.metrics.IncCatalogCacheHit()
			return values, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("catalog cache read failed", "list", list, "error", err)
		}
		s.metrics.IncCatalogCacheMiss()
	}

	raw, err := s.store.ListDistinct(ctx, column)
	if err != nil {
		return nil, err
	}
	values := SortDistinct(raw)

	if s.catalog != nil {
		if err := s.catalog.SetCatalogList(ctx, list, values, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", "list", list, "error", err)
		}
	}

	return values, nil
}

func (s *SongService) invalidateCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("catalog cache invalidation failed", "error", err)
	}
}

// SortDistinct trims values, drops blanks and duplicates, and sorts the
// rest alphabetically. The result is never nil.
func SortDistinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	// Collators keep scratch buffers, so each call builds its own.
	collate.New(catalogLanguage).SortStrings(out)

	return out
}

func mapStoreError(err error) error {
	if errors.Is(err, repository.ErrSongNotFound) {
		return ErrSongNotFound
	}
	return err
}
