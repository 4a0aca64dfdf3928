// Package memstore provides in-memory stand-ins for the Postgres repository
// and the Redis catalog cache, for service and handler tests.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/songbook/songbook/internal/cache"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
)

// Store keeps songs and users in memory, mirroring the repository's
// filtering, ordering and owner-guarded writes.
type Store struct {
	mu     sync.Mutex
	songs  map[int64]*model.Song
	users  map[int64]*model.User
	nextID int64
	now    func() time.Time

	// FailWith, when set, is returned by every song operation.
	FailWith error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		songs: make(map[int64]*model.Song),
		users: make(map[int64]*model.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AddUser stores a user and assigns its ID.
func (s *Store) AddUser(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = s.now()
	cp := *u
	s.users[u.ID] = &cp
	return u
}

// GetUserByEmail looks a user up by email, ignoring case.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// CreateSong stores song and assigns its ID and timestamps.
func (s *Store) CreateSong(_ context.Context, song *model.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	s.nextID++
	now := s.now()
	song.ID = s.nextID
	song.CreatedAt = now
	song.UpdatedAt = now
	s.songs[song.ID] = cloneSong(song)
	return nil
}

// GetSongByID returns a copy of the song with id.
func (s *Store) GetSongByID(_ context.Context, id int64) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	song, ok := s.songs[id]
	if !ok {
		return nil, repository.ErrSongNotFound
	}
	return cloneSong(song), nil
}

// ListSongs returns copies of the songs matching filter.
func (s *Store) ListSongs(_ context.Context, filter model.SongFilter) ([]*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	out := make([]*model.Song, 0, len(s.songs))
	for _, song := range s.songs {
		if matches(song, filter) {
			out = append(out, cloneSong(song))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch filter.Order {
		case model.OrderYearDesc:
			if a.Year != b.Year {
				return a.Year > b.Year
			}
			return a.ID > b.ID
		case model.OrderDurationAsc:
			if a.Duration != b.Duration {
				return a.Duration < b.Duration
			}
			return a.ID < b.ID
		default:
			return a.ID > b.ID
		}
	})

	return out, nil
}

// UpdateSongOwned replaces the song's fields if ownerID owns it.
func (s *Store) UpdateSongOwned(_ context.Context, id, ownerID int64, in model.SongInput) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	song, ok := s.songs[id]
	if !ok || !song.OwnedBy(ownerID) {
		return nil, repository.ErrSongNotFound
	}

	song.Title = in.Title
	song.Artist = in.Artist
	song.Album = in.Album
	song.Genre = copyString(in.Genre)
	song.Year = in.Year
	song.Duration = in.Duration
	song.UpdatedAt = s.now()

	return cloneSong(song), nil
}

// DeleteSongOwned removes the song if ownerID owns it.
func (s *Store) DeleteSongOwned(_ context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	song, ok := s.songs[id]
	if !ok || !song.OwnedBy(ownerID) {
		return repository.ErrSongNotFound
	}
	delete(s.songs, id)
	return nil
}

// ListDistinct returns the non-NULL values of column, unordered.
func (s *Store) ListDistinct(_ context.Context, column repository.DistinctColumn) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return nil, s.FailWith
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, song := range s.songs {
		var v string
		switch column {
		case repository.ColumnGenre:
			if song.Genre == nil {
				continue
			}
			v = *song.Genre
		case repository.ColumnArtist:
			v = song.Artist
		default:
			return nil, errors.New("column cannot be projected")
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out, nil
}

// SongCount returns the number of stored songs.
func (s *Store) SongCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.songs)
}

func matches(song *model.Song, f model.SongFilter) bool {
	if f.Title != "" && !containsFold(song.Title, f.Title) {
		return false
	}
	if f.Artist != "" && !containsFold(song.Artist, f.Artist) {
		return false
	}
	if f.Album != "" && !containsFold(song.Album, f.Album) {
		return false
	}
	if f.Genre != "" && (song.Genre == nil || !containsFold(*song.Genre, f.Genre)) {
		return false
	}
	if f.Year != nil && song.Year != *f.Year {
		return false
	}
	if f.OwnerID != nil && song.OwnerID != *f.OwnerID {
		return false
	}
	if f.YearFrom != nil && song.Year < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && song.Year > *f.YearTo {
		return false
	}
	if f.DurationMin != nil && song.Duration < *f.DurationMin {
		return false
	}
	if f.DurationMax != nil && song.Duration > *f.DurationMax {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneSong(s *model.Song) *model.Song {
	cp := *s
	cp.Genre = copyString(s.Genre)
	return &cp
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Catalog is an in-memory distinct-list cache.
type Catalog struct {
	mu    sync.Mutex
	lists map[string][]string

	Invalidations int
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{lists: make(map[string][]string)}
}

// GetCatalogList returns a cached list or cache.ErrCacheMiss.
func (c *Catalog) GetCatalogList(_ context.Context, list string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, ok := c.lists[list]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return append([]string(nil), values...), nil
}

// SetCatalogList caches values under list. ttl is ignored.
func (c *Catalog) SetCatalogList(_ context.Context, list string, values []string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists[list] = append([]string(nil), values...)
	return nil
}

// InvalidateCatalog drops every cached list.
func (c *Catalog) InvalidateCatalog(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists = make(map[string][]string)
	c.Invalidations++
	return nil
}
