package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/songbook/songbook/internal/metrics"
	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/repository"
	"github.com/songbook/songbook/internal/testutil"
	"github.com/songbook/songbook/internal/testutil/memstore"
)

func newSongService(t *testing.T) (*SongService, *memstore.Store, *memstore.Catalog, *metrics.InMemoryRecorder) {
	t.Helper()
	store := memstore.New()
	catalog := memstore.NewCatalog()
	recorder := metrics.NewInMemory()
	return NewSongService(store, catalog, 0, recorder, nil), store, catalog, recorder
}

func TestSongService_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, recorder := newSongService(t)

	created, err := svc.Create(ctx, 1, testutil.NewTestSongInput("Round Trip"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 || created.OwnerID != 1 {
		t.Fatalf("unexpected created song: %+v", created)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Round Trip" || got.Duration != 180.25 || *got.Genre != "Rock" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	if recorder.Snapshot().SongsCreated != 1 {
		t.Error("expected song created metric")
	}
}

func TestSongService_GetMissing(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newSongService(t)

	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestSongService_OwnershipGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _, recorder := newSongService(t)

	song, err := svc.Create(ctx, 1, testutil.NewTestSongInput("Owned by A"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(ctx, song.ID, 2, testutil.NewTestSongInput("Hijacked")); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound for non-owner update, got %v", err)
	}
	if err := svc.Delete(ctx, song.ID, 2); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound for non-owner delete, got %v", err)
	}

	got, err := svc.Get(ctx, song.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Owned by A" {
		t.Errorf("expected record unchanged, got %q", got.Title)
	}

	s := recorder.Snapshot()
	if s.SongsUpdated != 0 || s.SongsDeleted != 0 {
		t.Errorf("rejected writes must not be counted: %+v", s)
	}
}

func TestSongService_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := newSongService(t)

	song, _ := svc.Create(ctx, 1, testutil.NewTestSongInput("Before"))

	in := testutil.NewTestSongInput("After")
	in.Year = 1999
	updated, err := svc.Update(ctx, song.ID, 1, in)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "After" || updated.Year != 1999 {
		t.Errorf("unexpected update result: %+v", updated)
	}

	got, _ := svc.Get(ctx, song.ID)
	if got.Title != "After" {
		t.Errorf("expected persisted update, got %q", got.Title)
	}

	if err := svc.Delete(ctx, song.ID, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.SongCount() != 0 {
		t.Errorf("expected empty store, got %d songs", store.SongCount())
	}
}

func TestSongService_ListComposedFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := newSongService(t)

	for _, s := range []*model.Song{
		testutil.NewTestSong(1, "A", "X", "Rock", 2020),
		testutil.NewTestSong(1, "B", "Y", "Rock", 2019),
		testutil.NewTestSong(2, "C", "Z", "Pop", 2020),
	} {
		if err := store.CreateSong(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	year := 2020
	got, err := svc.List(ctx, model.SongFilter{Genre: "rock", Year: &year})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Errorf("expected only A, got %+v", got)
	}

	all, _ := svc.List(ctx, model.SongFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID < all[i].ID {
			t.Errorf("expected id DESC ordering")
		}
	}

	mine, _ := svc.ListByOwner(ctx, 2)
	if len(mine) != 1 || mine[0].Title != "C" {
		t.Errorf("expected owner 2 to have only C, got %+v", mine)
	}
}

func TestSongService_StatsScopedToCaller(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, _, _ := newSongService(t)

	blank := testutil.NewTestSong(1, "Blank", "X", "", 2020)
	spaces := "  "
	blank.Genre = &spaces
	for _, s := range []*model.Song{
		testutil.NewTestSong(1, "A", "X", "Rock", 2020),
		testutil.NewTestSong(1, "B", "X", "", 2019),
		blank,
		testutil.NewTestSong(2, "Other", "Y", "Rock", 2020),
	} {
		if err := store.CreateSong(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.Stats(ctx, 1)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByGenre["Rock"] != 1 || stats.ByGenre[model.NoGenreLabel] != 2 {
		t.Errorf("unexpected genre buckets: %v", stats.ByGenre)
	}
	if stats.ByYear[2020] != 2 || stats.ByYear[2019] != 1 {
		t.Errorf("unexpected year buckets: %v", stats.ByYear)
	}
}

func TestSongService_GenresCachedAndInvalidated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store, catalog, recorder := newSongService(t)

	for _, s := range []*model.Song{
		testutil.NewTestSong(1, "A", "X", "Rock", 2020),
		testutil.NewTestSong(1, "B", "X", "Jazz", 2020),
		testutil.NewTestSong(1, "C", "X", "Rock", 2020),
	} {
		_ = store.CreateSong(ctx, s)
	}

	first, err := svc.Genres(ctx)
	if err != nil {
		t.Fatalf("Genres failed: %v", err)
	}
	if !slices.Equal(first, []string{"Jazz", "Rock"}) {
		t.Fatalf("expected [Jazz Rock], got %v", first)
	}

	if _, err := svc.Genres(ctx); err != nil {
		t.Fatal(err)
	}
	s := recorder.Snapshot()
	if s.CatalogCacheMisses != 1 || s.CatalogCacheHits != 1 {
		t.Errorf("expected one miss then one hit, got %+v", s)
	}

	if _, err := svc.Create(ctx, 1, testutil.NewTestSongInput("New")); err != nil {
		t.Fatal(err)
	}
	if catalog.Invalidations != 1 {
		t.Errorf("expected catalog invalidation on create, got %d", catalog.Invalidations)
	}
}

func TestSongService_ArtistsWithoutCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memstore.New()
	svc := NewSongService(store, nil, 0, nil, nil)

	for _, artist := range []string{"Zoé", "Ángeles Azules", "Bunbury", "zoé"} {
		_ = store.CreateSong(ctx, testutil.NewTestSong(1, "T", artist, "", 2000))
	}

	got, err := svc.Artists(ctx)
	if err != nil {
		t.Fatalf("Artists failed: %v", err)
	}
	if len(got) != 4 || got[0] != "Ángeles Azules" || got[1] != "Bunbury" {
		t.Errorf("unexpected artist order: %v", got)
	}
}

func TestSongService_StoreErrorPassesThrough(t *testing.T) {
	t.Parallel()
	svc, store, _, _ := newSongService(t)
	storeErr := &repository.StoreError{Op: "list songs", Err: errors.New("connection refused")}
	store.FailWith = storeErr

	_, err := svc.List(context.Background(), model.SongFilter{})
	var got *repository.StoreError
	if !errors.As(err, &got) {
		t.Fatalf("expected *repository.StoreError, got %v", err)
	}
}

func TestSortDistinct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"drops blanks", []string{"", "  ", "Rock"}, []string{"Rock"}},
		{"dedupes after trim", []string{"Rock", " Rock ", "Pop"}, []string{"Pop", "Rock"}},
		{"accent-aware order", []string{"Rock", "Ópera", "Blues"}, []string{"Blues", "Ópera", "Rock"}},
		{"ñ after n", []string{"Ñandú", "Nube", "Oro"}, []string{"Nube", "Ñandú", "Oro"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SortDistinct(tt.in)
			if got == nil {
				t.Fatal("expected non-nil result")
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SortDistinct(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
