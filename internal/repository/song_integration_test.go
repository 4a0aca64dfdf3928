//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/songbook/songbook/internal/model"
	"github.com/songbook/songbook/internal/testutil"
)

// ============================================================================
// Song Repository Integration Tests
// ============================================================================

func TestIntegrationSongRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newSongTestEnv(t)
	owner := createTestUser(t, ctx, repo, "owner@example.com")

	song := testutil.NewTestSong(owner.ID, "Bohemian Rhapsody", "Queen", "Rock", 1975)
	if err := repo.CreateSong(ctx, song); err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}
	if song.ID == 0 {
		t.Fatal("expected server-assigned ID")
	}
	if song.CreatedAt.IsZero() || song.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := repo.GetSongByID(ctx, song.ID)
	if err != nil {
		t.Fatalf("GetSongByID failed: %v", err)
	}
	if got.Title != song.Title || got.Artist != song.Artist || got.Year != song.Year {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, song)
	}
	if got.Duration != song.Duration {
		t.Errorf("Duration mismatch: got %v, want %v", got.Duration, song.Duration)
	}
	if got.OwnerID != owner.ID {
		t.Errorf("OwnerID mismatch: got %d, want %d", got.OwnerID, owner.ID)
	}
}

func TestIntegrationSongRepository_GetMissing(t *testing.T) {
	ctx, repo := newSongTestEnv(t)

	_, err := repo.GetSongByID(ctx, 999999)
	if !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestIntegrationSongRepository_ListFilters(t *testing.T) {
	ctx, repo := newSongTestEnv(t)
	owner := createTestUser(t, ctx, repo, "lister@example.com")

	seed := []*model.Song{
		testutil.NewTestSong(owner.ID, "Alpha", "Band A", "Rock", 2020),
		testutil.NewTestSong(owner.ID, "Beta", "Band B", "Rock", 2019),
		testutil.NewTestSong(owner.ID, "Gamma", "Band C", "Jazz", 2020),
	}
	for _, s := range seed {
		if err := repo.CreateSong(ctx, s); err != nil {
			t.Fatalf("CreateSong failed: %v", err)
		}
	}

	all, err := repo.ListSongs(ctx, model.SongFilter{})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID < all[i].ID {
			t.Errorf("expected id DESC order, got %d before %d", all[i-1].ID, all[i].ID)
		}
	}

	year := 2020
	matched, err := repo.ListSongs(ctx, model.SongFilter{Genre: "rock", Year: &year})
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Title != "Alpha" {
		t.Errorf("expected only Alpha, got %+v", matched)
	}
}

func TestIntegrationSongRepository_OwnerGuardedMutations(t *testing.T) {
	ctx, repo := newSongTestEnv(t)
	owner := createTestUser(t, ctx, repo, "a@example.com")
	other := createTestUser(t, ctx, repo, "b@example.com")

	song := testutil.NewTestSong(owner.ID, "Mine", "Me", "Pop", 2001)
	if err := repo.CreateSong(ctx, song); err != nil {
		t.Fatalf("CreateSong failed: %v", err)
	}

	in := model.SongInput{Title: "Stolen", Artist: "Thief", Album: "X", Year: 2002, Duration: 100}
	if _, err := repo.UpdateSongOwned(ctx, song.ID, other.ID, in); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound for non-owner update, got %v", err)
	}
	if err := repo.DeleteSongOwned(ctx, song.ID, other.ID); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound for non-owner delete, got %v", err)
	}

	unchanged, err := repo.GetSongByID(ctx, song.ID)
	if err != nil {
		t.Fatalf("GetSongByID failed: %v", err)
	}
	if unchanged.Title != "Mine" {
		t.Errorf("expected record unchanged, got title %q", unchanged.Title)
	}

	updated, err := repo.UpdateSongOwned(ctx, song.ID, owner.ID, in)
	if err != nil {
		t.Fatalf("UpdateSongOwned failed: %v", err)
	}
	if updated.Title != "Stolen" || updated.Year != 2002 {
		t.Errorf("unexpected updated song: %+v", updated)
	}

	if err := repo.DeleteSongOwned(ctx, song.ID, owner.ID); err != nil {
		t.Fatalf("DeleteSongOwned failed: %v", err)
	}
	if _, err := repo.GetSongByID(ctx, song.ID); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound after delete, got %v", err)
	}
}

func TestIntegrationSongRepository_ListDistinct(t *testing.T) {
	ctx, repo := newSongTestEnv(t)
	owner := createTestUser(t, ctx, repo, "distinct@example.com")

	noGenre := testutil.NewTestSong(owner.ID, "Untagged", "Solo", "", 2010)
	noGenre.Genre = nil
	for _, s := range []*model.Song{
		testutil.NewTestSong(owner.ID, "One", "Artist", "Rock", 2010),
		testutil.NewTestSong(owner.ID, "Two", "Artist", "Rock", 2011),
		noGenre,
	} {
		if err := repo.CreateSong(ctx, s); err != nil {
			t.Fatalf("CreateSong failed: %v", err)
		}
	}

	genres, err := repo.ListDistinct(ctx, ColumnGenre)
	if err != nil {
		t.Fatalf("ListDistinct failed: %v", err)
	}
	if len(genres) != 1 || genres[0] != "Rock" {
		t.Errorf("expected [Rock], got %v", genres)
	}
}

func TestIntegrationSongRepository_StoreError(t *testing.T) {
	ctx, repo := newSongTestEnv(t)

	// Owner does not exist, so the foreign key rejects the row.
	song := testutil.NewTestSong(424242, "Orphan", "Nobody", "Rock", 2000)
	err := repo.CreateSong(ctx, song)

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *StoreError, got %v", err)
	}
	if storeErr.Message() == "" {
		t.Error("expected database message")
	}
}

func TestIntegrationUserRepository_EmailCaseInsensitive(t *testing.T) {
	ctx, repo := newSongTestEnv(t)
	user := createTestUser(t, ctx, repo, "Mixed@Example.com")

	got, err := repo.GetUserByEmail(ctx, "MIXED@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, got.ID)
	}

	dup := &model.User{Email: "mixed@example.com", PasswordHash: "x"}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ============================================================================
// Test Helpers
// ============================================================================

func newSongTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL, 0)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if _, err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := testutil.TruncateTables(ctx, repo.Pool()); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return ctx, repo
}

func createTestUser(t *testing.T, ctx context.Context, repo *Repository, email string) *model.User {
	t.Helper()

	user := &model.User{Email: email, Name: "Test", PasswordHash: "hash"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func createUserErr(ctx context.Context, repo *Repository, email string) error {
	return repo.CreateUser(ctx, &model.User{Email: email, Name: "Test", PasswordHash: "hash"})
}
