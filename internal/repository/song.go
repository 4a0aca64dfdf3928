package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/songbook/songbook/internal/model"
)

// ErrSongNotFound is returned when no song matches, including when the
// caller does not own the song an owner-guarded statement targeted.
var ErrSongNotFound = errors.New("song not found")

// DistinctColumn names a song column that can be projected as a distinct list.
type DistinctColumn string

// Projectable columns.
const (
	ColumnGenre  DistinctColumn = "genre"
	ColumnArtist DistinctColumn = "artist"
)

const songColumns = `id, title, artist, album, genre, year, duration, owner_id, created_at, updated_at`

// CreateSong inserts a song and fills in its server-assigned fields.
func (r *Repository) CreateSong(ctx context.Context, song *model.Song) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO songs (title, artist, album, genre, year, duration, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		song.Title,
		song.Artist,
		song.Album,
		song.Genre,
		song.Year,
		song.Duration,
		song.OwnerID,
	).Scan(&song.ID, &song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return storeError("create song", err)
	}

	return nil
}

// GetSongByID retrieves a song by its ID.
func (r *Repository) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`

	song, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, storeError("get song", err)
	}

	return song, nil
}

// ListSongs returns every song matching the filter in the filter's order.
func (r *Repository) ListSongs(ctx context.Context, filter model.SongFilter) ([]*model.Song, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args := buildSongQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("list songs", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, storeError("scan song", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("list songs", err)
	}

	return songs, nil
}

// UpdateSongOwned replaces the mutable fields of a song owned by ownerID.
// The ownership check and the write are one statement.
func (r *Repository) UpdateSongOwned(ctx context.Context, id, ownerID int64, in model.SongInput) (*model.Song, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE songs
		SET title = $3, artist = $4, album = $5, genre = $6, year = $7, duration = $8, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + songColumns

	song, err := scanSong(r.pool.QueryRow(ctx, query,
		id,
		ownerID,
		in.Title,
		in.Artist,
		in.Album,
		in.Genre,
		in.Year,
		in.Duration,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, storeError("update song", err)
	}

	return song, nil
}

// DeleteSongOwned removes a song owned by ownerID.
func (r *Repository) DeleteSongOwned(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return storeError("delete song", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSongNotFound
	}

	return nil
}

// ListDistinct projects one column across all songs, skipping NULLs.
// Values are returned as stored; blank filtering and ordering happen above.
func (r *Repository) ListDistinct(ctx context.Context, column DistinctColumn) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, err := buildDistinctQuery(column)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, storeError("list distinct "+string(column), err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storeError("scan distinct "+string(column), err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("list distinct "+string(column), err)
	}

	return values, nil
}

// buildSongQuery translates a filter into a parameterized SELECT.
func buildSongQuery(filter model.SongFilter) (string, []any) {
	query := `SELECT ` + songColumns + ` FROM songs`
	if !filter.HasPredicates() {
		return query + " ORDER BY " + orderClause(filter.Order), nil
	}

	var conds []string
	var args []any
	argIndex := 1

	add := func(expr string, arg any) {
		conds = append(conds, fmt.Sprintf(expr, argIndex))
		args = append(args, arg)
		argIndex++
	}

	if filter.Title != "" {
		add("title ILIKE $%d", containsPattern(filter.Title))
	}
	if filter.Artist != "" {
		add("artist ILIKE $%d", containsPattern(filter.Artist))
	}
	if filter.Album != "" {
		add("album ILIKE $%d", containsPattern(filter.Album))
	}
	if filter.Genre != "" {
		add("genre ILIKE $%d", containsPattern(filter.Genre))
	}
	if filter.Year != nil {
		add("year = $%d", *filter.Year)
	}
	if filter.OwnerID != nil {
		add("owner_id = $%d", *filter.OwnerID)
	}
	if filter.YearFrom != nil {
		add("year >= $%d", *filter.YearFrom)
	}
	if filter.YearTo != nil {
		add("year <= $%d", *filter.YearTo)
	}
	if filter.DurationMin != nil {
		add("duration >= $%d", *filter.DurationMin)
	}
	if filter.DurationMax != nil {
		add("duration <= $%d", *filter.DurationMax)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY " + orderClause(filter.Order)

	return query, args
}

func orderClause(order model.SongOrder) string {
	switch order {
	case model.OrderYearDesc:
		return pq.QuoteIdentifier("year") + " DESC, id DESC"
	case model.OrderDurationAsc:
		return pq.QuoteIdentifier("duration") + " ASC, id ASC"
	default:
		return "id DESC"
	}
}

func buildDistinctQuery(column DistinctColumn) (string, error) {
	switch column {
	case ColumnGenre, ColumnArtist:
	default:
		return "", fmt.Errorf("column %q cannot be projected", column)
	}

	col := pq.QuoteIdentifier(string(column))
	return "SELECT DISTINCT " + col + " FROM songs WHERE " + col + " IS NOT NULL", nil
}

// containsPattern wraps s for a substring ILIKE, escaping LIKE metacharacters.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func scanSong(row pgx.Row) (*model.Song, error) {
	var s model.Song
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Artist,
		&s.Album,
		&s.Genre,
		&s.Year,
		&s.Duration,
		&s.OwnerID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
