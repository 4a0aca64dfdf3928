package model

import "time"

// Field limits for song attributes.
const (
	MaxTextLength  = 255
	MaxGenreLength = 100
	MinYear        = 1900
	MaxDuration    = 9999.99
)

// NoGenreLabel buckets songs without a genre in aggregations.
const NoGenreLabel = "Sin género"

// Song is a catalog entry owned by the user who created it.
type Song struct {
	ID        int64     `json:"id"`
	Title     string    `json:"titulo"`
	Artist    string    `json:"artista"`
	Album     string    `json:"album"`
	Genre     *string   `json:"genero"`
	Year      int       `json:"anio"`
	Duration  float64   `json:"duracion"`
	OwnerID   int64     `json:"usuario_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the song.
func (s *Song) OwnedBy(userID int64) bool {
	return s.OwnerID == userID
}

// SongInput is a validated create/update payload.
// Values are produced only by the validation gate and never mutated afterwards.
type SongInput struct {
	Title    string
	Artist   string
	Album    string
	Genre    *string
	Year     int
	Duration float64
}

// ToSong builds a new song owned by ownerID from the input.
func (in SongInput) ToSong(ownerID int64) *Song {
	return &Song{
		Title:    in.Title,
		Artist:   in.Artist,
		Album:    in.Album,
		Genre:    in.Genre,
		Year:     in.Year,
		Duration: in.Duration,
		OwnerID:  ownerID,
	}
}
