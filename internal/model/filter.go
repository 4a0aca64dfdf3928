package model

// SongOrder selects the ordering of a song listing.
type SongOrder int

const (
	// OrderNewest lists by identifier, newest first. It is the default.
	OrderNewest SongOrder = iota
	// OrderYearDesc lists by release year, most recent first.
	OrderYearDesc
	// OrderDurationAsc lists by duration, shortest first.
	OrderDurationAsc
)

// SongFilter is a composed set of read predicates over the songs collection.
// Zero-valued fields impose no constraint.
type SongFilter struct {
	// Case-insensitive substring matches.
	Title  string
	Artist string
	Album  string
	Genre  string

	// Exact matches.
	Year    *int
	OwnerID *int64

	// Inclusive ranges.
	YearFrom    *int
	YearTo      *int
	DurationMin *float64
	DurationMax *float64

	Order SongOrder
}

// HasPredicates reports whether the filter constrains the result set.
func (f SongFilter) HasPredicates() bool {
	return f.Title != "" || f.Artist != "" || f.Album != "" || f.Genre != "" ||
		f.Year != nil || f.OwnerID != nil ||
		f.YearFrom != nil || f.YearTo != nil ||
		f.DurationMin != nil || f.DurationMax != nil
}
