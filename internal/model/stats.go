package model

import "strings"

// SongStats summarizes the songs owned by one user.
type SongStats struct {
	Total   int            `json:"total"`
	ByGenre map[string]int `json:"por_genero"`
	ByYear  map[int]int    `json:"por_anio"`
}

// ComputeStats reduces songs into totals grouped by genre and year.
// Songs without a genre are counted under NoGenreLabel.
func ComputeStats(songs []*Song) *SongStats {
	stats := &SongStats{
		ByGenre: make(map[string]int),
		ByYear:  make(map[int]int),
	}

	for _, s := range songs {
		stats.Total++

		genre := NoGenreLabel
		if s.Genre != nil && strings.TrimSpace(*s.Genre) != "" {
			genre = *s.Genre
		}
		stats.ByGenre[genre]++
		stats.ByYear[s.Year]++
	}

	return stats
}
