package validation

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/songbook/songbook/internal/model"
)

// Recognized query parameters.
const (
	ParamTitle       = "titulo"
	ParamArtist      = "artista"
	ParamAlbum       = "album"
	ParamGenre       = "genero"
	ParamYear        = "anio"
	ParamOwnerID     = "usuario_id"
	ParamStartYear   = "startYear"
	ParamEndYear     = "endYear"
	ParamMinDuration = "minDuration"
	ParamMaxDuration = "maxDuration"
)

// ParseListQuery builds the general listing filter. Unrecognized and empty
// parameters impose no constraint; the result is ordered newest first.
func ParseListQuery(q url.Values) (model.SongFilter, error) {
	verr := &Error{}
	f := model.SongFilter{
		Title:  strings.TrimSpace(q.Get(ParamTitle)),
		Artist: strings.TrimSpace(q.Get(ParamArtist)),
		Album:  strings.TrimSpace(q.Get(ParamAlbum)),
		Genre:  strings.TrimSpace(q.Get(ParamGenre)),
		Order:  model.OrderNewest,
	}

	if v, ok := intParam(verr, q, ParamYear); ok {
		f.Year = &v
	}
	if v, ok := intParam(verr, q, ParamOwnerID); ok {
		owner := int64(v)
		f.OwnerID = &owner
	}

	if err := verr.errOrNil(); err != nil {
		return model.SongFilter{}, err
	}
	return f, nil
}

// ParseOwnerID parses a user identifier path segment.
func ParseOwnerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewError("userId", "userId must be a positive integer")
	}
	return id, nil
}

// ParseSongID parses a song identifier path segment.
func ParseSongID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewError("id", "id must be a positive integer")
	}
	return id, nil
}

// ParseYearRange builds a year-range filter ordered by year, most recent first.
// The lower bound must be at least 1900 and the upper bound at most now's year.
func ParseYearRange(q url.Values, now time.Time) (model.SongFilter, error) {
	verr := &Error{}
	f := model.SongFilter{Order: model.OrderYearDesc}
	current := now.Year()

	if v, ok := intParam(verr, q, ParamStartYear); ok {
		if v < model.MinYear {
			verr.add(ParamStartYear, fmt.Sprintf("%s must be at least %d", ParamStartYear, model.MinYear))
		} else {
			f.YearFrom = &v
		}
	}
	if v, ok := intParam(verr, q, ParamEndYear); ok {
		if v > current {
			verr.add(ParamEndYear, fmt.Sprintf("%s must not be after %d", ParamEndYear, current))
		} else {
			f.YearTo = &v
		}
	}
	if f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo {
		verr.add(ParamStartYear, fmt.Sprintf("%s must not be greater than %s", ParamStartYear, ParamEndYear))
	}

	if err := verr.errOrNil(); err != nil {
		return model.SongFilter{}, err
	}
	return f, nil
}

// ParseDurationRange builds a duration-range filter ordered shortest first.
// The lower bound must be non-negative and the upper bound positive.
func ParseDurationRange(q url.Values) (model.SongFilter, error) {
	verr := &Error{}
	f := model.SongFilter{Order: model.OrderDurationAsc}

	if v, ok := floatParam(verr, q, ParamMinDuration); ok {
		if v < 0 {
			verr.add(ParamMinDuration, ParamMinDuration+" must be 0 or greater")
		} else {
			f.DurationMin = &v
		}
	}
	if v, ok := floatParam(verr, q, ParamMaxDuration); ok {
		if v <= 0 {
			verr.add(ParamMaxDuration, ParamMaxDuration+" must be greater than 0")
		} else {
			f.DurationMax = &v
		}
	}
	if f.DurationMin != nil && f.DurationMax != nil && *f.DurationMin > *f.DurationMax {
		verr.add(ParamMinDuration, fmt.Sprintf("%s must not be greater than %s", ParamMinDuration, ParamMaxDuration))
	}

	if err := verr.errOrNil(); err != nil {
		return model.SongFilter{}, err
	}
	return f, nil
}

// intParam parses an optional integer parameter. Empty values are absent.
func intParam(verr *Error, q url.Values, name string) (int, bool) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(name, name+" must be an integer")
		return 0, false
	}
	return v, true
}

// floatParam parses an optional numeric parameter. Empty values are absent.
func floatParam(verr *Error, q url.Values, name string) (float64, bool) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		verr.add(name, name+" must be a number")
		return 0, false
	}
	return v, true
}
