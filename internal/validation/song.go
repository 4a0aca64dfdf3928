package validation

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/songbook/songbook/internal/model"
)

// Wire names of song fields.
const (
	FieldTitle    = "titulo"
	FieldArtist   = "artista"
	FieldAlbum    = "album"
	FieldGenre    = "genero"
	FieldYear     = "anio"
	FieldDuration = "duracion"
)

// durationPattern limits the raw duration text to two fractional digits.
var durationPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d{0,2}|\.\d{1,2})$`)

// SongPayload is the raw create/update body. Fields stay undecoded so the
// rules can inspect exactly what the client sent.
type SongPayload struct {
	Title    json.RawMessage `json:"titulo"`
	Artist   json.RawMessage `json:"artista"`
	Album    json.RawMessage `json:"album"`
	Genre    json.RawMessage `json:"genero"`
	Year     json.RawMessage `json:"anio"`
	Duration json.RawMessage `json:"duracion"`
}

// rawKind classifies a raw JSON value.
type rawKind int

const (
	rawAbsent rawKind = iota
	rawString
	rawNumber
	rawOther
)

// rawText returns the textual content of a raw JSON scalar.
func rawText(raw json.RawMessage) (string, rawKind) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", rawAbsent
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", rawOther
		}
		return s, rawString
	case c == '-' || (c >= '0' && c <= '9'):
		return string(trimmed), rawNumber
	default:
		return "", rawOther
	}
}

// ValidateSong applies every song rule to p and returns the typed input.
// now fixes the upper bound of the year rule.
func ValidateSong(p SongPayload, now time.Time) (model.SongInput, error) {
	verr := &Error{}
	var in model.SongInput

	in.Title = requiredText(verr, FieldTitle, p.Title, model.MaxTextLength)
	in.Artist = requiredText(verr, FieldArtist, p.Artist, model.MaxTextLength)
	in.Album = requiredText(verr, FieldAlbum, p.Album, model.MaxTextLength)
	in.Genre = optionalText(verr, FieldGenre, p.Genre, model.MaxGenreLength)
	in.Year = year(verr, p.Year, now)
	in.Duration = duration(verr, p.Duration)

	if err := verr.errOrNil(); err != nil {
		return model.SongInput{}, err
	}
	return in, nil
}

func requiredText(verr *Error, field string, raw json.RawMessage, maxLen int) string {
	text, kind := rawText(raw)
	switch kind {
	case rawAbsent:
		verr.add(field, field+" is required")
		return ""
	case rawNumber, rawOther:
		verr.add(field, field+" must be text")
		return ""
	}

	value := strings.TrimSpace(text)
	if err := get().Var(value, fmt.Sprintf("required,max=%d", maxLen)); err != nil {
		verr.add(field, textMessage(field, err, maxLen))
		return ""
	}
	return value
}

func optionalText(verr *Error, field string, raw json.RawMessage, maxLen int) *string {
	text, kind := rawText(raw)
	switch kind {
	case rawAbsent:
		return nil
	case rawNumber, rawOther:
		verr.add(field, field+" must be text")
		return nil
	}
	// An empty string is what a form sends for "no selection".
	if text == "" {
		return nil
	}

	value := strings.TrimSpace(text)
	if err := get().Var(value, fmt.Sprintf("required,max=%d", maxLen)); err != nil {
		if tagOf(err) == "required" {
			verr.add(field, field+" must not be blank")
		} else {
			verr.add(field, textMessage(field, err, maxLen))
		}
		return nil
	}
	return &value
}

func year(verr *Error, raw json.RawMessage, now time.Time) int {
	text, kind := rawText(raw)
	if kind == rawAbsent || (kind == rawString && strings.TrimSpace(text) == "") {
		verr.add(FieldYear, FieldYear+" is required")
		return 0
	}
	if kind == rawOther {
		verr.add(FieldYear, FieldYear+" must be an integer")
		return 0
	}

	y, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		verr.add(FieldYear, FieldYear+" must be an integer")
		return 0
	}

	current := now.Year()
	if err := get().Var(y, fmt.Sprintf("gte=%d,lte=%d", model.MinYear, current)); err != nil {
		verr.add(FieldYear, fmt.Sprintf("%s must be between %d and %d", FieldYear, model.MinYear, current))
		return 0
	}
	return y
}

func duration(verr *Error, raw json.RawMessage) float64 {
	text, kind := rawText(raw)
	text = strings.TrimSpace(text)
	if kind == rawAbsent || (kind == rawString && text == "") {
		verr.add(FieldDuration, FieldDuration+" is required")
		return 0
	}
	if kind == rawOther {
		verr.add(FieldDuration, FieldDuration+" must be a number")
		return 0
	}

	if strings.ContainsAny(text, "eE") {
		verr.add(FieldDuration, FieldDuration+" must be a plain decimal number")
		return 0
	}

	d, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		verr.add(FieldDuration, FieldDuration+" must be a number")
		return 0
	}

	ok := true
	if err := get().Var(d, "gt=0"); err != nil {
		verr.add(FieldDuration, FieldDuration+" must be greater than 0")
		ok = false
	}
	if err := get().Var(d, fmt.Sprintf("lte=%.2f", model.MaxDuration)); err != nil {
		verr.add(FieldDuration, fmt.Sprintf("%s must not exceed %.2f", FieldDuration, model.MaxDuration))
		ok = false
	}
	if !durationPattern.MatchString(text) {
		verr.add(FieldDuration, FieldDuration+" must have at most two decimal places")
		ok = false
	}

	if !ok {
		return 0
	}
	return d
}

// tagOf returns the first failed validator tag in err.
func tagOf(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}

func textMessage(field string, err error, maxLen int) string {
	switch tagOf(err) {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %d characters", field, maxLen)
	default:
		return field + " is invalid"
	}
}
